package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/securebdd/accounts-api/internal/core/domain"
)

const deletedUsersCollection = "deleted_users"

// DeletionAuditRepository persists the immutable deletion audit trail.
type DeletionAuditRepository struct {
	coll *mongo.Collection
}

func NewDeletionAuditRepository(db *mongo.Database) *DeletionAuditRepository {
	return &DeletionAuditRepository{coll: db.Collection(deletedUsersCollection)}
}

type deletionDoc struct {
	Email          string `bson:"email"`
	DeletedBy      int64  `bson:"deleted_by"`
	DeletedByEmail string `bson:"deleted_by_email"`
	DeletedAt      int64  `bson:"deleted_at"`
}

func (r *DeletionAuditRepository) Record(ctx context.Context, rec domain.DeletionRecord) error {
	doc := deletionDoc{
		Email:          rec.Email,
		DeletedBy:      rec.DeletedBy,
		DeletedByEmail: rec.DeletedByEmail,
		DeletedAt:      rec.DeletedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert deletion record: %w", err)
	}
	return nil
}
