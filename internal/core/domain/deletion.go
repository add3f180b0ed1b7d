package domain

import "time"

// DeletionRecord is the audit entry written when an admin removes an
// account. It is created exactly once per deletion, before the account row
// is removed, and is immutable afterwards.
type DeletionRecord struct {
	Email          string    `json:"email"`
	DeletedBy      int64     `json:"deletedBy"`
	DeletedByEmail string    `json:"deletedByEmail"`
	DeletedAt      time.Time `json:"deletedAt"`
}
