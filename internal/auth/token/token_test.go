package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

func newTestCodec(secret string) *Codec {
	return NewCodec(secret, zerolog.Nop())
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec("secret")

	tok, err := c.Issue(Claims{UserID: 42, Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, ok := c.Verify(tok)
	if !ok {
		t.Fatalf("expected token to verify")
	}
	if claims.UserID != 42 || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp <= time.Now().Unix() {
		t.Fatalf("exp not in the future: %d", claims.Exp)
	}
}

func TestCodec_IssueOverwritesExp(t *testing.T) {
	c := newTestCodec("secret")

	// Caller tries to smuggle in a far-future expiry.
	tok, err := c.Issue(Claims{UserID: 1, Exp: time.Now().Add(100 * 365 * 24 * time.Hour).Unix()}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, ok := c.Verify(tok)
	if !ok {
		t.Fatalf("expected token to verify")
	}
	max := time.Now().Add(time.Hour + time.Minute).Unix()
	if claims.Exp > max {
		t.Fatalf("exp not overwritten: %d > %d", claims.Exp, max)
	}
}

func TestCodec_TamperedSegments(t *testing.T) {
	c := newTestCodec("secret")

	tok, err := c.Issue(Claims{UserID: 7, Role: "user"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}

	flip := func(s string) string {
		b := []byte(s)
		if b[0] == 'A' {
			b[0] = 'B'
		} else {
			b[0] = 'A'
		}
		return string(b)
	}

	for i := range parts {
		mutated := make([]string, 3)
		copy(mutated, parts)
		mutated[i] = flip(mutated[i])
		if _, ok := c.Verify(strings.Join(mutated, ".")); ok {
			t.Fatalf("tampered segment %d still verified", i)
		}
	}
}

func TestCodec_Malformed(t *testing.T) {
	c := newTestCodec("secret")

	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "...."} {
		if _, ok := c.Verify(tok); ok {
			t.Fatalf("malformed token %q verified", tok)
		}
	}
}

func TestCodec_WrongKey(t *testing.T) {
	issuer := newTestCodec("key-one")
	verifier := newTestCodec("key-two")

	tok, err := issuer.Issue(Claims{UserID: 3}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := verifier.Verify(tok); ok {
		t.Fatalf("token verified under a different key")
	}
}

func TestCodec_Expired(t *testing.T) {
	c := newTestCodec("secret")
	c.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := c.Issue(Claims{UserID: 5}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Signature is valid, but exp is an hour in the past by real time.
	c.now = time.Now
	if _, ok := c.Verify(tok); ok {
		t.Fatalf("expired token verified")
	}
}

func TestCodec_MissingExpRejected(t *testing.T) {
	c := newTestCodec("secret")
	enc := base64.RawURLEncoding

	// Correctly signed token whose payload carries no exp claim.
	signingInput := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) +
		"." + enc.EncodeToString([]byte(`{"user_id":5,"role":"user"}`))
	tok := signingInput + "." + enc.EncodeToString(c.sign(signingInput))

	if _, ok := c.Verify(tok); ok {
		t.Fatalf("token without exp verified")
	}
}

// TestCodec_JWTInterop proves the wire format is a standard HS256 JWT:
// tokens issued here must parse under golang-jwt and vice versa.
func TestCodec_JWTInterop(t *testing.T) {
	c := newTestCodec("interop-secret")

	tok, err := c.Issue(Claims{UserID: 11, Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte("interop-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("golang-jwt rejected our token: %v", err)
	}
	if claims["user_id"].(float64) != 11 || claims["role"] != "admin" {
		t.Fatalf("unexpected claims via golang-jwt: %+v", claims)
	}

	theirs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 12,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := theirs.SignedString([]byte("interop-secret"))
	if err != nil {
		t.Fatalf("sign with golang-jwt: %v", err)
	}
	got, ok := c.Verify(signed)
	if !ok {
		t.Fatalf("golang-jwt token rejected by codec")
	}
	if got.UserID != 12 || got.Role != "user" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}
