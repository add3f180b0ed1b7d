// Package token implements the compact signed-token scheme used for
// stateless authentication.
//
// The wire format is three unpadded base64url segments joined by dots:
//
//	base64url(header) "." base64url(claims) "." base64url(signature)
//
// The header is fixed and the signing algorithm is never read back from a
// presented token, so there is no algorithm-confusion path: verification
// always recomputes HMAC-SHA256 under the server secret.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// fixedHeader is the only header ever produced or accepted.
const fixedHeader = `{"alg":"HS256","typ":"JWT"}`

// Claims is the payload carried by a token. Exp is always set by Issue,
// overwriting any caller-supplied value.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Exp    int64  `json:"exp"`
}

// Codec issues and verifies tokens under a single secret key.
type Codec struct {
	secret []byte
	log    zerolog.Logger
	now    func() time.Time
}

// NewCodec returns a Codec signing with the given secret.
func NewCodec(secret string, log zerolog.Logger) *Codec {
	return &Codec{
		secret: []byte(secret),
		log:    log,
		now:    time.Now,
	}
}

// Issue serializes claims into a signed token valid for ttl.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (string, error) {
	claims.Exp = c.now().Add(ttl).Unix()

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString([]byte(fixedHeader)) + "." + enc.EncodeToString(payload)
	return signingInput + "." + enc.EncodeToString(c.sign(signingInput)), nil
}

// Verify checks a presented token and returns its claims. Every failure
// mode — malformed structure, bad signature, undecodable payload, missing
// or past expiry — collapses to ok=false; the cause is logged internally
// and never surfaced to the caller.
func (c *Codec) Verify(tok string) (Claims, bool) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		c.log.Warn().Msg("token: malformed structure")
		return Claims{}, false
	}

	enc := base64.RawURLEncoding
	expected := enc.EncodeToString(c.sign(parts[0] + "." + parts[1]))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		c.log.Warn().Msg("token: signature mismatch")
		return Claims{}, false
	}

	payload, err := enc.DecodeString(parts[1])
	if err != nil {
		c.log.Warn().Msg("token: undecodable payload")
		return Claims{}, false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		c.log.Warn().Msg("token: invalid payload json")
		return Claims{}, false
	}

	if claims.Exp <= c.now().Unix() {
		c.log.Warn().Msg("token: expired")
		return Claims{}, false
	}

	return claims, true
}

func (c *Codec) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}
