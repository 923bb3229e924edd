package session

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRole is assumed when the token carries no role claim.
const DefaultRole = "CUSTOMER"

// Identity is the user record decoded from the token payload. It is advisory,
// for UI personalization only: the signature is never verified client-side,
// so nothing here may gate authorization. Only the server can do that.
type Identity struct {
	ID       int64
	Email    string
	FullName string
	Phone    string
	Role     string
}

// decodeIdentity extracts an Identity from the token's payload segment
// without verifying the signature. Backends disagree on claim names, so each
// field falls back through the variants seen in the wild: id comes from
// userId, id, or a numeric sub; email from email or sub; fullName from
// fullName or name.
func decodeIdentity(token string) (*Identity, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	id := &Identity{Role: DefaultRole}

	if v, ok := claimInt64(claims, "userId"); ok {
		id.ID = v
	} else if v, ok := claimInt64(claims, "id"); ok {
		id.ID = v
	} else if v, ok := claimInt64(claims, "sub"); ok {
		id.ID = v
	}

	if v, ok := claimString(claims, "email"); ok {
		id.Email = v
	} else if v, ok := claimString(claims, "sub"); ok {
		id.Email = v
	}

	if v, ok := claimString(claims, "fullName"); ok {
		id.FullName = v
	} else if v, ok := claimString(claims, "name"); ok {
		id.FullName = v
	}

	if v, ok := claimString(claims, "phone"); ok {
		id.Phone = v
	}
	if v, ok := claimString(claims, "role"); ok && v != "" {
		id.Role = v
	}

	return id, nil
}

func claimString(claims jwt.MapClaims, key string) (string, bool) {
	v, ok := claims[key].(string)
	return v, ok
}

// claimInt64 reads a numeric claim. JSON numbers decode as float64; string
// claims holding digits (a numeric sub) are accepted too.
func claimInt64(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
