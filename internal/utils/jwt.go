package utils // package utils provides helper functions for token creation and hashing

import (
    "encoding/json" // json.Number subject claims
    "errors"        // sentinel error for any token failure
    "strconv"       // string-to-int conversion for subject claims
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short‑lived and carried
// in the Authorization header when calling protected endpoints; there is no
// refresh mechanism and no server-side revocation, a token simply outlives
// its usefulness at Exp.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is the only failure ever surfaced by ParseSubject.  A
// malformed token, a bad signature, an unexpected signing algorithm and an
// expired token all collapse into this one value so a caller (and therefore
// a client probing the API) cannot distinguish the cases.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID and a TTL in minutes, and returns an
// AccessToken containing the signed token and its expiration time.  The JWT
// carries only the standard claims: subject (sub), expiration (exp) and
// issued at (iat).  The caller's role is deliberately not embedded; the
// authentication middleware loads the live user row on every request, so a
// role change would take effect immediately rather than at token expiry.
func NewAccessToken(secret string, userID uint64, ttlMin int) (AccessToken, error) {
    // Calculate the expiration time by adding the TTL to the current UTC time.
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub": userID,
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    // Sign the token with the provided secret and obtain the string form.  If
    // signing fails, return the error and a zero AccessToken.
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseSubject verifies raw against the signing secret and returns the user
// ID embedded in the subject claim.  Verification and extraction are a single
// operation on purpose: there is no way to read claims out of a token that
// has not passed signature and expiry checks.  Every failure mode returns
// ErrInvalidToken.
func ParseSubject(secret, raw string) (uint64, error) {
    // WithJSONNumber keeps numeric claims as decimal strings.  Decoding the
    // subject through float64 would silently corrupt ids above 2^53.
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Only HMAC is acceptable; reject tokens claiming other algorithms.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, jwt.WithJSONNumber())
    if err != nil || !tok.Valid {
        return 0, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, ErrInvalidToken
    }
    // Numeric subjects arrive as json.Number; tolerate a stringified id too.
    switch sub := claims["sub"].(type) {
    case json.Number:
        id, perr := strconv.ParseUint(sub.String(), 10, 64)
        if perr != nil {
            return 0, ErrInvalidToken
        }
        return id, nil
    case string:
        id, perr := strconv.ParseUint(sub, 10, 64)
        if perr != nil {
            return 0, ErrInvalidToken
        }
        return id, nil
    default:
        return 0, ErrInvalidToken
    }
}
