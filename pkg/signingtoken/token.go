// Package signingtoken encodes and decodes the signed payload embedded
// in recipient signing links. A link that fails to decode, or whose
// token has expired, resolves to the token_invalid access state rather
// than an HTTP error.
package signingtoken

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("signing token invalid or expired")

// Claims is the token body a signing link carries.
type Claims struct {
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName,omitempty"`
	DocumentID     string `json:"documentId,omitempty"`
	jwt.RegisteredClaims
}

// Link is the parsed form of a recipient signing URL's query contract.
type Link struct {
	Recipient string
	CheckID   string
	Token     string
	IsClose   bool
}

// Encode signs a link token for one recipient, valid for ttl.
func Encode(secret []byte, email, name, documentID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RecipientEmail: email,
		RecipientName:  name,
		DocumentID:     documentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Decode verifies a link token and recovers its claims. Every failure
// mode (bad signature, malformed payload, expiry) maps to
// ErrInvalidToken; callers do not distinguish them.
func Decode(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.RecipientEmail == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseLink extracts the signing-link query contract from a URL.
func ParseLink(raw string) (Link, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Link{}, err
	}
	q := u.Query()
	isClose, _ := strconv.ParseBool(q.Get("isClose"))
	return Link{
		Recipient: q.Get("recipient"),
		CheckID:   q.Get("checkId"),
		Token:     q.Get("token"),
		IsClose:   isClose,
	}, nil
}
