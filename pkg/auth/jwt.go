package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sdn-controller/pkg/model"
)

var ErrInvalid = errors.New("invalid token")

const defaultSecret = "change-me-secret"

type Claims struct {
	OperatorID uint   `json:"oid"`
	Username   string `json:"username"`
	ReadOnly   bool   `json:"ro,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies operator bearer tokens.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	if secret == "" {
		secret = defaultSecret
	}
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Generate(op model.Operator, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		OperatorID: op.ID,
		Username:   op.Username,
		ReadOnly:   op.ReadOnly,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalid
	}
	if claims, ok := token.Claims.(*Claims); ok {
		return claims, nil
	}
	return nil, ErrInvalid
}
