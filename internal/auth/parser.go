package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"traffic-service/internal/model"
)

const issuer = "traffic-service"

type Claims struct {
	UserID uuid.UUID      `json:"uid"`
	Role   model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Parser validates and issues HS256 access tokens with a shared secret.
type Parser struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewParser(secret string, ttl time.Duration) *Parser {
	return &Parser{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (p *Parser) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

func (p *Parser) Issue(userID uuid.UUID, role model.UserRole) (string, time.Time, error) {
	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
