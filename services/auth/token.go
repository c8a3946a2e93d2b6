// Package auth issues and verifies the bearer tokens understood by the course gateway.
package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepath/core"
)

const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"

	audience = "CoursePath"
)

var (
	SigningMethod = jwt.SigningMethodHS256

	ErrInvalidToken = errors.New("invalid token")

	nowFunc = time.Now
)

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the student id.
type Claims struct {
	jwt.StandardClaims
	IsStudent bool     `json:"is_student,omitempty"`
	IsAdmin   bool     `json:"is_admin,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Issuer signs tokens with the server secret.
type Issuer struct {
	appName string
	secret  []byte
	ttl     time.Duration
}

func NewIssuer(conf *core.Config) *Issuer {
	return &Issuer{
		appName: conf.AppName,
		secret:  []byte(conf.Server.SecretKey),
		ttl:     conf.Server.JWTExpirationDelta,
	}
}

func (iss *Issuer) SigningKey() []byte { return iss.secret }

// NewClaims returns the claims of studentID; an empty studentID gets admin claims.
func (iss *Issuer) NewClaims(studentID string, admin bool) *Claims {
	now := nowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    iss.appName,
			Subject:   studentID,
			Audience:  audience,
			ExpiresAt: now.Add(iss.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsStudent: studentID != "",
		IsAdmin:   admin || studentID == "",
	}
	if claims.IsStudent {
		claims.Roles = append(claims.Roles, RoleStudent)
	}
	if claims.IsAdmin {
		claims.Roles = append(claims.Roles, RoleAdmin)
	}
	return claims
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (iss *Issuer) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(SigningMethod, claims)
	ss, err := token.SignedString(iss.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Token mints a token for studentID. Its signature matches remote.TokenFunc, which lets
// a development client talk to the reference gateway as any student.
func (iss *Issuer) Token(_ context.Context, studentID string) (string, error) {
	return iss.GenerateToken(iss.NewClaims(studentID, false))
}

// ParseToken verifies tokenString and returns its claims.
func (iss *Issuer) ParseToken(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != SigningMethod.Alg() {
			return nil, ErrInvalidToken
		}
		return iss.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
