package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/careerlens/careerlens/pkg/errx"
	"github.com/careerlens/careerlens/pkg/kernel"
)

// Role distinguishes candidate sessions from recruiter sessions
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// Claims is the validated identity carried by a session token
type Claims struct {
	UserID    kernel.UserID
	Email     kernel.Email
	Role      Role
	ExpiresAt time.Time
}

// TokenService issues and validates session tokens
type TokenService interface {
	GenerateToken(userID kernel.UserID, email kernel.Email, role Role) (string, error)
	ValidateToken(token string) (*Claims, error)
}

// JWTService implements TokenService with HS256 JWTs
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewJWTService creates a token service with the given signing secret
func NewJWTService(secret string, ttl time.Duration, issuer string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
	}
}

// GenerateToken issues a signed session token
func (s *JWTService) GenerateToken(userID kernel.UserID, email kernel.Email, role Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email.String(),
		"role":  string(role),
		"iss":   s.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errx.Wrap(err, "failed to sign session token", errx.TypeInternal)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errx.Wrap(err, "invalid session token", errx.TypeAuthentication)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errx.Wrap(nil, "invalid session token claims", errx.TypeAuthentication)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errx.Wrap(err, "session token has no expiry", errx.TypeAuthentication)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &Claims{
		UserID:    kernel.NewUserID(sub),
		Email:     kernel.NewEmail(email),
		Role:      Role(role),
		ExpiresAt: exp.Time,
	}, nil
}
