package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 24 * time.Hour

// AuthService issues tokens for the management API. There is a single admin
// identity whose bcrypt password hash comes from configuration; no user
// accounts exist server-side.
type AuthService interface {
	Login(name, password string) (string, error)
}

type authService struct {
	adminName    string
	passwordHash string
	jwtSecret    []byte
}

func NewAuthService(adminName, passwordHash, jwtSecret string) AuthService {
	return &authService{
		adminName:    adminName,
		passwordHash: passwordHash,
		jwtSecret:    []byte(jwtSecret),
	}
}

func (s *authService) Login(name, password string) (string, error) {
	if name != s.adminName {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":  name,
		"role": "admin",
		"exp":  time.Now().Add(adminTokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
