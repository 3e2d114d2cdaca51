package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maisonlux/ateliergo/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// HashPIN hashes a login PIN using bcrypt
func HashPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), 10)
	return string(bytes), err
}

// CheckPIN compares a PIN with its stored hash
func CheckPIN(pin, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}

// ActorClaims is the identity carried in the token and stamped into
// history and log entries as performedBy/author.
type ActorClaims struct {
	MemberID string
	Name     string
	Role     string
}

// GenerateToken mints an access token for a staff member
func GenerateToken(member *models.Member, secret string) (string, error) {
	claims := jwt.MapClaims{
		"id":   member.ID,
		"name": member.Name,
		"role": member.Role,
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies a token, returning the actor identity
func ValidateToken(tokenString, secret string) (*ActorClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	actor := &ActorClaims{}
	if id, ok := claims["id"].(string); ok {
		actor.MemberID = id
	}
	if name, ok := claims["name"].(string); ok {
		actor.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		actor.Role = role
	}
	if actor.MemberID == "" {
		return nil, errors.New("token carries no member id")
	}
	return actor, nil
}
