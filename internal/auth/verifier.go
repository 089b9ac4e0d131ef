package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learnmyway/internal/model"
	"learnmyway/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUnknownUser  = errors.New("user not found")
)

// Verifier resolves an opaque credential into a verified identity.
// The broker depends only on this interface.
type Verifier interface {
	Verify(ctx context.Context, credential string) (model.Identity, error)
}

// Claims are the JWT claims carried by a client credential.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenVerifier validates a signed token and looks up the user record
// behind it. Role and class assignment come from the stored record, not
// from the token.
type TokenVerifier struct {
	secret []byte
	users  repository.UserRepo
}

func NewTokenVerifier(secret string, users repository.UserRepo) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		users:  users,
	}
}

func (v *TokenVerifier) Verify(ctx context.Context, credential string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return model.Identity{}, ErrInvalidToken
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return model.Identity{}, ErrUnknownUser
	}

	role := user.Role
	if role == "" {
		role = model.RoleUnknown
	}

	return model.Identity{
		UserID:          user.ID,
		Role:            role,
		ClassAssignment: user.Class,
	}, nil
}

// IssueToken signs a credential for a user ID. Used by the register
// endpoint and by tests.
func (v *TokenVerifier) IssueToken(userID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
