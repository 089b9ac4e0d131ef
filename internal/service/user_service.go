package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"learnmyway/internal/auth"
	"learnmyway/internal/model"
	"learnmyway/internal/repository"
)

const tokenTTL = 24 * time.Hour

// UserService handles user registration and lookups.
type UserService struct {
	userRepo repository.UserRepo
	tokens   *auth.TokenVerifier
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepo, tokens *auth.TokenVerifier) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RegisterRequest is the input for creating a user account.
type RegisterRequest struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	DOB   string     `json:"dob"`
	Class string     `json:"class"`
	Role  model.Role `json:"role"`
}

// Register creates a user record and returns it with a signed
// credential for the realtime handshake.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*model.User, string, error) {
	if req.Name == "" || req.Email == "" {
		return nil, "", fmt.Errorf("name and email required")
	}

	role := req.Role
	if role != model.RoleTeacher {
		role = model.RoleStudent
	}

	user := &model.User{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
		DOB:   req.DOB,
		Class: req.Class,
		Role:  role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.IssueToken(user.ID, tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListStudents returns students, optionally filtered by class.
func (s *UserService) ListStudents(ctx context.Context, class string) ([]*model.User, error) {
	return s.userRepo.ListByClass(ctx, class)
}
