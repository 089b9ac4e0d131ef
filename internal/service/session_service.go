package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnmyway/internal/cache"
	"learnmyway/internal/model"
	"learnmyway/internal/repository"
)

// SessionService handles scheduled live session records and the
// notifications that announce them.
type SessionService struct {
	sessionRepo  repository.SessionRepo
	sessionCache cache.SessionCache
	notifier     Notifier
	baseURL      string
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	sessionCache cache.SessionCache,
	notifier Notifier,
	baseURL string,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		sessionCache: sessionCache,
		notifier:     notifier,
		baseURL:      baseURL,
	}
}

// CreateSessionRequest is the input for scheduling a session.
type CreateSessionRequest struct {
	SessionName string `json:"sessionName"`
	Subject     string `json:"subject"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	TargetClass string `json:"targetClass"`
}

// CreateSession saves a new session record and notifies its target
// class, or everyone when the target is "All".
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest, createdBy string) (*model.Session, error) {
	if req.SessionName == "" {
		return nil, fmt.Errorf("session name required")
	}

	targetClass := req.TargetClass
	if targetClass == "" {
		targetClass = model.TargetAll
	}

	sessionID := "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]

	session := &model.Session{
		SessionID:     sessionID,
		SessionName:   req.SessionName,
		Subject:       req.Subject,
		Topic:         req.Topic,
		Description:   req.Description,
		JoinLink:      fmt.Sprintf("%s/join/%s", s.baseURL, sessionID),
		ScheduledTime: time.Now(),
		CreatedBy:     createdBy,
		TargetClass:   targetClass,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.sessionCache.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to cache session: %w", err)
	}

	s.notifier.Notify(session.TargetClass, session)

	return session, nil
}

// GetSession retrieves a session record, preferring the cache.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if session, err := s.sessionCache.Get(ctx, sessionID); err == nil && session != nil {
		return session, nil
	}
	return s.sessionRepo.GetBySessionID(ctx, sessionID)
}

// ListSessions returns all scheduled sessions.
func (s *SessionService) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.sessionRepo.List(ctx)
}
