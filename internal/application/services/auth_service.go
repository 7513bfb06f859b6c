package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/config"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// SessionClaims is the payload of the signed session cookie. The token ID
// names the server-side session row.
type SessionClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// IssuedSession is a freshly started session and its cookie value
type IssuedSession struct {
	Token     string
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo    ports.UserRepository
	sessionRepo ports.SessionRepository
	sessionCfg  config.SessionConfig
	bcryptCost  int
	logger      *logger.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, sessionRepo ports.SessionRepository, sessionCfg config.SessionConfig, bcryptCost int, logger *logger.Logger) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sessionCfg:  sessionCfg,
		bcryptCost:  bcryptCost,
		logger:      logger.WithComponent("auth"),
		now:         time.Now,
	}
}

// Register creates a new account and signs it in
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*entities.User, *IssuedSession, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, nil, entities.Validation(req.ValidationMessage())
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, entities.ErrUserExists
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	s.logger.Infow("User registered successfully", "user_id", user.ID, "username", user.Username)

	issued, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, issued, nil
}

// Login authenticates by username or email and starts a session
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*entities.User, *IssuedSession, error) {
	user, err := s.userRepo.GetByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			s.logger.Warnw("Login attempt with unknown account", "login", req.Username)
			return nil, nil, entities.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warnw("Login attempt with invalid password", "user_id", user.ID)
		return nil, nil, entities.ErrInvalidCredentials
	}

	issued, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infow("User logged in successfully", "user_id", user.ID)
	return user, issued, nil
}

// Logout ends the session behind token. Unknown or malformed tokens are
// ignored so logging out twice succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	sid, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, sid); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.logger.Infow("User logged out", "user_id", claims.UserID)
	return nil
}

// Authenticate resolves a session cookie to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, entities.ErrSessionNotFound
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, entities.ErrSessionNotFound
	}
	sid, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, entities.ErrSessionNotFound
	}

	session, err := s.sessionRepo.GetByID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID || session.IsExpired(s.now()) {
		return nil, entities.ErrSessionNotFound
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}

// HashPassword hashes a plaintext password with the configured cost
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CookieName returns the name of the session cookie
func (s *AuthService) CookieName() string {
	return s.sessionCfg.CookieName
}

// SecureCookies reports whether cookies must carry the Secure attribute
func (s *AuthService) SecureCookies() bool {
	return s.sessionCfg.Secure
}

func (s *AuthService) startSession(ctx context.Context, userID int64) (*IssuedSession, error) {
	now := s.now().UTC()
	session := &entities.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionCfg.TTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			Issuer:    s.sessionCfg.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.sessionCfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &IssuedSession{Token: token, SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

func (s *AuthService) parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.sessionCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.sessionCfg.Issuer))
	}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.sessionCfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
