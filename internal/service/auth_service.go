package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

const passwordField = "password"

// LoginResult carries an issued token and the logged in user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.Document
}

// AuthService coordinates login, signup and password flows.
type AuthService struct {
	resources  *ResourceService
	users      repository.DocumentStore
	creds      repository.CredentialsRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	Resources   *ResourceService
	Credentials repository.CredentialsRepository
	Tokens      *auth.TokenManager
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	users, err := deps.Resources.Store(domain.KindUser)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		resources:  deps.Resources,
		users:      users,
		creds:      deps.Credentials,
		tokenMgr:   deps.Tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger.With(zap.String("component", "auth_service")),
	}, nil
}

// Login authenticates an active user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.findByEmail(ctx, email, repository.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	creds, err := s.creds.GetByUserID(ctx, user.ID())
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(creds.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID(), domain.Role(user.String("role")))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Signup creates a user through the audited create path and stores its password hash.
func (s *AuthService) Signup(ctx context.Context, actor domain.Actor, payload domain.Document) (*Result, error) {
	password, _ := payload[passwordField].(string)
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	result, err := s.resources.Create(ctx, actor, domain.KindUser, payload.Without(passwordField))
	if err != nil {
		return nil, err
	}
	if err := s.creds.Upsert(ctx, &domain.Credentials{UserID: result.Document.ID(), PasswordHash: hash}); err != nil {
		s.logger.Error("store credentials", zap.String("user_id", result.Document.ID()), zap.Error(err))
		result.warn(WarningCredentialsWriteFailed, err)
	}
	return result, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Actor, currentPassword, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	creds, err := s.creds.GetByUserID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(creds.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.creds.Upsert(ctx, &domain.Credentials{UserID: actor.ID, PasswordHash: hash})
}

// EnsureAdmin creates the bootstrap admin unless a user with that email exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}
	if cfg.BootstrapAdminPass == "" {
		return errors.New("AUTH_BOOTSTRAP_ADMIN_PASSWORD is required with AUTH_BOOTSTRAP_ADMIN_EMAIL")
	}
	existing, err := s.findByEmail(ctx, cfg.BootstrapAdminEmail, repository.ReadOptions{IncludeInactive: true})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	result, err := s.Signup(ctx, domain.SystemActor(), domain.Document{
		"name":        cfg.BootstrapAdminName,
		"email":       cfg.BootstrapAdminEmail,
		"role":        string(domain.RoleAdmin),
		passwordField: cfg.BootstrapAdminPass,
	})
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created",
		zap.String("user_id", result.Document.ID()),
		zap.Int("warnings", len(result.Warnings)))
	return nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string, opts repository.ReadOptions) (domain.Document, error) {
	docs, err := s.users.Find(ctx, repository.Query{
		Filter: repository.Filter{"email": strings.ToLower(strings.TrimSpace(email))},
		Limit:  1,
	}, opts)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

func checkPassword(password string) error {
	if len(password) < auth.MinPasswordLength {
		return domain.NewValidationError(passwordField, "must be at least 8 characters")
	}
	return nil
}
