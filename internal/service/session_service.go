package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

type accountService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	CreateInitialAdmin(ctx context.Context, email, password, name string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (*models.User, error)
	SetPassword(ctx context.Context, id, password string) error
}

type storeProbe interface {
	Ping(ctx context.Context) error
	Mode() repository.Mode
}

// SessionConfig defines token issuing parameters.
type SessionConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// SessionService drives first-run setup, login, logout and password changes.
type SessionService struct {
	accounts  accountService
	sessions  repository.Collection[models.Session]
	probe     storeProbe
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionConfig
	now       func() time.Time
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(accounts accountService, sessions repository.Collection[models.Session], probe storeProbe, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiry <= 0 {
		config.Expiry = 12 * time.Hour
	}
	return &SessionService{
		accounts:  accounts,
		sessions:  sessions,
		probe:     probe,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// State evaluates the bootstrap state: storage reachability first, then user count.
func (s *SessionService) State(ctx context.Context) models.SetupStatus {
	mode := string(s.probe.Mode())
	if err := s.probe.Ping(ctx); err != nil {
		s.logger.Warn("storage probe failed", zap.Error(err))
		return models.SetupStatus{State: models.SetupTableError, Mode: mode, Message: err.Error()}
	}
	count, err := s.accounts.CountUsers(ctx)
	if err != nil {
		s.logger.Warn("user count failed", zap.Error(err))
		return models.SetupStatus{State: models.SetupTableError, Mode: mode, Message: err.Error()}
	}
	if count == 0 {
		return models.SetupStatus{State: models.SetupEmpty, Mode: mode}
	}
	return models.SetupStatus{State: models.SetupNormal, Mode: mode}
}

// Setup creates the sole super admin. It is only allowed while no users exist.
func (s *SessionService) Setup(ctx context.Context, req models.SetupRequest) (*models.UserView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid setup payload")
	}
	switch status := s.State(ctx); status.State {
	case models.SetupTableError:
		return nil, appErrors.Clone(appErrors.ErrStorageUnavailable, status.Message)
	case models.SetupNormal:
		return nil, appErrors.Clone(appErrors.ErrConflict, "setup already completed")
	}

	user, err := s.accounts.CreateInitialAdmin(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// Login authenticates the credentials and opens a session.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	session := &models.Session{ID: newID(prefixSession), UserID: user.ID, CreatedAt: s.now()}
	if err := s.sessions.Insert(ctx, session); err != nil {
		if user.ID != BootstrapUserID {
			return nil, storeError(err, "session not found", "failed to open session")
		}
		s.logger.Warn("bootstrap session not persisted", zap.Error(err))
	}

	resp, err := s.issue(user, session.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return resp, nil
}

// Logout ends the session carried by the claims. Ending an unknown session is a no-op.
func (s *SessionService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil && !isNotFound(err) {
		return storeError(err, "session not found", "failed to end session")
	}
	return nil
}

// ChangePassword stores a new password and returns a token without the
// change-password requirement for the same session.
func (s *SessionService) ChangePassword(ctx context.Context, claims *models.JWTClaims, req models.ChangePasswordRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "password must have at least 6 characters and match its confirmation")
	}
	if err := s.accounts.SetPassword(ctx, claims.UserID, req.NewPassword); err != nil {
		return nil, err
	}
	user, err := s.accounts.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issue(user, claims.SessionID)
}

// Me returns the user behind the claims.
func (s *SessionService) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserView, error) {
	user, err := s.accounts.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// ValidateToken parses an access token and checks that its session is still open.
func (s *SessionService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	if _, err := s.sessions.Get(ctx, claims.SessionID); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has ended")
		}
		// The bootstrap account keeps working while storage is down.
		if claims.UserID == BootstrapUserID {
			return claims, nil
		}
		return nil, storeError(err, "session not found", "failed to load session")
	}
	return claims, nil
}

func (s *SessionService) issue(user *models.User, sessionID string) (*models.LoginResponse, error) {
	issuedAt := s.now()
	institutionID := ""
	if user.InstitutionID != nil {
		institutionID = *user.InstitutionID
	}
	claims := &models.JWTClaims{
		UserID:             user.ID,
		SessionID:          sessionID,
		Role:               user.Role,
		Email:              user.Email,
		InstitutionID:      institutionID,
		MustChangePassword: user.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken:        signed,
		ExpiresIn:          int64(s.config.Expiry.Seconds()),
		MustChangePassword: user.MustChangePassword,
		User:               user.View(),
		IssuedAt:           issuedAt,
	}, nil
}
