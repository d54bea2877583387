package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/teacher-eval-api/internal/models"
	"github.com/noah-isme/teacher-eval-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-eval-api/pkg/errors"
)

// BootstrapUserID identifies the synthetic super admin behind the bootstrap credential.
const BootstrapUserID = "bootstrap_admin"

// UserConfig carries account defaults.
type UserConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
	DefaultPassword   string
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

// UserService handles account management and credential checks.
type UserService struct {
	users        repository.Collection[models.User]
	institutions repository.Collection[models.Institution]
	validator    *validator.Validate
	logger       *zap.Logger
	config       UserConfig
	now          func() time.Time
}

// NewUserService creates an instance of UserService.
func NewUserService(users repository.Collection[models.User], institutions repository.Collection[models.Institution], validate *validator.Validate, logger *zap.Logger, config UserConfig) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.HashCost == 0 {
		config.HashCost = bcrypt.DefaultCost
	}
	return &UserService{
		users:        users,
		institutions: institutions,
		validator:    validate,
		logger:       logger,
		config:       config,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateInitialAdmin stores the first super admin. Callers check that no users exist.
func (s *UserService) CreateInitialAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &models.User{
		ID:           newID(prefixUser),
		Email:        normalizeEmail(email),
		Name:         name,
		Role:         models.RoleSuperAdmin,
		Approved:     true,
		PasswordHash: hash,
		ClassGroups:  models.StringList{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, storeError(err, "user not found", "failed to create administrator")
	}
	s.logger.Info("initial administrator created", zap.String("user_id", user.ID))
	return user, nil
}

// Login returns the matching user, or nil without error when nothing matches.
// The bootstrap credential is checked before storage is consulted.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if s.isBootstrap(email, password) {
		return s.bootstrapUser(), nil
	}

	user, err := s.users.FindOne(ctx, repository.Eq("email", email))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeError(err, "user not found", "failed to fetch user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

// AddStudent creates a student account with default credentials.
func (s *UserService) AddStudent(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	return s.addMember(ctx, models.RoleStudent, req)
}

// AddTeacher creates a teacher account with default credentials.
func (s *UserService) AddTeacher(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	return s.addMember(ctx, models.RoleTeacher, req)
}

// AddClassHead creates a class head account with default credentials.
func (s *UserService) AddClassHead(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	return s.addMember(ctx, models.RoleClassHead, req)
}

// AddManager creates an institution manager account with default credentials.
func (s *UserService) AddManager(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	return s.addMember(ctx, models.RoleInstitutionManager, req)
}

func (s *UserService) addMember(ctx context.Context, role models.UserRole, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	email := normalizeEmail(req.Email)

	if _, err := s.institutions.Get(ctx, req.InstitutionID); err != nil {
		return nil, storeError(err, "institution not found", "failed to load institution")
	}
	if err := s.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hash(s.config.DefaultPassword)
	if err != nil {
		return nil, err
	}

	institutionID := req.InstitutionID
	now := s.now()
	user := &models.User{
		ID:                 newID(prefixUser),
		Email:              email,
		Name:               req.Name,
		Role:               role,
		InstitutionID:      &institutionID,
		Approved:           true,
		PasswordHash:       hash,
		MustChangePassword: true,
		ClassGroups:        models.StringList{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	switch role {
	case models.RoleStudent:
		user.Course = req.Course
		user.Level = req.Level
		if req.ClassGroups != nil {
			user.ClassGroups = req.ClassGroups
		}
	case models.RoleTeacher:
		user.Category = req.Category
	case models.RoleClassHead, models.RoleInstitutionManager:
		user.Department = req.Department
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, storeError(err, "user not found", "failed to create user")
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// PromoteToClassHead changes a student's role in place.
func (s *UserService) PromoteToClassHead(ctx context.Context, id string, req models.PromoteRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid promotion payload")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only students can be promoted")
	}
	user.Role = models.RoleClassHead
	user.Department = req.Department
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user not found", "failed to promote user")
	}
	return user, nil
}

// ApproveUser marks an account as approved.
func (s *UserService) ApproveUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Approved = true
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user not found", "failed to approve user")
	}
	return user, nil
}

// ListUsers returns users matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var conds []repository.Condition
	if filter.InstitutionID != "" {
		conds = append(conds, repository.Eq("institution_id", filter.InstitutionID))
	}
	if filter.Role != "" {
		conds = append(conds, repository.Eq("role", filter.Role))
	}
	users, err := s.users.List(ctx, conds...)
	if err != nil {
		return nil, storeError(err, "user not found", "failed to list users")
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if id == BootstrapUserID {
		return s.bootstrapUser(), nil
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "user not found", "failed to load user")
	}
	return user, nil
}

// DeleteUser hard deletes an account. Subjects and responses referencing it are kept.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError(err, "user not found", "failed to delete user")
	}
	return nil
}

// SetPassword replaces the stored hash and clears the change-password flag.
func (s *UserService) SetPassword(ctx context.Context, id, password string) error {
	if id == BootstrapUserID {
		return appErrors.Clone(appErrors.ErrForbidden, "bootstrap credential cannot be changed")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.MustChangePassword = false
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return storeError(err, "user not found", "failed to update password")
	}
	return nil
}

// CountUsers reports how many accounts are stored.
func (s *UserService) CountUsers(ctx context.Context) (int, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return 0, storeError(err, "user not found", "failed to count users")
	}
	return count, nil
}

func (s *UserService) ensureEmailAvailable(ctx context.Context, email string) error {
	_, err := s.users.FindOne(ctx, repository.Eq("email", email))
	switch {
	case err == nil:
		return appErrors.Clone(appErrors.ErrConflict, "email already exists")
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return storeError(err, "user not found", "failed to check email uniqueness")
	}
}

func (s *UserService) isBootstrap(email, password string) bool {
	if s.config.BootstrapEmail == "" || s.config.BootstrapPassword == "" {
		return false
	}
	return email == normalizeEmail(s.config.BootstrapEmail) &&
		subtle.ConstantTimeCompare([]byte(password), []byte(s.config.BootstrapPassword)) == 1
}

func (s *UserService) bootstrapUser() *models.User {
	return &models.User{
		ID:          BootstrapUserID,
		Email:       normalizeEmail(s.config.BootstrapEmail),
		Name:        "Super Admin",
		Role:        models.RoleSuperAdmin,
		Approved:    true,
		ClassGroups: models.StringList{},
	}
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.HashCost)
	if err != nil {
		return "", appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash password")
	}
	return string(hash), nil
}
