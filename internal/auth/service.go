package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bsthardware/storefront-backend/internal/activity"
	"github.com/bsthardware/storefront-backend/internal/users"
	pkgAuth "github.com/bsthardware/storefront-backend/pkg/auth"
	"github.com/bsthardware/storefront-backend/pkg/config"
	"github.com/bsthardware/storefront-backend/pkg/db"
	"github.com/bsthardware/storefront-backend/pkg/db/models"
	"github.com/bsthardware/storefront-backend/pkg/enums"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

const (
	invalidCredentialsMessage      = "Invalid credentials."
	invalidAdminCredentialsMessage = "Invalid admin credentials"
	missingFieldsMessage           = "Missing required fields"
	missingLoginFieldsMessage      = "Username and password are required"
	consentRequiredMessage         = "You must agree to the Terms and Conditions and Privacy Policy"
	duplicateUserMessage           = "Username or email already exists"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error)
	Logout(ctx context.Context, tokenID string) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type adminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type activityRecorder interface {
	RecordLogin(ctx context.Context, entry activity.LoginEntry) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// rehasher is implemented by hashers whose cost settings can change.
type rehasher interface {
	NeedsRehash(encoded string) bool
}

// sessionManager is optional; without it tokens live until they expire.
type sessionManager interface {
	Register(ctx context.Context, accessID, subjectID string) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	AdminRepo      adminRepository
	Activity       activityRecorder
	Hasher         passwordHasher
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	users    userRepository
	admins   adminRepository
	activity activityRecorder
	hasher   passwordHasher
	session  sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.AdminRepo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.UserRepo,
		admins:   params.AdminRepo,
		activity: params.Activity,
		hasher:   params.Hasher,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.TrimSpace(req.Name)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, missingFieldsMessage)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please provide a valid email address.").
			WithDetails(map[string]string{"email": "must be a valid email"})
	}
	if !req.Consent {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, consentRequiredMessage)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing user")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateUserMessage)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateUserMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return &SignupResponse{
		Message: "User registered successfully",
		User:    users.FromModel(user),
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	identity, err := loginIdentity(req)
	if err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if err := s.checkPassword(req.Password, user.PasswordHash, invalidCredentialsMessage); err != nil {
		return nil, err
	}
	s.upgradeHash(ctx, s.users.UpdatePasswordHash, user.ID, req.Password, user.PasswordHash)

	token, err := s.issue(ctx, user.ID, enums.RoleUser)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, user.ID, user.Username, enums.RoleUser, req.IP)

	return &LoginResponse{
		Message: "Login successful",
		Token:   token,
		User: Identity{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     enums.RoleUser,
		},
	}, nil
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error) {
	identity, err := loginIdentity(req)
	if err != nil {
		return nil, err
	}

	admin, err := s.findAdmin(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidAdminCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}
	if err := s.checkPassword(req.Password, admin.PasswordHash, invalidAdminCredentialsMessage); err != nil {
		return nil, err
	}
	s.upgradeHash(ctx, s.admins.UpdatePasswordHash, admin.ID, req.Password, admin.PasswordHash)

	token, err := s.issue(ctx, admin.ID, enums.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, admin.ID, admin.Username, enums.RoleAdmin, req.IP)

	return &AdminLoginResponse{
		Message: "Admin login successful",
		Token:   token,
		Admin: Identity{
			ID:       admin.ID,
			Username: admin.Username,
			Email:    admin.Email,
			Role:     enums.RoleAdmin,
		},
	}, nil
}

// Logout revokes the presented token when a session registry is configured.
func (s *service) Logout(ctx context.Context, tokenID string) error {
	if s.session == nil || strings.TrimSpace(tokenID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, tokenID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func loginIdentity(req LoginRequest) (string, error) {
	identity := strings.TrimSpace(req.Email)
	if identity == "" {
		identity = strings.TrimSpace(req.Username)
	}
	if identity == "" || req.Password == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, missingLoginFieldsMessage)
	}
	return identity, nil
}

func (s *service) findUser(ctx context.Context, identity string) (*models.User, error) {
	if strings.Contains(identity, "@") {
		return s.users.FindByEmail(ctx, strings.ToLower(identity))
	}
	return s.users.FindByUsername(ctx, identity)
}

func (s *service) findAdmin(ctx context.Context, identity string) (*models.Admin, error) {
	if strings.Contains(identity, "@") {
		return s.admins.FindByEmail(ctx, strings.ToLower(identity))
	}
	return s.admins.FindByUsername(ctx, identity)
}

func (s *service) checkPassword(password, encoded, failMessage string) error {
	valid, err := s.hasher.Verify(password, encoded)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, failMessage)
	}
	return nil
}

// upgradeHash re-hashes a verified password stored under older argon2
// settings. Failures are logged and never block the login.
func (s *service) upgradeHash(ctx context.Context, save func(context.Context, uuid.UUID, string) error, id uuid.UUID, password, encoded string) {
	rh, ok := s.hasher.(rehasher)
	if !ok || !rh.NeedsRehash(encoded) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = save(ctx, id, hash)
	}
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "subject_id", id.String()), "auth.rehash_failed", err)
	}
}

func (s *service) issue(ctx context.Context, subjectID uuid.UUID, role enums.Role) (string, error) {
	accessID := uuid.NewString()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		ID:   subjectID,
		Role: role,
		JTI:  accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if s.session != nil {
		if err := s.session.Register(ctx, accessID, subjectID.String()); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session")
		}
	}
	return token, nil
}

// recordLogin never fails the login.
func (s *service) recordLogin(ctx context.Context, subjectID uuid.UUID, username string, role enums.Role, ip string) {
	if s.activity == nil {
		return
	}
	err := s.activity.RecordLogin(ctx, activity.LoginEntry{
		SubjectID: subjectID,
		Username:  username,
		Role:      role,
		IP:        ip,
	})
	if err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"subject_id": subjectID.String(), "role": role.String()})
		s.logg.Error(logCtx, "auth.activity_record_failed", err)
	}
}
