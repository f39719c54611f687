package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siamcode/standupstrip-backend/internal/users"
	"github.com/siamcode/standupstrip-backend/pkg/auth"
	"github.com/siamcode/standupstrip-backend/pkg/config"
	"github.com/siamcode/standupstrip-backend/pkg/db/models"
	pkgerrors "github.com/siamcode/standupstrip-backend/pkg/errors"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/mailer"
	"github.com/siamcode/standupstrip-backend/pkg/security"
)

const minPasswordLength = 8

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, msg mailer.Message) bool
}

// Service covers signup, credential checks and email verification.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*users.UserDTO, error)
}

type service struct {
	db       txRunner
	users    usersRepository
	mail     mailEnqueuer
	logg     *logger.Logger
	jwt      config.JWTConfig
	password config.PasswordConfig
	flags    config.FeatureFlagsConfig
	frontend config.FrontendConfig
	now      func() time.Time
}

// ServiceParams bundles the auth service dependencies.
type ServiceParams struct {
	DB        txRunner
	UsersRepo usersRepository

	// Mail enqueues verification emails. Nil means mail is not configured;
	// accounts are then created pre-verified.
	Mail   mailEnqueuer
	Logger *logger.Logger

	JWT      config.JWTConfig
	Password config.PasswordConfig
	Flags    config.FeatureFlagsConfig
	Frontend config.FrontendConfig

	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
}

// NewService builds an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.UsersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:       params.DB,
		users:    params.UsersRepo,
		mail:     params.Mail,
		logg:     params.Logger,
		jwt:      params.JWT,
		password: params.Password,
		flags:    params.Flags,
		frontend: params.Frontend,
		now:      now,
	}, nil
}

// Register creates an account and mints the first access token. When mail is
// configured the account starts unverified and a verification email goes out
// after the commit; without mail the account is verified immediately.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var verificationToken *string
	if s.mail != nil {
		token, err := security.GenerateVerificationToken()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
		}
		verificationToken = &token
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}

		created, err = repo.Create(ctx, users.CreateUserDTO{
			Email:             email,
			PasswordHash:      hash,
			Name:              name,
			EmailVerified:     verificationToken == nil,
			VerificationToken: verificationToken,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if verificationToken != nil {
		s.sendVerificationEmail(ctx, created, *verificationToken)
	}

	return s.respondWithToken(created)
}

// Login checks credentials and stamps the login time. Lookup and password
// failures share one message so callers cannot probe for accounts.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	if s.flags.RequireVerifiedEmail && !user.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "email not verified, check your inbox")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "stamp last login failed")
	}

	return s.respondWithToken(user)
}

// VerifyEmail consumes an outstanding verification token.
func (s *service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification token is required")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		user, err := repo.FindByVerificationToken(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification token")
		}
		if err := repo.MarkEmailVerified(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark email verified")
		}
		return nil
	})
}

// ResendVerification issues a fresh token and emails it again.
func (s *service) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	if s.mail == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "email delivery is not configured")
	}

	token, err := security.GenerateVerificationToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		user, err = repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if user.EmailVerified {
			return pkgerrors.New(pkgerrors.CodeValidation, "email is already verified")
		}
		if err := repo.ResetVerificationToken(ctx, user.ID, token); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset verification token")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.sendVerificationEmail(ctx, user, token)
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return users.FromModel(user), nil
}

// UpdateProfile renames the authenticated user and returns the fresh profile.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*users.UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var updated *models.User
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if err := repo.UpdateName(ctx, user.ID, name); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update name")
		}
		user.Name = name
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(updated), nil
}

func (s *service) respondWithToken(user *models.User) (*AuthResponse, error) {
	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AuthResponse{Token: token, User: *users.FromModel(user)}, nil
}

func (s *service) sendVerificationEmail(ctx context.Context, user *models.User, token string) {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(s.frontend.BaseURL, "/"), token)
	body := fmt.Sprintf(`<h2>Welcome to StandUpStrip, %s!</h2>
<p>Confirm your email address to finish setting up your account.</p>
<p><a href="%s">Verify your email</a></p>`,
		user.Name, verifyURL)

	queued := s.mail.Enqueue(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Verify your StandUpStrip email",
		HTML:    body,
		Kind:    "verification",
	})
	if !queued {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "verification email not queued")
	}
}
