package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/phrazzld/taskr-api/internal/redact"
	"github.com/phrazzld/taskr-api/internal/service/auth"
	"github.com/phrazzld/taskr-api/internal/store"
)

// Notifier delivers transactional messages. Implementations must not block
// the caller on delivery and must swallow their own failures.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string)
	SendCancellation(ctx context.Context, email, name string)
}

// AvatarProcessor validates an uploaded image and converts it to the stored
// avatar representation.
type AvatarProcessor interface {
	Process(filename string, data []byte) ([]byte, error)
}

// RegisterParams holds the fields accepted at sign-up.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UserService provides account, session and profile operations.
type UserService interface {
	// Register creates the account, issues its first token and sends a
	// welcome message.
	Register(ctx context.Context, params RegisterParams) (*domain.User, string, error)

	// FindByCredentials returns ErrInvalidCredentials for an unknown email and
	// for a wrong password alike.
	FindByCredentials(ctx context.Context, email, password string) (*domain.User, error)

	// Login verifies credentials and issues an additional token.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// IssueToken signs a new token for the user and appends it to the user's
	// active tokens.
	IssueToken(ctx context.Context, user *domain.User) (string, error)

	// RevokeToken removes exactly one occurrence of token.
	RevokeToken(ctx context.Context, userID uuid.UUID, token string) error

	// RevokeAllTokens ends every session of the user.
	RevokeAllTokens(ctx context.Context, userID uuid.UUID) error

	// Authenticate resolves a raw bearer token to its user. Every failure is
	// reported as ErrUnauthenticated.
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)

	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateProfile applies patch to the user's profile. Email conflicts are
	// reported as a validation error on the email field.
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch domain.UserPatch) (*domain.User, error)

	// DeleteAccount removes the user's tasks and then the user in one
	// transaction, and sends a cancellation message.
	DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	SetAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error
	ClearAvatar(ctx context.Context, userID uuid.UUID) error

	// GetAvatar returns ErrAvatarNotFound when the user or the avatar is absent.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// UserServiceDeps groups the collaborators of the user service.
type UserServiceDeps struct {
	Users      store.UserStore
	Tasks      store.TaskStore
	Transactor store.Transactor
	Tokens     auth.JWTService
	Hasher     auth.PasswordHasher
	Notifier   Notifier
	Avatars    AvatarProcessor
	Logger     *slog.Logger
}

type userServiceImpl struct {
	users      store.UserStore
	tasks      store.TaskStore
	transactor store.Transactor
	tokens     auth.JWTService
	hasher     auth.PasswordHasher
	notifier   Notifier
	avatars    AvatarProcessor
	logger     *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService.
// It returns an error if any required dependency is nil.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil")
	}
	if deps.Tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil")
	}
	if deps.Transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil")
	}
	if deps.Tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil")
	}
	if deps.Hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil")
	}
	if deps.Notifier == nil {
		return nil, domain.NewValidationError("notifier", "cannot be nil")
	}
	if deps.Avatars == nil {
		return nil, domain.NewValidationError("avatars", "cannot be nil")
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &userServiceImpl{
		users:      deps.Users,
		tasks:      deps.Tasks,
		transactor: deps.Transactor,
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		notifier:   deps.Notifier,
		avatars:    deps.Avatars,
		logger:     log.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, params RegisterParams) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(params.Name, params.Email, params.Password, params.Age)
	if err != nil {
		log.Debug("registration rejected", slog.String("error", err.Error()))
		return nil, "", err
	}

	if err := s.hashPassword(user); err != nil {
		return nil, "", err
	}

	var token string
	err = s.transactor.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		token, err = s.tokens.GenerateToken(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		return users.AddToken(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email", slog.String("email", user.Email))
			return nil, "", domain.NewValidationError("email", "is already registered")
		}
		log.Error("failed to register user", slog.String("error", redact.Error(err)))
		return nil, "", NewServiceError("register", "failed to create user", err)
	}
	user.Tokens = []string{token}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	s.notifier.SendWelcome(ctx, user.Email, user.Name)
	return user, token, nil
}

// FindByCredentials implements UserService.FindByCredentials
func (s *userServiceImpl) FindByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("login", "failed to look up user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("password comparison failed", slog.String("error", err.Error()))
		} else {
			log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login implements UserService.Login
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken implements UserService.IssueToken
func (s *userServiceImpl) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		log.Error("failed to generate token",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return "", NewServiceError("issue_token", "failed to generate token", err)
	}
	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		log.Error("failed to store token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		return "", NewServiceError("issue_token", "failed to store token", err)
	}
	user.Tokens = append(user.Tokens, token)

	log.Debug("token issued",
		slog.String("user_id", user.ID.String()),
		slog.Int("active_tokens", len(user.Tokens)))
	return token, nil
}

// RevokeToken implements UserService.RevokeToken
func (s *userServiceImpl) RevokeToken(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return NewServiceError("logout", "failed to revoke token", err)
	}
	return nil
}

// RevokeAllTokens implements UserService.RevokeAllTokens
func (s *userServiceImpl) RevokeAllTokens(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ClearTokens(ctx, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke all tokens",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return NewServiceError("logout_all", "failed to clear tokens", err)
	}
	return nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if rawToken == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokens.ValidateToken(ctx, rawToken)
	if err != nil {
		log.Debug("token rejected", slog.String("error", err.Error()))
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to load user for token", slog.String("error", redact.Error(err)))
		}
		return nil, ErrUnauthenticated
	}

	if !user.HasToken(rawToken) {
		log.Debug("token no longer active", slog.String("user_id", user.ID.String()))
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// ListUsers implements UserService.ListUsers
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users",
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("list_users", "failed to list users", err)
	}
	return users, nil
}

// UpdateProfile implements UserService.UpdateProfile
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	patch domain.UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := patch.Apply(user); err != nil {
			return err
		}
		if user.Password != "" {
			if err := s.hashPassword(user); err != nil {
				return err
			}
		}
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			log.Debug("profile update rejected", slog.String("error", err.Error()))
			return nil, err
		case errors.Is(err, store.ErrEmailExists):
			return nil, domain.NewValidationError("email", "is already registered")
		case store.IsNotFoundError(err):
			return nil, err
		}
		log.Error("failed to update profile",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("update_profile", "failed to update user", err)
	}

	log.Info("profile updated", slog.String("user_id", userID.String()))
	return updated, nil
}

// DeleteAccount implements UserService.DeleteAccount
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted *domain.User
	var removedTasks int64
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		removedTasks, err = s.tasks.WithTx(tx).DeleteAllByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if err := users.Delete(ctx, userID); err != nil {
			return err
		}
		deleted = user
		return nil
	})
	if err != nil {
		log.Error("failed to delete account",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("delete_account", "failed to delete user", err)
	}

	log.Info("account deleted",
		slog.String("user_id", userID.String()),
		slog.Int64("tasks_removed", removedTasks))
	s.notifier.SendCancellation(ctx, deleted.Email, deleted.Name)
	return deleted, nil
}

// SetAvatar implements UserService.SetAvatar
func (s *userServiceImpl) SetAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	avatar, err := s.avatars.Process(filename, data)
	if err != nil {
		log.Debug("avatar rejected",
			slog.String("error", err.Error()),
			slog.String("filename", filename))
		return err
	}

	if err := s.users.SetAvatar(ctx, userID, avatar); err != nil {
		log.Error("failed to store avatar",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return NewServiceError("set_avatar", "failed to store avatar", err)
	}

	log.Info("avatar stored",
		slog.String("user_id", userID.String()),
		slog.Int("bytes", len(avatar)))
	return nil
}

// ClearAvatar implements UserService.ClearAvatar
func (s *userServiceImpl) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear avatar",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return NewServiceError("clear_avatar", "failed to clear avatar", err)
	}
	return nil
}

// GetAvatar implements UserService.GetAvatar
func (s *userServiceImpl) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	avatar, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrAvatarNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load avatar",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("get_avatar", "failed to load avatar", err)
	}
	if len(avatar) == 0 {
		return nil, ErrAvatarNotFound
	}
	return avatar, nil
}

// hashPassword replaces the plaintext password with its hash.
func (s *userServiceImpl) hashPassword(user *domain.User) error {
	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return NewServiceError("hash_password", "failed to hash password", err)
	}
	user.HashedPassword = hash
	user.Password = ""
	return nil
}
