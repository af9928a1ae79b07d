package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/mocks"
	"github.com/phrazzld/taskr-api/internal/service"
	"github.com/phrazzld/taskr-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

type userFixture struct {
	users      *mocks.MockUserStore
	tasks      *mocks.MockTaskStore
	transactor *mocks.MockTransactor
	tokens     *mocks.MockJWTService
	hasher     *mocks.MockPasswordHasher
	notifier   *mocks.MockNotifier
	avatars    *mocks.MockAvatarProcessor
	svc        service.UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:      mocks.NewMockUserStore(),
		tasks:      mocks.NewMockTaskStore(),
		transactor: &mocks.MockTransactor{},
		tokens:     mocks.NewMockJWTService(),
		hasher:     &mocks.MockPasswordHasher{},
		notifier:   &mocks.MockNotifier{},
		avatars:    &mocks.MockAvatarProcessor{},
	}
	svc, err := service.NewUserService(service.UserServiceDeps{
		Users:      f.users,
		Tasks:      f.tasks,
		Transactor: f.transactor,
		Tokens:     f.tokens,
		Hasher:     f.hasher,
		Notifier:   f.notifier,
		Avatars:    f.avatars,
		Logger:     testLogger,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *userFixture) register(t *testing.T, name, email string) (*domain.User, string) {
	t.Helper()
	user, token, err := f.svc.Register(context.Background(), service.RegisterParams{
		Name:     name,
		Email:    email,
		Password: "s3cretpass",
		Age:      27,
	})
	require.NoError(t, err)
	return user, token
}

func TestNewUserService_NilDependencies(t *testing.T) {
	t.Parallel()

	full := service.UserServiceDeps{
		Users:      mocks.NewMockUserStore(),
		Tasks:      mocks.NewMockTaskStore(),
		Transactor: &mocks.MockTransactor{},
		Tokens:     mocks.NewMockJWTService(),
		Hasher:     &mocks.MockPasswordHasher{},
		Notifier:   &mocks.MockNotifier{},
		Avatars:    &mocks.MockAvatarProcessor{},
	}

	tests := []struct {
		name  string
		field string
		strip func(d *service.UserServiceDeps)
	}{
		{"users", "users", func(d *service.UserServiceDeps) { d.Users = nil }},
		{"tasks", "tasks", func(d *service.UserServiceDeps) { d.Tasks = nil }},
		{"transactor", "transactor", func(d *service.UserServiceDeps) { d.Transactor = nil }},
		{"tokens", "tokens", func(d *service.UserServiceDeps) { d.Tokens = nil }},
		{"hasher", "hasher", func(d *service.UserServiceDeps) { d.Hasher = nil }},
		{"notifier", "notifier", func(d *service.UserServiceDeps) { d.Notifier = nil }},
		{"avatars", "avatars", func(d *service.UserServiceDeps) { d.Avatars = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full
			tt.strip(&deps)
			svc, err := service.NewUserService(deps)
			assert.Nil(t, svc)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	svc, err := service.NewUserService(full)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		f := newUserFixture(t)

		user, token, err := f.svc.Register(context.Background(), service.RegisterParams{
			Name:     "  Ada  ",
			Email:    " Ada@Example.COM ",
			Password: "s3cretpass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, 0, user.Age)
		assert.Empty(t, user.Password)
		assert.Equal(t, []string{token}, user.Tokens)

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "mock-hash:s3cretpass", stored.HashedPassword)
		assert.Empty(t, stored.Password)
		assert.Equal(t, []string{token}, stored.Tokens)

		assert.Equal(t, []mocks.Message{{Email: "ada@example.com", Name: "Ada"}}, f.notifier.Welcomes())
		assert.Equal(t, 1, f.transactor.Calls())
	})

	t.Run("password rules", func(t *testing.T) {
		f := newUserFixture(t)

		for _, pw := range []string{"MyPassWord1", "short", "123456"} {
			_, _, err := f.svc.Register(context.Background(), service.RegisterParams{
				Name: "Ada", Email: "ada@example.com", Password: pw,
			})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr, pw)
			assert.Contains(t, verr.Fields, "password", pw)
		}

		_, _, err := f.svc.Register(context.Background(), service.RegisterParams{
			Name: "Ada", Email: "ada@example.com", Password: "1234567",
		})
		require.NoError(t, err)
		assert.Len(t, f.notifier.Welcomes(), 1)
	})

	t.Run("duplicate email differs only in case", func(t *testing.T) {
		f := newUserFixture(t)
		f.register(t, "Ada", "ada@example.com")

		_, _, err := f.svc.Register(context.Background(), service.RegisterParams{
			Name: "Other", Email: "ADA@example.com", Password: "s3cretpass",
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "is already registered", verr.Fields["email"])
		assert.Equal(t, 1, f.users.Count())
		assert.Len(t, f.notifier.Welcomes(), 1)
	})

	t.Run("token failure aborts registration", func(t *testing.T) {
		f := newUserFixture(t)
		f.tokens.GenerateTokenFn = func(context.Context, uuid.UUID) (string, error) {
			return "", errors.New("signing failed")
		}

		_, _, err := f.svc.Register(context.Background(), service.RegisterParams{
			Name: "Ada", Email: "ada@example.com", Password: "s3cretpass",
		})
		var serr *service.ServiceError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "register", serr.Operation)
		assert.Empty(t, f.notifier.Welcomes())
	})
}

func TestUserService_FindByCredentials(t *testing.T) {
	t.Parallel()
	f := newUserFixture(t)
	registered, _ := f.register(t, "Ada", "ada@example.com")

	user, err := f.svc.FindByCredentials(context.Background(), " ADA@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, wrongPassword := f.svc.FindByCredentials(context.Background(), "ada@example.com", "wrongpass1")
	_, unknownEmail := f.svc.FindByCredentials(context.Background(), "nobody@example.com", "s3cretpass")

	require.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, service.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUserService_Sessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("logins issue distinct tokens that all authenticate", func(t *testing.T) {
		f := newUserFixture(t)
		_, first := f.register(t, "Ada", "ada@example.com")

		_, second, err := f.svc.Login(ctx, "ada@example.com", "s3cretpass")
		require.NoError(t, err)
		_, third, err := f.svc.Login(ctx, "ada@example.com", "s3cretpass")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.NotEqual(t, second, third)

		for _, token := range []string{first, second, third} {
			user, err := f.svc.Authenticate(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", user.Email)
		}
	})

	t.Run("revoke removes exactly one token", func(t *testing.T) {
		f := newUserFixture(t)
		user, first := f.register(t, "Ada", "ada@example.com")
		_, second, err := f.svc.Login(ctx, "ada@example.com", "s3cretpass")
		require.NoError(t, err)

		require.NoError(t, f.svc.RevokeToken(ctx, user.ID, first))

		_, err = f.svc.Authenticate(ctx, first)
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
		_, err = f.svc.Authenticate(ctx, second)
		assert.NoError(t, err)
	})

	t.Run("revoke all ends every session", func(t *testing.T) {
		f := newUserFixture(t)
		user, first := f.register(t, "Ada", "ada@example.com")
		_, second, err := f.svc.Login(ctx, "ada@example.com", "s3cretpass")
		require.NoError(t, err)

		require.NoError(t, f.svc.RevokeAllTokens(ctx, user.ID))

		for _, token := range []string{first, second} {
			_, err := f.svc.Authenticate(ctx, token)
			assert.ErrorIs(t, err, service.ErrUnauthenticated)
		}
	})

	t.Run("wrong password issues no token", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")

		_, token, err := f.svc.Login(ctx, "ada@example.com", "nope-nope")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
		assert.Empty(t, token)

		stored, err := f.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Tokens, 1)
	})

	t.Run("store failure on revoke is reported", func(t *testing.T) {
		f := newUserFixture(t)
		f.users.ClearTokensFn = func(context.Context, uuid.UUID) error { return errors.New("db down") }

		err := f.svc.RevokeAllTokens(ctx, uuid.New())
		var serr *service.ServiceError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "logout_all", serr.Operation)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newUserFixture(t)
	user, token := f.register(t, "Ada", "ada@example.com")

	t.Run("empty token", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
	})

	t.Run("bad signature", func(t *testing.T) {
		_, err := f.svc.Authenticate(ctx, "garbage")
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
	})

	t.Run("valid signature but revoked", func(t *testing.T) {
		orphan, err := f.tokens.GenerateToken(ctx, user.ID)
		require.NoError(t, err)

		_, err = f.svc.Authenticate(ctx, orphan)
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
	})

	t.Run("unknown user", func(t *testing.T) {
		stranger, err := f.tokens.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = f.svc.Authenticate(ctx, stranger)
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
	})

	t.Run("active token", func(t *testing.T) {
		got, err := f.svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("applies fields and rehashes password", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")

		name := "Ada Lovelace"
		age := 36
		password := "n3wsecret"
		updated, err := f.svc.UpdateProfile(ctx, user.ID, domain.UserPatch{
			Name: &name, Age: &age, Password: &password,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", updated.Name)
		assert.Equal(t, 36, updated.Age)
		assert.Empty(t, updated.Password)
		assert.Equal(t, "mock-hash:n3wsecret", updated.HashedPassword)

		_, _, err = f.svc.Login(ctx, "ada@example.com", "n3wsecret")
		require.NoError(t, err)
		_, _, err = f.svc.Login(ctx, "ada@example.com", "s3cretpass")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")
		f.register(t, "Grace", "grace@example.com")

		email := "GRACE@example.com"
		_, err := f.svc.UpdateProfile(ctx, user.ID, domain.UserPatch{Email: &email})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "is already registered", verr.Fields["email"])

		stored, err := f.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", stored.Email)
	})

	t.Run("invalid values leave the user unchanged", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")

		age := -1
		_, err := f.svc.UpdateProfile(ctx, user.ID, domain.UserPatch{Age: &age})
		require.ErrorIs(t, err, domain.ErrValidation)

		stored, err := f.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 27, stored.Age)
	})
}

func TestUserService_UpdateProfile_PreservesStoredFields(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	created := time.Now().Add(-24 * time.Hour).UTC()
	existing := &domain.User{
		ID:             userID,
		Name:           "Ada",
		Email:          "ada@example.com",
		HashedPassword: "$2a$08$existinghash",
		Tokens:         []string{"t1"},
		CreatedAt:      created,
		UpdatedAt:      created,
	}

	users := new(mocks.TestifyMockUserStore)
	users.On("GetByID", mock.Anything, userID).Return(existing, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == userID &&
			u.Name == "Countess" &&
			u.Email == "ada@example.com" &&
			u.HashedPassword == "$2a$08$existinghash" &&
			u.CreatedAt.Equal(created)
	})).Return(nil)

	svc, err := service.NewUserService(service.UserServiceDeps{
		Users:      users,
		Tasks:      mocks.NewMockTaskStore(),
		Transactor: &mocks.MockTransactor{},
		Tokens:     mocks.NewMockJWTService(),
		Hasher:     &mocks.MockPasswordHasher{},
		Notifier:   &mocks.MockNotifier{},
		Avatars:    &mocks.MockAvatarProcessor{},
		Logger:     testLogger,
	})
	require.NoError(t, err)

	name := "Countess"
	updated, err := svc.UpdateProfile(context.Background(), userID, domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Countess", updated.Name)
	users.AssertExpectations(t)
}

func TestUserService_DeleteAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes all tasks then the user", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")
		other, _ := f.register(t, "Grace", "grace@example.com")

		for i := 0; i < 3; i++ {
			task, err := domain.NewTask(user.ID, "chore", false)
			require.NoError(t, err)
			f.tasks.Seed(task)
		}
		keep, err := domain.NewTask(other.ID, "keep me", false)
		require.NoError(t, err)
		f.tasks.Seed(keep)

		deleted, err := f.svc.DeleteAccount(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, deleted.ID)

		assert.Zero(t, f.tasks.CountByOwner(user.ID))
		assert.Equal(t, 1, f.tasks.CountByOwner(other.ID))
		_, err = f.users.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.Equal(t, []mocks.Message{{Email: "ada@example.com", Name: "Ada"}}, f.notifier.Cancellations())
	})

	t.Run("task cascade failure keeps the user", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")
		f.tasks.DeleteAllByOwnerFn = func(context.Context, uuid.UUID) (int64, error) {
			return 0, errors.New("db down")
		}

		_, err := f.svc.DeleteAccount(ctx, user.ID)
		require.Error(t, err)

		_, err = f.users.GetByID(ctx, user.ID)
		assert.NoError(t, err)
		assert.Empty(t, f.notifier.Cancellations())
	})
}

func TestUserService_Avatar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set get clear", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")
		f.avatars.ProcessFn = func(string, []byte) ([]byte, error) { return []byte("png"), nil }

		_, err := f.svc.GetAvatar(ctx, user.ID)
		assert.ErrorIs(t, err, service.ErrAvatarNotFound)

		require.NoError(t, f.svc.SetAvatar(ctx, user.ID, "me.jpg", []byte("jpeg")))
		assert.Equal(t, "me.jpg", f.avatars.LastFilename)

		avatar, err := f.svc.GetAvatar(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), avatar)

		require.NoError(t, f.svc.ClearAvatar(ctx, user.ID))
		_, err = f.svc.GetAvatar(ctx, user.ID)
		assert.ErrorIs(t, err, service.ErrAvatarNotFound)
	})

	t.Run("processor rejection is returned unchanged", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.register(t, "Ada", "ada@example.com")
		rejection := errors.New("unsupported")
		f.avatars.ProcessFn = func(string, []byte) ([]byte, error) { return nil, rejection }

		err := f.svc.SetAvatar(ctx, user.ID, "me.gif", []byte("gif"))
		assert.ErrorIs(t, err, rejection)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.svc.GetAvatar(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrAvatarNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestUserService_ListUsers(t *testing.T) {
	t.Parallel()
	f := newUserFixture(t)
	f.register(t, "Ada", "ada@example.com")
	f.register(t, "Grace", "grace@example.com")

	users, err := f.svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ada", users[0].Name)
	assert.Equal(t, "Grace", users[1].Name)
}
