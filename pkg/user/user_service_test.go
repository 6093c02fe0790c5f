package user

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cofrinho/cofrinho/internal/auth"
	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRepoStub = NewStubUserRepository()
var storageStub = storage.NewStubStorage()
var clock = &utils.MockClock{}
var eventBus *event_bus.EventBus
var service *UserServiceImpl

func setup(t *testing.T) func() {
	clock.SetNow(time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC))
	eventBus = event_bus.NewEventBus()
	service = NewUserService(
		userRepoStub,
		auth.NewJWTManager("test-secret", time.Hour, clock),
		auth.NewRevocationList(clock),
		storageStub,
		eventBus,
		clock,
	)
	return func() {
		t.Log("Teardown after test")
		userRepoStub.Cleanup()
	}
}

func TestUserServiceImpl_SignUp(t *testing.T) {
	t.Run("should create user with hashed password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.SignUp(context.Background(), " Ana@Example.com ", "Ana", "secret-pass")

		// then
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", created.Email)
		assert.Equal(t, RoleUser, created.Role)
		assert.NotEqual(t, "secret-pass", created.PasswordHash)
		assert.NoError(t, auth.CheckPassword(created.PasswordHash, "secret-pass"))
	})

	t.Run("should reject short password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SignUp(context.Background(), "ana@example.com", "Ana", "short")

		assert.ErrorIs(t, err, ErrUserDataInvalid)
	})

	t.Run("should reject invalid email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SignUp(context.Background(), "not-an-email", "Ana", "secret-pass")

		assert.ErrorIs(t, err, ErrUserDataInvalid)
	})

	t.Run("should reject duplicated email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.SignUp(context.Background(), "ana@example.com", "Ana", "secret-pass")
		require.NoError(t, err)

		// when
		_, err = service.SignUp(context.Background(), "ANA@example.com", "Other", "secret-pass")

		// then
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserServiceImpl_SignInAndOut(t *testing.T) {
	t.Run("should issue token that authenticates until sign out", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.SignUp(context.Background(), "ana@example.com", "Ana", "secret-pass")
		require.NoError(t, err)
		signedOut := 0
		event_bus.SubscribeTyped(eventBus, event_bus.UserSignedOutType, func(e event_bus.EventT[event_bus.UserSignedOut]) error {
			signedOut = e.Data.UserId
			return nil
		})

		// when
		session, err := service.SignIn(context.Background(), "ana@example.com", "secret-pass")
		require.NoError(t, err)
		authenticated, claims, err := service.Authenticate(context.Background(), session.Token)
		require.NoError(t, err)

		// then
		assert.Equal(t, created.Id, authenticated.Id)
		assert.Equal(t, clock.Now().Add(time.Hour), session.ExpiresAt)
		require.NotNil(t, session.User.LastLoginAt)
		assert.Equal(t, clock.Now(), *session.User.LastLoginAt)

		// and when signed out
		ctx := auth.WithClaims(WithUser(context.Background(), authenticated), claims)
		require.NoError(t, service.SignOut(ctx))

		// then the token is rejected
		_, _, err = service.Authenticate(context.Background(), session.Token)
		assert.ErrorIs(t, err, auth.ErrRevokedToken)
		assert.Equal(t, created.Id, signedOut)
	})

	t.Run("should reject wrong password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.SignUp(context.Background(), "ana@example.com", "Ana", "secret-pass")
		require.NoError(t, err)

		// when
		_, err = service.SignIn(context.Background(), "ana@example.com", "wrong-pass")

		// then
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("should not reveal unknown email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SignIn(context.Background(), "ghost@example.com", "secret-pass")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("should fail sign out without user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		err := service.SignOut(context.Background())

		assert.ErrorIs(t, err, ErrNoUser)
	})
}

func TestUserServiceImpl_UpdateProfile(t *testing.T) {
	t.Run("should update name and email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.SignUp(context.Background(), "ana@example.com", "Ana", "secret-pass")
		require.NoError(t, err)
		ctx := WithUser(context.Background(), created)

		// when
		updated, err := service.UpdateProfile(ctx, "Ana Maria", "ana.maria@example.com")

		// then
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", updated.Name)
		assert.Equal(t, "ana.maria@example.com", updated.Email)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.UpdateProfile(context.Background(), "Ana", "ana@example.com")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestUserServiceImpl_UploadAvatar(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	created, err := service.SignUp(context.Background(), "ana@example.com", "Ana", "secret-pass")
	require.NoError(t, err)
	ctx := WithUser(context.Background(), created)
	upload := storage.Upload{Data: []byte("png-bytes"), ContentType: "image/png", Extension: "png"}

	// when
	updated, err := service.UploadAvatar(ctx, upload)

	// then
	require.NoError(t, err)
	key := "avatars/" + created.Uid + ".png"
	assert.Equal(t, "https://media.test/"+key, updated.AvatarUrl)
	assert.True(t, bytes.Equal([]byte("png-bytes"), storageStub.Objects[key]))
}

func TestUserServiceImpl_UploadAvatar_ReplacesPrevious(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	created, err := service.SignUp(context.Background(), "bia@example.com", "Bia", "secret-pass")
	require.NoError(t, err)
	first, err := service.UploadAvatar(WithUser(context.Background(), created), storage.Upload{Data: []byte("png"), ContentType: "image/png", Extension: "png"})
	require.NoError(t, err)

	// when
	second, err := service.UploadAvatar(WithUser(context.Background(), first), storage.Upload{Data: []byte("jpg"), ContentType: "image/jpeg", Extension: "jpg"})

	// then
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/avatars/"+created.Uid+".jpg", second.AvatarUrl)
	assert.NotContains(t, storageStub.Objects, "avatars/"+created.Uid+".png")
	assert.Contains(t, storageStub.Objects, "avatars/"+created.Uid+".jpg")
}
