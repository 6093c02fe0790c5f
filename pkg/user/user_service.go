package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/cofrinho/cofrinho/internal/auth"
	"github.com/cofrinho/cofrinho/internal/event_bus"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/storage"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDataInvalid    = errors.New("invalid user data")
	ErrInactiveUser       = errors.New("user account is disabled")
)

type Service interface {
	SignUp(ctx context.Context, email, name, password string) (User, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	Authenticate(ctx context.Context, token string) (User, *auth.Claims, error)
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateProfile(ctx context.Context, name, email string) (User, error)
	UploadAvatar(ctx context.Context, upload storage.Upload) (User, error)
}

type UserServiceImpl struct {
	repo        Repo
	jwt         *auth.JWTManager
	revocations *auth.RevocationList
	storage     storage.Storage
	eventBus    *event_bus.EventBus
	clock       utils.Clock
}

func NewUserService(
	repo Repo,
	jwt *auth.JWTManager,
	revocations *auth.RevocationList,
	storage storage.Storage,
	eventBus *event_bus.EventBus,
	clock utils.Clock,
) *UserServiceImpl {
	return &UserServiceImpl{
		repo:        repo,
		jwt:         jwt,
		revocations: revocations,
		storage:     storage,
		eventBus:    eventBus,
		clock:       clock,
	}
}

func (u *UserServiceImpl) SignUp(ctx context.Context, email, name, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrUserDataInvalid)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUserDataInvalid, err)
	}

	created, err := u.repo.CreateUser(ctx, User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         RoleUser,
	})
	if err != nil {
		return User{}, err
	}
	log.Infof("user %s signed up", created.Uid)
	return created, nil
}

func (u *UserServiceImpl) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	found, err := u.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := auth.CheckPassword(found.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !found.IsActive {
		return Session{}, ErrInactiveUser
	}

	now := u.clock.Now()
	if err := u.repo.TouchLastLogin(ctx, found.Id, now); err != nil {
		return Session{}, fmt.Errorf("failed to record sign-in: %w", err)
	}
	found.LastLoginAt = &now

	token, claims, err := u.jwt.Generate(found.Uid, found.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: found}, nil
}

// SignOut revokes the session token of the request and drops the user's cached views.
func (u *UserServiceImpl) SignOut(ctx context.Context) error {
	userId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if claims, ok := auth.ClaimsFrom(ctx); ok {
		u.revocations.Revoke(claims.ID, claims.ExpiresAt.Time)
	}

	err = u.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.UserSignedOutType, event_bus.UserSignedOut{UserId: userId}))
	if err != nil {
		log.Warnf("failed to publish sign-out of user %d: %v", userId, err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user.
func (u *UserServiceImpl) Authenticate(ctx context.Context, token string) (User, *auth.Claims, error) {
	claims, err := u.jwt.Validate(token)
	if err != nil {
		return User{}, nil, err
	}
	if u.revocations.IsRevoked(claims.ID) {
		return User{}, nil, auth.ErrRevokedToken
	}
	found, err := u.repo.GetUserByUid(ctx, claims.UserUid())
	if err != nil {
		return User{}, nil, err
	}
	if !found.IsActive {
		return User{}, nil, ErrInactiveUser
	}
	return found, claims, nil
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) UpdateProfile(ctx context.Context, name, email string) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrUserDataInvalid)
	}
	return u.repo.UpdateProfile(ctx, userId, name, email)
}

func (u *UserServiceImpl) UploadAvatar(ctx context.Context, upload storage.Upload) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}

	key := fmt.Sprintf("avatars/%s.%s", current.Uid, upload.Extension)
	url, err := u.storage.Put(ctx, key, upload.Reader(), upload.ContentType)
	if err != nil {
		return User{}, fmt.Errorf("failed to store avatar: %w", err)
	}
	updated, err := u.repo.UpdateAvatar(ctx, current.Id, url)
	if err != nil {
		return User{}, err
	}
	if current.AvatarUrl != "" && current.AvatarUrl != url {
		if err := storage.DeleteUrl(ctx, u.storage, current.AvatarUrl); err != nil {
			log.Warnf("failed to delete previous avatar of user %d: %v", current.Id, err)
		}
	}
	return updated, nil
}

func normalizeEmail(email string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrUserDataInvalid)
	}
	return strings.ToLower(parsed.Address), nil
}
