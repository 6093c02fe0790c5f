package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")

type Repo interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateProfile(ctx context.Context, userId int, name, email string) (User, error)
	UpdateAvatar(ctx context.Context, userId int, avatarUrl string) (User, error)
	TouchLastLogin(ctx context.Context, userId int, at time.Time) error
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const userColumns = `id, uid::text, email, name, password_hash, COALESCE(avatar_url, ''), role, is_active, last_login_at,
				created_at, updated_at`

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (User, error) {
	role := user.Role
	if role == "" {
		role = RoleUser
	}
	query := `INSERT INTO users (email, name, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING ` + userColumns
	created, err := scanUser(u.db.QueryRow(ctx, query, user.Email, user.Name, user.PasswordHash, role))
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		log.Errorf("failed to create user: %v", err)
		return User{}, err
	}
	return created, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE uid::text = $1`, uid)
}

func (u *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (u *UserRepoImpl) UpdateProfile(ctx context.Context, userId int, name, email string) (User, error) {
	query := `UPDATE users SET name = $1, email = $2, updated_at = now() WHERE id = $3 RETURNING ` + userColumns
	updated, err := scanUser(u.db.QueryRow(ctx, query, name, email, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		log.Errorf("failed to update user profile: %v", err)
		return User{}, err
	}
	return updated, nil
}

func (u *UserRepoImpl) UpdateAvatar(ctx context.Context, userId int, avatarUrl string) (User, error) {
	query := `UPDATE users SET avatar_url = $1, updated_at = now() WHERE id = $2 RETURNING ` + userColumns
	updated, err := scanUser(u.db.QueryRow(ctx, query, avatarUrl, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		log.Errorf("failed to update user avatar: %v", err)
		return User{}, err
	}
	return updated, nil
}

func (u *UserRepoImpl) TouchLastLogin(ctx context.Context, userId int, at time.Time) error {
	result, err := u.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, userId)
	if err != nil {
		log.Errorf("failed to update last login: %v", err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (u *UserRepoImpl) getOne(ctx context.Context, query string, arg any) (User, error) {
	found, err := scanUser(u.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		err = fmt.Errorf("failed to get user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return found, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var role string
	err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.AvatarUrl,
		&role,
		&user.IsActive,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.Role = Role(role)
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
