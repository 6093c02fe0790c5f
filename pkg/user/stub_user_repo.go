package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type StubUserRepository struct {
	mu     sync.Mutex
	nextId int
	data   map[int]User
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{nextId: 0, data: map[int]User{}}
}

func (s *StubUserRepository) CreateUser(ctx context.Context, user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data {
		if existing.Email == user.Email {
			return User{}, ErrEmailTaken
		}
	}
	s.nextId++
	user.Id = s.nextId
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.data[user.Id] = user
	return user, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, id int) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.find(func(u User) bool { return u.Uid == uid })
}

func (s *StubUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.find(func(u User) bool { return u.Email == email })
}

func (s *StubUserRepository) UpdateProfile(ctx context.Context, userId int, name, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.data[userId]
	if !ok {
		return User{}, ErrUserNotFound
	}
	for id, existing := range s.data {
		if id != userId && existing.Email == email {
			return User{}, ErrEmailTaken
		}
	}
	user.Name = name
	user.Email = email
	s.data[userId] = user
	return user, nil
}

func (s *StubUserRepository) UpdateAvatar(ctx context.Context, userId int, avatarUrl string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.data[userId]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.AvatarUrl = avatarUrl
	s.data[userId] = user
	return user, nil
}

func (s *StubUserRepository) TouchLastLogin(ctx context.Context, userId int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.data[userId]
	if !ok {
		return ErrUserNotFound
	}
	user.LastLoginAt = &at
	s.data[userId] = user
	return nil
}

func (s *StubUserRepository) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId = 0
	s.data = map[int]User{}
}

func (s *StubUserRepository) find(match func(User) bool) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.data {
		if match(user) {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}
