package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. It backs the memory
// database driver and the tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) NewID() string {
	return uuid.NewString()
}

func (r *MemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return ErrDuplicateEmail
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.find(func(u User) bool { return u.Email == email })
}

func (r *MemoryRepository) GetByToken(ctx context.Context, token string) (*User, error) {
	return r.find(func(u User) bool { return u.Token == token })
}

func (r *MemoryRepository) find(match func(User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[string]*User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users[id] = &u
		}
	}
	return users, nil
}

func (r *MemoryRepository) Update(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	current.Email = u.Email
	current.Account = u.Account
	current.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = current

	u.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}
