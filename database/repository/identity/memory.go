package identityRepo

import (
	"context"
	"sync"
	"time"

	"tutorbook/models"
)

// MemoryIdentityRepo is an in-memory IdentityRepository for tests.
type MemoryIdentityRepo struct {
	mu    sync.Mutex
	store map[string]models.Identity
}

func NewMemoryIdentityRepo() *MemoryIdentityRepo {
	return &MemoryIdentityRepo{store: make(map[string]models.Identity)}
}

func (repo *MemoryIdentityRepo) CreateGuest(_ context.Context, identity *models.Identity) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.store[identity.ID] = *identity
	return nil
}

func (repo *MemoryIdentityRepo) GetByID(_ context.Context, id string) (*models.Identity, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	identity, ok := repo.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := identity
	return &out, nil
}

func (repo *MemoryIdentityRepo) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, identity := range repo.store {
		if identity.Email == email {
			out := identity
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (repo *MemoryIdentityRepo) PromoteGuest(_ context.Context, id string, info models.GuestContactInfo, passwordHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	identity, ok := repo.store[id]
	if !ok {
		return ErrNotFound
	}
	identity.Guest = false
	identity.Name = info.Name
	identity.Email = info.Email
	identity.Phone = info.Phone
	if passwordHash != "" {
		identity.PasswordHash = passwordHash
	}
	identity.UpdatedAt = time.Now()
	repo.store[id] = identity
	return nil
}

func (repo *MemoryIdentityRepo) DeleteGuest(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if identity, ok := repo.store[id]; ok && identity.Guest {
		delete(repo.store, id)
	}
	return nil
}
