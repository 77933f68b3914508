package identityRepo

import (
	"context"
	"errors"

	"tutorbook/models"
)

var ErrNotFound = errors.New("identity not found")

// IdentityRepository stores booking claimants: permanent users and the
// ephemeral guest placeholders created when an unauthenticated visitor takes
// a hold.
type IdentityRepository interface {
	CreateGuest(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	// PromoteGuest converts a guest placeholder into a permanent identity
	// using payment-time contact details.
	PromoteGuest(ctx context.Context, id string, info models.GuestContactInfo, passwordHash string) error
	DeleteGuest(ctx context.Context, id string) error
}
