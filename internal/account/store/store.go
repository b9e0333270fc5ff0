// Package store persists accounts. Implementations return pkg/platform/sentinel
// errors; the service layer translates them into domain errors.
package store

import (
	"context"

	"github.com/google/uuid"

	"lawclinic/internal/account/models"
	"lawclinic/pkg/pagination"
)

// UserStore is the persistence seam for accounts.
//
// UpdateAtomic is the per-account read-modify-write both code issuance and
// verification run through: fn observes a consistent snapshot under the
// account's row lock (or the store mutex in memory) and its mutations are
// persisted before the lock is released. A non-nil error from fn aborts the
// update and is returned unchanged, so services can pass domain errors
// through it.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateAtomic(ctx context.Context, email string, fn func(*models.User) error) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p pagination.Params) ([]*models.User, int, error)
	Overview(ctx context.Context) (*models.Overview, error)
}
