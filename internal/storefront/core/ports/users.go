package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type UserRepository interface {
	// Create returns apperr.ErrDuplicate when the email is taken.
	Create(ctx context.Context, u *entity.User) error
	// Get never populates PasswordHash.
	Get(ctx context.Context, id string) (*entity.User, error)
	// FindCredentials returns the user with PasswordHash set.
	FindCredentials(ctx context.Context, email string) (*entity.User, error)
}
