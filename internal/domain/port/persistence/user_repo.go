package persistence

import (
	"context"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
)

// UserRepository defines methods to interact with user data
type UserRepository interface {
	// Create stores a new user
	//
	// Possible errors:
	// - ErrUsernameExists: If the username is taken
	// - ErrAccountExists: If the account number is taken
	// - ErrStorage: If the users table cannot be read or written
	Create(ctx context.Context, user *entity.User) error

	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrStorage: If the users table cannot be read
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByUsername retrieves a user by normalized username
	//
	// Possible errors:
	// - ErrUserNotFound: If no user has the username
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	// GetByAccountNumber retrieves the user holding an account number
	//
	// Possible errors:
	// - ErrUserNotFound: If no user holds the account
	GetByAccountNumber(ctx context.Context, accountNumber string) (*entity.User, error)

	// UpdateAtomically loads the given users, lets fn modify them and persists all of them in one write.
	// Nothing is written when fn returns an error. This is the only way balances change.
	//
	// Possible errors:
	// - ErrUserNotFound: If any of the ids doesn't exist
	// - any error returned by fn
	// - ErrStorage: If the users table cannot be read or written
	UpdateAtomically(ctx context.Context, ids []string, fn func(users map[string]*entity.User) error) error
}
