package repository

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// UserRepository implements persistence.UserRepository over the users table
type UserRepository struct {
	store  persistence.TableStore
	logger coreport.Logger
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(store persistence.TableStore, logger coreport.Logger) *UserRepository {
	return &UserRepository{store: store, logger: logger}
}

func userToRow(u *entity.User) persistence.Row {
	return persistence.Row{
		"user_id":         u.ID,
		"username":        u.Username,
		"hashed_password": u.PasswordHash,
		"account_number":  u.AccountNumber,
		"balance":         formatAmount(u.Balance),
		"daily_limit":     formatAmount(u.DailyLimit),
		"created_at":      formatTime(u.CreatedAt),
	}
}

func rowToUser(r persistence.Row) *entity.User {
	return &entity.User{
		ID:            r["user_id"],
		Username:      r["username"],
		PasswordHash:  r["hashed_password"],
		AccountNumber: r["account_number"],
		Balance:       parseAmount(r["balance"]),
		DailyLimit:    parseAmount(r["daily_limit"]),
		CreatedAt:     parseTime(r["created_at"]),
	}
}

// Create appends a user after checking username and account number uniqueness
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.logger.Debug("Creating user", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})

	return r.store.Mutate(ctx, UsersTable, func(t *persistence.Table) error {
		for _, row := range t.Rows {
			if row["username"] == user.Username {
				return errs.ErrUsernameExists
			}
			if row["account_number"] == user.AccountNumber {
				return errs.ErrAccountExists
			}
		}
		t.Rows = append(t.Rows, userToRow(user))
		return nil
	})
}

func (r *UserRepository) findOne(ctx context.Context, match persistence.Match) (*entity.User, error) {
	t, err := r.store.Read(ctx, UsersTable)
	if err != nil {
		return nil, err
	}
	rows := t.Filter(match)
	if len(rows) == 0 {
		return nil, errs.ErrUserNotFound
	}
	return rowToUser(rows[0]), nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, persistence.Match{"user_id": id})
}

// GetByUsername retrieves a user by normalized username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, persistence.Match{"username": username})
}

// GetByAccountNumber retrieves the user holding an account number
func (r *UserRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*entity.User, error) {
	return r.findOne(ctx, persistence.Match{"account_number": accountNumber})
}

// UpdateAtomically loads the users, applies fn and writes every one of them back in a single table write
func (r *UserRepository) UpdateAtomically(
	ctx context.Context,
	ids []string,
	fn func(users map[string]*entity.User) error,
) error {
	return r.store.Mutate(ctx, UsersTable, func(t *persistence.Table) error {
		users := make(map[string]*entity.User, len(ids))
		rows := make(map[string]persistence.Row, len(ids))
		for _, row := range t.Rows {
			rows[row["user_id"]] = row
		}

		for _, id := range ids {
			row, ok := rows[id]
			if !ok {
				return fmt.Errorf("%w: %s", errs.ErrUserNotFound, id)
			}
			users[id] = rowToUser(row)
		}

		if err := fn(users); err != nil {
			return err
		}

		for _, id := range ids {
			row := rows[id]
			for column, value := range userToRow(users[id]) {
				row[column] = value
			}
		}
		return nil
	})
}
