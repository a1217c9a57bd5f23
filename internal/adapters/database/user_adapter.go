package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

var userColumns = []interface{}{
	"user_id", "username", "email", "preferences", "favorites", "created_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a user. Usernames are stored lowercase so lookups are
// case-insensitive.
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))

	record := goqu.Record{
		"username":    user.Username,
		"email":       sql.NullString{String: user.Email, Valid: user.Email != ""},
		"preferences": sql.NullString{String: user.Preferences, Valid: user.Preferences != ""},
		"favorites":   sql.NullString{String: user.Favorites, Valid: user.Favorites != ""},
	}

	query, args, err := a.db.Insert("users").Rows(record).
		Returning("user_id", "created_at").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("username %s already taken", user.Username))
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"user_id": id}, fmt.Sprintf("user with id %d not found", id))
}

// GetByUsername retrieves a user by username, case-insensitively
func (a *UserAdapter) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return a.getOne(ctx, goqu.Ex{"username": username}, fmt.Sprintf("user %s not found", username))
}

// Exists reports whether a user exists
func (a *UserAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := a.client.DB().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.NewInternalError("failed to check user existence", err)
	}
	return exists, nil
}

// UpdatePreferences replaces a user's preferences JSON document
func (a *UserAdapter) UpdatePreferences(ctx context.Context, username string, preferencesJSON string) error {
	return a.updateColumn(ctx, username, "preferences", preferencesJSON)
}

// UpdateFavorites replaces a user's favorites JSON document
func (a *UserAdapter) UpdateFavorites(ctx context.Context, username string, favoritesJSON string) error {
	return a.updateColumn(ctx, username, "favorites", favoritesJSON)
}

func (a *UserAdapter) updateColumn(ctx context.Context, username, column, value string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	query, args, err := a.db.Update("users").
		Set(goqu.Record{column: value}).
		Where(goqu.Ex{"username": username}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to update user %s", column), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}

	return nil
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex, notFoundMsg string) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).From("users").Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user query", err)
	}

	user := &entities.User{}
	var email, preferences, favorites sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&email,
		&preferences,
		&favorites,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	user.Email = email.String
	user.Preferences = preferences.String
	user.Favorites = favorites.String
	return user, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}
