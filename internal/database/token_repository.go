package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
	"github.com/google/uuid"
)

// TokenRepository stores personal access tokens. The token column holds the
// SHA-256 of the secret, never the secret itself.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (repo *TokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	return insertToken(ctx, repo.db, token)
}

func insertToken(ctx context.Context, q queryRower, token *models.AccessToken) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO personal_access_tokens (id, user_id, name, token)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		token.ID, token.UserID, token.Name, token.TokenHash,
	).Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (repo *TokenRepository) FindByID(ctx context.Context, id uuid.UUID) (models.AccessToken, error) {
	var token models.AccessToken
	var lastUsed sql.NullTime
	err := repo.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, token, created_at, last_used_at
		 FROM personal_access_tokens WHERE id = $1`, id,
	).Scan(&token.ID, &token.UserID, &token.Name, &token.TokenHash, &token.CreatedAt, &lastUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AccessToken{}, services.ErrNotFound
		}
		return models.AccessToken{}, fmt.Errorf("select token: %w", err)
	}
	if lastUsed.Valid {
		token.LastUsedAt = &lastUsed.Time
	}
	return token, nil
}

func (repo *TokenRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return execAffectingOne(ctx, repo.db,
		`UPDATE personal_access_tokens SET last_used_at = NOW() WHERE id = $1`, id)
}

func (repo *TokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execAffectingOne(ctx, repo.db,
		`DELETE FROM personal_access_tokens WHERE id = $1`, id)
}

// execAffectingOne runs a statement that targets a single row and maps
// "no row touched" to ErrNotFound.
func execAffectingOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.ErrNotFound
	}
	return nil
}
