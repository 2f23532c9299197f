package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

const journalColumns = `id, user_id, mood_id, title, description, image, created_at, updated_at`

// JournalRepository is the Postgres journal store. Every query filters on
// user_id, so foreign rows are indistinguishable from missing ones.
type JournalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (repo *JournalRepository) ListByUser(ctx context.Context, userID int64) ([]models.Journal, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select journals: %w", err)
	}
	defer rows.Close()

	journals := []models.Journal{}
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, journal)
	}
	return journals, rows.Err()
}

func (repo *JournalRepository) FindForUser(ctx context.Context, userID, id int64) (models.Journal, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE id = $1 AND user_id = $2`, id, userID)
	return scanJournal(row)
}

func (repo *JournalRepository) Create(ctx context.Context, journal *models.Journal) error {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO journals (user_id, mood_id, title, description, image)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		journal.UserID, journal.MoodID, journal.Title, journal.Description, nullString(journal.Image),
	).Scan(&journal.ID, &journal.CreatedAt, &journal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

// UpdateForUser writes the supplied fields in one statement and returns the
// resulting row.
func (repo *JournalRepository) UpdateForUser(ctx context.Context, userID, id int64, patch models.JournalPatch) (models.Journal, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.MoodID != nil {
		add("mood_id", *patch.MoodID)
	}
	if len(sets) == 0 {
		return repo.FindForUser(ctx, userID, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf(
		`UPDATE journals SET %s WHERE id = $%d AND user_id = $%d RETURNING `+journalColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))
	return scanJournal(repo.db.QueryRowContext(ctx, query, args...))
}

func (repo *JournalRepository) DeleteForUser(ctx context.Context, userID, id int64) error {
	return execAffectingOne(ctx, repo.db,
		`DELETE FROM journals WHERE id = $1 AND user_id = $2`, id, userID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournal(row rowScanner) (models.Journal, error) {
	var journal models.Journal
	var image sql.NullString
	err := row.Scan(&journal.ID, &journal.UserID, &journal.MoodID, &journal.Title,
		&journal.Description, &image, &journal.CreatedAt, &journal.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Journal{}, services.ErrNotFound
		}
		return models.Journal{}, fmt.Errorf("scan journal: %w", err)
	}
	journal.Image = image.String
	return journal, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
