package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
)

type MoodRepository struct {
	db *sql.DB
}

func NewMoodRepository(db *sql.DB) *MoodRepository {
	return &MoodRepository{db: db}
}

func (repo *MoodRepository) List(ctx context.Context) ([]models.Mood, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, category FROM moods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select moods: %w", err)
	}
	defer rows.Close()

	moods := []models.Mood{}
	for rows.Next() {
		var m models.Mood
		if err := rows.Scan(&m.ID, &m.Category); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		moods = append(moods, m)
	}
	return moods, rows.Err()
}
