package handlers

import (
	"context"
	"fmt"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

// createdAtLayout renders created_at as day-month-year.
const createdAtLayout = "02-01-2006"

// JournalSummary is the projection used by list, create and update.
type JournalSummary struct {
	ID          int64   `json:"id"`
	Image       *string `json:"image"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Mood        string  `json:"mood"`
	MoodID      int64   `json:"mood_id"`
	UserID      int64   `json:"user_id"`
	CreatedAt   string  `json:"created_at"`
}

// JournalDetail is the projection used by the single-journal fetch.
type JournalDetail struct {
	ID          int64   `json:"id"`
	Image       *string `json:"image"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	MoodID      int64   `json:"mood_id"`
	Mood        string  `json:"mood"`
	CreatedAt   string  `json:"created_at"`
	UserID      int64   `json:"user_id"`
}

// projector resolves the relations a projection needs: the mood category
// and the owner. It loads the mood table once per response.
type projector struct {
	owner      models.User
	categories map[int64]string
}

func (h *Handler) newProjector(ctx context.Context, owner models.User) (*projector, error) {
	categories, err := h.moods.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mood categories: %w", err)
	}
	return &projector{owner: owner, categories: categories}, nil
}

func (p *projector) resolve(j models.Journal) (string, error) {
	if j.UserID != p.owner.ID {
		return "", fmt.Errorf("journal %d owned by %d projected for %d", j.ID, j.UserID, p.owner.ID)
	}
	category, ok := p.categories[j.MoodID]
	if !ok {
		return "", fmt.Errorf("journal %d mood %d: %w", j.ID, j.MoodID, services.ErrMoodUnresolved)
	}
	return category, nil
}

func (p *projector) summary(j models.Journal) (JournalSummary, error) {
	mood, err := p.resolve(j)
	if err != nil {
		return JournalSummary{}, err
	}
	return JournalSummary{
		ID:          j.ID,
		Image:       imageRef(j.Image),
		Title:       j.Title,
		Description: j.Description,
		Mood:        mood,
		MoodID:      j.MoodID,
		UserID:      p.owner.ID,
		CreatedAt:   j.CreatedAt.Format(createdAtLayout),
	}, nil
}

func (p *projector) summaries(journals []models.Journal) ([]JournalSummary, error) {
	out := make([]JournalSummary, 0, len(journals))
	for _, j := range journals {
		s, err := p.summary(j)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *projector) detail(j models.Journal) (JournalDetail, error) {
	mood, err := p.resolve(j)
	if err != nil {
		return JournalDetail{}, err
	}
	return JournalDetail{
		ID:          j.ID,
		Image:       imageRef(j.Image),
		Title:       j.Title,
		Description: j.Description,
		MoodID:      j.MoodID,
		Mood:        mood,
		CreatedAt:   j.CreatedAt.Format(createdAtLayout),
		UserID:      p.owner.ID,
	}, nil
}

func imageRef(ref string) *string {
	if ref == "" {
		return nil
	}
	return &ref
}
