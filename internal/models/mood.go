package models

// Mood is static reference data seeded by migration.
type Mood struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
}
