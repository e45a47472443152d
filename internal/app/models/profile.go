package models

import (
	"encoding/json"
	"time"
)

// Profile is the detailed student record keyed by user ID
type Profile struct {
	ID               int64           `db:"id"`
	UserID           int64           `db:"user_id"`
	FullName         string          `db:"full_name"`
	PhoneNumber      string          `db:"phone_number"`
	Address          string          `db:"address"`
	Department       string          `db:"department"` // informational only
	RollNumber       string          `db:"roll_number"`
	CurrentYear      *int            `db:"current_year"`
	CGPA             float64         `db:"cgpa"`
	Backlogs         int             `db:"backlogs"`
	PlacementStatus  string          `db:"placement_status"`
	EducationHistory json.RawMessage `db:"education_history"`
	Skills           []string        `db:"skills"`
	Projects         json.RawMessage `db:"projects"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// IsPlaced reports whether the student already holds a placement
func (p *Profile) IsPlaced() bool {
	return p != nil && p.PlacementStatus == PlacementStatusPlaced
}
