package dto

import (
	"encoding/json"
	"time"

	"github.com/yigit/placement/internal/app/models"
)

// ProfileRequest is the detailed-info step of student registration. UserID
// is only read when the request is not authenticated.
type ProfileRequest struct {
	UserID           *int64          `json:"user_id"`
	FullName         string          `json:"full_name" binding:"max=200"`
	PhoneNumber      string          `json:"phone_number" binding:"max=30"`
	Address          string          `json:"address"`
	Department       string          `json:"department"`
	RollNumber       string          `json:"roll_number" binding:"max=50"`
	CurrentYear      *int            `json:"current_year"`
	CGPA             float64         `json:"cgpa"`
	Backlogs         int             `json:"backlogs"`
	PlacementStatus  string          `json:"placement_status"`
	EducationHistory json.RawMessage `json:"education_history" swaggertype:"array,object"`
	Skills           []string        `json:"skills"`
	Projects         json.RawMessage `json:"projects" swaggertype:"array,object"`
}

// ToModel converts the request into a profile for userID
func (r *ProfileRequest) ToModel(userID int64) *models.Profile {
	return &models.Profile{
		UserID:           userID,
		FullName:         r.FullName,
		PhoneNumber:      r.PhoneNumber,
		Address:          r.Address,
		Department:       r.Department,
		RollNumber:       r.RollNumber,
		CurrentYear:      r.CurrentYear,
		CGPA:             r.CGPA,
		Backlogs:         r.Backlogs,
		PlacementStatus:  r.PlacementStatus,
		EducationHistory: r.EducationHistory,
		Skills:           r.Skills,
		Projects:         r.Projects,
	}
}

// ProfileResponse represents a stored student profile
type ProfileResponse struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	FullName         string          `json:"full_name"`
	PhoneNumber      string          `json:"phone_number"`
	Address          string          `json:"address"`
	Department       string          `json:"department"`
	RollNumber       string          `json:"roll_number"`
	CurrentYear      *int            `json:"current_year"`
	CGPA             float64         `json:"cgpa"`
	Backlogs         int             `json:"backlogs"`
	PlacementStatus  string          `json:"placement_status"`
	EducationHistory json.RawMessage `json:"education_history" swaggertype:"array,object"`
	Skills           []string        `json:"skills"`
	Projects         json.RawMessage `json:"projects" swaggertype:"array,object"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewProfileResponse converts a profile model
func NewProfileResponse(p *models.Profile) ProfileResponse {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return ProfileResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		FullName:         p.FullName,
		PhoneNumber:      p.PhoneNumber,
		Address:          p.Address,
		Department:       p.Department,
		RollNumber:       p.RollNumber,
		CurrentYear:      p.CurrentYear,
		CGPA:             p.CGPA,
		Backlogs:         p.Backlogs,
		PlacementStatus:  p.PlacementStatus,
		EducationHistory: rawOrEmpty(p.EducationHistory),
		Skills:           skills,
		Projects:         rawOrEmpty(p.Projects),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ProfileSaveResponse reports whether the profile was created or updated
type ProfileSaveResponse struct {
	Created bool            `json:"created"`
	Profile ProfileResponse `json:"profile"`
}

func rawOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("[]")
	}
	return raw
}
