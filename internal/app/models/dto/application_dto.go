package dto

import (
	"time"

	"github.com/yigit/placement/internal/app/models"
)

// ApplicationResponse represents a job application
type ApplicationResponse struct {
	ID        int64                    `json:"id" example:"12"`
	StudentID int64                    `json:"studentId" example:"3"`
	JobID     int64                    `json:"jobId" example:"7"`
	Status    models.ApplicationStatus `json:"status" example:"pending"`
	AppliedAt time.Time                `json:"appliedAt"`
}

// NewApplicationResponse converts an application model
func NewApplicationResponse(a *models.JobApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:        a.ID,
		StudentID: a.StudentID,
		JobID:     a.JobID,
		Status:    a.Status,
		AppliedAt: a.CreatedAt,
	}
}

// AppliedJobResponse is a job the student applied for, with the application state
type AppliedJobResponse struct {
	ApplicationID int64                    `json:"applicationId"`
	Status        models.ApplicationStatus `json:"status"`
	AppliedAt     time.Time                `json:"appliedAt"`
	Job           JobResponse              `json:"job"`
}

// NewAppliedJobResponses converts a student's applications
func NewAppliedJobResponses(items []models.AppliedJob) []AppliedJobResponse {
	out := make([]AppliedJobResponse, 0, len(items))
	for i := range items {
		out = append(out, AppliedJobResponse{
			ApplicationID: items[i].Application.ID,
			Status:        items[i].Application.Status,
			AppliedAt:     items[i].Application.CreatedAt,
			Job:           NewJobResponse(&items[i].Job),
		})
	}
	return out
}

// ApplicationStatusResponse is one entry of a student's status list
type ApplicationStatusResponse struct {
	JobID   int64                    `json:"jobId"`
	Title   string                   `json:"title"`
	Company string                   `json:"company"`
	Status  models.ApplicationStatus `json:"status"`
}

// NewApplicationStatusResponses summarizes a student's applications
func NewApplicationStatusResponses(items []models.AppliedJob) []ApplicationStatusResponse {
	out := make([]ApplicationStatusResponse, 0, len(items))
	for i := range items {
		out = append(out, ApplicationStatusResponse{
			JobID:   items[i].Job.ID,
			Title:   items[i].Job.Title,
			Company: items[i].Job.Company,
			Status:  items[i].Application.Status,
		})
	}
	return out
}

// ApplicantProfile is the profile summary shown to admins reviewing applicants
type ApplicantProfile struct {
	FullName    string  `json:"full_name"`
	RollNumber  string  `json:"roll_number"`
	Department  string  `json:"department"`
	CGPA        float64 `json:"cgpa"`
	Backlogs    int     `json:"backlogs"`
	PhoneNumber string  `json:"phone_number"`
	Email       string  `json:"email"`
	Placement   string  `json:"placement_status,omitempty"`
}

// ApplicantResponse is an application as seen by an admin
type ApplicantResponse struct {
	ID             int64                    `json:"id"`
	StudentID      int64                    `json:"studentId"`
	Status         models.ApplicationStatus `json:"status"`
	AppliedAt      time.Time                `json:"appliedAt"`
	HasProfile     bool                     `json:"hasProfile"`
	StudentProfile ApplicantProfile         `json:"studentProfile"`
}

// NewApplicantResponses converts the applicants of a job. Students without
// a profile are reported with their account name and department.
func NewApplicantResponses(items []models.Applicant) []ApplicantResponse {
	out := make([]ApplicantResponse, 0, len(items))
	for i := range items {
		a := &items[i]
		resp := ApplicantResponse{
			ID:         a.Application.ID,
			StudentID:  a.Application.StudentID,
			Status:     a.Application.Status,
			AppliedAt:  a.Application.CreatedAt,
			HasProfile: a.Profile != nil,
			StudentProfile: ApplicantProfile{
				FullName:   a.User.Name,
				Department: a.User.Department,
				Email:      a.User.Email,
			},
		}
		if p := a.Profile; p != nil {
			if p.FullName != "" {
				resp.StudentProfile.FullName = p.FullName
			}
			if p.Department != "" {
				resp.StudentProfile.Department = p.Department
			}
			resp.StudentProfile.RollNumber = p.RollNumber
			resp.StudentProfile.CGPA = p.CGPA
			resp.StudentProfile.Backlogs = p.Backlogs
			resp.StudentProfile.PhoneNumber = p.PhoneNumber
			resp.StudentProfile.Placement = p.PlacementStatus
		}
		out = append(out, resp)
	}
	return out
}

// UpdateApplicationStatusRequest sets the review status of an application
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required,oneof=pending shortlisted rejected selected"`
}
