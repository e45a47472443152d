package dto

import (
	"path/filepath"
	"time"

	"github.com/yigit/placement/internal/app/models"
)

// JobDocumentRoute is the path prefix under which job documents are served
const JobDocumentRoute = "/api/student/jobs/pdf/"

// CreateJobForm is the multipart form for posting a job. Departments and
// requirements are read separately since both accept a JSON array string
// or repeated values.
type CreateJobForm struct {
	Title         string  `form:"title" binding:"required,max=200"`
	Company       string  `form:"company" binding:"required,max=200"`
	Location      string  `form:"location"`
	Salary        string  `form:"salary"`
	Description   string  `form:"description"`
	MinCGPA       float64 `form:"minCGPA" binding:"cgpa"`
	Deadline      string  `form:"deadline"`
	ExcludePlaced bool    `form:"excludePlaced"`
	SendEmail     bool    `form:"sendEmail"`
}

// JobResponse represents a job posting
type JobResponse struct {
	ID            int64     `json:"id" example:"7"`
	Title         string    `json:"title" example:"Backend Engineer"`
	Company       string    `json:"company" example:"Acme"`
	Location      string    `json:"location"`
	Salary        string    `json:"salary"`
	Description   string    `json:"description"`
	Requirements  []string  `json:"requirements"`
	Departments   []string  `json:"departments" example:"Computer Science,Information Technology"`
	MinCGPA       float64   `json:"minCGPA" example:"7.5"`
	Deadline      string    `json:"deadline,omitempty" example:"2026-11-30"`
	ExcludePlaced bool      `json:"excludePlaced"`
	PDFFile       string    `json:"pdfFile,omitempty"`
	PDFURL        string    `json:"pdfUrl,omitempty"`
	PostedDate    time.Time `json:"postedDate"`
}

// NewJobResponse converts a job model
func NewJobResponse(j *models.Job) JobResponse {
	resp := JobResponse{
		ID:            j.ID,
		Title:         j.Title,
		Company:       j.Company,
		Location:      j.Location,
		Salary:        j.Salary,
		Description:   j.Description,
		Requirements:  nonNil(j.Requirements),
		Departments:   nonNil(j.Departments),
		MinCGPA:       j.MinCGPA,
		ExcludePlaced: j.ExcludePlaced,
		PostedDate:    j.PostedDate,
	}
	if j.Deadline != nil {
		resp.Deadline = j.Deadline.Format("2006-01-02")
	}
	if j.PDFPath != nil && *j.PDFPath != "" {
		resp.PDFFile = filepath.Base(*j.PDFPath)
		resp.PDFURL = JobDocumentRoute + resp.PDFFile
	}
	return resp
}

// NewJobResponses converts a list of jobs
func NewJobResponses(jobs []models.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, NewJobResponse(&jobs[i]))
	}
	return out
}

// CreateJobResponse is returned after posting a job. Notification is set
// when an announcement email was requested.
type CreateJobResponse struct {
	Job          JobResponse   `json:"job"`
	Notification *FanOutResult `json:"notification,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
