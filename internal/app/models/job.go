package models

import (
	"time"

	"github.com/yigit/placement/internal/pkg/deptset"
)

// Job is a posted opening
type Job struct {
	ID            int64       `db:"id"`
	Title         string      `db:"title"`
	Company       string      `db:"company"`
	Location      string      `db:"location"`
	Salary        string      `db:"salary"`
	Description   string      `db:"description"`
	Requirements  []string    `db:"requirements"`
	Departments   deptset.Set `db:"departments"`
	MinCGPA       float64     `db:"min_cgpa"`
	Deadline      *time.Time  `db:"deadline"`
	ExcludePlaced bool        `db:"exclude_placed"`
	PDFPath       *string     `db:"pdf_path"`
	PostedDate    time.Time   `db:"posted_date"`

	// RawDepartments is the column value as read, kept for the tolerant
	// visibility decision.
	RawDepartments []byte `db:"-"`
}

// DeadlinePassed reports whether applications are closed at now
func (j *Job) DeadlinePassed(now time.Time) bool {
	if j.Deadline == nil {
		return false
	}
	// deadline is a date: applications stay open through that whole day
	return now.After(j.Deadline.Add(24 * time.Hour))
}
