package models

import "time"

// JobApplication links a student to a job
type JobApplication struct {
	ID        int64             `db:"id"`
	StudentID int64             `db:"student_id"`
	JobID     int64             `db:"job_id"`
	Status    ApplicationStatus `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
}

// AppliedJob is a student's application joined with its job
type AppliedJob struct {
	Application JobApplication
	Job         Job
}

// Applicant is an application joined with the applying student's records
type Applicant struct {
	Application JobApplication
	User        User
	Profile     *Profile // nil when the student has no profile yet
}
