package dto

// InviteStudentRequest invites a single student by email
type InviteStudentRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required,department"`
}

// InvitationResponse reports the outcome of a single invitation
type InvitationResponse struct {
	Email      string `json:"email" example:"student@college.edu"`
	Department string `json:"department" example:"Computer Science"`
	// Created is false when the email already had an account
	Created bool `json:"created"`
}

// InvitationDetails is returned when an invitation token is verified
type InvitationDetails struct {
	Email      string `json:"email" example:"student@college.edu"`
	Department string `json:"department" example:"Computer Science"`
}
