package models

// ContactRequest is the public contact form
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,loose_email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" validate:"required,max=5000"`
}
