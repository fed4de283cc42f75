package models

// RatingRequest is the browser payload for rating a completed booking
type RatingRequest struct {
	PhotographerID string `json:"photographerId" validate:"required"`
	BookingID      string `json:"bookingId" validate:"required"`
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	Comment        string `json:"comment" validate:"max=1000"`
}

// Rating is the record sent to POST /photographers/rate/:photographerId
type Rating struct {
	PhotographerID string `json:"photographerId"`
	UserID         string `json:"userId"`
	BookingID      string `json:"bookingId"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}

// RatingResponse is what the backend returns after recording a rating
type RatingResponse struct {
	Message       string   `json:"message"`
	AverageRating *float64 `json:"averageRating,omitempty"`
}
