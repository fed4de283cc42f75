package models

import "encoding/json"

// PortfolioItem is a single piece of work shown on a photographer profile
type PortfolioItem struct {
	ID             string `json:"_id"`
	PhotographerID string `json:"photographerId,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	ImageURL       string `json:"imageUrl"`
}

func (p *PortfolioItem) UnmarshalJSON(b []byte) error {
	type alias PortfolioItem
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

// PortfolioRequest creates or replaces a portfolio item
type PortfolioRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"required"`
	ImageURL       string `json:"imageUrl" validate:"required,url"`
	PhotographerID string `json:"photographerId,omitempty"`
}
