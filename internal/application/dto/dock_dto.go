package dto

import (
	"time"

	"github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

type DockMovementResponse struct {
	ID           string     `json:"id"`
	Branch       string     `json:"branch"`
	Plate        string     `json:"plate"`
	Driver       string     `json:"driver"`
	Carrier      string     `json:"carrier"`
	Document     string     `json:"document"`
	TireCount    int        `json:"tire_count"`
	Status       string     `json:"status"`
	OpenedAt     *time.Time `json:"opened_at,omitempty"`
	ConfirmedBy  string     `json:"confirmed_by,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	ReversedBy   string     `json:"reversed_by,omitempty"`
	ReversedAt   *time.Time `json:"reversed_at,omitempty"`
	ReverseNotes string     `json:"reverse_notes,omitempty"`
}

type DockListResponse struct {
	Items      []DockMovementResponse `json:"items"`
	Pagination viewstate.Pagination   `json:"pagination"`
	ViewState  ViewStateResponse      `json:"view_state"`
}

type ReverseRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=250"`
}
