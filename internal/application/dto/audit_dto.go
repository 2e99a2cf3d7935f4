package dto

import (
	"encoding/json"
	"time"
)

type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Action    string          `json:"action"`
	UserID    string          `json:"user_id"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Diff      string          `json:"diff,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditTimelineResponse entradas más recientes primero.
type AuditTimelineResponse struct {
	Items []AuditEntryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
