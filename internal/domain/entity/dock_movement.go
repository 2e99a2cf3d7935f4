package entity

import "time"

// Estados de un movimiento del control de carga de neumáticos en el andén.
const (
	DockStatusOpen      = "Aberto"
	DockStatusConfirmed = "Conferido"
	DockStatusReversed  = "Estornado"
)

// DockMovement movimiento de carga/descarga de neumáticos en el andén.
type DockMovement struct {
	ID           string
	Branch       string
	Plate        string // placa del vehículo
	Driver       string
	Carrier      string
	Document     string
	TireCount    int
	Status       string
	OpenedAt     time.Time
	ConfirmedBy  string
	ConfirmedAt  *time.Time
	ReversedBy   string
	ReversedAt   *time.Time
	ReverseNotes string
}

// CanConfirm la conferencia solo parte de un movimiento abierto.
func (m *DockMovement) CanConfirm() bool {
	return m.Status == DockStatusOpen
}

// CanReverse el estorno solo aplica a un movimiento ya conferido.
func (m *DockMovement) CanReverse() bool {
	return m.Status == DockStatusConfirmed
}
