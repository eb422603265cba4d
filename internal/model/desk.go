package model

// Desk is a bookable physical resource. Desks come from configuration and
// are never persisted.
type Desk struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}
