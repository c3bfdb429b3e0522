package schema

import "time"

// Door is a physical door at a customer site. Doors reference their customer
// by id only; the reference is not enforced, so a door whose customer is
// missing locally is tolerated rather than rejected.
type Door struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`

	Location string `json:"location"`
	DoorType string `json:"door_type,omitempty"` // fire, entry, emergency_exit, ...

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
