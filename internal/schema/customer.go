package schema

import "time"

// Customer is a client site owner pulled down from the remote backend.
// Customers are read-only on the device: they are created and updated only
// by the remote side and replaced wholesale on every download.
type Customer struct {
	ID string `json:"id"`

	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
