package schema

import (
	"fmt"
	"time"
)

// Photo is an image captured for an inspection. Photos exist only locally
// until an upload pass pushes the payload to remote blob storage; they are
// never downloaded back and never deleted by the sync core.
type Photo struct {
	ID           string `json:"id"`
	InspectionID string `json:"inspection_id"`

	Filename string `json:"filename"`
	Data     []byte `json:"data,omitempty"`

	Synced    bool      `json:"synced"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the Photo has valid field values.
func (p *Photo) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.InspectionID == "" {
		return fmt.Errorf("inspection_id is required")
	}
	if p.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if len(p.Data) == 0 {
		return fmt.Errorf("data is required")
	}
	return nil
}

// StoragePath returns the blob-storage object path for this photo,
// keyed by inspection id and filename so re-uploads overwrite in place.
func (p *Photo) StoragePath() string {
	return fmt.Sprintf("%s/%s", p.InspectionID, p.Filename)
}
