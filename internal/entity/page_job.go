package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
)

// PageJob is the OCR and extraction job of one price-list page.
// Provider, organization and list ids are opaque to this service.
type PageJob struct {
	ID             uuid.UUID           `json:"id"`
	ProviderID     string              `json:"provider_id"`
	OrganizationID string              `json:"organization_id"`
	ListID         string              `json:"list_id"`
	PageNumber     int                 `json:"page_number"`
	SourceURL      string              `json:"source_url"`
	Status         constants.JobStatus `json:"status"`
	Error          string              `json:"error,omitempty"`
	ItemCount      int                 `json:"item_count"`
	Layout         string              `json:"layout,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
