package entity

import (
	"time"

	"github.com/google/uuid"
)

// PriceItem is a stored price-list row, one extracted line item tagged with the
// ids of the page it came from.
type PriceItem struct {
	ID             uuid.UUID `json:"id"`
	JobID          uuid.UUID `json:"job_id"`
	ProviderID     string    `json:"provider_id"`
	OrganizationID string    `json:"organization_id"`
	ListID         string    `json:"list_id"`
	PageNumber     int       `json:"page_number"`
	Position       int       `json:"position"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	Unit           string    `json:"unit"`
	Quantity       float64   `json:"quantity"`
	DisplayFormat  string    `json:"display_format"`
	VATPercent     float64   `json:"vat_percent"`
	WastePercent   float64   `json:"waste_percent"`
	CreatedAt      time.Time `json:"created_at"`
}
