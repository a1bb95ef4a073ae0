package models

import "time"

// DocumentCounter holds the last issued sequence per document series
// ("invoice" / "receipt"). Incremented under a row lock inside the same
// transaction that persists the payment, so two concurrent mutations can
// never read the same value.
type DocumentCounter struct {
	Series    string    `gorm:"size:20;primary_key" json:"series"`
	Value     int64     `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
