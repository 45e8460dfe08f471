package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is a corporate buyer tracked in the registry. Name keeps the
// first-seen formatting; ComparisonKey is the punctuation/case/whitespace
// insensitive dedup key. Counties only ever grows.
type Company struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	ComparisonKey string    `json:"comparison_key" db:"comparison_key"`
	ContactName   string    `json:"contact_name" db:"contact_name"`
	ContactEmail  string    `json:"contact_email" db:"contact_email"`
	Counties      []string  `json:"counties" db:"counties"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// HasCounty reports whether the county is already present, compared
// case-insensitively.
func (c *Company) HasCounty(county string) bool {
	for _, existing := range c.Counties {
		if strings.EqualFold(existing, county) {
			return true
		}
	}
	return false
}
