// Package model defines the records calciq persists.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/calciq/internal/budget"
)

// SavedPlan is a named budget plan stored for later review.
type SavedPlan struct {
	ID        uuid.UUID    `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Plan      *budget.Plan `json:"plan" yaml:"plan"`
}

// ShortID returns the first eight hex digits of the ID, enough to address a
// plan from the command line.
func (p SavedPlan) ShortID() string {
	return p.ID.String()[:8]
}
