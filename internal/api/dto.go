package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/habitdash/internal/journal"
	"github.com/starford/habitdash/internal/models"
)

// HabitStats is the per-habit statistics response type (aliased from the
// domain layer).
type HabitStats = models.HabitStats

// HabitsResponse wraps ranked habit statistics.
type HabitsResponse struct {
	Habits []HabitStats `json:"habits" validate:"required"`
}

// RenderResponse is returned after a render request.
type RenderResponse struct {
	Slot string `json:"slot" example:"main" validate:"required"`
	Key  string `json:"key" example:"habit-tracker-main" validate:"required"`
}

// SlotsResponse lists the slots that hold markup.
type SlotsResponse struct {
	Slots []string `json:"slots" validate:"required"`
}

// RangeQuery holds the optional start/end query parameters.
type RangeQuery struct {
	Start string `json:"start" example:"2024-03-01"`
	End   string `json:"end" example:"2024-03-31"`
}

// Validate implements validation.Validatable.
func (q RangeQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Start, validation.Date(journal.DateLayout)),
		validation.Field(&q.End, validation.Date(journal.DateLayout)),
	)
}

// Range converts the query into a journal range.
func (q RangeQuery) Range() (journal.Range, error) {
	if err := q.Validate(); err != nil {
		return journal.Range{}, err
	}
	return journal.ParseRange(q.Start, q.End)
}
