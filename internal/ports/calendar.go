package ports

import (
	"context"

	"github.com/ltm/adventcal/internal/domain/model"
)

// CalendarStore persists calendar messages and per-user opened days.
type CalendarStore interface {
	// MessageForDay returns the hidden message behind a day.
	MessageForDay(ctx context.Context, day int) (model.Message, error)

	// OpenDay marks a day opened for a user. Opening an already-open day
	// is a no-op.
	OpenDay(ctx context.Context, userID string, day int) error

	// OpenedDays lists the days a user has opened, ascending.
	OpenedDays(ctx context.Context, userID string) ([]int, error)

	// IsOpened reports whether the user has opened the day.
	IsOpened(ctx context.Context, userID string, day int) (bool, error)
}
