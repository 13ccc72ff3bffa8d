package service

import (
	"context"
	"fmt"

	"github.com/ltm/adventcal/internal/domain/model"
	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/ports"
)

// CalendarService provides day listing, opening, and message retrieval
// for an authenticated user's calendar.
type CalendarService struct {
	store ports.CalendarStore
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(store ports.CalendarStore) *CalendarService {
	return &CalendarService{store: store}
}

// Days returns all calendar doors with the user's opened state.
func (s *CalendarService) Days(ctx context.Context, userID string) ([]model.DayView, error) {
	opened, err := s.store.OpenedDays(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list opened days: %w", err)
	}
	openedSet := make(map[int]bool, len(opened))
	for _, d := range opened {
		openedSet[d] = true
	}

	views := make([]model.DayView, 0, model.DayCount)
	for d := 1; d <= model.DayCount; d++ {
		views = append(views, model.DayView{Day: d, Opened: openedSet[d]})
	}
	return views, nil
}

// Open marks a day opened for the user and returns its message. The write
// happens first; it commits with the request transaction even if something
// later in the request fails with a control signal.
func (s *CalendarService) Open(ctx context.Context, userID string, day int) (model.Message, error) {
	if !model.ValidDay(day) {
		return model.Message{}, apperrors.Displayf("There is no day %d in this calendar.", day)
	}
	if err := s.store.OpenDay(ctx, userID, day); err != nil {
		return model.Message{}, fmt.Errorf("open day: %w", err)
	}
	return s.store.MessageForDay(ctx, day)
}

// Message returns the message behind an already-opened day.
func (s *CalendarService) Message(ctx context.Context, userID string, day int) (model.Message, error) {
	if !model.ValidDay(day) {
		return model.Message{}, apperrors.Displayf("There is no day %d in this calendar.", day)
	}
	opened, err := s.store.IsOpened(ctx, userID, day)
	if err != nil {
		return model.Message{}, fmt.Errorf("check opened: %w", err)
	}
	if !opened {
		return model.Message{}, apperrors.Displayf("Day %d has not been opened yet.", day)
	}
	return s.store.MessageForDay(ctx, day)
}
