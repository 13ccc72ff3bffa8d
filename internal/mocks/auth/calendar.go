package auth

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ltm/adventcal/internal/domain/model"
	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/ports"
)

var _ ports.CalendarStore = (*MemoryCalendarStore)(nil)

// MemoryCalendarStore is an in-memory calendar store for handler tests.
type MemoryCalendarStore struct {
	mu       sync.Mutex
	messages map[int]string
	opened   map[string]map[int]time.Time
}

// NewMemoryCalendarStore creates a calendar store with placeholder messages
// for every day.
func NewMemoryCalendarStore() *MemoryCalendarStore {
	messages := make(map[int]string, model.DayCount)
	for d := 1; d <= model.DayCount; d++ {
		messages[d] = fmt.Sprintf("message for day %d", d)
	}
	return &MemoryCalendarStore{
		messages: messages,
		opened:   make(map[string]map[int]time.Time),
	}
}

func (m *MemoryCalendarStore) MessageForDay(_ context.Context, day int) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.messages[day]
	if !ok {
		return model.Message{}, apperrors.NotFoundf("no message for day %d", day)
	}
	return model.Message{Day: day, Body: body}, nil
}

func (m *MemoryCalendarStore) OpenDay(_ context.Context, userID string, day int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opened[userID] == nil {
		m.opened[userID] = make(map[int]time.Time)
	}
	if _, ok := m.opened[userID][day]; !ok {
		m.opened[userID][day] = time.Now()
	}
	return nil
}

func (m *MemoryCalendarStore) OpenedDays(_ context.Context, userID string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var days []int
	for d := range m.opened[userID] {
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

func (m *MemoryCalendarStore) IsOpened(_ context.Context, userID string, day int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.opened[userID][day]
	return ok, nil
}
