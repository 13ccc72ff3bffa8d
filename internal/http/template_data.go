package httpx

import "github.com/ltm/adventcal/internal/domain/model"

// CalendarPageData is the view model for the calendar page.
type CalendarPageData struct {
	Email         string
	IsAdmin       bool
	Impersonating bool
	ActingEmail   string
	Days          []model.DayView
	CSRFToken     string
}

// DayFragmentData is the view model for a single opened day fragment.
type DayFragmentData struct {
	Day  int
	Body string
}

// ErrorFragmentData is the view model for the inline error fragment.
type ErrorFragmentData struct {
	Message string
}
