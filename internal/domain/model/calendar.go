package model

import "time"

// DayCount is the number of doors in the calendar.
const DayCount = 24

// Message is the hidden text behind one calendar day.
type Message struct {
	Day  int    `json:"day"`
	Body string `json:"body"`
}

// OpenedDay records that a user opened a calendar day.
type OpenedDay struct {
	UserID   string    `json:"user_id"`
	Day      int       `json:"day"`
	OpenedAt time.Time `json:"opened_at"`
}

// DayView is a single door as rendered on the calendar page.
type DayView struct {
	Day    int
	Opened bool
}

// ValidDay reports whether day is within the calendar range.
func ValidDay(day int) bool {
	return day >= 1 && day <= DayCount
}
