package service

import "strings"

// EmailSet is a case-insensitive membership set for configured email
// allow-lists. Entries are normalized once at construction.
type EmailSet map[string]bool

// NewEmailSet builds a set from configured entries, lowercasing and
// trimming each. Empty entries are dropped.
func NewEmailSet(emails []string) EmailSet {
	set := make(EmailSet, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = true
		}
	}
	return set
}

// Contains reports membership, case-insensitively.
func (s EmailSet) Contains(email string) bool {
	return s[strings.ToLower(strings.TrimSpace(email))]
}
