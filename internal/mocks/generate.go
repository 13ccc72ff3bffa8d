// Package mocks provides generated mocks for port interfaces.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks.
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for the SessionStore port. This creates MockSessionStore
// with Create, Resolve, and Delete expectations.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=session_store_mock.go github.com/ltm/adventcal/internal/ports SessionStore
