// Package common defines sentinel errors shared by repositories and services.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Query building failed before reaching the database.
	ErrorBuildingQuery = errors.New("building query failed")
)
