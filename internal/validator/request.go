// Package validator checks request-supplied enum values before they reach
// the database.
package validator

import "github.com/scorecard/api/internal/model"

var validLevels = map[string]struct{}{
	model.LevelNeutral:  {},
	model.LevelMinor:    {},
	model.LevelMajor:    {},
	model.LevelCritical: {},
}

var validTypes = map[string]struct{}{
	model.TypeSource: {},
	model.TypeTarget: {},
}

// ValidLevel reports whether level is a known error severity.
func ValidLevel(level string) bool {
	_, ok := validLevels[level]
	return ok
}

// ValidType reports whether errType is a known error direction.
func ValidType(errType string) bool {
	_, ok := validTypes[errType]
	return ok
}
