package dashboard

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidOption        = errors.New("invalid option")
)

const MsgMissingRequiredField = "Please fill in all required fields (Title and Description)"

type Category string

const (
	CategoryFinancialControls  Category = "Financial Controls"
	CategoryProcessImprovement Category = "Process Improvement"
	CategoryCompliance         Category = "Compliance"
	CategoryRiskManagement     Category = "Risk Management"
	CategoryOther              Category = "Other"
)

func Categories() []Category {
	return []Category{
		CategoryFinancialControls,
		CategoryProcessImprovement,
		CategoryCompliance,
		CategoryRiskManagement,
		CategoryOther,
	}
}

// ParseCategory accepts one of Categories. An empty value selects the first.
func ParseCategory(s string) (Category, error) {
	return parseOption(s, Categories())
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ParsePriority accepts one of Priorities. An empty value selects the first.
func ParsePriority(s string) (Priority, error) {
	return parseOption(s, Priorities())
}

// Suggestion is an auditor suggestion. Submissions are validated and
// acknowledged but never stored.
type Suggestion struct {
	Title       string
	Category    Category
	Priority    Priority
	Description string
}

func (s Suggestion) Validate() error {
	if s.Title == "" || s.Description == "" {
		return ErrMissingRequiredField
	}
	return nil
}

// SuggestionStats are the counters on the suggestions tab.
type SuggestionStats struct {
	Total       int
	Pending     int
	Implemented int
	InProgress  int
}

func parseOption[T ~string](s string, options []T) (T, error) {
	if s == "" {
		return options[0], nil
	}
	for _, o := range options {
		if string(o) == s {
			return o, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrInvalidOption, s)
}
