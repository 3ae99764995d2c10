package schema

// ValidationResult is the outcome of validating one property bag.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	// PropertyErrors maps a dotted property path to the errors attributed to it.
	// It is nil when no error is attributed to a path.
	PropertyErrors map[string][]string `json:"propertyErrors,omitempty"`
}

// Invalid returns a failing result holding a single general error.
func Invalid(message string) ValidationResult {
	return ValidationResult{
		Valid:    false,
		Errors:   []string{message},
		Warnings: []string{},
	}
}
