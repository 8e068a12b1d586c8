package rules

// Result is the structured outcome of a rule evaluation. Expected business
// conditions (denial, limit exceeded) are reported here, never as errors.
//
// Invariants: Valid implies Errors is empty; BypassAvailable implies !Valid.
// CurrentCount/MaxCount are set only by limit-style checks.
type Result struct {
	Valid           bool                   `json:"valid"`
	Errors          []string               `json:"errors,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
	BypassAvailable bool                   `json:"bypass_available"`
	CurrentCount    *int                   `json:"current_count,omitempty"`
	MaxCount        *int                   `json:"max_count,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// OK returns a passing result
func OK() Result {
	return Result{Valid: true}
}

// Fail returns a failing result with the given error messages
func Fail(errs ...string) Result {
	return Result{Valid: false, Errors: errs}
}

// FailWithCounts returns a failing, bypass-eligible limit result
func FailWithCounts(message string, current, max int) Result {
	return Result{
		Valid:           false,
		Errors:          []string{message},
		BypassAvailable: true,
		CurrentCount:    &current,
		MaxCount:        &max,
	}
}

// WithWarning appends a non-blocking notice
func (r Result) WithWarning(w string) Result {
	r.Warnings = append(r.Warnings, w)
	return r
}

// WithMeta attaches a metadata key
func (r Result) WithMeta(key string, value interface{}) Result {
	if r.Metadata == nil {
		r.Metadata = make(map[string]interface{})
	}
	r.Metadata[key] = value
	return r
}

// Merge folds another result into this one. The merged result is valid only
// if both are; counts and bypass eligibility are taken from whichever side
// carries them.
func (r Result) Merge(other Result) Result {
	merged := Result{
		Valid:           r.Valid && other.Valid,
		Errors:          append(append([]string{}, r.Errors...), other.Errors...),
		Warnings:        append(append([]string{}, r.Warnings...), other.Warnings...),
		BypassAvailable: r.BypassAvailable || other.BypassAvailable,
		CurrentCount:    r.CurrentCount,
		MaxCount:        r.MaxCount,
	}
	if merged.CurrentCount == nil {
		merged.CurrentCount = other.CurrentCount
	}
	if merged.MaxCount == nil {
		merged.MaxCount = other.MaxCount
	}
	if len(r.Metadata) > 0 || len(other.Metadata) > 0 {
		merged.Metadata = make(map[string]interface{}, len(r.Metadata)+len(other.Metadata))
		for k, v := range r.Metadata {
			merged.Metadata[k] = v
		}
		for k, v := range other.Metadata {
			merged.Metadata[k] = v
		}
	}
	if len(merged.Errors) == 0 {
		merged.Errors = nil
	}
	if len(merged.Warnings) == 0 {
		merged.Warnings = nil
	}
	return merged
}
