package firm

import (
	"fmt"
	"strings"

	"github.com/barrister-bot/barrister/pkg/rules"
)

// ErrPermissionDenied is returned when the actor lacks the required
// authority. Always recoverable: callers inform the user and stop.
var ErrPermissionDenied = fmt.Errorf("you do not have permission to perform this action")

// ErrAlreadyStaff is returned when hiring a user who already holds an active record
var ErrAlreadyStaff = fmt.Errorf("user is already an active staff member")

// ErrSelfTarget is returned for operations a staff member may not apply to themselves
var ErrSelfTarget = fmt.Errorf("you cannot perform this action on yourself")

// RuleViolationError carries a failed validation result across the service
// boundary so callers can distinguish bypassable from terminal failures and
// surface counts in their prompts.
type RuleViolationError struct {
	Result rules.Result
}

func (e *RuleViolationError) Error() string {
	if len(e.Result.Errors) == 0 {
		return "business rule violation"
	}
	return strings.Join(e.Result.Errors, "; ")
}

// BypassAvailable reports whether a guild owner could override this failure
func (e *RuleViolationError) BypassAvailable() bool {
	return e.Result.BypassAvailable
}
