// internal/recruitment/application/transitions.go
package application

import (
	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/models"
)

// allowedTransitions is the pipeline state machine. A status missing
// from the map is terminal. Withdrawal is permitted from every
// non-terminal status, so it appears in each branch.
var allowedTransitions = map[string][]string{
	models.StatusApplied: {
		models.StatusUnderReview,
		models.StatusRejected,
		models.StatusWithdrawn,
	},
	models.StatusUnderReview: {
		models.StatusTestAssigned,
		models.StatusRejected,
		models.StatusWithdrawn,
	},
	models.StatusTestAssigned: {
		models.StatusTestCompleted,
		models.StatusRejected,
		models.StatusWithdrawn,
	},
	models.StatusTestCompleted: {
		models.StatusInterviewScheduled,
		models.StatusRejected,
		models.StatusWithdrawn,
	},
	models.StatusInterviewScheduled: {
		models.StatusAccepted,
		models.StatusRescheduleRequested,
		models.StatusRejected,
		models.StatusWithdrawn,
	},
	models.StatusRescheduleRequested: {
		models.StatusInterviewScheduled,
		models.StatusAccepted,
		models.StatusRejected,
		models.StatusWithdrawn,
	},
}

// CanTransition reports whether the pipeline allows moving from one
// status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a conflict error when the move is not in
// the state machine.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return stderrors.NewInvalidTransitionError(from, to)
	}
	return nil
}

// NextStatuses lists the statuses reachable from the given one.
func NextStatuses(from string) []string {
	out := make([]string, len(allowedTransitions[from]))
	copy(out, allowedTransitions[from])
	return out
}
