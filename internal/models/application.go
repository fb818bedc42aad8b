package models

import (
	"fmt"
	"strconv"
	"time"
)

// Application status values. Applications move through these via named
// transitions only; withdrawal is a terminal status, never a delete.
const (
	StatusApplied             = "applied"
	StatusUnderReview         = "under_review"
	StatusTestAssigned        = "test_assigned"
	StatusTestCompleted       = "test_completed"
	StatusInterviewScheduled  = "interview_scheduled"
	StatusRescheduleRequested = "interview_reschedule_requested"
	StatusAccepted            = "accepted"
	StatusRejected            = "rejected"
	StatusWithdrawn           = "withdrawn"
)

// IsTerminalStatus reports whether no further transitions are allowed.
func IsTerminalStatus(status string) bool {
	return status == StatusAccepted || status == StatusRejected || status == StatusWithdrawn
}

// SalaryExpectations holds either a single amount or a min/max range.
type SalaryExpectations struct {
	Amount   float64 `json:"amount,omitempty"`
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// Formatted renders the expectation for listings, e.g. "450,000 NGN".
func (s *SalaryExpectations) Formatted() string {
	if s == nil || (s.Amount == 0 && s.Min == 0 && s.Max == 0) {
		return "Not specified"
	}
	currency := s.Currency
	if currency == "" {
		currency = "NGN"
	}
	if s.Amount > 0 {
		return fmt.Sprintf("%s %s", groupThousands(s.Amount), currency)
	}
	return fmt.Sprintf("%s - %s %s", groupThousands(s.Min), groupThousands(s.Max), currency)
}

func groupThousands(v float64) string {
	raw := strconv.FormatFloat(v, 'f', 0, 64)
	neg := false
	if len(raw) > 0 && raw[0] == '-' {
		neg = true
		raw = raw[1:]
	}
	var out []byte
	for i := 0; i < len(raw); i++ {
		if i > 0 && (len(raw)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, raw[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// AvailabilitySlot is a candidate-declared window of availability.
type AvailabilitySlot struct {
	Day  string `json:"day"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Eligibility holds the per-criterion outcome of the evaluator, stored on
// the application at submission time.
type Eligibility struct {
	Location   bool    `json:"location"`
	Age        bool    `json:"age"`
	Experience bool    `json:"experience"`
	Score      float64 `json:"score"`
	IsEligible bool    `json:"isEligible"`
}

// JobApplication is the aggregate root of the pipeline. Identified by the
// (candidate, recruitment request) pair; at most one non-withdrawn
// application exists per pair.
type JobApplication struct {
	ID                   string              `json:"id"`
	CandidateID          string              `json:"candidateId"`
	RecruitmentRequestID string              `json:"recruitmentRequestId"`
	Status               string              `json:"status"`
	CoverLetter          string              `json:"coverLetter,omitempty"`
	Motivation           string              `json:"motivation,omitempty"`
	SalaryExpectations   *SalaryExpectations `json:"salaryExpectations,omitempty"`
	Availability         []AvailabilitySlot  `json:"availability,omitempty"`
	Eligibility          Eligibility         `json:"eligibility"`
	AppliedAt            time.Time           `json:"appliedAt"`
	LastStatusChange     time.Time           `json:"lastStatusChange"`
}

// StatusEvent is one entry of the append-only status history log, kept in
// its own table ordered by sequence.
type StatusEvent struct {
	Sequence      int64     `json:"sequence"`
	ApplicationID string    `json:"applicationId"`
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	Note          string    `json:"note,omitempty"`
	ChangedBy     string    `json:"changedBy"`
	ChangedAt     time.Time `json:"changedAt"`
}
