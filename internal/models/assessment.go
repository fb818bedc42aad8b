package models

import "time"

// Test assignment status values. "expired" is derived at read time from
// expires_at; it is never written as a transition.
const (
	AssignmentPending    = "pending"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
	AssignmentExpired    = "expired"
)

// GradeBand maps a minimum score to a letter grade. Bands are carried
// on the Test so grading stays configuration-driven.
type GradeBand struct {
	MinScore float64 `json:"minScore"`
	Grade    string  `json:"grade"`
}

// Test is a competency test definition with ordered questions.
type Test struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description,omitempty"`
	Instructions       string      `json:"instructions,omitempty"`
	TimeLimitMinutes   int         `json:"timeLimitMinutes"`
	PassScore          float64     `json:"passScore"`
	AllowReview        bool        `json:"allowReview"`
	RandomizeQuestions bool        `json:"randomizeQuestions"`
	GradeBands         []GradeBand `json:"gradeBands,omitempty"`
	Questions          []TestQuestion
}

// TestQuestion holds one question. CorrectAnswers may use letter codes
// (A-D) or zero-based indexes; the first entry is authoritative.
type TestQuestion struct {
	ID             string   `json:"id"`
	TestID         string   `json:"testId"`
	Question       string   `json:"question"`
	Type           string   `json:"type"`
	Options        []string `json:"options"`
	Points         int      `json:"points"`
	OrderNumber    int      `json:"orderNumber"`
	Required       bool     `json:"required"`
	CorrectAnswers []string `json:"correctAnswers,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
}

// TestAssignment binds a candidate to a test instance for an application.
type TestAssignment struct {
	ID                   string     `json:"id"`
	TestID               string     `json:"testId"`
	CandidateID          string     `json:"candidateId"`
	RecruitmentRequestID string     `json:"recruitmentRequestId"`
	ApplicationID        string     `json:"applicationId"`
	Status               string     `json:"status"`
	AssignedAt           time.Time  `json:"assignedAt"`
	StartedAt            *time.Time `json:"startedAt,omitempty"`
	ExpiresAt            *time.Time `json:"expiresAt,omitempty"`
}

// IsExpired reports the derived expiry: past the deadline and not completed.
func (a TestAssignment) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt) && a.Status != AssignmentCompleted
}

// EffectiveStatus folds derived expiry into the stored status.
func (a TestAssignment) EffectiveStatus(now time.Time) string {
	if a.IsExpired(now) {
		return AssignmentExpired
	}
	return a.Status
}

// TestResult is the immutable outcome of one completed assignment.
type TestResult struct {
	ID               string            `json:"id"`
	TestAssignmentID string            `json:"testAssignmentId"`
	TestID           string            `json:"testId"`
	CandidateID      string            `json:"candidateId"`
	Answers          map[string]string `json:"answers"`
	TotalQuestions   int               `json:"totalQuestions"`
	CorrectAnswers   int               `json:"correctAnswers"`
	ScorePercentage  float64           `json:"scorePercentage"`
	Passed           bool              `json:"passed"`
	Grade            string            `json:"grade"`
	PerformanceLevel string            `json:"performanceLevel"`
	TimeTakenMinutes int               `json:"timeTakenMinutes"`
	AutoSubmitted    bool              `json:"autoSubmitted"`
	StartedAt        *time.Time        `json:"startedAt,omitempty"`
	CompletedAt      time.Time         `json:"completedAt"`
}
