// internal/recruitment/application/service.go
package application

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SOL-ICT/recruitment-core/internal/common/database"
	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/common/metrics"
	"github.com/SOL-ICT/recruitment-core/internal/common/validation"
	"github.com/SOL-ICT/recruitment-core/internal/models"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/directory"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/eligibility"

	"github.com/google/uuid"
)

// SubmitInput carries a candidate's application payload. A bare
// expected_salary number is accepted as shorthand for
// {amount, currency: NGN}.
type SubmitInput struct {
	RecruitmentRequestID string                    `json:"recruitment_request_id"`
	CoverLetter          string                    `json:"cover_letter"`
	Motivation           string                    `json:"motivation"`
	SalaryExpectations   models.SalaryExpectations `json:"salary_expectations"`
	ExpectedSalary       float64                   `json:"expected_salary,omitempty"`
	Availability         []models.AvailabilitySlot `json:"availability"`
}

// JobListing pairs an open recruitment request with the caller's
// existing application against it, when one exists.
type JobListing struct {
	Request           *models.RecruitmentRequest `json:"request"`
	HasApplied        bool                       `json:"has_applied"`
	ApplicationID     string                     `json:"application_id,omitempty"`
	ApplicationStatus string                     `json:"application_status,omitempty"`
	AppliedAt         *time.Time                 `json:"applied_at,omitempty"`
}

// ApplicationDetail is the read projection for a single application.
type ApplicationDetail struct {
	Application *models.JobApplication `json:"application"`
	History     []models.StatusEvent   `json:"history"`
}

// Service owns the application lifecycle: submission with screening,
// status transitions, and withdrawal.
type Service struct {
	pg        *database.PostgresClient
	store     *Store
	directory directory.Store
	evaluator *eligibility.Evaluator
	logger    logger.Logger
	now       func() time.Time
}

func NewService(pg *database.PostgresClient, store *Store, dir directory.Store, eval *eligibility.Evaluator, log logger.Logger) *Service {
	return &Service{
		pg:        pg,
		store:     store,
		directory: dir,
		evaluator: eval,
		logger:    log.WithFields(map[string]interface{}{"component": "application-service"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit runs the screening gauntlet and creates the application in
// the applied status. Guards run in a fixed order so callers see
// stable error codes: candidate, request, employment, duplicate.
func (s *Service) Submit(ctx context.Context, actor models.ActorContext, input *SubmitInput) (*models.JobApplication, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	candidate, err := s.directory.CandidateByID(ctx, actor.CandidateID)
	if err != nil {
		return nil, err
	}

	request, err := s.directory.RequestByID(ctx, input.RecruitmentRequestID)
	if err != nil {
		return nil, err
	}
	if !request.IsOpen() {
		return nil, stderrors.NewRequestClosedError(request.ID, request.Status)
	}

	employed, err := s.directory.IsActivelyEmployed(ctx, candidate.ID)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError(err)
	}
	if employed {
		return nil, stderrors.NewCandidateEmployedError(candidate.ID)
	}

	exists, err := s.store.HasLiveApplication(ctx, candidate.ID, request.ID)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError(err)
	}
	if exists {
		return nil, stderrors.NewDuplicateApplicationError(candidate.ID, request.ID)
	}

	result := s.evaluator.Evaluate(candidate, request)

	salary := input.SalaryExpectations
	if salary.Amount == 0 && salary.Min == 0 && salary.Max == 0 && input.ExpectedSalary > 0 {
		salary.Amount = input.ExpectedSalary
	}

	app := &models.JobApplication{
		ID:                   uuid.New().String(),
		CandidateID:          candidate.ID,
		RecruitmentRequestID: request.ID,
		Status:               models.StatusApplied,
		CoverLetter:          input.CoverLetter,
		Motivation:           input.Motivation,
		SalaryExpectations:   normalizeSalary(salary),
		Availability:         input.Availability,
		Eligibility:          result,
		AppliedAt:            s.now(),
		LastStatusChange:     s.now(),
	}

	err = s.pg.WithinTx(ctx, func(tx *sql.Tx) error {
		return s.store.Create(ctx, tx, app, actor.AuditID())
	})
	if err != nil {
		return nil, err
	}

	// Audit trail is best-effort, never fails the submission
	if auditErr := s.store.InsertAudit(ctx, "application_submitted", "application", app.ID, map[string]interface{}{
		"candidateId":          candidate.ID,
		"recruitmentRequestId": request.ID,
		"eligibilityScore":     result.Score,
		"isEligible":           result.IsEligible,
	}); auditErr != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         auditErr.Error(),
		})
	}

	metrics.ApplicationsSubmitted.WithLabelValues(fmt.Sprintf("%t", result.IsEligible)).Inc()

	s.logger.Info("application submitted", map[string]interface{}{
		"applicationId":        app.ID,
		"candidateId":          candidate.ID,
		"recruitmentRequestId": request.ID,
		"eligibilityScore":     result.Score,
		"isEligible":           result.IsEligible,
	})

	return app, nil
}

// Transition moves an application to a new status and appends the
// status event, all in one transaction.
func (s *Service) Transition(ctx context.Context, actor models.ActorContext, applicationID, to, note string) (*models.JobApplication, error) {
	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	from := app.Status
	at := s.now()

	err = s.pg.WithinTx(ctx, func(tx *sql.Tx) error {
		return s.store.Transition(ctx, tx, applicationID, from, to, note, actor.AuditID(), at)
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(from, to).Inc()

	s.logger.Info("application status changed", map[string]interface{}{
		"applicationId": applicationID,
		"from":          from,
		"to":            to,
		"changedBy":     actor.AuditID(),
	})

	app.Status = to
	app.LastStatusChange = at
	return app, nil
}

// TransitionTx reports a status change from inside an existing
// transaction, for flows that change other rows atomically with the
// application status.
func (s *Service) TransitionTx(ctx context.Context, tx *sql.Tx, actor models.ActorContext, applicationID, from, to, note string) error {
	if err := s.store.Transition(ctx, tx, applicationID, from, to, note, actor.AuditID(), s.now()); err != nil {
		return err
	}
	metrics.StatusTransitions.WithLabelValues(from, to).Inc()
	return nil
}

// FlagRescheduleTx marks the linked application as stalled on an
// interview reschedule ask, starting from whatever status it holds
// right now. A repeated ask while the flag is already set only appends
// the status event, so a second invitation never conflicts.
func (s *Service) FlagRescheduleTx(ctx context.Context, tx *sql.Tx, actor models.ActorContext, applicationID, note string) error {
	status, err := s.store.StatusTx(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	if status == models.StatusRescheduleRequested {
		return s.store.insertEvent(ctx, tx, applicationID, status, status, note, actor.AuditID(), s.now())
	}
	return s.TransitionTx(ctx, tx, actor, applicationID, status, models.StatusRescheduleRequested, note)
}

// Withdraw lets a candidate pull their own application from any
// non-terminal status. The reason, when given, becomes the status
// event note.
func (s *Service) Withdraw(ctx context.Context, actor models.ActorContext, applicationID, reason string) (*models.JobApplication, error) {
	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if actor.IsCandidate() && app.CandidateID != actor.CandidateID {
		return nil, stderrors.NewApplicationNotFoundError(applicationID)
	}

	note := "Application withdrawn by candidate"
	if reason != "" {
		note = reason
	}
	return s.Transition(ctx, actor, applicationID, models.StatusWithdrawn, note)
}

// Get returns the application with its full status history. Candidates
// only see their own applications.
func (s *Service) Get(ctx context.Context, actor models.ActorContext, applicationID string) (*ApplicationDetail, error) {
	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if actor.IsCandidate() && app.CandidateID != actor.CandidateID {
		return nil, stderrors.NewApplicationNotFoundError(applicationID)
	}

	events, err := s.store.Events(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	return &ApplicationDetail{Application: app, History: events}, nil
}

// ListMine returns the candidate's applications, newest first.
func (s *Service) ListMine(ctx context.Context, actor models.ActorContext) ([]*models.JobApplication, error) {
	return s.store.ListByCandidate(ctx, actor.CandidateID)
}

// ListAvailableJobs returns open recruitment requests annotated with
// whether the candidate already applied.
func (s *Service) ListAvailableJobs(ctx context.Context, actor models.ActorContext) ([]*JobListing, error) {
	requests, err := s.directory.OpenRequests(ctx)
	if err != nil {
		return nil, err
	}

	applied := map[string]AppliedRef{}
	if actor.CandidateID != "" {
		applied, err = s.store.AppliedRequests(ctx, actor.CandidateID)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*JobListing, 0, len(requests))
	for _, r := range requests {
		listing := &JobListing{Request: r}
		if ref, ok := applied[r.ID]; ok {
			appliedAt := ref.AppliedAt
			listing.HasApplied = true
			listing.ApplicationID = ref.ApplicationID
			listing.ApplicationStatus = ref.Status
			listing.AppliedAt = &appliedAt
		}
		out = append(out, listing)
	}
	return out, nil
}

func validateSubmitInput(input *SubmitInput) error {
	if input.RecruitmentRequestID == "" {
		return stderrors.NewValidationError("recruitment_request_id is required")
	}

	salary := input.SalaryExpectations
	if input.ExpectedSalary < 0 {
		return stderrors.NewValidationError("expected_salary must not be negative")
	}
	if salary.Amount < 0 || salary.Min < 0 || salary.Max < 0 {
		return stderrors.NewValidationError("salary expectations must not be negative")
	}
	if salary.Amount == 0 && (salary.Min == 0 || salary.Max == 0) && !(salary.Min == 0 && salary.Max == 0) {
		return stderrors.NewValidationError("salary range requires both min and max")
	}
	if salary.Min > 0 && salary.Max > 0 && salary.Min > salary.Max {
		return stderrors.NewValidationError("salary range min must not exceed max")
	}

	for i, slot := range input.Availability {
		if !validation.ValidateWeekday(slot.Day) {
			return stderrors.NewValidationError(fmt.Sprintf("availability[%d].day is not a weekday", i))
		}
		if !validation.ValidateTimeRange(slot.From, slot.To) {
			return stderrors.NewValidationError(fmt.Sprintf("availability[%d] must be HH:MM and end after it starts", i))
		}
	}

	return nil
}

// normalizeSalary fills the default currency and clears the unused
// shape so stored payloads always look the same.
func normalizeSalary(salary models.SalaryExpectations) *models.SalaryExpectations {
	if salary.Amount == 0 && salary.Min == 0 && salary.Max == 0 {
		return nil
	}
	if salary.Currency == "" {
		salary.Currency = "NGN"
	}
	if salary.Amount > 0 {
		salary.Min, salary.Max = 0, 0
	}
	return &salary
}
