// internal/recruitment/interview/service.go
package interview

import (
	"context"
	"database/sql"
	"time"

	"github.com/SOL-ICT/recruitment-core/internal/common/database"
	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/common/metrics"
	"github.com/SOL-ICT/recruitment-core/internal/models"
)

// applicationReporter surfaces reschedule requests on the linked
// application inside the same transaction. The application side picks
// the starting status itself, so a repeated ask cannot conflict.
type applicationReporter interface {
	FlagRescheduleTx(ctx context.Context, tx *sql.Tx, actor models.ActorContext, applicationID, note string) error
}

// InvitationView is the candidate-facing projection. The venue field
// depends on the interview type: virtual and phone interviews expose
// the meeting link, physical ones the location.
type InvitationView struct {
	Invitation *models.InterviewInvitation `json:"invitation"`
	Venue      string                      `json:"venue,omitempty"`
	IsToday    bool                        `json:"is_today"`
	IsOverdue  bool                        `json:"is_overdue"`
}

// Service owns the interview invitation lifecycle on the candidate
// side: responding, confirming attendance and asking to reschedule.
type Service struct {
	pg              *database.PostgresClient
	store           *Store
	apps            applicationReporter
	rescheduleAhead time.Duration
	logger          logger.Logger
	now             func() time.Time
}

func NewService(pg *database.PostgresClient, store *Store, apps applicationReporter, rescheduleWindowHours int, log logger.Logger) *Service {
	return &Service{
		pg:              pg,
		store:           store,
		apps:            apps,
		rescheduleAhead: time.Duration(rescheduleWindowHours) * time.Hour,
		logger:          log.WithFields(map[string]interface{}{"component": "interview-service"}),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// List returns all of the candidate's invitations, newest slot first.
func (s *Service) List(ctx context.Context, actor models.ActorContext) ([]*InvitationView, error) {
	invitations, err := s.store.ListByCandidate(ctx, actor.CandidateID)
	if err != nil {
		return nil, err
	}
	return project(invitations, s.now()), nil
}

// ListUpcoming returns open invitations still ahead of now.
func (s *Service) ListUpcoming(ctx context.Context, actor models.ActorContext) ([]*InvitationView, error) {
	invitations, err := s.store.ListUpcoming(ctx, actor.CandidateID, s.now())
	if err != nil {
		return nil, err
	}
	return project(invitations, s.now()), nil
}

// Respond records the candidate's answer to a pending invitation.
// Accepting moves the invitation straight to confirmed.
func (s *Service) Respond(ctx context.Context, actor models.ActorContext, invitationID, response, message string) (*models.InterviewInvitation, error) {
	inv, err := s.ownedInvitation(ctx, actor, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.IsClosed() {
		return nil, stderrors.NewInvitationClosedError(invitationID, inv.Status)
	}

	var status string
	switch response {
	case models.InvitationAccepted:
		status = models.InvitationConfirmed
	case models.InvitationDeclined:
		status = models.InvitationDeclined
	default:
		return nil, stderrors.NewInvalidInvitationResponseError(response)
	}

	at := s.now()
	if err := s.store.RecordResponse(ctx, invitationID, status, response, message, at); err != nil {
		return nil, err
	}

	metrics.InvitationUpdates.WithLabelValues("respond").Inc()

	s.logger.Info("invitation response recorded", map[string]interface{}{
		"invitationId": invitationID,
		"candidateId":  actor.CandidateID,
		"response":     response,
		"status":       status,
	})

	inv.Status = status
	inv.CandidateResponse = response
	inv.Message = message
	inv.RespondedAt = &at
	return inv, nil
}

// ConfirmAttendance marks the candidate as present. It only works on
// or after the interview day; confirming early is a conflict.
func (s *Service) ConfirmAttendance(ctx context.Context, actor models.ActorContext, invitationID string) (*models.InterviewInvitation, error) {
	inv, err := s.ownedInvitation(ctx, actor, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.IsClosed() {
		return nil, stderrors.NewInvitationClosedError(invitationID, inv.Status)
	}

	now := s.now()
	scheduledDay := inv.ScheduledAt.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	if scheduledDay.After(today) {
		return nil, stderrors.NewAttendanceNotDueError(invitationID)
	}

	if err := s.store.RecordAttendance(ctx, invitationID, now); err != nil {
		return nil, err
	}

	metrics.InvitationUpdates.WithLabelValues("confirm_attendance").Inc()

	s.logger.Info("attendance confirmed", map[string]interface{}{
		"invitationId": invitationID,
		"candidateId":  actor.CandidateID,
	})

	inv.Status = models.InvitationInProgress
	inv.ConfirmedAttendance = true
	inv.AttendedAt = &now
	return inv, nil
}

// RequestReschedule asks to move the slot. The ask must come at least
// the configured window ahead of the scheduled time; exactly on the
// boundary is allowed. The linked application is flagged in the same
// transaction so recruiters see the pipeline stall.
func (s *Service) RequestReschedule(ctx context.Context, actor models.ActorContext, invitationID, reason string, preferredDates []string) (*models.InterviewInvitation, error) {
	inv, err := s.ownedInvitation(ctx, actor, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.IsClosed() {
		return nil, stderrors.NewInvitationClosedError(invitationID, inv.Status)
	}

	now := s.now()
	if inv.ScheduledAt.Sub(now) < s.rescheduleAhead {
		return nil, stderrors.NewRescheduleWindowClosedError(invitationID, int(s.rescheduleAhead.Hours()))
	}

	err = s.pg.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.store.RecordRescheduleRequest(ctx, tx, invitationID, reason, preferredDates, now); err != nil {
			return err
		}
		if inv.ApplicationID != "" {
			return s.apps.FlagRescheduleTx(ctx, tx, actor, inv.ApplicationID,
				"Candidate requested interview reschedule")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitationUpdates.WithLabelValues("request_reschedule").Inc()

	s.logger.Info("reschedule requested", map[string]interface{}{
		"invitationId": invitationID,
		"candidateId":  actor.CandidateID,
		"reason":       reason,
	})

	inv.Status = models.InvitationRescheduleRequested
	inv.RescheduleReason = reason
	inv.PreferredDates = preferredDates
	inv.RescheduleAskedAt = &now
	return inv, nil
}

// Complete records the recruiter's verdict and closes the interview.
func (s *Service) Complete(ctx context.Context, actor models.ActorContext, invitationID string, rating *int, decision, feedback string) (*models.InterviewInvitation, error) {
	inv, err := s.store.InvitationByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.IsClosed() {
		return nil, stderrors.NewInvitationClosedError(invitationID, inv.Status)
	}

	now := s.now()
	if err := s.store.RecordOutcome(ctx, invitationID, rating, decision, feedback, now); err != nil {
		return nil, err
	}

	metrics.InvitationUpdates.WithLabelValues("complete").Inc()

	s.logger.Info("interview completed", map[string]interface{}{
		"invitationId": invitationID,
		"decision":     decision,
		"completedBy":  actor.AuditID(),
	})

	inv.Status = models.InvitationCompleted
	inv.Rating = rating
	inv.Decision = decision
	inv.Feedback = feedback
	inv.CompletedAt = &now
	return inv, nil
}

func (s *Service) ownedInvitation(ctx context.Context, actor models.ActorContext, invitationID string) (*models.InterviewInvitation, error) {
	inv, err := s.store.InvitationByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if actor.IsCandidate() && inv.CandidateID != actor.CandidateID {
		return nil, stderrors.NewInvitationNotFoundError(invitationID)
	}
	return inv, nil
}

func project(invitations []*models.InterviewInvitation, now time.Time) []*InvitationView {
	today := now.Truncate(24 * time.Hour)
	out := make([]*InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		venue := inv.Location
		if inv.InterviewType == models.InterviewVirtual || inv.InterviewType == models.InterviewPhone {
			venue = inv.MeetingLink
		}
		out = append(out, &InvitationView{
			Invitation: inv,
			Venue:      venue,
			IsToday:    inv.ScheduledAt.Truncate(24 * time.Hour).Equal(today),
			IsOverdue:  inv.ScheduledAt.Before(now) && !inv.IsClosed(),
		})
	}
	return out
}
