// internal/recruitment/interview/store.go
package interview

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/models"

	"github.com/lib/pq"
)

// Store persists interview invitations.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const invitationColumns = `
	id, candidate_id, recruitment_request_id, application_id,
	interview_type, status, scheduled_at, duration_minutes,
	location, meeting_link, message, candidate_response, responded_at,
	confirmed_attendance, attended_at, reschedule_reason,
	preferred_dates, reschedule_asked_at, rating, decision, feedback,
	completed_at`

func (s *Store) InvitationByID(ctx context.Context, invitationID string) (*models.InterviewInvitation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+invitationColumns+`
		FROM interview_invitations
		WHERE id = $1`, invitationID)

	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewInvitationNotFoundError(invitationID)
	}
	if err != nil {
		return nil, fmt.Errorf("invitation lookup failed: %w", err)
	}
	return inv, nil
}

func (s *Store) ListByCandidate(ctx context.Context, candidateID string) ([]*models.InterviewInvitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+invitationColumns+`
		FROM interview_invitations
		WHERE candidate_id = $1
		ORDER BY scheduled_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("invitation list query failed: %w", err)
	}
	return collectInvitations(rows)
}

// ListUpcoming returns invitations still ahead of the given time that
// the candidate has not declined and which are still open.
func (s *Store) ListUpcoming(ctx context.Context, candidateID string, after time.Time) ([]*models.InterviewInvitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+invitationColumns+`
		FROM interview_invitations
		WHERE candidate_id = $1
		  AND scheduled_at >= $2
		  AND status IN ($3, $4, $5)
		ORDER BY scheduled_at`,
		candidateID, after,
		models.InvitationPending, models.InvitationAccepted, models.InvitationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("upcoming invitation query failed: %w", err)
	}
	return collectInvitations(rows)
}

// RecordResponse stores the candidate's accept/decline answer.
func (s *Store) RecordResponse(ctx context.Context, invitationID, status, response, message string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interview_invitations
		SET status = $1, candidate_response = $2, message = $3, responded_at = $4
		WHERE id = $5 AND status = $6`,
		status, response, message, at, invitationID, models.InvitationPending,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	if affected == 0 {
		return stderrors.NewInvitationClosedError(invitationID, "")
	}
	return nil
}

// RecordAttendance flips a confirmed invitation to in_progress on the
// interview day.
func (s *Store) RecordAttendance(ctx context.Context, invitationID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interview_invitations
		SET status = $1, confirmed_attendance = TRUE, attended_at = $2
		WHERE id = $3 AND status IN ($4, $5)`,
		models.InvitationInProgress, at, invitationID,
		models.InvitationAccepted, models.InvitationConfirmed,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	if affected == 0 {
		return stderrors.NewInvitationClosedError(invitationID, "")
	}
	return nil
}

// RecordRescheduleRequest stores the ask inside the given transaction
// so the application status report commits with it.
func (s *Store) RecordRescheduleRequest(ctx context.Context, tx *sql.Tx, invitationID, reason string, preferredDates []string, at time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE interview_invitations
		SET status = $1, reschedule_reason = $2, preferred_dates = $3, reschedule_asked_at = $4
		WHERE id = $5 AND status NOT IN ($6, $7)`,
		models.InvitationRescheduleRequested, reason, pq.Array(preferredDates), at,
		invitationID, models.InvitationCompleted, models.InvitationCancelled,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	if affected == 0 {
		return stderrors.NewInvitationClosedError(invitationID, "")
	}
	return nil
}

// RecordOutcome closes an interview with the recruiter's verdict.
func (s *Store) RecordOutcome(ctx context.Context, invitationID string, rating *int, decision, feedback string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interview_invitations
		SET status = $1, rating = $2, decision = $3, feedback = $4, completed_at = $5
		WHERE id = $6 AND status NOT IN ($7, $8)`,
		models.InvitationCompleted, rating, decision, feedback, at,
		invitationID, models.InvitationCompleted, models.InvitationCancelled,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	if affected == 0 {
		return stderrors.NewInvitationClosedError(invitationID, "")
	}
	return nil
}

func collectInvitations(rows *sql.Rows) ([]*models.InterviewInvitation, error) {
	defer rows.Close()

	var out []*models.InterviewInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("invitation scan failed: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row rowScanner) (*models.InterviewInvitation, error) {
	var inv models.InterviewInvitation
	err := row.Scan(&inv.ID, &inv.CandidateID, &inv.RecruitmentRequestID, &inv.ApplicationID,
		&inv.InterviewType, &inv.Status, &inv.ScheduledAt, &inv.DurationMinutes,
		&inv.Location, &inv.MeetingLink, &inv.Message, &inv.CandidateResponse, &inv.RespondedAt,
		&inv.ConfirmedAttendance, &inv.AttendedAt, &inv.RescheduleReason,
		pq.Array(&inv.PreferredDates), &inv.RescheduleAskedAt, &inv.Rating, &inv.Decision, &inv.Feedback,
		&inv.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
