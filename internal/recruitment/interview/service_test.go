// internal/recruitment/interview/service_test.go
package interview

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/SOL-ICT/recruitment-core/internal/common/database"
	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeReporter struct {
	calls []string
	fail  error
}

func (f *fakeReporter) FlagRescheduleTx(ctx context.Context, tx *sql.Tx, actor models.ActorContext, applicationID, note string) error {
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, applicationID+":"+note)
	return nil
}

func candidateActor() models.ActorContext {
	return models.ActorContext{ActorID: "cand-001", CandidateID: "cand-001", Role: models.RoleCandidate}
}

// frozenNow keeps date math deterministic across the tests.
func frozenNow() time.Time {
	return time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
}

func invitationColumnNames() []string {
	return []string{"id", "candidate_id", "recruitment_request_id", "application_id",
		"interview_type", "status", "scheduled_at", "duration_minutes",
		"location", "meeting_link", "message", "candidate_response", "responded_at",
		"confirmed_attendance", "attended_at", "reschedule_reason",
		"preferred_dates", "reschedule_asked_at", "rating", "decision", "feedback",
		"completed_at"}
}

func invitationRow(status, interviewType string, scheduledAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(invitationColumnNames()).
		AddRow("inv-001", "cand-001", "req-001", "app-001",
			interviewType, status, scheduledAt, 45,
			"12 Marina Road, Lagos", "https://meet.example.com/inv-001", "", "", nil,
			false, nil, "",
			[]byte(`{}`), nil, nil, "", "",
			nil)
}

func newTestService(db *sql.DB, reporter *fakeReporter) *Service {
	svc := NewService(&database.PostgresClient{DB: db}, NewStore(db), reporter, 24, logger.NewNoOpLogger())
	svc.now = frozenNow
	return svc
}

// ==========================
// Respond Tests
// ==========================

func TestRespond_AcceptConfirmsInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(72 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WithArgs("inv-001").
		WillReturnRows(invitationRow(models.InvitationPending, models.InterviewVirtual, scheduled))
	mock.ExpectExec(`UPDATE interview_invitations`).
		WithArgs(models.InvitationConfirmed, models.InvitationAccepted, "Looking forward to it",
			sqlmock.AnyArg(), "inv-001", models.InvitationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := newTestService(db, &fakeReporter{})
	inv, err := svc.Respond(context.Background(), candidateActor(), "inv-001", models.InvitationAccepted, "Looking forward to it")

	assert.NoError(t, err)
	assert.Equal(t, models.InvitationConfirmed, inv.Status)
	assert.Equal(t, models.InvitationAccepted, inv.CandidateResponse)
	assert.NotNil(t, inv.RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRespond_Decline(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(72 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationPending, models.InterviewVirtual, scheduled))
	mock.ExpectExec(`UPDATE interview_invitations`).
		WithArgs(models.InvitationDeclined, models.InvitationDeclined, "",
			sqlmock.AnyArg(), "inv-001", models.InvitationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := newTestService(db, &fakeReporter{})
	inv, err := svc.Respond(context.Background(), candidateActor(), "inv-001", models.InvitationDeclined, "")

	assert.NoError(t, err)
	assert.Equal(t, models.InvitationDeclined, inv.Status)
}

func TestRespond_InvalidAnswer(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(72 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationPending, models.InterviewVirtual, scheduled))

	svc := newTestService(db, &fakeReporter{})
	_, err = svc.Respond(context.Background(), candidateActor(), "inv-001", "maybe", "")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeInvalidInvitationResponse, se.Code)
	assert.Equal(t, stderrors.KindValidation, se.Kind)
}

func TestRespond_CompletedInvitationConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(-72 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationCompleted, models.InterviewVirtual, scheduled))

	svc := newTestService(db, &fakeReporter{})
	_, err = svc.Respond(context.Background(), candidateActor(), "inv-001", models.InvitationAccepted, "")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeInvitationClosed, se.Code)
	assert.Equal(t, stderrors.KindConflict, se.Kind)
}

// ==========================
// Attendance Tests
// ==========================

func TestConfirmAttendance_OnInterviewDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Same day as frozenNow, later hour
	scheduled := time.Date(2026, 8, 10, 14, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationConfirmed, models.InterviewPhysical, scheduled))
	mock.ExpectExec(`UPDATE interview_invitations`).
		WithArgs(models.InvitationInProgress, sqlmock.AnyArg(), "inv-001",
			models.InvitationAccepted, models.InvitationConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := newTestService(db, &fakeReporter{})
	inv, err := svc.ConfirmAttendance(context.Background(), candidateActor(), "inv-001")

	assert.NoError(t, err)
	assert.Equal(t, models.InvitationInProgress, inv.Status)
	assert.True(t, inv.ConfirmedAttendance)
	assert.NotNil(t, inv.AttendedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmAttendance_TooEarlyConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(48 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationConfirmed, models.InterviewPhysical, scheduled))

	svc := newTestService(db, &fakeReporter{})
	_, err = svc.ConfirmAttendance(context.Background(), candidateActor(), "inv-001")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeAttendanceNotDue, se.Code)
}

func TestConfirmAttendance_PastInterviewDateStillWorks(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(-24 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationConfirmed, models.InterviewPhysical, scheduled))
	mock.ExpectExec(`UPDATE interview_invitations`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := newTestService(db, &fakeReporter{})
	inv, err := svc.ConfirmAttendance(context.Background(), candidateActor(), "inv-001")

	assert.NoError(t, err)
	assert.True(t, inv.ConfirmedAttendance)
}

// ==========================
// Reschedule Tests
// ==========================

func TestRequestReschedule_InsideWindowReportsToApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	reporter := &fakeReporter{}
	scheduled := frozenNow().Add(72 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationConfirmed, models.InterviewVirtual, scheduled))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE interview_invitations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newTestService(db, reporter)
	inv, err := svc.RequestReschedule(context.Background(), candidateActor(), "inv-001",
		"Travelling for a family event", []string{"2026-08-20", "2026-08-21"})

	assert.NoError(t, err)
	assert.Equal(t, models.InvitationRescheduleRequested, inv.Status)
	assert.Equal(t, []string{"2026-08-20", "2026-08-21"}, inv.PreferredDates)
	assert.Len(t, reporter.calls, 1)
	assert.Equal(t, "app-001:Candidate requested interview reschedule", reporter.calls[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestReschedule_ExactlyOnBoundaryAllowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(24 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationConfirmed, models.InterviewVirtual, scheduled))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE interview_invitations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newTestService(db, &fakeReporter{})
	_, err = svc.RequestReschedule(context.Background(), candidateActor(), "inv-001", "Clash", nil)

	assert.NoError(t, err)
}

func TestRequestReschedule_WindowClosed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(23 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationConfirmed, models.InterviewVirtual, scheduled))

	svc := newTestService(db, &fakeReporter{})
	_, err = svc.RequestReschedule(context.Background(), candidateActor(), "inv-001", "Clash", nil)

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeRescheduleWindowClosed, se.Code)
	assert.Equal(t, stderrors.KindConflict, se.Kind)
}

func TestRequestReschedule_ApplicationReportFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	reporter := &fakeReporter{fail: stderrors.NewInvalidTransitionError(models.StatusAccepted, models.StatusRescheduleRequested)}
	scheduled := frozenNow().Add(72 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationConfirmed, models.InterviewVirtual, scheduled))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE interview_invitations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	svc := newTestService(db, reporter)
	_, err = svc.RequestReschedule(context.Background(), candidateActor(), "inv-001", "Clash", nil)

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeInvalidTransition, se.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Projection and Ownership Tests
// ==========================

func TestList_VenueFollowsInterviewType(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(72 * time.Hour)
	rows := sqlmock.NewRows(invitationColumnNames()).
		AddRow("inv-001", "cand-001", "req-001", "app-001",
			models.InterviewVirtual, models.InvitationPending, scheduled, 45,
			"", "https://meet.example.com/inv-001", "", "", nil,
			false, nil, "", []byte(`{}`), nil, nil, "", "", nil).
		AddRow("inv-002", "cand-001", "req-001", "app-001",
			models.InterviewPhysical, models.InvitationPending, scheduled, 45,
			"12 Marina Road, Lagos", "", "", "", nil,
			false, nil, "", []byte(`{}`), nil, nil, "", "", nil)

	mock.ExpectQuery(`FROM interview_invitations`).
		WithArgs("cand-001").
		WillReturnRows(rows)

	svc := newTestService(db, &fakeReporter{})
	views, err := svc.List(context.Background(), candidateActor())

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, "https://meet.example.com/inv-001", views[0].Venue)
	assert.Equal(t, "12 Marina Road, Lagos", views[1].Venue)
	assert.False(t, views[0].IsToday)
	assert.False(t, views[0].IsOverdue)
}

func TestList_FlagsTodayAndOverdueSlots(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	sameDay := frozenNow().Add(5 * time.Hour)
	past := frozenNow().Add(-48 * time.Hour)
	rows := sqlmock.NewRows(invitationColumnNames()).
		AddRow("inv-001", "cand-001", "req-001", "app-001",
			models.InterviewVirtual, models.InvitationConfirmed, sameDay, 45,
			"", "https://meet.example.com/inv-001", "", "", nil,
			false, nil, "", []byte(`{}`), nil, nil, "", "", nil).
		AddRow("inv-002", "cand-001", "req-001", "app-001",
			models.InterviewVirtual, models.InvitationAccepted, past, 45,
			"", "https://meet.example.com/inv-002", "", "", nil,
			false, nil, "", []byte(`{}`), nil, nil, "", "", nil)

	mock.ExpectQuery(`FROM interview_invitations`).
		WithArgs("cand-001").
		WillReturnRows(rows)

	svc := newTestService(db, &fakeReporter{})
	views, err := svc.List(context.Background(), candidateActor())

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.True(t, views[0].IsToday)
	assert.False(t, views[0].IsOverdue, "a later slot today is not overdue")
	assert.False(t, views[1].IsToday)
	assert.True(t, views[1].IsOverdue)
}

func TestRespond_SomeoneElsesInvitationLooksMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	scheduled := frozenNow().Add(72 * time.Hour)

	mock.ExpectQuery(`FROM interview_invitations`).
		WillReturnRows(invitationRow(models.InvitationPending, models.InterviewVirtual, scheduled))

	svc := newTestService(db, &fakeReporter{})
	actor := models.ActorContext{ActorID: "cand-002", CandidateID: "cand-002", Role: models.RoleCandidate}

	_, err = svc.Respond(context.Background(), actor, "inv-001", models.InvitationAccepted, "")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeInvitationNotFound, se.Code)
}
