// internal/recruitment/assessment/service_test.go
package assessment

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
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeReporter records application status reports from submissions.
type fakeReporter struct {
	calls []string
	fail  error
}

func (f *fakeReporter) TransitionTx(ctx context.Context, tx *sql.Tx, actor models.ActorContext, applicationID, from, to, note string) error {
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, applicationID+":"+from+"->"+to+" "+note)
	return nil
}

func testLocker(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &database.RedisClient{Client: client}, mr
}

func candidateActor() models.ActorContext {
	return models.ActorContext{ActorID: "cand-001", CandidateID: "cand-001", Role: models.RoleCandidate}
}

func assignedAt() time.Time {
	return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
}

func assignmentColumnList() []string {
	return []string{"id", "test_id", "candidate_id", "recruitment_request_id", "application_id",
		"status", "assigned_at", "started_at", "expires_at"}
}

func assignmentRow(status string, startedAt, expiresAt interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(assignmentColumnList()).
		AddRow("assign-001", "test-001", "cand-001", "req-001", "app-001",
			status, assignedAt(), startedAt, expiresAt)
}

func expectTestLoad(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM tests`).
		WithArgs("test-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "instructions",
			"time_limit_minutes", "pass_score", "allow_review", "randomize_questions", "grade_bands"}).
			AddRow("test-001", "Field Operations Basics", "", "", 60, 50, true, false, nil))
	mock.ExpectQuery(`FROM test_questions`).
		WithArgs("test-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_id", "question", "type", "options",
			"points", "order_number", "required", "correct_answers", "explanation"}).
			AddRow("q1", "test-001", "Pick one", "multiple_choice", []byte(`{"Yes","No"}`),
				1, 1, true, []byte(`{"1"}`), "Second option is right").
			AddRow("q2", "test-001", "Pick another", "multiple_choice", []byte(`{"Up","Down"}`),
				1, 2, true, []byte(`{"0"}`), ""))
}

func newService(db *sql.DB, reporter *fakeReporter, locker *database.RedisClient) *Service {
	pg := &database.PostgresClient{DB: db}
	return NewService(pg, NewStore(db), reporter, locker, 30*time.Second, logger.NewNoOpLogger())
}

// ==========================
// Start Tests
// ==========================

func TestStart_PendingAssignmentBecomesInProgress(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)

	mock.ExpectQuery(`FROM test_assignments`).
		WithArgs("assign-001").
		WillReturnRows(assignmentRow(models.AssignmentPending, nil, nil))
	mock.ExpectExec(`UPDATE test_assignments`).
		WithArgs(models.AssignmentInProgress, sqlmock.AnyArg(), "assign-001", models.AssignmentPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectTestLoad(mock)

	svc := newService(db, &fakeReporter{}, locker)
	started, err := svc.Start(context.Background(), candidateActor(), "assign-001")

	assert.NoError(t, err)
	assert.Equal(t, models.AssignmentInProgress, started.Assignment.Status)
	assert.NotNil(t, started.Assignment.StartedAt)
	for _, q := range started.Test.Questions {
		assert.Empty(t, q.CorrectAnswers, "answer keys must not reach candidates")
		assert.Empty(t, q.Explanation)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_CompletedAssignmentConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)
	started := assignedAt()

	mock.ExpectQuery(`FROM test_assignments`).
		WithArgs("assign-001").
		WillReturnRows(assignmentRow(models.AssignmentCompleted, started, nil))

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Start(context.Background(), candidateActor(), "assign-001")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeTestAlreadyCompleted, se.Code)
	assert.Equal(t, stderrors.KindConflict, se.Kind)
}

func TestStart_ExpiredAssignmentConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)
	expired := assignedAt().Add(-time.Hour)

	mock.ExpectQuery(`FROM test_assignments`).
		WithArgs("assign-001").
		WillReturnRows(assignmentRow(models.AssignmentPending, nil, expired))

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Start(context.Background(), candidateActor(), "assign-001")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeTestExpired, se.Code)
}

func TestStart_SomeoneElsesAssignmentLooksMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)

	mock.ExpectQuery(`FROM test_assignments`).
		WithArgs("assign-001").
		WillReturnRows(assignmentRow(models.AssignmentPending, nil, nil))

	svc := newService(db, &fakeReporter{}, locker)
	actor := models.ActorContext{ActorID: "cand-002", CandidateID: "cand-002", Role: models.RoleCandidate}

	_, err = svc.Start(context.Background(), actor, "assign-001")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeAssignmentNotFound, se.Code)
}

// ==========================
// Submission Tests
// ==========================

func TestSubmit_ScoresAndReportsToApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)
	reporter := &fakeReporter{}
	started := assignedAt()

	mock.ExpectQuery(`FROM test_assignments`).
		WithArgs("assign-001").
		WillReturnRows(assignmentRow(models.AssignmentInProgress, started, nil))
	expectTestLoad(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO test_results`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE test_assignments`).
		WithArgs(models.AssignmentCompleted, sqlmock.AnyArg(), "assign-001", models.AssignmentInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newService(db, reporter, locker)
	result, err := svc.Submit(context.Background(), candidateActor(), "assign-001",
		map[string]string{"q1": "B", "q2": "A"}, false)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 2, result.CorrectAnswers)
	assert.Equal(t, 100.0, result.ScorePercentage)
	assert.True(t, result.Passed)
	assert.Equal(t, "A+", result.Grade)
	assert.Len(t, reporter.calls, 1)
	assert.Contains(t, reporter.calls[0], "app-001:test_assigned->test_completed")
	assert.Contains(t, reporter.calls[0], "Test completed with score: 100.00%")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_PassScoreBoundaryIsInclusive(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)
	started := assignedAt()

	mock.ExpectQuery(`FROM test_assignments`).
		WillReturnRows(assignmentRow(models.AssignmentInProgress, started, nil))
	expectTestLoad(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO test_results`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE test_assignments`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newService(db, &fakeReporter{}, locker)
	result, err := svc.Submit(context.Background(), candidateActor(), "assign-001",
		map[string]string{"q1": "B", "q2": "B"}, false)

	assert.NoError(t, err)
	assert.Equal(t, 50.0, result.ScorePercentage)
	assert.True(t, result.Passed, "pass score of 50 is inclusive")
	assert.Equal(t, "C-", result.Grade)
	assert.Equal(t, "average", result.PerformanceLevel)
}

func TestSubmit_ClientAutoSubmitFlagCarried(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)
	started := assignedAt()

	mock.ExpectQuery(`FROM test_assignments`).
		WillReturnRows(assignmentRow(models.AssignmentInProgress, started, nil))
	expectTestLoad(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO test_results`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE test_assignments`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := newService(db, &fakeReporter{}, locker)
	result, err := svc.Submit(context.Background(), candidateActor(), "assign-001",
		map[string]string{"q1": "B"}, true)

	assert.NoError(t, err)
	assert.True(t, result.AutoSubmitted, "the timer-expiry flag sent by the client is recorded")
}

func TestSubmit_AlreadyCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)
	started := assignedAt()

	mock.ExpectQuery(`FROM test_assignments`).
		WillReturnRows(assignmentRow(models.AssignmentCompleted, started, nil))

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Submit(context.Background(), candidateActor(), "assign-001", map[string]string{}, false)

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeTestAlreadyCompleted, se.Code)
}

func TestSubmit_NotStarted(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)

	mock.ExpectQuery(`FROM test_assignments`).
		WillReturnRows(assignmentRow(models.AssignmentPending, nil, nil))

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Submit(context.Background(), candidateActor(), "assign-001", map[string]string{}, false)

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeTestNotStarted, se.Code)
}

func TestSubmit_ConcurrentSubmissionBlockedByLock(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, mr := testLocker(t)
	mr.Set("assessment:submit:assign-001", "1")

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Submit(context.Background(), candidateActor(), "assign-001", map[string]string{}, false)

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeSubmissionInProgress, se.Code)
	assert.Equal(t, stderrors.KindConflict, se.Kind)
}

func TestSubmit_LockReleasedAfterFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, mr := testLocker(t)

	mock.ExpectQuery(`FROM test_assignments`).
		WillReturnRows(assignmentRow(models.AssignmentCompleted, assignedAt(), nil))

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Submit(context.Background(), candidateActor(), "assign-001", map[string]string{}, false)
	assert.Error(t, err)

	assert.False(t, mr.Exists("assessment:submit:assign-001"), "lock must be released")
}

func TestSubmit_ApplicationReportFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)
	reporter := &fakeReporter{fail: stderrors.NewInvalidTransitionError(models.StatusApplied, models.StatusTestCompleted)}
	started := assignedAt()

	mock.ExpectQuery(`FROM test_assignments`).
		WillReturnRows(assignmentRow(models.AssignmentInProgress, started, nil))
	expectTestLoad(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO test_results`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE test_assignments`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	svc := newService(db, reporter, locker)
	_, err = svc.Submit(context.Background(), candidateActor(), "assign-001", map[string]string{"q1": "B"}, false)

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeInvalidTransition, se.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Review Tests
// ==========================

func resultRow(candidateID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "test_assignment_id", "test_id", "candidate_id", "answers",
		"total_questions", "correct_answers", "score_percentage", "passed",
		"grade", "performance_level", "time_taken_minutes", "auto_submitted",
		"started_at", "completed_at"}).
		AddRow("res-001", "assign-001", "test-001", candidateID, []byte(`{"q1":"B","q2":"B"}`),
			2, 1, 50.0, true, "D", "average", 30, false, assignedAt(), assignedAt().Add(30*time.Minute))
}

func TestReview_IncludesAnswerKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)

	mock.ExpectQuery(`FROM test_results`).
		WithArgs("res-001").
		WillReturnRows(resultRow("cand-001"))
	expectTestLoad(mock)

	svc := newService(db, &fakeReporter{}, locker)
	review, err := svc.Review(context.Background(), candidateActor(), "res-001")

	assert.NoError(t, err)
	assert.Len(t, review, 2)
	assert.True(t, review[0].Correct)
	assert.False(t, review[1].Correct)
	assert.Equal(t, "Second option is right", review[0].Explanation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReview_BlockedWhenDisabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)

	mock.ExpectQuery(`FROM test_results`).
		WithArgs("res-001").
		WillReturnRows(resultRow("cand-001"))
	mock.ExpectQuery(`FROM tests`).
		WithArgs("test-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "instructions",
			"time_limit_minutes", "pass_score", "allow_review", "randomize_questions", "grade_bands"}).
			AddRow("test-001", "Field Operations Basics", "", "", 60, 50, false, false, nil))
	mock.ExpectQuery(`FROM test_questions`).
		WithArgs("test-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_id", "question", "type", "options",
			"points", "order_number", "required", "correct_answers", "explanation"}))

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Review(context.Background(), candidateActor(), "res-001")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeReviewNotAllowed, se.Code)
}

func TestResult_SomeoneElsesResultLooksMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	locker, _ := testLocker(t)

	mock.ExpectQuery(`FROM test_results`).
		WithArgs("res-001").
		WillReturnRows(resultRow("cand-999"))

	svc := newService(db, &fakeReporter{}, locker)
	_, err = svc.Result(context.Background(), candidateActor(), "res-001")

	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeResultNotFound, se.Code)
}
