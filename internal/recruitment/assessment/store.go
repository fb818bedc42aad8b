// internal/recruitment/assessment/store.go
package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/models"

	"github.com/lib/pq"
)

// Store persists tests, assignments and results.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const assignmentColumns = `
	id, test_id, candidate_id, recruitment_request_id, application_id,
	status, assigned_at, started_at, expires_at`

func (s *Store) AssignmentByID(ctx context.Context, assignmentID string) (*models.TestAssignment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+assignmentColumns+`
		FROM test_assignments
		WHERE id = $1`, assignmentID)

	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewAssignmentNotFoundError(assignmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("assignment lookup failed: %w", err)
	}
	return a, nil
}

func (s *Store) AssignmentsByCandidate(ctx context.Context, candidateID string) ([]*models.TestAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+assignmentColumns+`
		FROM test_assignments
		WHERE candidate_id = $1
		ORDER BY assigned_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("assignment list query failed: %w", err)
	}
	defer rows.Close()

	var out []*models.TestAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("assignment scan failed: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkStarted moves a pending assignment into in_progress with a
// conditional update. Zero rows means another writer got there first
// or the assignment is not pending.
func (s *Store) MarkStarted(ctx context.Context, assignmentID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE test_assignments
		SET status = $1, started_at = $2
		WHERE id = $3 AND status = $4`,
		models.AssignmentInProgress, at, assignmentID, models.AssignmentPending,
	)
	if err != nil {
		return false, stderrors.NewQueryExecutionFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, stderrors.NewQueryExecutionFailedError(err)
	}
	return affected > 0, nil
}

// CompleteAssignment flips an in_progress assignment to completed
// inside the submission transaction.
func (s *Store) CompleteAssignment(ctx context.Context, tx *sql.Tx, assignmentID string, at time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE test_assignments
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4`,
		models.AssignmentCompleted, at, assignmentID, models.AssignmentInProgress,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	if affected == 0 {
		return stderrors.NewTestAlreadyCompletedError(assignmentID)
	}
	return nil
}

// AssignmentSummary pairs an assignment with headline test fields for
// candidate-facing listings.
type AssignmentSummary struct {
	Assignment       *models.TestAssignment `json:"assignment"`
	TestTitle        string                 `json:"testTitle"`
	TimeLimitMinutes int                    `json:"timeLimitMinutes"`
	PassScore        float64                `json:"passScore"`
}

func (s *Store) AssignmentSummaries(ctx context.Context, candidateID string) ([]*AssignmentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.test_id, a.candidate_id, a.recruitment_request_id, a.application_id,
		       a.status, a.assigned_at, a.started_at, a.expires_at,
		       t.title, t.time_limit_minutes, t.pass_score
		FROM test_assignments a
		JOIN tests t ON t.id = a.test_id
		WHERE a.candidate_id = $1
		ORDER BY a.assigned_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("assignment summary query failed: %w", err)
	}
	defer rows.Close()

	var out []*AssignmentSummary
	for rows.Next() {
		var a models.TestAssignment
		var sum AssignmentSummary
		if err := rows.Scan(&a.ID, &a.TestID, &a.CandidateID, &a.RecruitmentRequestID, &a.ApplicationID,
			&a.Status, &a.AssignedAt, &a.StartedAt, &a.ExpiresAt,
			&sum.TestTitle, &sum.TimeLimitMinutes, &sum.PassScore); err != nil {
			return nil, fmt.Errorf("assignment summary scan failed: %w", err)
		}
		sum.Assignment = &a
		out = append(out, &sum)
	}
	return out, rows.Err()
}

func (s *Store) TestByID(ctx context.Context, testID string) (*models.Test, error) {
	var t models.Test
	var bandsJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, instructions, time_limit_minutes,
		       pass_score, allow_review, randomize_questions, grade_bands
		FROM tests
		WHERE id = $1`, testID).
		Scan(&t.ID, &t.Title, &t.Description, &t.Instructions, &t.TimeLimitMinutes,
			&t.PassScore, &t.AllowReview, &t.RandomizeQuestions, &bandsJSON)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewTestNotFoundError(testID)
	}
	if err != nil {
		return nil, fmt.Errorf("test lookup failed: %w", err)
	}

	if len(bandsJSON) > 0 {
		if err := json.Unmarshal(bandsJSON, &t.GradeBands); err != nil {
			return nil, fmt.Errorf("unmarshal grade bands: %w", err)
		}
	}

	questions, err := s.questionsByTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	t.Questions = questions
	return &t, nil
}

func (s *Store) questionsByTest(ctx context.Context, testID string) ([]models.TestQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, test_id, question, type, options, points, order_number,
		       required, correct_answers, explanation
		FROM test_questions
		WHERE test_id = $1
		ORDER BY order_number`, testID)
	if err != nil {
		return nil, fmt.Errorf("question list query failed: %w", err)
	}
	defer rows.Close()

	var out []models.TestQuestion
	for rows.Next() {
		var q models.TestQuestion
		if err := rows.Scan(&q.ID, &q.TestID, &q.Question, &q.Type, pq.Array(&q.Options),
			&q.Points, &q.OrderNumber, &q.Required, pq.Array(&q.CorrectAnswers),
			&q.Explanation); err != nil {
			return nil, fmt.Errorf("question scan failed: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// InsertResult writes the immutable scorecard row inside the
// submission transaction.
func (s *Store) InsertResult(ctx context.Context, tx *sql.Tx, result *models.TestResult) error {
	answersJSON, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO test_results (
			id, test_assignment_id, test_id, candidate_id, answers,
			total_questions, correct_answers, score_percentage, passed,
			grade, performance_level, time_taken_minutes, auto_submitted,
			started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		result.ID,
		result.TestAssignmentID,
		result.TestID,
		result.CandidateID,
		answersJSON,
		result.TotalQuestions,
		result.CorrectAnswers,
		result.ScorePercentage,
		result.Passed,
		result.Grade,
		result.PerformanceLevel,
		result.TimeTakenMinutes,
		result.AutoSubmitted,
		result.StartedAt,
		result.CompletedAt,
	)
	if err != nil {
		return stderrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const resultColumns = `
	id, test_assignment_id, test_id, candidate_id, answers,
	total_questions, correct_answers, score_percentage, passed,
	grade, performance_level, time_taken_minutes, auto_submitted,
	started_at, completed_at`

func (s *Store) ResultByID(ctx context.Context, resultID string) (*models.TestResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+resultColumns+`
		FROM test_results
		WHERE id = $1`, resultID)

	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewResultNotFoundError(resultID)
	}
	if err != nil {
		return nil, fmt.Errorf("result lookup failed: %w", err)
	}
	return r, nil
}

func (s *Store) ResultsByCandidate(ctx context.Context, candidateID string) ([]*models.TestResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+resultColumns+`
		FROM test_results
		WHERE candidate_id = $1
		ORDER BY completed_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("result list query failed: %w", err)
	}
	defer rows.Close()

	var out []*models.TestResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("result scan failed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignment(row rowScanner) (*models.TestAssignment, error) {
	var a models.TestAssignment
	err := row.Scan(&a.ID, &a.TestID, &a.CandidateID, &a.RecruitmentRequestID, &a.ApplicationID,
		&a.Status, &a.AssignedAt, &a.StartedAt, &a.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanResult(row rowScanner) (*models.TestResult, error) {
	var r models.TestResult
	var answersJSON []byte
	err := row.Scan(&r.ID, &r.TestAssignmentID, &r.TestID, &r.CandidateID, &answersJSON,
		&r.TotalQuestions, &r.CorrectAnswers, &r.ScorePercentage, &r.Passed,
		&r.Grade, &r.PerformanceLevel, &r.TimeTakenMinutes, &r.AutoSubmitted,
		&r.StartedAt, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return &r, nil
}
