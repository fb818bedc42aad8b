// internal/recruitment/application/store.go
package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/models"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so store methods can
// run standalone or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store persists job applications and their status event log.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// HasLiveApplication reports whether the candidate already holds a
// non-withdrawn application for the request.
func (s *Store) HasLiveApplication(ctx context.Context, candidateID, requestID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM job_applications
			WHERE candidate_id = $1 AND recruitment_request_id = $2 AND status <> $3
		)`, candidateID, requestID, models.StatusWithdrawn).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("duplicate check failed: %w", err)
	}
	return exists, nil
}

// Create inserts the application row together with its first status
// event inside the given runner.
func (s *Store) Create(ctx context.Context, tx dbtx, app *models.JobApplication, changedBy string) error {
	salaryJSON, err := json.Marshal(app.SalaryExpectations)
	if err != nil {
		return fmt.Errorf("marshal salary expectations: %w", err)
	}
	availabilityJSON, err := json.Marshal(app.Availability)
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}
	eligibilityJSON, err := json.Marshal(app.Eligibility)
	if err != nil {
		return fmt.Errorf("marshal eligibility: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO job_applications (
			id, candidate_id, recruitment_request_id, status,
			cover_letter, motivation, salary_expectations, availability,
			eligibility, applied_at, last_status_change
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		app.ID,
		app.CandidateID,
		app.RecruitmentRequestID,
		app.Status,
		app.CoverLetter,
		app.Motivation,
		salaryJSON,
		availabilityJSON,
		eligibilityJSON,
		app.AppliedAt,
	)
	if err != nil {
		return stderrors.NewDatabaseInsertFailedError(err)
	}

	return s.insertEvent(ctx, tx, app.ID, "", app.Status, "Application submitted", changedBy, app.AppliedAt)
}

// Transition moves the application between statuses with a conditional
// update. When the row no longer carries the expected status the move
// fails as a conflict, which closes the race between concurrent writers.
func (s *Store) Transition(ctx context.Context, tx dbtx, applicationID, from, to, note, changedBy string, at time.Time) error {
	if err := ValidateTransition(from, to); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE job_applications
		SET status = $1, last_status_change = $2
		WHERE id = $3 AND status = $4`,
		to, at, applicationID, from,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return stderrors.NewQueryExecutionFailedError(err)
	}
	if affected == 0 {
		return stderrors.NewInvalidTransitionError(from, to)
	}

	return s.insertEvent(ctx, tx, applicationID, from, to, note, changedBy, at)
}

// StatusTx reads the application's current status inside tx.
func (s *Store) StatusTx(ctx context.Context, tx dbtx, applicationID string) (string, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM job_applications WHERE id = $1`, applicationID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", stderrors.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return "", stderrors.NewQueryExecutionFailedError(err)
	}
	return status, nil
}

func (s *Store) insertEvent(ctx context.Context, tx dbtx, applicationID, from, to, note, changedBy string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO application_status_events (
			application_id, from_status, to_status, note, changed_by, changed_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		applicationID, from, to, note, changedBy, at,
	)
	if err != nil {
		return stderrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const applicationColumns = `
	id, candidate_id, recruitment_request_id, status,
	cover_letter, motivation, salary_expectations, availability,
	eligibility, applied_at, last_status_change`

func (s *Store) GetByID(ctx context.Context, applicationID string) (*models.JobApplication, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+applicationColumns+`
		FROM job_applications
		WHERE id = $1`, applicationID)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("application lookup failed: %w", err)
	}
	return app, nil
}

func (s *Store) ListByCandidate(ctx context.Context, candidateID string) ([]*models.JobApplication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+applicationColumns+`
		FROM job_applications
		WHERE candidate_id = $1
		ORDER BY applied_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("application list query failed: %w", err)
	}
	defer rows.Close()

	var out []*models.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("application scan failed: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// AppliedRef points at the live application a candidate holds for one
// recruitment request.
type AppliedRef struct {
	ApplicationID string
	Status        string
	AppliedAt     time.Time
}

// AppliedRequests returns the candidate's live applications keyed by
// recruitment request.
func (s *Store) AppliedRequests(ctx context.Context, candidateID string) (map[string]AppliedRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recruitment_request_id, status, applied_at FROM job_applications
		WHERE candidate_id = $1 AND status <> $2`,
		candidateID, models.StatusWithdrawn)
	if err != nil {
		return nil, fmt.Errorf("applied requests query failed: %w", err)
	}
	defer rows.Close()

	out := map[string]AppliedRef{}
	for rows.Next() {
		var ref AppliedRef
		var requestID string
		if err := rows.Scan(&ref.ApplicationID, &requestID, &ref.Status, &ref.AppliedAt); err != nil {
			return nil, fmt.Errorf("applied requests scan failed: %w", err)
		}
		out[requestID] = ref
	}
	return out, rows.Err()
}

// Events returns the status history in append order.
func (s *Store) Events(ctx context.Context, applicationID string) ([]models.StatusEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence, application_id, from_status, to_status, note, changed_by, changed_at
		FROM application_status_events
		WHERE application_id = $1
		ORDER BY sequence`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("status events query failed: %w", err)
	}
	defer rows.Close()

	var out []models.StatusEvent
	for rows.Next() {
		var ev models.StatusEvent
		if err := rows.Scan(&ev.Sequence, &ev.ApplicationID, &ev.FromStatus, &ev.ToStatus,
			&ev.Note, &ev.ChangedBy, &ev.ChangedAt); err != nil {
			return nil, fmt.Errorf("status event scan failed: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// InsertAudit writes an audit log row. Callers treat failures as
// non-fatal and only log them.
func (s *Store) InsertAudit(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType, resourceType, resourceID, detailsJSON, time.Now().UTC(),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.JobApplication, error) {
	var app models.JobApplication
	var salaryJSON, availabilityJSON, eligibilityJSON []byte

	err := row.Scan(&app.ID, &app.CandidateID, &app.RecruitmentRequestID, &app.Status,
		&app.CoverLetter, &app.Motivation, &salaryJSON, &availabilityJSON,
		&eligibilityJSON, &app.AppliedAt, &app.LastStatusChange)
	if err != nil {
		return nil, err
	}

	if len(salaryJSON) > 0 {
		if err := json.Unmarshal(salaryJSON, &app.SalaryExpectations); err != nil {
			return nil, fmt.Errorf("unmarshal salary expectations: %w", err)
		}
	}
	if len(availabilityJSON) > 0 {
		if err := json.Unmarshal(availabilityJSON, &app.Availability); err != nil {
			return nil, fmt.Errorf("unmarshal availability: %w", err)
		}
	}
	if len(eligibilityJSON) > 0 {
		if err := json.Unmarshal(eligibilityJSON, &app.Eligibility); err != nil {
			return nil, fmt.Errorf("unmarshal eligibility: %w", err)
		}
	}
	return &app, nil
}
