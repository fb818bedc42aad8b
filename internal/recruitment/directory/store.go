// internal/recruitment/directory/store.go
package directory

import (
	"context"
	"database/sql"
	"fmt"

	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/models"
)

// Store resolves candidates and recruitment requests. Consumers hold
// this interface so the cached and plain postgres variants swap freely.
type Store interface {
	CandidateByID(ctx context.Context, candidateID string) (*models.Candidate, error)
	RequestByID(ctx context.Context, requestID string) (*models.RecruitmentRequest, error)
	OpenRequests(ctx context.Context) ([]*models.RecruitmentRequest, error)
	IsActivelyEmployed(ctx context.Context, candidateID string) (bool, error)
}

// PostgresStore reads directory data straight from the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CandidateByID(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, state_of_residence, age, years_of_experience
		FROM candidates
		WHERE id = $1`, candidateID).
		Scan(&c.ID, &c.FullName, &c.Email, &c.StateOfResidence, &c.Age, &c.YearsOfExperience)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewCandidateNotFoundError(candidateID)
	}
	if err != nil {
		return nil, fmt.Errorf("candidate lookup failed: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) RequestByID(ctx context.Context, requestID string) (*models.RecruitmentRequest, error) {
	var r models.RecruitmentRequest
	err := s.db.QueryRowContext(ctx, `
		SELECT id, ticket_id, job_title, company, status, service_state,
		       age_limit_min, age_limit_max, min_experience_years,
		       number_of_vacancies, description
		FROM recruitment_requests
		WHERE id = $1`, requestID).
		Scan(&r.ID, &r.TicketID, &r.JobTitle, &r.Company, &r.Status, &r.ServiceState,
			&r.AgeLimitMin, &r.AgeLimitMax, &r.MinExperienceYears,
			&r.NumberOfVacancies, &r.Description)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewRequestNotFoundError(requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("recruitment request lookup failed: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) OpenRequests(ctx context.Context) ([]*models.RecruitmentRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticket_id, job_title, company, status, service_state,
		       age_limit_min, age_limit_max, min_experience_years,
		       number_of_vacancies, description
		FROM recruitment_requests
		WHERE status = $1
		ORDER BY ticket_id`, models.RequestStatusActive)
	if err != nil {
		return nil, fmt.Errorf("open requests query failed: %w", err)
	}
	defer rows.Close()

	var out []*models.RecruitmentRequest
	for rows.Next() {
		var r models.RecruitmentRequest
		if err := rows.Scan(&r.ID, &r.TicketID, &r.JobTitle, &r.Company, &r.Status, &r.ServiceState,
			&r.AgeLimitMin, &r.AgeLimitMax, &r.MinExperienceYears,
			&r.NumberOfVacancies, &r.Description); err != nil {
			return nil, fmt.Errorf("open requests scan failed: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// IsActivelyEmployed reports whether the candidate holds an active
// engagement record. Candidates in service cannot apply again.
func (s *PostgresStore) IsActivelyEmployed(ctx context.Context, candidateID string) (bool, error) {
	var employed bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM engagements
			WHERE candidate_id = $1 AND status = 'active'
		)`, candidateID).Scan(&employed)
	if err != nil {
		return false, fmt.Errorf("employment check failed: %w", err)
	}
	return employed, nil
}
