// internal/recruitment/directory/store_test.go
package directory

import (
	"context"
	"testing"

	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func candidateColumns() []string {
	return []string{"id", "full_name", "email", "state_of_residence", "age", "years_of_experience"}
}

func requestColumns() []string {
	return []string{"id", "ticket_id", "job_title", "company", "status", "service_state",
		"age_limit_min", "age_limit_max", "min_experience_years", "number_of_vacancies", "description"}
}

func TestCandidateByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, full_name`).
		WithArgs("cand-001").
		WillReturnRows(sqlmock.NewRows(candidateColumns()).
			AddRow("cand-001", "Ada Obi", "ada.obi@example.com", "Lagos", 28, 4))

	store := NewPostgresStore(db)
	c, err := store.CandidateByID(context.Background(), "cand-001")

	assert.NoError(t, err)
	assert.Equal(t, "Ada Obi", c.FullName)
	assert.Equal(t, 28, c.Age)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, full_name`).
		WithArgs("cand-missing").
		WillReturnRows(sqlmock.NewRows(candidateColumns()))

	store := NewPostgresStore(db)
	_, err = store.CandidateByID(context.Background(), "cand-missing")

	assert.Error(t, err)
	se := stderrors.AsStandard(err)
	assert.Equal(t, stderrors.ErrCodeCandidateNotFound, se.Code)
	assert.Equal(t, stderrors.KindNotFound, se.Kind)
}

func TestRequestByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM recruitment_requests`).
		WithArgs("req-001").
		WillReturnRows(sqlmock.NewRows(requestColumns()).
			AddRow("req-001", "TCK-1001", "Field Operations Officer", "SOL Nigeria", "active", "Lagos",
				21, 35, 2, 5, "Field role in Lagos"))

	store := NewPostgresStore(db)
	r, err := store.RequestByID(context.Background(), "req-001")

	assert.NoError(t, err)
	assert.Equal(t, "TCK-1001", r.TicketID)
	assert.True(t, r.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenRequests_FiltersByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE status = \$1`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows(requestColumns()).
			AddRow("req-001", "TCK-1001", "Field Operations Officer", "SOL Nigeria", "active", "Lagos",
				21, 35, 2, 5, "").
			AddRow("req-002", "TCK-1002", "Security Supervisor", "SOL Nigeria", "active", "Abuja",
				25, 45, 5, 2, ""))

	store := NewPostgresStore(db)
	requests, err := store.OpenRequests(context.Background())

	assert.NoError(t, err)
	assert.Len(t, requests, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsActivelyEmployed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("cand-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	store := NewPostgresStore(db)
	employed, err := store.IsActivelyEmployed(context.Background(), "cand-001")

	assert.NoError(t, err)
	assert.True(t, employed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
