// internal/recruitment/assessment/service.go
package assessment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SOL-ICT/recruitment-core/internal/common/database"
	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/common/metrics"
	"github.com/SOL-ICT/recruitment-core/internal/models"

	"github.com/google/uuid"
)

// applicationReporter moves the linked application when a test
// completes, inside the submission transaction.
type applicationReporter interface {
	TransitionTx(ctx context.Context, tx *sql.Tx, actor models.ActorContext, applicationID, from, to, note string) error
}

// submitLocker serializes submissions per assignment.
type submitLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// StartedTest is what a candidate sees when they open a test: the
// assignment plus the test with answer keys stripped.
type StartedTest struct {
	Assignment *models.TestAssignment `json:"assignment"`
	Test       *models.Test           `json:"test"`
}

// QuestionReview is one row of the post-test answer review.
type QuestionReview struct {
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	GivenAnswer   string `json:"givenAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// Service owns the test-taking lifecycle: listing, starting,
// submission with scoring, and result review.
type Service struct {
	pg      *database.PostgresClient
	store   *Store
	apps    applicationReporter
	locker  submitLocker
	lockTTL time.Duration
	logger  logger.Logger
	now     func() time.Time
}

func NewService(pg *database.PostgresClient, store *Store, apps applicationReporter, locker submitLocker, lockTTL time.Duration, log logger.Logger) *Service {
	return &Service{
		pg:      pg,
		store:   store,
		apps:    apps,
		locker:  locker,
		lockTTL: lockTTL,
		logger:  log.WithFields(map[string]interface{}{"component": "assessment-service"}),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListAvailable returns the candidate's assignments with derived
// expiry folded into the status.
func (s *Service) ListAvailable(ctx context.Context, actor models.ActorContext) ([]*AssignmentSummary, error) {
	summaries, err := s.store.AssignmentSummaries(ctx, actor.CandidateID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, sum := range summaries {
		sum.Assignment.Status = sum.Assignment.EffectiveStatus(now)
	}
	return summaries, nil
}

// Start opens a test attempt. Pending assignments move to in_progress
// and record the start time; in_progress assignments resume without a
// reset, so a dropped connection never restarts the clock.
func (s *Service) Start(ctx context.Context, actor models.ActorContext, assignmentID string) (*StartedTest, error) {
	assignment, err := s.ownedAssignment(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if assignment.Status == models.AssignmentCompleted {
		return nil, stderrors.NewTestAlreadyCompletedError(assignmentID)
	}
	if assignment.IsExpired(now) {
		return nil, stderrors.NewTestExpiredError(assignmentID)
	}

	if assignment.Status == models.AssignmentPending {
		started, err := s.store.MarkStarted(ctx, assignmentID, now)
		if err != nil {
			return nil, err
		}
		if started {
			assignment.Status = models.AssignmentInProgress
			assignment.StartedAt = &now
		} else {
			// Lost the race to another start, reload and resume
			assignment, err = s.ownedAssignment(ctx, actor, assignmentID)
			if err != nil {
				return nil, err
			}
			if assignment.Status == models.AssignmentCompleted {
				return nil, stderrors.NewTestAlreadyCompletedError(assignmentID)
			}
		}
	}

	test, err := s.store.TestByID(ctx, assignment.TestID)
	if err != nil {
		return nil, err
	}
	stripAnswerKeys(test)

	s.logger.Info("test started", map[string]interface{}{
		"assignmentId": assignmentID,
		"candidateId":  actor.CandidateID,
		"testId":       test.ID,
	})

	return &StartedTest{Assignment: assignment, Test: test}, nil
}

// Submit scores an answer sheet and completes the assignment. The
// result insert, assignment completion and application status report
// commit or roll back together. A per-assignment redis lock keeps
// concurrent submissions from double-scoring. autoSubmitted marks a
// sheet the client flushed on timer expiry; the flag is also set when
// the elapsed time exceeds the test's limit.
func (s *Service) Submit(ctx context.Context, actor models.ActorContext, assignmentID string, answers map[string]string, autoSubmitted bool) (*models.TestResult, error) {
	lockKey := fmt.Sprintf("assessment:submit:%s", assignmentID)
	acquired, err := s.locker.AcquireLock(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError(err)
	}
	if !acquired {
		return nil, stderrors.NewSubmissionInProgressError(assignmentID)
	}
	defer func() {
		if err := s.locker.ReleaseLock(ctx, lockKey); err != nil {
			s.logger.Warn("submit lock release failed", map[string]interface{}{
				"assignmentId": assignmentID,
				"error":        err.Error(),
			})
		}
	}()

	assignment, err := s.ownedAssignment(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status == models.AssignmentCompleted {
		return nil, stderrors.NewTestAlreadyCompletedError(assignmentID)
	}
	if assignment.Status == models.AssignmentPending {
		return nil, stderrors.NewTestNotStartedError(assignmentID)
	}

	test, err := s.store.TestByID(ctx, assignment.TestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	card := Grade(test, answers)

	timeTaken := 0
	if assignment.StartedAt != nil {
		timeTaken = int(now.Sub(*assignment.StartedAt).Minutes())
		if test.TimeLimitMinutes > 0 && timeTaken > test.TimeLimitMinutes {
			autoSubmitted = true
		}
	}

	result := &models.TestResult{
		ID:               uuid.New().String(),
		TestAssignmentID: assignment.ID,
		TestID:           test.ID,
		CandidateID:      assignment.CandidateID,
		Answers:          answers,
		TotalQuestions:   card.TotalQuestions,
		CorrectAnswers:   card.CorrectAnswers,
		ScorePercentage:  card.ScorePercentage,
		Passed:           card.Passed,
		Grade:            card.Grade,
		PerformanceLevel: card.PerformanceLevel,
		TimeTakenMinutes: timeTaken,
		AutoSubmitted:    autoSubmitted,
		StartedAt:        assignment.StartedAt,
		CompletedAt:      now,
	}

	err = s.pg.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.store.InsertResult(ctx, tx, result); err != nil {
			return err
		}
		if err := s.store.CompleteAssignment(ctx, tx, assignment.ID, now); err != nil {
			return err
		}
		if assignment.ApplicationID != "" {
			note := fmt.Sprintf("Test completed with score: %.2f%%", card.ScorePercentage)
			return s.apps.TransitionTx(ctx, tx, actor, assignment.ApplicationID,
				models.StatusTestAssigned, models.StatusTestCompleted, note)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TestSubmissions.WithLabelValues(fmt.Sprintf("%t", card.Passed)).Inc()

	s.logger.Info("test submitted", map[string]interface{}{
		"assignmentId":    assignment.ID,
		"candidateId":     assignment.CandidateID,
		"scorePercentage": card.ScorePercentage,
		"passed":          card.Passed,
		"grade":           card.Grade,
		"autoSubmitted":   autoSubmitted,
	})

	return result, nil
}

// Results lists the candidate's scorecards, newest first.
func (s *Service) Results(ctx context.Context, actor models.ActorContext) ([]*models.TestResult, error) {
	return s.store.ResultsByCandidate(ctx, actor.CandidateID)
}

// Result returns one scorecard. Candidates only see their own.
func (s *Service) Result(ctx context.Context, actor models.ActorContext, resultID string) (*models.TestResult, error) {
	result, err := s.store.ResultByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if actor.IsCandidate() && result.CandidateID != actor.CandidateID {
		return nil, stderrors.NewResultNotFoundError(resultID)
	}
	return result, nil
}

// Review returns the per-question breakdown with correct answers. It
// is only available when the test enables answer review.
func (s *Service) Review(ctx context.Context, actor models.ActorContext, resultID string) ([]QuestionReview, error) {
	result, err := s.Result(ctx, actor, resultID)
	if err != nil {
		return nil, err
	}

	test, err := s.store.TestByID(ctx, result.TestID)
	if err != nil {
		return nil, err
	}
	if !test.AllowReview {
		return nil, stderrors.NewReviewNotAllowedError(test.ID)
	}

	var out []QuestionReview
	for _, q := range test.Questions {
		if len(q.CorrectAnswers) == 0 {
			continue
		}
		given := result.Answers[q.ID]
		out = append(out, QuestionReview{
			QuestionID:    q.ID,
			Question:      q.Question,
			GivenAnswer:   given,
			CorrectAnswer: q.CorrectAnswers[0],
			Correct:       isCorrect(q, given),
			Explanation:   q.Explanation,
		})
	}
	return out, nil
}

func (s *Service) ownedAssignment(ctx context.Context, actor models.ActorContext, assignmentID string) (*models.TestAssignment, error) {
	assignment, err := s.store.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if actor.IsCandidate() && assignment.CandidateID != actor.CandidateID {
		return nil, stderrors.NewAssignmentNotFoundError(assignmentID)
	}
	return assignment, nil
}

// stripAnswerKeys removes grading data before a test reaches a candidate.
func stripAnswerKeys(test *models.Test) {
	for i := range test.Questions {
		test.Questions[i].CorrectAnswers = nil
		test.Questions[i].Explanation = ""
	}
	test.GradeBands = nil
}
