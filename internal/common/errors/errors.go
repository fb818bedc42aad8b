// Package errors provides standardized error handling for the recruitment pipeline.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCandidateNotFound    ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeRequestNotFound      ErrorCode = "RECRUITMENT_REQUEST_NOT_FOUND"
	ErrCodeRequestClosed        ErrorCode = "RECRUITMENT_REQUEST_CLOSED"
	ErrCodeCandidateEmployed    ErrorCode = "CANDIDATE_EMPLOYED"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"

	ErrCodeApplicationNotFound         ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeInvalidTransition           ErrorCode = "INVALID_STATUS_TRANSITION"

	ErrCodeTestNotFound         ErrorCode = "TEST_NOT_FOUND"
	ErrCodeAssignmentNotFound   ErrorCode = "TEST_ASSIGNMENT_NOT_FOUND"
	ErrCodeTestAlreadyCompleted ErrorCode = "TEST_ALREADY_COMPLETED"
	ErrCodeTestExpired          ErrorCode = "TEST_EXPIRED"
	ErrCodeTestNotStarted       ErrorCode = "TEST_NOT_STARTED"
	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeReviewNotAllowed     ErrorCode = "REVIEW_NOT_ALLOWED"
	ErrCodeResultNotFound       ErrorCode = "TEST_RESULT_NOT_FOUND"

	ErrCodeInvitationNotFound        ErrorCode = "INTERVIEW_INVITATION_NOT_FOUND"
	ErrCodeInvitationClosed          ErrorCode = "INTERVIEW_INVITATION_CLOSED"
	ErrCodeInvalidInvitationResponse ErrorCode = "INVALID_INVITATION_RESPONSE"
	ErrCodeAttendanceNotDue          ErrorCode = "ATTENDANCE_CONFIRMATION_NOT_DUE"
	ErrCodeRescheduleWindowClosed    ErrorCode = "RESCHEDULE_WINDOW_CLOSED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Kind      Kind                   `json:"kind"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps the error kind to an HTTP response status.
func (e *StandardError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AsStandard extracts a *StandardError from err, wrapping unknown errors
// as internal so handlers always have a structured error to render.
func AsStandard(err error) *StandardError {
	if se, ok := err.(*StandardError); ok {
		return se
	}
	return NewInternalError(err)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCandidateNotFoundError creates a non-retryable lookup error.
func NewCandidateNotFoundError(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateNotFound,
		Kind:      KindNotFound,
		Message:   "Candidate not found",
		Details:   fmt.Sprintf("candidateId: %s", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestNotFoundError creates a non-retryable lookup error.
func NewRequestNotFoundError(requestID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestNotFound,
		Kind:      KindNotFound,
		Message:   "Recruitment request not found",
		Details:   fmt.Sprintf("recruitmentRequestId: %s", requestID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestClosedError signals an application against a request no longer open.
func NewRequestClosedError(requestID, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestClosed,
		Kind:      KindConflict,
		Message:   "Recruitment request is not open for applications",
		Details:   fmt.Sprintf("recruitmentRequestId: %s, status: %s", requestID, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCandidateEmployedError signals a candidate already in active service.
func NewCandidateEmployedError(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateEmployed,
		Kind:      KindConflict,
		Message:   "Candidate is currently in active employment",
		Details:   fmt.Sprintf("candidateId: %s", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError signals a live application already exists.
func NewDuplicateApplicationError(candidateID, requestID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Kind:      KindConflict,
		Message:   "An application for this recruitment request already exists",
		Details:   fmt.Sprintf("candidateId: %s, recruitmentRequestId: %s", candidateID, requestID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable lookup error.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Kind:      KindNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable payload validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationValidationFailed,
		Kind:      KindValidation,
		Message:   "Request payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTransitionError signals a status change the pipeline does not allow.
func NewInvalidTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Kind:      KindConflict,
		Message:   "Status transition is not allowed",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Metadata:  map[string]interface{}{"from": from, "to": to},
		Timestamp: time.Now().UTC(),
	}
}

// NewTestNotFoundError creates a non-retryable lookup error.
func NewTestNotFoundError(testID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTestNotFound,
		Kind:      KindNotFound,
		Message:   "Test not found",
		Details:   fmt.Sprintf("testId: %s", testID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssignmentNotFoundError creates a non-retryable lookup error.
func NewAssignmentNotFoundError(assignmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssignmentNotFound,
		Kind:      KindNotFound,
		Message:   "Test assignment not found",
		Details:   fmt.Sprintf("assignmentId: %s", assignmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTestAlreadyCompletedError signals a second submission attempt.
func NewTestAlreadyCompletedError(assignmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTestAlreadyCompleted,
		Kind:      KindConflict,
		Message:   "Test has already been completed",
		Details:   fmt.Sprintf("assignmentId: %s", assignmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTestExpiredError signals an attempt to start an expired assignment.
func NewTestExpiredError(assignmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTestExpired,
		Kind:      KindConflict,
		Message:   "Test assignment has expired",
		Details:   fmt.Sprintf("assignmentId: %s", assignmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTestNotStartedError signals a submission against an assignment never started.
func NewTestNotStartedError(assignmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTestNotStarted,
		Kind:      KindConflict,
		Message:   "Test has not been started",
		Details:   fmt.Sprintf("assignmentId: %s", assignmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInProgressError signals a concurrent submission holding the lock.
func NewSubmissionInProgressError(assignmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInProgress,
		Kind:      KindConflict,
		Message:   "A submission for this test is already being processed",
		Details:   fmt.Sprintf("assignmentId: %s", assignmentID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReviewNotAllowedError signals answer review is disabled for the test.
func NewReviewNotAllowedError(testID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReviewNotAllowed,
		Kind:      KindConflict,
		Message:   "Answer review is not enabled for this test",
		Details:   fmt.Sprintf("testId: %s", testID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultNotFoundError creates a non-retryable lookup error.
func NewResultNotFoundError(resultID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultNotFound,
		Kind:      KindNotFound,
		Message:   "Test result not found",
		Details:   fmt.Sprintf("resultId: %s", resultID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvitationNotFoundError creates a non-retryable lookup error.
func NewInvitationNotFoundError(invitationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvitationNotFound,
		Kind:      KindNotFound,
		Message:   "Interview invitation not found",
		Details:   fmt.Sprintf("invitationId: %s", invitationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvitationClosedError signals an update against a finished interview.
func NewInvitationClosedError(invitationID, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvitationClosed,
		Kind:      KindConflict,
		Message:   "Interview invitation is no longer open for updates",
		Details:   fmt.Sprintf("invitationId: %s, status: %s", invitationID, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInvitationResponseError signals a response value outside accepted/declined.
func NewInvalidInvitationResponseError(response string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInvitationResponse,
		Kind:      KindValidation,
		Message:   "Invitation response must be accepted or declined",
		Details:   fmt.Sprintf("response: %s", response),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAttendanceNotDueError signals attendance confirmed before the interview day.
func NewAttendanceNotDueError(invitationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAttendanceNotDue,
		Kind:      KindConflict,
		Message:   "Attendance can only be confirmed on or after the interview date",
		Details:   fmt.Sprintf("invitationId: %s", invitationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRescheduleWindowClosedError signals a reschedule asked too close to the slot.
func NewRescheduleWindowClosedError(invitationID string, windowHours int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRescheduleWindowClosed,
		Kind:      KindConflict,
		Message:   fmt.Sprintf("Reschedule requests must be made at least %d hours before the interview", windowHours),
		Details:   fmt.Sprintf("invitationId: %s", invitationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Kind:      KindInternal,
		Message:   "Failed to connect to database",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Kind:      KindInternal,
		Message:   "Database query execution failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Kind:      KindInternal,
		Message:   "Database insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an arbitrary error as an internal failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Kind:      KindInternal,
		Message:   "Internal error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
