package models

import "time"

// Interview invitation status values.
const (
	InvitationPending             = "pending"
	InvitationAccepted            = "accepted"
	InvitationDeclined            = "declined"
	InvitationConfirmed           = "confirmed"
	InvitationInProgress          = "in_progress"
	InvitationCompleted           = "completed"
	InvitationCancelled           = "cancelled"
	InvitationRescheduleRequested = "reschedule_requested"
)

// Interview delivery types.
const (
	InterviewVirtual  = "virtual"
	InterviewPhysical = "physical"
	InterviewPhone    = "phone"
)

// InterviewInvitation is one scheduled interview slot offered to a
// candidate. An application may hold several across rounds.
type InterviewInvitation struct {
	ID                   string     `json:"id"`
	CandidateID          string     `json:"candidateId"`
	RecruitmentRequestID string     `json:"recruitmentRequestId"`
	ApplicationID        string     `json:"applicationId"`
	InterviewType        string     `json:"interviewType"`
	Status               string     `json:"status"`
	ScheduledAt          time.Time  `json:"scheduledAt"`
	DurationMinutes      int        `json:"durationMinutes"`
	Location             string     `json:"location,omitempty"`
	MeetingLink          string     `json:"meetingLink,omitempty"`
	Message              string     `json:"message,omitempty"`
	CandidateResponse    string     `json:"candidateResponse,omitempty"`
	RespondedAt          *time.Time `json:"respondedAt,omitempty"`
	ConfirmedAttendance  bool       `json:"confirmedAttendance"`
	AttendedAt           *time.Time `json:"attendedAt,omitempty"`
	RescheduleReason     string     `json:"rescheduleReason,omitempty"`
	PreferredDates       []string   `json:"preferredDates,omitempty"`
	RescheduleAskedAt    *time.Time `json:"rescheduleAskedAt,omitempty"`
	Rating               *int       `json:"rating,omitempty"`
	Decision             string     `json:"decision,omitempty"`
	Feedback             string     `json:"feedback,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
}

// IsClosed reports whether the invitation can no longer change.
func (i InterviewInvitation) IsClosed() bool {
	return i.Status == InvitationCompleted || i.Status == InvitationCancelled
}
