package models

// Recruitment request status values. Only active requests accept new
// applications.
const (
	RequestStatusActive = "active"
	RequestStatusClosed = "closed"
	RequestStatusFilled = "filled"
)

// Candidate is the directory profile used for screening. Age and
// experience default to zero when the profile is incomplete, which the
// evaluator treats as failing any constrained criterion.
type Candidate struct {
	ID                string `json:"id"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	StateOfResidence  string `json:"stateOfResidence"`
	Age               int    `json:"age"`
	YearsOfExperience int    `json:"yearsOfExperience"`
}

// RecruitmentRequest is a client vacancy candidates apply against.
type RecruitmentRequest struct {
	ID                 string `json:"id"`
	TicketID           string `json:"ticketId"`
	JobTitle           string `json:"jobTitle"`
	Company            string `json:"company"`
	Status             string `json:"status"`
	ServiceState       string `json:"serviceState"`
	AgeLimitMin        int    `json:"ageLimitMin"`
	AgeLimitMax        int    `json:"ageLimitMax"`
	MinExperienceYears int    `json:"minExperienceYears"`
	NumberOfVacancies  int    `json:"numberOfVacancies"`
	Description        string `json:"description,omitempty"`
}

// IsOpen reports whether the request still accepts applications.
func (r *RecruitmentRequest) IsOpen() bool {
	return r.Status == RequestStatusActive
}
