package models

// Actor roles recognised by the pipeline. Candidates act on their own
// records only; recruiters drive review and scheduling decisions.
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

// ActorContext identifies who is performing an operation. It travels
// with every service call so ownership checks and audit records share
// one source of truth.
type ActorContext struct {
	ActorID     string `json:"actorId"`
	CandidateID string `json:"candidateId,omitempty"`
	Role        string `json:"role"`
}

// IsCandidate reports whether the actor is a candidate acting on their
// own behalf.
func (a ActorContext) IsCandidate() bool {
	return a.Role == RoleCandidate
}

// AuditID returns the identifier recorded against audit entries and
// status events for this actor.
func (a ActorContext) AuditID() string {
	if a.ActorID != "" {
		return a.ActorID
	}
	return a.CandidateID
}
