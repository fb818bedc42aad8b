// internal/recruitment/eligibility/evaluator.go
package eligibility

import (
	"math"
	"strings"

	"github.com/SOL-ICT/recruitment-core/internal/models"
)

// Criterion names used in policy weights and required lists.
const (
	CriterionLocation   = "location"
	CriterionAge        = "age"
	CriterionExperience = "experience"
)

// Policy controls how the screening score is computed. Weights are
// relative; criteria in Required must all pass for eligibility
// regardless of the score.
type Policy struct {
	Weights  map[string]float64
	Required []string
}

// DefaultPolicy weights every criterion equally and requires all of them.
func DefaultPolicy() Policy {
	return Policy{
		Weights: map[string]float64{
			CriterionLocation:   1,
			CriterionAge:        1,
			CriterionExperience: 1,
		},
		Required: []string{CriterionLocation, CriterionAge, CriterionExperience},
	}
}

// Evaluator scores candidates against recruitment request constraints.
type Evaluator struct {
	policy Policy
}

func New(policy Policy) *Evaluator {
	if len(policy.Weights) == 0 {
		policy = DefaultPolicy()
	}
	return &Evaluator{policy: policy}
}

// Evaluate checks each criterion against the request constraints. A
// criterion with missing candidate data fails rather than being skipped,
// so incomplete profiles never screen as eligible.
func (e *Evaluator) Evaluate(candidate *models.Candidate, request *models.RecruitmentRequest) models.Eligibility {
	results := map[string]bool{
		CriterionLocation:   e.checkLocation(candidate, request),
		CriterionAge:        e.checkAge(candidate, request),
		CriterionExperience: e.checkExperience(candidate, request),
	}

	var totalWeight, earned float64
	for name, weight := range e.policy.Weights {
		totalWeight += weight
		if results[name] {
			earned += weight
		}
	}

	score := 0.0
	if totalWeight > 0 {
		score = round2(earned / totalWeight * 100)
	}

	eligible := true
	for _, name := range e.policy.Required {
		if !results[name] {
			eligible = false
			break
		}
	}

	return models.Eligibility{
		Location:   results[CriterionLocation],
		Age:        results[CriterionAge],
		Experience: results[CriterionExperience],
		Score:      score,
		IsEligible: eligible,
	}
}

// checkLocation passes when the candidate resides in the state the
// request serves. Requests without a service state accept any location.
func (e *Evaluator) checkLocation(candidate *models.Candidate, request *models.RecruitmentRequest) bool {
	if request.ServiceState == "" {
		return true
	}
	if candidate.StateOfResidence == "" {
		return false
	}
	return strings.EqualFold(candidate.StateOfResidence, request.ServiceState)
}

func (e *Evaluator) checkAge(candidate *models.Candidate, request *models.RecruitmentRequest) bool {
	if request.AgeLimitMin == 0 && request.AgeLimitMax == 0 {
		return true
	}
	if candidate.Age == 0 {
		return false
	}
	if request.AgeLimitMin > 0 && candidate.Age < request.AgeLimitMin {
		return false
	}
	if request.AgeLimitMax > 0 && candidate.Age > request.AgeLimitMax {
		return false
	}
	return true
}

func (e *Evaluator) checkExperience(candidate *models.Candidate, request *models.RecruitmentRequest) bool {
	if request.MinExperienceYears == 0 {
		return true
	}
	if candidate.YearsOfExperience < 0 {
		return false
	}
	return candidate.YearsOfExperience >= request.MinExperienceYears
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
