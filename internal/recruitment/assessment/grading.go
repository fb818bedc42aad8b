// internal/recruitment/assessment/grading.go
package assessment

import (
	"math"
	"sort"
	"strings"

	"github.com/SOL-ICT/recruitment-core/internal/models"
)

// DefaultGradeBands is used when a test does not carry its own bands.
// The qualitative level comes from performanceLevel, not the band.
func DefaultGradeBands() []models.GradeBand {
	return []models.GradeBand{
		{MinScore: 90, Grade: "A+"},
		{MinScore: 85, Grade: "A"},
		{MinScore: 80, Grade: "A-"},
		{MinScore: 75, Grade: "B+"},
		{MinScore: 70, Grade: "B"},
		{MinScore: 65, Grade: "B-"},
		{MinScore: 60, Grade: "C+"},
		{MinScore: 55, Grade: "C"},
		{MinScore: 50, Grade: "C-"},
		{MinScore: 45, Grade: "D+"},
		{MinScore: 40, Grade: "D"},
		{MinScore: 0, Grade: "F"},
	}
}

// performanceLevel rates the raw score independently of letter grades.
func performanceLevel(score float64) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "average"
	default:
		return "poor"
	}
}

// Scorecard is the outcome of grading one answer sheet.
type Scorecard struct {
	TotalQuestions   int
	CorrectAnswers   int
	ScorePercentage  float64
	Passed           bool
	Grade            string
	PerformanceLevel string
}

// Grade scores candidate answers against a test. Every question
// counts toward the total; one without a stored correct answer is
// simply never credited. A test with no questions grades to zero
// without passing.
func Grade(test *models.Test, answers map[string]string) Scorecard {
	total := len(test.Questions)
	correct := 0

	for _, q := range test.Questions {
		if len(q.CorrectAnswers) == 0 {
			continue
		}
		if isCorrect(q, answers[q.ID]) {
			correct++
		}
	}

	score := 0.0
	if total > 0 {
		score = round2(float64(correct) / float64(total) * 100)
	}

	return Scorecard{
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		ScorePercentage:  score,
		Passed:           total > 0 && score >= test.PassScore,
		Grade:            gradeFor(score, test.GradeBands),
		PerformanceLevel: performanceLevel(score),
	}
}

// isCorrect compares the given answer against the question's first
// correct answer after normalization, so "B", "b" and "1" all match a
// stored correct answer of "1".
func isCorrect(q models.TestQuestion, given string) bool {
	if given == "" {
		return false
	}
	want := normalizeAnswer(q.CorrectAnswers[0])
	return normalizeAnswer(given) == want
}

// normalizeAnswer maps single letters A-D onto zero-based option
// indexes and lowercases free-text answers.
func normalizeAnswer(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) == 1 {
		switch strings.ToUpper(trimmed) {
		case "A":
			return "0"
		case "B":
			return "1"
		case "C":
			return "2"
		case "D":
			return "3"
		}
	}
	return strings.ToLower(trimmed)
}

// gradeFor picks the band with the highest MinScore at or below the
// score. Custom bands are sorted descending before the scan.
func gradeFor(score float64, bands []models.GradeBand) string {
	if len(bands) == 0 {
		bands = DefaultGradeBands()
	}
	sorted := make([]models.GradeBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinScore > sorted[j].MinScore })

	for _, band := range sorted {
		if score >= band.MinScore {
			return band.Grade
		}
	}
	return sorted[len(sorted)-1].Grade
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
