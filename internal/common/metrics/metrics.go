// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recruitment_applications_submitted_total",
			Help: "Total number of applications submitted",
		},
		[]string{"eligible"},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recruitment_status_transitions_total",
			Help: "Total number of application status transitions",
		},
		[]string{"from", "to"},
	)

	TestSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recruitment_test_submissions_total",
			Help: "Total number of scored test submissions",
		},
		[]string{"passed"},
	)

	InvitationUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recruitment_interview_updates_total",
			Help: "Total number of interview invitation updates",
		},
		[]string{"action"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "recruitment_operation_duration_seconds",
			Help: "Duration of pipeline operations in seconds",
		},
		[]string{"operation"},
	)

	OperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recruitment_operation_errors_total",
			Help: "Total number of pipeline operation errors",
		},
		[]string{"operation", "error_code"},
	)
)
