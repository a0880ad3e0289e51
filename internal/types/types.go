// Package types holds the request payloads accepted by the HTTP API.
// Each request converts into its domain counterpart so handlers stay thin.
package types

import (
	"time"

	"github.com/talentops/pulsemark/internal/appraisal"
)

// MetricSampleRequest is a raw health or social metric reading
type MetricSampleRequest struct {
	MetricName string    `json:"metric_name" binding:"required"`
	Value      float64   `json:"value"`
	ScaleMin   float64   `json:"scale_min"`
	ScaleMax   float64   `json:"scale_max"`
	Direction  string    `json:"direction" binding:"required,oneof=higher_is_better lower_is_better"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToSample converts the request into a domain metric sample
func (r MetricSampleRequest) ToSample() appraisal.RawMetricSample {
	return appraisal.RawMetricSample{
		MetricName: r.MetricName,
		Value:      r.Value,
		Scale:      appraisal.Scale{Min: r.ScaleMin, Max: r.ScaleMax},
		Direction:  appraisal.Direction(r.Direction),
		Timestamp:  r.Timestamp,
	}
}

// ProfileRequest sets the employee display attributes
type ProfileRequest struct {
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
}

// FeedbackRequest is a piece of free-text feedback about an employee
type FeedbackRequest struct {
	AuthorRef  string `json:"author_ref" binding:"required"`
	AuthorRole string `json:"author_role" binding:"required,oneof=manager peer direct_report"`
	Text       string `json:"text" binding:"required"`
}

// KRARequest creates or replaces a key result area
type KRARequest struct {
	Name   string  `json:"name" binding:"required"`
	Target float64 `json:"target" binding:"required"`
	Actual float64 `json:"actual"`
	Weight float64 `json:"weight"`
}

// ToKRA converts the request into a domain KRA
func (r KRARequest) ToKRA() appraisal.KRA {
	return appraisal.KRA{
		Name:   r.Name,
		Target: r.Target,
		Actual: r.Actual,
		Weight: r.Weight,
	}
}

// ProjectRequest creates or replaces a project record
type ProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	ProgressPct float64 `json:"progress_pct"`
	Status      string  `json:"status" binding:"required,oneof=on_track at_risk delayed"`
	Priority    string  `json:"priority"`
}

// ToProject converts the request into a domain project
func (r ProjectRequest) ToProject() appraisal.Project {
	return appraisal.Project{
		Name:        r.Name,
		ProgressPct: r.ProgressPct,
		Status:      appraisal.ProjectStatus(r.Status),
		Priority:    r.Priority,
	}
}

// InitiativeRequest creates or replaces an initiative record
type InitiativeRequest struct {
	Name         string `json:"name" binding:"required"`
	Status       string `json:"status" binding:"required,oneof=active planning paused completed"`
	Contribution string `json:"contribution" binding:"required,oneof=high medium low"`
}

// ToInitiative converts the request into a domain initiative
func (r InitiativeRequest) ToInitiative() appraisal.Initiative {
	return appraisal.Initiative{
		Name:         r.Name,
		Status:       r.Status,
		Contribution: r.Contribution,
	}
}

// MonthlyPerformanceRequest records one month of the actual-vs-AOP series
type MonthlyPerformanceRequest struct {
	Month     string  `json:"month" binding:"required"`
	AOPTarget float64 `json:"aop_target" binding:"required"`
	Actual    float64 `json:"actual"`
}

// ToMonthly converts the request into a domain monthly record
func (r MonthlyPerformanceRequest) ToMonthly() appraisal.MonthlyPerformance {
	return appraisal.MonthlyPerformance{
		Month:     r.Month,
		AOPTarget: r.AOPTarget,
		Actual:    r.Actual,
	}
}

// ShareRequest asks for a shareable link to the current recommendation
type ShareRequest struct {
	SharedWith string `json:"shared_with" binding:"required"`
}
