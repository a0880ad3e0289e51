// Package mockdata fills a session with deterministic demo data so the
// API can be explored without wiring real data sources. The values are
// derived from a hash of the employee reference, so the same reference
// always yields the same review.
package mockdata

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/talentops/pulsemark/internal/appraisal"
	"github.com/talentops/pulsemark/internal/session"
)

var demoFeedback = []string{
	"Consistent delivery and strong ownership of the platform roadmap.",
	"Great mentor to the new hires, always helpful and clear in reviews.",
	"Some concern about late handoffs and unclear status updates this quarter.",
	"Reliable under pressure, proactive about unblocking the team.",
	"Impressive growth this cycle, feedback from peers is positive.",
	"A few deliverables slipped and the delay caused downstream frustration.",
}

var demoMonths = []string{"2026-01", "2026-02", "2026-03", "2026-04", "2026-05", "2026-06"}

var demoNames = []string{"Priya Sharma", "Jordan Lee", "Sam Okafor", "Alex Tanaka", "Riley Novak"}

var demoDepartments = []string{"Engineering", "Product", "Customer Success", "Finance"}

// Seed populates a session with a full demo review for its employee
func Seed(sess *session.Session) error {
	ref := sess.EmployeeRef
	base := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	sess.SetProfile(session.Profile{
		Name:       demoNames[int(hash(ref+"name")%uint64(len(demoNames)))],
		Department: demoDepartments[int(hash(ref+"dept")%uint64(len(demoDepartments)))],
	})

	healthSamples := []appraisal.RawMetricSample{
		{MetricName: "stress", Value: spread(ref, "stress", 2, 8), Scale: appraisal.Scale{Min: 0, Max: 10}, Direction: appraisal.LowerIsBetter, Timestamp: base},
		{MetricName: "sleep", Value: spread(ref, "sleep", 5, 9), Scale: appraisal.Scale{Min: 0, Max: 10}, Direction: appraisal.HigherIsBetter, Timestamp: base},
		{MetricName: "energy", Value: spread(ref, "energy", 4, 9), Scale: appraisal.Scale{Min: 0, Max: 10}, Direction: appraisal.HigherIsBetter, Timestamp: base},
		{MetricName: "satisfaction", Value: spread(ref, "satisfaction", 4, 9), Scale: appraisal.Scale{Min: 0, Max: 10}, Direction: appraisal.HigherIsBetter, Timestamp: base},
	}
	for _, s := range healthSamples {
		if _, err := sess.SubmitHealthSample(s); err != nil {
			return fmt.Errorf("seed health sample %s: %w", s.MetricName, err)
		}
	}

	socialSamples := []appraisal.RawMetricSample{
		{MetricName: "email_response", Value: spread(ref, "email_response", 50, 98), Scale: appraisal.Scale{Min: 0, Max: 100}, Direction: appraisal.HigherIsBetter, Timestamp: base},
		{MetricName: "meeting_participation", Value: spread(ref, "meeting_participation", 40, 95), Scale: appraisal.Scale{Min: 0, Max: 100}, Direction: appraisal.HigherIsBetter, Timestamp: base},
		{MetricName: "collaboration", Value: spread(ref, "collaboration", 45, 98), Scale: appraisal.Scale{Min: 0, Max: 100}, Direction: appraisal.HigherIsBetter, Timestamp: base},
		{MetricName: "mentorship", Value: spread(ref, "mentorship", 30, 95), Scale: appraisal.Scale{Min: 0, Max: 100}, Direction: appraisal.HigherIsBetter, Timestamp: base},
	}
	for _, s := range socialSamples {
		if _, err := sess.SubmitSocialSample(s); err != nil {
			return fmt.Errorf("seed social sample %s: %w", s.MetricName, err)
		}
	}

	kras := []appraisal.KRA{
		{Name: "revenue growth", Target: 100, Actual: spread(ref, "kra_revenue", 70, 120), Weight: 0.4},
		{Name: "platform uptime", Target: 100, Actual: spread(ref, "kra_uptime", 80, 105), Weight: 0.3},
		{Name: "customer satisfaction", Target: 100, Actual: spread(ref, "kra_csat", 65, 110), Weight: 0.3},
	}
	for _, k := range kras {
		if err := sess.UpsertKRA(k); err != nil {
			return fmt.Errorf("seed kra %s: %w", k.Name, err)
		}
	}

	projects := []appraisal.Project{
		{Name: "billing migration", ProgressPct: spread(ref, "proj_billing", 30, 100), Status: pickStatus(ref, "proj_billing"), Priority: "high"},
		{Name: "reporting revamp", ProgressPct: spread(ref, "proj_reporting", 40, 100), Status: pickStatus(ref, "proj_reporting"), Priority: "medium"},
	}
	for _, p := range projects {
		if err := sess.UpsertProject(p); err != nil {
			return fmt.Errorf("seed project %s: %w", p.Name, err)
		}
	}

	initiatives := []appraisal.Initiative{
		{Name: "onboarding buddy program", Status: "active", Contribution: pickContribution(ref, "init_buddy")},
		{Name: "internal tooling guild", Status: "planning", Contribution: pickContribution(ref, "init_guild")},
	}
	for _, init := range initiatives {
		if err := sess.UpsertInitiative(init); err != nil {
			return fmt.Errorf("seed initiative %s: %w", init.Name, err)
		}
	}

	for _, month := range demoMonths {
		record := appraisal.MonthlyPerformance{
			Month:     month,
			AOPTarget: 100,
			Actual:    spread(ref, "monthly_"+month, 70, 115),
		}
		if err := sess.RecordMonthlyPerformance(record); err != nil {
			return fmt.Errorf("seed month %s: %w", month, err)
		}
	}

	authors := []struct{ ref, role string }{
		{"demo.manager", "manager"},
		{"demo.peer", "peer"},
		{"demo.report", "direct_report"},
	}
	count := 2 + int(hash(ref+"feedback")%3)
	for i := 0; i < count; i++ {
		text := demoFeedback[int(hash(fmt.Sprintf("%s_fb_%d", ref, i))%uint64(len(demoFeedback)))]
		author := authors[i%len(authors)]
		if _, _, err := sess.SubmitFeedback(author.ref, author.role, text); err != nil {
			return fmt.Errorf("seed feedback %d: %w", i, err)
		}
	}

	return nil
}

func hash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// spread maps ref+salt onto [min, max) with one decimal of precision
func spread(ref, salt string, min, max float64) float64 {
	span := (max - min) * 10
	return min + float64(hash(ref+salt)%uint64(span))/10
}

func pickStatus(ref, salt string) appraisal.ProjectStatus {
	switch hash(ref + salt + "_status") % 4 {
	case 0:
		return appraisal.StatusDelayed
	case 1:
		return appraisal.StatusAtRisk
	default:
		return appraisal.StatusOnTrack
	}
}

func pickContribution(ref, salt string) string {
	switch hash(ref + salt + "_contrib") % 3 {
	case 0:
		return "high"
	case 1:
		return "medium"
	default:
		return "low"
	}
}
