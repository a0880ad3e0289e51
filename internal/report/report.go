// Package report renders a plain-text management information summary
// from a session snapshot and its recommendation.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/talentops/pulsemark/internal/appraisal"
	"github.com/talentops/pulsemark/internal/session"
)

// Render produces the MIS text report. Output is deterministic for a
// given snapshot and recommendation so reports can be diffed.
func Render(snap session.Snapshot, rec appraisal.AppraisalRecommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PERFORMANCE SUMMARY: %s\n", snap.EmployeeRef)
	if snap.Profile.Name != "" {
		fmt.Fprintf(&b, "Employee: %s", snap.Profile.Name)
		if snap.Profile.Department != "" {
			fmt.Fprintf(&b, "  (%s)", snap.Profile.Department)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Generated: %s\n", rec.GeneratedAt.Format(time.RFC3339))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("COMPOSITE INDICES\n")
	for _, name := range []string{appraisal.IndexHealth, appraisal.IndexSocial, appraisal.IndexPerformance} {
		idx, ok := snap.Indices[name]
		if !ok {
			fmt.Fprintf(&b, "  %-14s (incomplete)\n", name)
			continue
		}
		fmt.Fprintf(&b, "  %-14s %6.1f\n", name, idx.Value)
		for _, c := range idx.Components {
			fmt.Fprintf(&b, "    %-22s %6.1f  (weight %.2f)\n", c.MetricName, c.NormalizedValue, c.Weight)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "READINESS: %s (blended score %.1f)\n", rec.ReadinessTier, rec.BlendedScore)
	fmt.Fprintf(&b, "INCREMENT BAND: %s\n", rec.IncrementBand)
	fmt.Fprintf(&b, "ROLE TRAJECTORY: %s\n\n", rec.RoleTrajectory)

	b.WriteString("STRENGTHS\n")
	writeList(&b, rec.Strengths)
	b.WriteString("RISKS\n")
	writeList(&b, rec.Risks)
	b.WriteString("KEY RECOMMENDATIONS\n")
	writeList(&b, rec.Actions)

	if len(snap.KRAs) > 0 {
		b.WriteString("KEY RESULT AREAS\n")
		for _, k := range snap.KRAs {
			fmt.Fprintf(&b, "  %-28s target %8.1f  actual %8.1f\n", k.Name, k.Target, k.Actual)
		}
		b.WriteString("\n")
	}

	if len(snap.Projects) > 0 {
		b.WriteString("PROJECTS\n")
		for _, p := range snap.Projects {
			fmt.Fprintf(&b, "  %-28s %5.1f%%  %s\n", p.Name, p.ProgressPct, p.Status)
		}
		b.WriteString("\n")
	}

	if len(snap.Initiatives) > 0 {
		b.WriteString("INITIATIVES\n")
		for _, in := range snap.Initiatives {
			fmt.Fprintf(&b, "  %-28s %-10s contribution: %s\n", in.Name, in.Status, in.Contribution)
		}
		b.WriteString("\n")
	}

	if len(snap.Monthly) > 0 {
		b.WriteString("MONTHLY ACTUAL VS AOP\n")
		for _, m := range snap.Monthly {
			marker := ""
			if m.Actual < m.AOPTarget {
				marker = "  below target"
			}
			fmt.Fprintf(&b, "  %s  target %10.1f  actual %10.1f%s\n", m.Month, m.AOPTarget, m.Actual, marker)
		}
		b.WriteString("\n")
	}

	if snap.Sentiment.Total() > 0 {
		b.WriteString("FEEDBACK SENTIMENT\n")
		fmt.Fprintf(&b, "  positive %d  neutral %d  negative %d  mean polarity %+.2f\n\n",
			snap.Sentiment.Positive, snap.Sentiment.Neutral, snap.Sentiment.Negative, snap.Sentiment.MeanPolarity)
	}

	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("  (none)\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
	b.WriteString("\n")
}
