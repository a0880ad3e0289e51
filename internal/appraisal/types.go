package appraisal

import "time"

// Direction declares which end of a metric's scale is the good end.
type Direction string

const (
	HigherIsBetter Direction = "higher_is_better"
	LowerIsBetter  Direction = "lower_is_better"
)

// Scale is the declared [Min,Max] range of a raw metric.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RawMetricSample is a single raw reading supplied by a data source.
// Immutable once recorded.
type RawMetricSample struct {
	MetricName string    `json:"metric_name"`
	Value      float64   `json:"value"`
	Scale      Scale     `json:"scale"`
	Direction  Direction `json:"direction"`
	Timestamp  time.Time `json:"timestamp"`
}

// Component is one weighted, normalized contribution to a composite index.
type Component struct {
	MetricName      string  `json:"metric_name"`
	Weight          float64 `json:"weight"`
	NormalizedValue float64 `json:"normalized_value"`
}

// CompositeIndex is a weighted aggregate of normalized sub-metrics on a
// [0,100] scale. Components preserve input order so the index is
// explainable after the fact.
type CompositeIndex struct {
	Name       string      `json:"name"`
	Value      float64     `json:"value"`
	Components []Component `json:"components"`
}

// Index names required by the rule engine.
const (
	IndexHealth      = "health"
	IndexSocial      = "social"
	IndexPerformance = "performance"
)

// KRA is a Key Result Area: a tracked goal with a target and actual value.
type KRA struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
	Weight float64 `json:"weight"`
}

// Attainment returns actual/target clamped to [0, cap]. The cap keeps a
// single runaway over-achiever from dominating the aggregate.
func (k KRA) Attainment(cap float64) float64 {
	if k.Target == 0 {
		return 0
	}
	a := k.Actual / k.Target
	if a < 0 {
		return 0
	}
	if a > cap {
		return cap
	}
	return a
}

// ProjectStatus is the delivery state of a project.
type ProjectStatus string

const (
	StatusOnTrack ProjectStatus = "on_track"
	StatusAtRisk  ProjectStatus = "at_risk"
	StatusDelayed ProjectStatus = "delayed"
)

// Project tracks one delivery workstream.
type Project struct {
	Name        string        `json:"name"`
	ProgressPct float64       `json:"progress_pct"`
	Status      ProjectStatus `json:"status"`
	Priority    string        `json:"priority"`
}

// Initiative is a side contribution outside project delivery.
type Initiative struct {
	Name         string `json:"name"`
	Status       string `json:"status"`       // active, planning, paused, completed
	Contribution string `json:"contribution"` // high, medium, low
}

// MonthlyPerformance is one month of the Actual-vs-AOP series.
type MonthlyPerformance struct {
	Month     string  `json:"month"`
	AOPTarget float64 `json:"aop_target"`
	Actual    float64 `json:"actual"`
}

// FeedbackEntry is one piece of received feedback. The text is immutable
// once submitted; the derived sentiment is attached alongside, never in
// place of, the original.
type FeedbackEntry struct {
	ID          string    `json:"id"`
	AuthorRef   string    `json:"author_ref"`
	AuthorRole  string    `json:"author_role"` // manager, peer, direct_report
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SentimentCategory buckets feedback polarity.
type SentimentCategory string

const (
	SentimentPositive SentimentCategory = "positive"
	SentimentNeutral  SentimentCategory = "neutral"
	SentimentNegative SentimentCategory = "negative"
)

// SentimentResult is the classifier's verdict for one text.
type SentimentResult struct {
	Category SentimentCategory `json:"category"`
	Polarity float64           `json:"polarity"` // [-1, 1]
}

// SentimentDistribution aggregates sentiment over many feedback entries.
type SentimentDistribution struct {
	Positive     int     `json:"positive"`
	Neutral      int     `json:"neutral"`
	Negative     int     `json:"negative"`
	MeanPolarity float64 `json:"mean_polarity"`
}

// Total returns the number of classified entries.
func (d SentimentDistribution) Total() int {
	return d.Positive + d.Neutral + d.Negative
}

// ReadinessTier is the ordinal promotion-readiness category.
type ReadinessTier string

const (
	TierNotReady    ReadinessTier = "not_ready"
	TierDeveloping  ReadinessTier = "developing"
	TierReady       ReadinessTier = "ready"
	TierHighlyReady ReadinessTier = "highly_ready"
)

// tierRank orders tiers for band arithmetic.
func tierRank(t ReadinessTier) int {
	switch t {
	case TierHighlyReady:
		return 3
	case TierReady:
		return 2
	case TierDeveloping:
		return 1
	default:
		return 0
	}
}

// IncrementBand is the discrete compensation-adjustment category.
type IncrementBand string

const (
	BandStandard    IncrementBand = "standard"
	BandStrong      IncrementBand = "strong"
	BandHigh        IncrementBand = "high_performer"
	BandExceptional IncrementBand = "exceptional"
)

var bandOrder = []IncrementBand{BandStandard, BandStrong, BandHigh, BandExceptional}

// AppraisalRecommendation is the engine's structured output. It is derived
// state: recomputed on demand from current inputs, never persisted as a
// source of truth.
type AppraisalRecommendation struct {
	ReadinessTier  ReadinessTier `json:"readiness_tier"`
	BlendedScore   float64       `json:"blended_score"`
	Strengths      []string      `json:"strengths"`
	Risks          []string      `json:"risks"`
	Actions        []string      `json:"actions"`
	IncrementBand  IncrementBand `json:"increment_band"`
	RoleTrajectory string        `json:"role_trajectory"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
