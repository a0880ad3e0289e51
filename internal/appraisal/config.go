package appraisal

import (
	"fmt"
	"math"

	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// BlendWeights combine the Performance index, mean KRA attainment, and
// mean feedback polarity into the readiness blended score.
type BlendWeights struct {
	Performance   float64 `json:"performance" koanf:"performance"`
	KRAAttainment float64 `json:"kra_attainment" koanf:"kra_attainment"`
	Sentiment     float64 `json:"sentiment" koanf:"sentiment"`
}

// TierCuts are the ordered blended-score cut points between readiness
// tiers: below Developing is not_ready, then developing, ready, and at
// or above HighlyReady the top tier.
type TierCuts struct {
	Developing  float64 `json:"developing" koanf:"developing"`
	Ready       float64 `json:"ready" koanf:"ready"`
	HighlyReady float64 `json:"highly_ready" koanf:"highly_ready"`
}

// ActionCuts key the follow-up actions attached to a recommendation.
// Advance and Develop read the blended score; Wellness and Engage read
// the Health and Social indices.
type ActionCuts struct {
	Advance  float64 `json:"advance" koanf:"advance"`
	Develop  float64 `json:"develop" koanf:"develop"`
	Wellness float64 `json:"wellness" koanf:"wellness"`
	Engage   float64 `json:"engage" koanf:"engage"`
}

// Config holds every tunable threshold of the scoring and rule engine.
// All of it is data: the rule tables read from here instead of baking
// numbers into conditions.
type Config struct {
	Blend      BlendWeights `json:"blend" koanf:"blend"`
	TierCuts   TierCuts     `json:"tier_cuts" koanf:"tier_cuts"`
	ActionCuts ActionCuts   `json:"action_cuts" koanf:"action_cuts"`

	// KRACap bounds attainment so over-achievement cannot dominate.
	KRACap float64 `json:"kra_cap" koanf:"kra_cap"`
	// HighAttainment marks a KRA as a strength at or above this ratio.
	HighAttainment float64 `json:"high_attainment" koanf:"high_attainment"`
	// LowAttainment marks a KRA as a risk below this ratio.
	LowAttainment float64 `json:"low_attainment" koanf:"low_attainment"`

	PerformanceHigh float64 `json:"performance_high" koanf:"performance_high"`
	SocialHigh      float64 `json:"social_high" koanf:"social_high"`
	HealthHigh      float64 `json:"health_high" koanf:"health_high"`
	HealthLow       float64 `json:"health_low" koanf:"health_low"`
	// BurnoutHealth triggers the burnout risk when the Health index sits
	// below it while the Performance index clears PerformanceHigh.
	BurnoutHealth float64 `json:"burnout_health" koanf:"burnout_health"`

	Sentiment SentimentThresholds `json:"sentiment" koanf:"sentiment"`

	// Component weights for each composite index. Each set must sum to 1.
	HealthWeights      map[string]float64 `json:"health_weights" koanf:"health_weights"`
	SocialWeights      map[string]float64 `json:"social_weights" koanf:"social_weights"`
	PerformanceWeights map[string]float64 `json:"performance_weights" koanf:"performance_weights"`
}

// DefaultConfig returns the stock engine tuning.
func DefaultConfig() Config {
	return Config{
		Blend: BlendWeights{
			Performance:   0.5,
			KRAAttainment: 0.3,
			Sentiment:     0.2,
		},
		TierCuts: TierCuts{
			Developing:  40,
			Ready:       60,
			HighlyReady: 80,
		},
		ActionCuts: ActionCuts{
			Advance:  85,
			Develop:  70,
			Wellness: 65,
			Engage:   75,
		},
		KRACap:          1.5,
		HighAttainment:  0.95,
		LowAttainment:   0.70,
		PerformanceHigh: 85,
		SocialHigh:      85,
		HealthHigh:      75,
		HealthLow:       50,
		BurnoutHealth:   65,
		Sentiment:       DefaultSentimentThresholds(),
		HealthWeights: map[string]float64{
			"stress":       0.25,
			"sleep":        0.25,
			"energy":       0.25,
			"satisfaction": 0.25,
		},
		SocialWeights: map[string]float64{
			"email_response":        0.25,
			"meeting_participation": 0.25,
			"collaboration":         0.25,
			"mentorship":            0.25,
		},
		PerformanceWeights: map[string]float64{
			"aop_attainment":   0.6,
			"project_progress": 0.4,
		},
	}
}

// Validate checks every weight set and threshold ordering. Violations are
// ConfigErrors naming the offending field; nothing is renormalized.
func (c Config) Validate() error {
	blendSum := c.Blend.Performance + c.Blend.KRAAttainment + c.Blend.Sentiment
	if math.Abs(blendSum-1.0) > weightEpsilon {
		return apperrors.NewConfigError("blend",
			fmt.Sprintf("blend weights sum to %.6f, must sum to 1.0", blendSum))
	}

	for field, weights := range map[string]map[string]float64{
		"health_weights":      c.HealthWeights,
		"social_weights":      c.SocialWeights,
		"performance_weights": c.PerformanceWeights,
	} {
		sum := 0.0
		for name, w := range weights {
			if w < 0 {
				return apperrors.NewConfigError(field+"."+name, "negative weight")
			}
			sum += w
		}
		if math.Abs(sum-1.0) > weightEpsilon {
			return apperrors.NewConfigError(field,
				fmt.Sprintf("weights sum to %.6f, must sum to 1.0", sum))
		}
	}

	if !(c.TierCuts.Developing < c.TierCuts.Ready && c.TierCuts.Ready < c.TierCuts.HighlyReady) {
		return apperrors.NewConfigError("tier_cuts", "cut points must be strictly increasing")
	}
	if c.ActionCuts.Develop >= c.ActionCuts.Advance {
		return apperrors.NewConfigError("action_cuts", "develop cut must sit below advance cut")
	}
	if c.KRACap <= 0 {
		return apperrors.NewConfigError("kra_cap", "cap must be positive")
	}
	if c.LowAttainment >= c.HighAttainment {
		return apperrors.NewConfigError("low_attainment", "low threshold must sit below high threshold")
	}
	if c.Sentiment.Negative >= c.Sentiment.Positive {
		return apperrors.NewConfigError("sentiment", "negative threshold must sit below positive threshold")
	}

	return nil
}
