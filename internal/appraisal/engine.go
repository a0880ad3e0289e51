package appraisal

import (
	"fmt"
	"time"

	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// Inputs is the immutable snapshot the rule engine evaluates. Callers
// assemble it from current session state; the engine never reaches into
// ambient shared state.
type Inputs struct {
	Indices     map[string]CompositeIndex
	KRAs        []KRA
	Projects    []Project
	Initiatives []Initiative
	Sentiment   SentimentDistribution
}

// requiredIndices are checked in a fixed order so a multi-way failure
// always names the same missing index.
var requiredIndices = []string{IndexHealth, IndexSocial, IndexPerformance}

// strengthCategory groups strengths for the trajectory mapping.
type strengthCategory int

const (
	categoryDelivery strengthCategory = iota
	categoryCollaboration
	categoryWellness
)

// strengthRule is one (condition, effect) pair. Rules are data: the
// table is evaluated in order against the snapshot and every hit is
// reported, never just the first.
type strengthRule struct {
	category strengthCategory
	eval     func(in Inputs, cfg Config) []string
}

type riskRule struct {
	eval func(in Inputs, cfg Config) []string
}

// Engine consumes composite indices, KRA attainment, project status, and
// the sentiment distribution, and produces a structured recommendation.
type Engine struct {
	cfg Config
	now func() time.Time

	strengthRules []strengthRule
	riskRules     []riskRule
}

// NewEngine validates the config and builds the rule tables.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, now: time.Now}
	e.strengthRules = buildStrengthRules()
	e.riskRules = buildRiskRules()
	return e, nil
}

// WithClock overrides the timestamp source. Tests use it to pin
// GeneratedAt; everything else about the output is a pure function of
// the inputs regardless.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Config exposes the engine tuning for collaborators (report rendering,
// composite assembly).
func (e *Engine) Config() Config {
	return e.cfg
}

// Recommend evaluates the full rule set over the snapshot. Missing
// required indices fail with an IncompleteDataError naming the first
// absent index; the engine never substitutes a default score.
func (e *Engine) Recommend(in Inputs) (AppraisalRecommendation, error) {
	for _, name := range requiredIndices {
		if _, ok := in.Indices[name]; !ok {
			return AppraisalRecommendation{}, apperrors.NewIncompleteDataError(name)
		}
	}

	blended := e.blendedScore(in)
	tier := e.tierFor(blended)

	var strengths []string
	counts := map[strengthCategory]int{}
	for _, rule := range e.strengthRules {
		hits := rule.eval(in, e.cfg)
		strengths = append(strengths, hits...)
		counts[rule.category] += len(hits)
	}

	var risks []string
	for _, rule := range e.riskRules {
		risks = append(risks, rule.eval(in, e.cfg)...)
	}

	return AppraisalRecommendation{
		ReadinessTier:  tier,
		BlendedScore:   blended,
		Strengths:      strengths,
		Risks:          risks,
		Actions:        e.actionsFor(blended, in),
		IncrementBand:  e.bandFor(tier, len(risks)),
		RoleTrajectory: trajectoryFor(tier, dominantCategory(counts)),
		GeneratedAt:    e.now().UTC(),
	}, nil
}

// actionsFor keys the follow-up actions off the blended score and the
// wellness-facing indices. A fixed mapping, never free-text generation;
// the fallback fires only when nothing else did.
func (e *Engine) actionsFor(blended float64, in Inputs) []string {
	var actions []string

	switch {
	case blended > e.cfg.ActionCuts.Advance:
		actions = append(actions, "advance: consider promotion to the next level within one to two quarters")
	case blended > e.cfg.ActionCuts.Develop:
		actions = append(actions, "develop: target specific gaps to reach the senior level")
	}

	if in.Indices[IndexHealth].Value < e.cfg.ActionCuts.Wellness {
		actions = append(actions, "wellness: schedule a check-in with the manager on workload")
	}
	if in.Indices[IndexSocial].Value < e.cfg.ActionCuts.Engage {
		actions = append(actions, "engage: increase cross-team collaboration initiatives")
	}

	if len(actions) == 0 {
		actions = append(actions, "sustain: current trajectory is strong, maintain focus")
	}
	return actions
}

// blendedScore combines the Performance index, capped mean KRA
// attainment rescaled to [0,100], and mean polarity rescaled to [0,100].
func (e *Engine) blendedScore(in Inputs) float64 {
	perf := in.Indices[IndexPerformance].Value

	attainment := 0.0
	if len(in.KRAs) > 0 {
		sum := 0.0
		for _, k := range in.KRAs {
			sum += k.Attainment(e.cfg.KRACap)
		}
		attainment = sum / float64(len(in.KRAs)) / e.cfg.KRACap * 100
	}

	sentiment := (in.Sentiment.MeanPolarity + 1) / 2 * 100

	return e.cfg.Blend.Performance*perf +
		e.cfg.Blend.KRAAttainment*attainment +
		e.cfg.Blend.Sentiment*sentiment
}

func (e *Engine) tierFor(blended float64) ReadinessTier {
	switch {
	case blended >= e.cfg.TierCuts.HighlyReady:
		return TierHighlyReady
	case blended >= e.cfg.TierCuts.Ready:
		return TierReady
	case blended >= e.cfg.TierCuts.Developing:
		return TierDeveloping
	default:
		return TierNotReady
	}
}

// bandFor maps the tier onto an increment band and steps it down one
// notch when any risk is present. The cap is exactly one step: a risky
// highly_ready still outranks a clean developing.
func (e *Engine) bandFor(tier ReadinessTier, riskCount int) IncrementBand {
	idx := tierRank(tier)
	if riskCount > 0 && idx > 0 {
		idx--
	}
	return bandOrder[idx]
}

func buildStrengthRules() []strengthRule {
	return []strengthRule{
		{categoryDelivery, func(in Inputs, cfg Config) []string {
			var hits []string
			for _, k := range in.KRAs {
				if k.Attainment(cfg.KRACap) >= cfg.HighAttainment {
					hits = append(hits, fmt.Sprintf("high KRA attainment: %s", k.Name))
				}
			}
			return hits
		}},
		{categoryDelivery, func(in Inputs, cfg Config) []string {
			if in.Indices[IndexPerformance].Value >= cfg.PerformanceHigh {
				return []string{"consistent delivery above target"}
			}
			return nil
		}},
		{categoryCollaboration, func(in Inputs, cfg Config) []string {
			if in.Indices[IndexSocial].Value >= cfg.SocialHigh {
				return []string{"strong collaborator"}
			}
			return nil
		}},
		{categoryCollaboration, func(in Inputs, cfg Config) []string {
			d := in.Sentiment
			if d.Total() > 0 && d.Positive > d.Neutral+d.Negative {
				return []string{"consistently positive feedback"}
			}
			return nil
		}},
		{categoryWellness, func(in Inputs, cfg Config) []string {
			if in.Indices[IndexHealth].Value >= cfg.HealthHigh &&
				in.Indices[IndexPerformance].Value >= cfg.PerformanceHigh {
				return []string{"sustains wellness while delivering"}
			}
			return nil
		}},
		{categoryDelivery, func(in Inputs, cfg Config) []string {
			var hits []string
			for _, init := range in.Initiatives {
				if init.Status == "active" && init.Contribution == "high" {
					hits = append(hits, fmt.Sprintf("drives initiative: %s", init.Name))
				}
			}
			return hits
		}},
	}
}

func buildRiskRules() []riskRule {
	return []riskRule{
		{func(in Inputs, cfg Config) []string {
			var hits []string
			for _, k := range in.KRAs {
				if k.Attainment(cfg.KRACap) < cfg.LowAttainment {
					hits = append(hits, fmt.Sprintf("low KRA attainment: %s", k.Name))
				}
			}
			return hits
		}},
		{func(in Inputs, cfg Config) []string {
			var hits []string
			for _, p := range in.Projects {
				if p.Status == StatusDelayed {
					hits = append(hits, fmt.Sprintf("delayed project: %s", p.Name))
				}
			}
			return hits
		}},
		{func(in Inputs, cfg Config) []string {
			if in.Indices[IndexHealth].Value < cfg.HealthLow {
				return []string{"low health index"}
			}
			return nil
		}},
		{func(in Inputs, cfg Config) []string {
			d := in.Sentiment
			if d.Total() > 0 && d.Negative > d.Positive {
				return []string{"negative feedback trend"}
			}
			return nil
		}},
		{func(in Inputs, cfg Config) []string {
			if in.Indices[IndexPerformance].Value >= cfg.PerformanceHigh &&
				in.Indices[IndexHealth].Value < cfg.BurnoutHealth {
				return []string{"burnout risk: strong output masking fatigue"}
			}
			return nil
		}},
	}
}

// dominantCategory picks the category with the most strength hits. Ties
// resolve in fixed order so the trajectory stays deterministic.
func dominantCategory(counts map[strengthCategory]int) strengthCategory {
	best := categoryDelivery
	for _, c := range []strengthCategory{categoryDelivery, categoryCollaboration, categoryWellness} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// trajectoryFor is a fixed mapping, never free-text generation.
func trajectoryFor(tier ReadinessTier, dominant strengthCategory) string {
	switch tier {
	case TierHighlyReady:
		if dominant == categoryCollaboration {
			return "People Leadership Track"
		}
		return "Senior/Lead Track"
	case TierReady:
		return "Specialist/Senior Track"
	case TierDeveloping:
		return "Individual Contributor Track"
	default:
		return "Development Focus"
	}
}
