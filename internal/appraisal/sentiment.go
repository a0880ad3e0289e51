package appraisal

import (
	"math"
	"strings"
	"unicode"
)

// Curated term sets for the lexicon classifier. Matching is on lowercased
// word stems so "delivered" and "delivers" both hit "deliver".
var positiveTerms = []string{
	"excellent", "great", "strong", "outstanding", "impressive", "reliable",
	"deliver", "ahead", "ownership", "proactive", "support", "mentor",
	"clear", "helpful", "innovative", "consistent", "exceed", "positive",
	"thoughtful", "effective", "growth", "trust", "improve",
}

var negativeTerms = []string{
	"poor", "weak", "late", "miss", "delay", "confus", "unclear",
	"unreliable", "slow", "disorganized", "frustrat", "concern", "fail",
	"struggl", "dismiss", "abrasive", "overload", "burnout", "negative",
	"careless", "conflict",
}

// SentimentThresholds are the polarity cut points separating the three
// categories. Tunable configuration, not hard-coded branching.
type SentimentThresholds struct {
	Positive float64 `json:"positive" koanf:"positive"`
	Negative float64 `json:"negative" koanf:"negative"`
}

// DefaultSentimentThresholds returns the stock cut points.
func DefaultSentimentThresholds() SentimentThresholds {
	return SentimentThresholds{Positive: 0.2, Negative: -0.2}
}

// Classifier maps free text to a sentiment category and polarity score.
// Purely lexicon-based: the same text always yields the same result.
type Classifier struct {
	thresholds SentimentThresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(thresholds SentimentThresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Classify scores text against the positive/negative lexicons. Polarity
// is the signed match balance normalized by the square root of the text
// length, clamped to [-1,1].
func (c *Classifier) Classify(text string) SentimentResult {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return SentimentResult{Category: SentimentNeutral, Polarity: 0}
	}

	balance := 0
	for _, tok := range tokens {
		if matchesAny(tok, positiveTerms) {
			balance++
		} else if matchesAny(tok, negativeTerms) {
			balance--
		}
	}

	polarity := float64(balance) / math.Sqrt(float64(len(tokens)))
	polarity = clamp(polarity, -1, 1)

	category := SentimentNeutral
	switch {
	case polarity > c.thresholds.Positive:
		category = SentimentPositive
	case polarity < c.thresholds.Negative:
		category = SentimentNegative
	}

	return SentimentResult{Category: category, Polarity: polarity}
}

// Distribution classifies every entry and aggregates counts per category
// plus the mean polarity.
func (c *Classifier) Distribution(entries []FeedbackEntry) SentimentDistribution {
	var dist SentimentDistribution
	if len(entries) == 0 {
		return dist
	}

	total := 0.0
	for _, e := range entries {
		res := c.Classify(e.Text)
		total += res.Polarity
		switch res.Category {
		case SentimentPositive:
			dist.Positive++
		case SentimentNegative:
			dist.Negative++
		default:
			dist.Neutral++
		}
	}
	dist.MeanPolarity = total / float64(len(entries))
	return dist
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func matchesAny(token string, terms []string) bool {
	for _, t := range terms {
		if strings.HasPrefix(token, t) {
			return true
		}
	}
	return false
}
