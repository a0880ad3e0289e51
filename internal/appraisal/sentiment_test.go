package appraisal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultSentimentThresholds())

	tests := []struct {
		name     string
		text     string
		category SentimentCategory
	}{
		{
			name:     "positive feedback",
			text:     "Strong execution and ownership. Delivered targets ahead of schedule.",
			category: SentimentPositive,
		},
		{
			name:     "negative feedback",
			text:     "Deliverables were late and unclear, poor follow-through caused delays.",
			category: SentimentNegative,
		},
		{
			name:     "neutral feedback",
			text:     "Attended the weekly sync and presented the quarterly numbers.",
			category: SentimentNeutral,
		},
		{
			name:     "mixed feedback balances out",
			text:     "Great collaboration on the project but documentation was unclear.",
			category: SentimentNeutral,
		},
		{
			name:     "empty text",
			text:     "",
			category: SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.text)
			assert.Equal(t, tt.category, res.Category)
			assert.GreaterOrEqual(t, res.Polarity, -1.0)
			assert.LessOrEqual(t, res.Polarity, 1.0)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(DefaultSentimentThresholds())
	text := "Excellent mentor. Provided clear guidance and supported my growth."

	first := c.Classify(text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}

func TestClassifyThresholdsAreConfiguration(t *testing.T) {
	text := "Good insights in meetings, helpful and clear."

	lenient := NewClassifier(SentimentThresholds{Positive: 0.05, Negative: -0.05})
	strict := NewClassifier(SentimentThresholds{Positive: 0.99, Negative: -0.99})

	assert.Equal(t, SentimentPositive, lenient.Classify(text).Category)
	assert.Equal(t, SentimentNeutral, strict.Classify(text).Category)
}

func TestDistribution(t *testing.T) {
	c := NewClassifier(DefaultSentimentThresholds())
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	entries := []FeedbackEntry{
		{ID: "1", AuthorRef: "mgr-1", Text: "Strong execution and ownership, delivered ahead of schedule.", SubmittedAt: now},
		{ID: "2", AuthorRef: "peer-1", Text: "Excellent mentor, clear guidance and strong support.", SubmittedAt: now},
		{ID: "3", AuthorRef: "peer-2", Text: "Late handoffs and poor communication caused repeated delays and confusion.", SubmittedAt: now},
		{ID: "4", AuthorRef: "peer-3", Text: "Attended the planning session on Tuesday.", SubmittedAt: now},
	}

	dist := c.Distribution(entries)

	assert.Equal(t, 2, dist.Positive)
	assert.Equal(t, 1, dist.Negative)
	assert.Equal(t, 1, dist.Neutral)
	assert.Equal(t, 4, dist.Total())

	// Mean polarity is the average of the individual polarities.
	expected := 0.0
	for _, e := range entries {
		expected += c.Classify(e.Text).Polarity
	}
	expected /= float64(len(entries))
	assert.InDelta(t, expected, dist.MeanPolarity, 1e-12)
}

func TestDistributionEmpty(t *testing.T) {
	c := NewClassifier(DefaultSentimentThresholds())
	dist := c.Distribution(nil)

	assert.Equal(t, 0, dist.Total())
	assert.Zero(t, dist.MeanPolarity)
}

func TestPolarityNormalizedByLength(t *testing.T) {
	c := NewClassifier(DefaultSentimentThresholds())

	short := c.Classify("excellent work")
	padded := c.Classify("excellent work on the second phase of the migration during the quarter")

	require.Positive(t, short.Polarity)
	require.Positive(t, padded.Polarity)
	assert.Greater(t, short.Polarity, padded.Polarity)
}
