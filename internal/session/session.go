package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentops/pulsemark/internal/appraisal"
	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// metricReading pairs an immutable raw sample with its normalized value.
// Normalization happens once at submission; reads never mutate state.
type metricReading struct {
	Sample     appraisal.RawMetricSample
	Normalized float64
}

// Profile carries the display attributes of the employee under review.
// It never feeds the scoring; reports and listings are the consumers.
type Profile struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Session holds the working state for one employee under review. All
// derived values (indices, recommendation, export payload) are recomputed
// from this state on demand and never stored back.
type Session struct {
	mu sync.RWMutex

	ID          string
	EmployeeRef string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	profile Profile

	health map[string]metricReading
	social map[string]metricReading

	kras        []appraisal.KRA
	projects    []appraisal.Project
	initiatives []appraisal.Initiative
	monthly     []appraisal.MonthlyPerformance
	feedback    []appraisal.FeedbackEntry

	engine     *appraisal.Engine
	classifier *appraisal.Classifier
	now        func() time.Time
}

// New creates an empty session for the given employee reference.
func New(employeeRef string, engine *appraisal.Engine, classifier *appraisal.Classifier) *Session {
	now := time.Now
	return &Session{
		ID:          uuid.NewString(),
		EmployeeRef: employeeRef,
		CreatedAt:   now().UTC(),
		UpdatedAt:   now().UTC(),
		health:      make(map[string]metricReading),
		social:      make(map[string]metricReading),
		engine:      engine,
		classifier:  classifier,
		now:         now,
	}
}

// WithClock overrides the timestamp source for tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

func (s *Session) touch() {
	s.UpdatedAt = s.now().UTC()
}

// SampleResult reports a stored reading together with the recomputed
// composite it feeds. The index is present only once every weighted
// component of that composite has a reading.
type SampleResult struct {
	Normalized    float64                  `json:"normalized"`
	Index         appraisal.CompositeIndex `json:"index"`
	IndexComplete bool                     `json:"index_complete"`
}

// SubmitHealthSample records a raw health reading and returns the
// recomputed Health composite. The metric must be one of the configured
// health components. An out-of-range value is clamped and recorded
// anyway; the returned DomainError tells the caller to warn.
func (s *Session) SubmitHealthSample(sample appraisal.RawMetricSample) (SampleResult, error) {
	return s.submitSample(sample, appraisal.IndexHealth, s.engine.Config().HealthWeights, s.health, "health metric")
}

// SubmitSocialSample records a raw social-engagement reading and returns
// the recomputed Social composite.
func (s *Session) SubmitSocialSample(sample appraisal.RawMetricSample) (SampleResult, error) {
	return s.submitSample(sample, appraisal.IndexSocial, s.engine.Config().SocialWeights, s.social, "social metric")
}

func (s *Session) submitSample(sample appraisal.RawMetricSample, index string, weights map[string]float64, dest map[string]metricReading, kind string) (SampleResult, error) {
	if _, ok := weights[sample.MetricName]; !ok {
		return SampleResult{}, apperrors.NewValidationError("unknown "+kind, "metric", sample.MetricName)
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = s.now().UTC()
	}

	normalized, err := appraisal.Normalize(sample)
	if err != nil && !apperrors.IsDomain(err) {
		return SampleResult{}, err
	}

	s.mu.Lock()
	dest[sample.MetricName] = metricReading{Sample: sample, Normalized: normalized}
	s.touch()
	idx, complete, composeErr := composeFromReadings(index, weights, dest)
	s.mu.Unlock()

	if composeErr != nil {
		return SampleResult{}, composeErr
	}

	return SampleResult{
		Normalized:    normalized,
		Index:         idx,
		IndexComplete: complete,
	}, err
}

// SetProfile replaces the employee display attributes.
func (s *Session) SetProfile(p Profile) {
	s.mu.Lock()
	s.profile = p
	s.touch()
	s.mu.Unlock()
}

// Profile returns the employee display attributes.
func (s *Session) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SubmitFeedback stores one feedback text verbatim and returns the entry
// with its assigned ID and the classifier's verdict. The stored text is
// never rewritten; sentiment is derived state.
func (s *Session) SubmitFeedback(authorRef, authorRole, text string) (appraisal.FeedbackEntry, appraisal.SentimentResult, error) {
	if text == "" {
		return appraisal.FeedbackEntry{}, appraisal.SentimentResult{}, apperrors.NewValidationError("feedback text is required")
	}

	entry := appraisal.FeedbackEntry{
		ID:          uuid.NewString(),
		AuthorRef:   authorRef,
		AuthorRole:  authorRole,
		Text:        text,
		SubmittedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.feedback = append(s.feedback, entry)
	s.touch()
	s.mu.Unlock()

	return entry, s.classifier.Classify(text), nil
}

// UpsertKRA adds a KRA or replaces the one with the same name.
func (s *Session) UpsertKRA(kra appraisal.KRA) error {
	if kra.Name == "" {
		return apperrors.NewValidationError("kra name is required")
	}
	if kra.Target == 0 {
		return apperrors.NewValidationError("kra target must be non-zero", "kra", kra.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.kras {
		if s.kras[i].Name == kra.Name {
			s.kras[i] = kra
			s.touch()
			return nil
		}
	}
	s.kras = append(s.kras, kra)
	s.touch()
	return nil
}

// UpsertProject adds or replaces a project by name.
func (s *Session) UpsertProject(p appraisal.Project) error {
	if p.Name == "" {
		return apperrors.NewValidationError("project name is required")
	}
	switch p.Status {
	case appraisal.StatusOnTrack, appraisal.StatusAtRisk, appraisal.StatusDelayed:
	default:
		return apperrors.NewValidationError("unknown project status", "status", string(p.Status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].Name == p.Name {
			s.projects[i] = p
			s.touch()
			return nil
		}
	}
	s.projects = append(s.projects, p)
	s.touch()
	return nil
}

// UpsertInitiative adds or replaces an initiative by name.
func (s *Session) UpsertInitiative(init appraisal.Initiative) error {
	if init.Name == "" {
		return apperrors.NewValidationError("initiative name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.initiatives {
		if s.initiatives[i].Name == init.Name {
			s.initiatives[i] = init
			s.touch()
			return nil
		}
	}
	s.initiatives = append(s.initiatives, init)
	s.touch()
	return nil
}

// RecordMonthlyPerformance appends or replaces one month of the
// actual-vs-AOP series. Months are kept sorted so reports read in order.
func (s *Session) RecordMonthlyPerformance(m appraisal.MonthlyPerformance) error {
	if m.Month == "" {
		return apperrors.NewValidationError("month is required")
	}
	if m.AOPTarget <= 0 {
		return apperrors.NewValidationError("aop target must be positive", "month", m.Month)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.monthly {
		if s.monthly[i].Month == m.Month {
			s.monthly[i] = m
			s.touch()
			return nil
		}
	}
	s.monthly = append(s.monthly, m)
	sort.Slice(s.monthly, func(i, j int) bool { return s.monthly[i].Month < s.monthly[j].Month })
	s.touch()
	return nil
}

// Indices recomputes the composite indices from current state. An index
// whose components are not all present is omitted; the rule engine is the
// one that names the missing index.
func (s *Session) Indices() (map[string]appraisal.CompositeIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indicesLocked()
}

func (s *Session) indicesLocked() (map[string]appraisal.CompositeIndex, error) {
	cfg := s.engine.Config()
	out := make(map[string]appraisal.CompositeIndex, 3)

	health, ok, err := composeFromReadings(appraisal.IndexHealth, cfg.HealthWeights, s.health)
	if err != nil {
		return nil, err
	}
	if ok {
		out[appraisal.IndexHealth] = health
	}

	social, ok, err := composeFromReadings(appraisal.IndexSocial, cfg.SocialWeights, s.social)
	if err != nil {
		return nil, err
	}
	if ok {
		out[appraisal.IndexSocial] = social
	}

	perf, ok, err := s.performanceIndexLocked(cfg)
	if err != nil {
		return nil, err
	}
	if ok {
		out[appraisal.IndexPerformance] = perf
	}

	return out, nil
}

// composeFromReadings builds one composite when every weighted metric has
// a reading. Component order follows the sorted metric names so repeated
// reads produce identical output.
func composeFromReadings(name string, weights map[string]float64, readings map[string]metricReading) (appraisal.CompositeIndex, bool, error) {
	names := make([]string, 0, len(weights))
	for metric := range weights {
		if _, ok := readings[metric]; !ok {
			return appraisal.CompositeIndex{}, false, nil
		}
		names = append(names, metric)
	}
	sort.Strings(names)

	components := make([]appraisal.WeightedComponent, 0, len(names))
	for _, metric := range names {
		components = append(components, appraisal.WeightedComponent{
			MetricName:      metric,
			Weight:          weights[metric],
			NormalizedValue: readings[metric].Normalized,
		})
	}

	idx, err := appraisal.ComputeIndex(name, components)
	if err != nil {
		return appraisal.CompositeIndex{}, false, err
	}
	return idx, true, nil
}

// performanceIndexLocked derives the performance composite from the
// monthly AOP series and project progress. Both sources must have data;
// otherwise the index is omitted as incomplete.
func (s *Session) performanceIndexLocked(cfg appraisal.Config) (appraisal.CompositeIndex, bool, error) {
	if len(s.monthly) == 0 || len(s.projects) == 0 {
		return appraisal.CompositeIndex{}, false, nil
	}

	attainment := 0.0
	for _, m := range s.monthly {
		attainment += m.Actual / m.AOPTarget
	}
	attainment = attainment / float64(len(s.monthly)) * 100
	if attainment > 100 {
		attainment = 100
	}
	if attainment < 0 {
		attainment = 0
	}

	progress := 0.0
	for _, p := range s.projects {
		progress += p.ProgressPct
	}
	progress /= float64(len(s.projects))
	if progress > 100 {
		progress = 100
	}
	if progress < 0 {
		progress = 0
	}

	idx, err := appraisal.ComputeIndex(appraisal.IndexPerformance, []appraisal.WeightedComponent{
		{MetricName: "aop_attainment", Weight: cfg.PerformanceWeights["aop_attainment"], NormalizedValue: attainment},
		{MetricName: "project_progress", Weight: cfg.PerformanceWeights["project_progress"], NormalizedValue: progress},
	})
	if err != nil {
		return appraisal.CompositeIndex{}, false, err
	}
	return idx, true, nil
}

// Recommendation recomputes the appraisal recommendation from current
// state. It is a pure read: two calls without an intervening write return
// the same result.
func (s *Session) Recommendation() (appraisal.AppraisalRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indices, err := s.indicesLocked()
	if err != nil {
		return appraisal.AppraisalRecommendation{}, err
	}

	return s.engine.Recommend(appraisal.Inputs{
		Indices:     indices,
		KRAs:        append([]appraisal.KRA(nil), s.kras...),
		Projects:    append([]appraisal.Project(nil), s.projects...),
		Initiatives: append([]appraisal.Initiative(nil), s.initiatives...),
		Sentiment:   s.classifier.Distribution(s.feedback),
	})
}

// Export produces the versioned share payload for the current state.
func (s *Session) Export() (appraisal.SharedRecommendation, error) {
	rec, err := s.Recommendation()
	if err != nil {
		return appraisal.SharedRecommendation{}, err
	}
	return appraisal.Export(s.EmployeeRef, rec), nil
}

// Snapshot returns a copy of the session's inputs for report rendering.
type Snapshot struct {
	EmployeeRef string
	Profile     Profile
	UpdatedAt   time.Time
	Indices     map[string]appraisal.CompositeIndex
	KRAs        []appraisal.KRA
	Projects    []appraisal.Project
	Initiatives []appraisal.Initiative
	Monthly     []appraisal.MonthlyPerformance
	Feedback    []appraisal.FeedbackEntry
	Sentiment   appraisal.SentimentDistribution
}

// Snapshot copies the current state. The report renderer works off this
// so a long render never holds the session lock.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indices, err := s.indicesLocked()
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		EmployeeRef: s.EmployeeRef,
		Profile:     s.profile,
		UpdatedAt:   s.UpdatedAt,
		Indices:     indices,
		KRAs:        append([]appraisal.KRA(nil), s.kras...),
		Projects:    append([]appraisal.Project(nil), s.projects...),
		Initiatives: append([]appraisal.Initiative(nil), s.initiatives...),
		Monthly:     append([]appraisal.MonthlyPerformance(nil), s.monthly...),
		Feedback:    append([]appraisal.FeedbackEntry(nil), s.feedback...),
		Sentiment:   s.classifier.Distribution(s.feedback),
	}, nil
}
