// Package patterns implements the response pattern store: a bounded
// collection of situation->template pairs that is matched against the
// current situation, reinforced or weakened by feedback, and grown by
// extracting new templates from successful generator responses.
package patterns

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/luminathea/reflex/internal/constants"
	"github.com/luminathea/reflex/internal/matching"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/template"
)

// Store holds all known response patterns in memory. It is not safe for
// concurrent use; the engine serializes access to it.
type Store struct {
	items    []*models.Pattern // ascending ID order
	byID     map[int64]*models.Pattern
	nextID   int64
	recent   []int64 // FIFO ring of recently drawn pattern IDs
	rng      *rand.Rand
	capacity int
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithCapacity overrides the maximum number of patterns kept before
// cap eviction starts. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithRandSeed makes the weighted draw in FindBestMatch deterministic.
// Intended for tests and simulations.
func WithRandSeed(seed int64) Option {
	return func(s *Store) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates an empty store with the default capacity.
func New(opts ...Option) *Store {
	s := &Store{
		byID:     make(map[int64]*models.Pattern),
		nextID:   1,
		capacity: constants.MaxPatterns,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Match is the outcome of a successful FindBestMatch call.
type Match struct {
	PatternID int64   `json:"pattern_id"`
	Score     float64 `json:"score"` // blended match/reliability score
	Template  string  `json:"template"`
	Text      string  `json:"text"` // template expanded with the given variables
}

// FindBestMatch selects a pattern for the current situation, or reports
// that none qualifies. Patterns in the recently-used ring are skipped,
// situation match must reach the minimum score, and templates that
// cannot be expanded with the given variables are excluded. Among the
// top candidates by blended score one is drawn at random, weighted by
// score, so repeated identical situations do not always produce the
// same reply. The winner's use count, last-used tick and ring entry are
// updated even if the caller discards the result.
func (s *Store) FindBestMatch(current models.Situation, vars models.Variables, tick int64) (Match, bool) {
	type candidate struct {
		p     *models.Pattern
		final float64
		text  string
	}

	var candidates []candidate
	for _, p := range s.items {
		if s.recentlyUsed(p.ID) {
			continue
		}
		score := matching.Score(p.Situation, current)
		if score < constants.MinMatchScore {
			continue
		}
		text, err := template.Expand(p.Template, vars)
		if err != nil {
			continue
		}
		final := score*constants.FinalMatchWeight + reliability(p)*constants.FinalReliabilityWeight
		candidates = append(candidates, candidate{p: p, final: final, text: text})
	}
	if len(candidates) == 0 {
		return Match{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].final > candidates[j].final
	})
	top := candidates
	if len(top) > constants.TopCandidates {
		top = top[:constants.TopCandidates]
	}

	total := 0.0
	for _, c := range top {
		total += c.final
	}
	pick := 0
	r := s.rng.Float64() * total
	for i, c := range top {
		r -= c.final
		if r <= 0 {
			pick = i
			break
		}
	}

	winner := top[pick]
	winner.p.UseCount++
	winner.p.LastUsed = tick
	s.pushRecent(winner.p.ID)

	return Match{
		PatternID: winner.p.ID,
		Score:     winner.final,
		Template:  winner.p.Template,
		Text:      winner.text,
	}, true
}

// Candidate is a scored pattern returned by Rank.
type Candidate struct {
	Pattern    models.Pattern `json:"pattern"`
	MatchScore float64        `json:"match_score"`
	FinalScore float64        `json:"final_score"`
	Text       string         `json:"text,omitempty"`
	Expandable bool           `json:"expandable"`
	Recent     bool           `json:"recent"`
}

// Rank scores every pattern against the situation and returns the top n
// by blended score. Unlike FindBestMatch it has no side effects and
// ignores the recently-used ring, which makes it suitable for
// inspection tooling. Patterns below the minimum match score are
// omitted.
func (s *Store) Rank(current models.Situation, vars models.Variables, n int) []Candidate {
	var out []Candidate
	for _, p := range s.items {
		score := matching.Score(p.Situation, current)
		if score < constants.MinMatchScore {
			continue
		}
		c := Candidate{
			Pattern:    p.Clone(),
			MatchScore: score,
			FinalScore: score*constants.FinalMatchWeight + reliability(p)*constants.FinalReliabilityWeight,
			Recent:     s.recentlyUsed(p.ID),
		}
		if text, err := template.Expand(p.Template, vars); err == nil {
			c.Text = text
			c.Expandable = true
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// reliability estimates how much a pattern's past performance should
// lift its match score: success rate and average satisfaction dominate,
// with a small capped bonus for sheer usage.
func reliability(p *models.Pattern) float64 {
	bonus := math.Min(constants.ReliabilityUsageCap, float64(p.UseCount)*constants.ReliabilityUsageStep)
	return p.SuccessRate()*constants.ReliabilitySuccessWeight +
		p.AvgSatisfaction*constants.ReliabilitySatisfactionWeight +
		bonus
}

// Feedback folds an observed outcome into the pattern's running stats.
// Satisfaction is smoothed exponentially so a single bad interaction
// does not erase a long history. Unknown IDs are ignored; the pattern
// may have been evicted since the caller saw it.
func (s *Store) Feedback(id int64, success bool, satisfaction float64) {
	p, ok := s.byID[id]
	if !ok {
		return
	}
	if success {
		p.SuccessCount++
	}
	p.AvgSatisfaction = (1-constants.SatisfactionSmoothing)*p.AvgSatisfaction +
		constants.SatisfactionSmoothing*satisfaction
}

// CullLowQuality removes learned patterns that have been given a fair
// chance and still perform badly. Seed patterns and patterns with too
// few uses to judge are never touched. Returns the number removed.
func (s *Store) CullLowQuality() int {
	removed := 0
	kept := s.items[:0]
	for _, p := range s.items {
		if s.cullable(p) {
			delete(s.byID, p.ID)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.items = kept
	return removed
}

func (s *Store) cullable(p *models.Pattern) bool {
	if p.Origin == models.OriginSeed {
		return false
	}
	if p.UseCount < constants.MinUsesBeforeCull {
		return false
	}
	return p.AvgSatisfaction < constants.CullMinSatisfaction ||
		p.SuccessRate() < constants.CullMinSuccessRate
}

// enforceCap evicts the lowest-value judged patterns until the store is
// within capacity. Seeds and patterns still in their trial period are
// exempt, so the store can temporarily exceed capacity when everything
// else is protected.
func (s *Store) enforceCap() {
	for len(s.items) > s.capacity {
		var victim *models.Pattern
		victimValue := math.Inf(1)
		for _, p := range s.items {
			if p.Origin == models.OriginSeed || p.UseCount < constants.MinUsesBeforeCull {
				continue
			}
			if v := value(p); v < victimValue {
				victim = p
				victimValue = v
			}
		}
		if victim == nil {
			return
		}
		s.remove(victim.ID)
	}
}

// value scores how much a pattern is worth keeping once the store is
// over capacity. The recency term is largest for patterns never drawn
// and fades as the last-used tick grows.
func value(p *models.Pattern) float64 {
	recency := 1.0 / (1.0 + math.Max(0, float64(p.LastUsed)))
	bonus := math.Min(constants.ValueUsageCap, float64(p.UseCount)*constants.ValueUsageStep)
	return p.SuccessRate()*constants.ValueSuccessWeight +
		p.AvgSatisfaction*constants.ValueSatisfactionWeight +
		recency*constants.ValueRecencyWeight +
		bonus
}

func (s *Store) remove(id int64) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, p := range s.items {
		if p.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// AddSeed inserts a hand-authored pattern. Seeds start with a neutral
// positive satisfaction so they are drawable before any feedback
// arrives, and they are exempt from culling and cap eviction.
func (s *Store) AddSeed(situation models.Situation, tpl string, emotionTags []string) int64 {
	p := &models.Pattern{
		ID:              s.nextID,
		Situation:       situation.Clone(),
		Template:        tpl,
		AvgSatisfaction: constants.SeedInitialSatisfaction,
		Origin:          models.OriginSeed,
		EmotionTags:     trimTags(emotionTags),
	}
	s.nextID++
	s.insert(p)
	return p.ID
}

func (s *Store) insert(p *models.Pattern) {
	s.items = append(s.items, p)
	s.byID[p.ID] = p
}

func trimTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	if len(tags) > models.MaxEmotionTags {
		tags = tags[:models.MaxEmotionTags]
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// Coverage reports how much of the known situation vocabulary is served
// by at least one performing pattern. Only patterns at or above the
// satisfaction floor count, so coverage can shrink when quality decays.
func (s *Store) Coverage() float64 {
	intents := make(map[string]bool)
	emotions := make(map[string]bool)
	depths := make(map[string]bool)
	for _, p := range s.items {
		if p.AvgSatisfaction < constants.CoverageMinSatisfaction {
			continue
		}
		for _, v := range p.Situation.Intents {
			intents[v] = true
		}
		for _, v := range p.Situation.Emotions {
			emotions[v] = true
		}
		for _, v := range p.Situation.Depths {
			depths[v] = true
		}
	}
	intentRate := knownRate(intents, models.KnownIntents)
	emotionRate := knownRate(emotions, models.KnownEmotions)
	depthRate := knownRate(depths, models.KnownDepths)
	return intentRate*constants.CoverageIntentWeight +
		emotionRate*constants.CoverageEmotionWeight +
		depthRate*constants.CoverageDepthWeight
}

func knownRate(covered map[string]bool, known []string) float64 {
	if len(known) == 0 {
		return 0
	}
	n := 0
	for _, k := range known {
		if covered[k] {
			n++
		}
	}
	return float64(n) / float64(len(known))
}

// AvgSatisfaction is the mean satisfaction across all patterns, or zero
// for an empty store.
func (s *Store) AvgSatisfaction() float64 {
	if len(s.items) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s.items {
		sum += p.AvgSatisfaction
	}
	return sum / float64(len(s.items))
}

// Len returns the number of stored patterns.
func (s *Store) Len() int {
	return len(s.items)
}

// Get returns a copy of the pattern with the given ID.
func (s *Store) Get(id int64) (models.Pattern, bool) {
	p, ok := s.byID[id]
	if !ok {
		return models.Pattern{}, false
	}
	return p.Clone(), true
}

// Patterns returns copies of all patterns in ascending ID order.
func (s *Store) Patterns() []models.Pattern {
	out := make([]models.Pattern, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p.Clone())
	}
	return out
}

func (s *Store) recentlyUsed(id int64) bool {
	for _, r := range s.recent {
		if r == id {
			return true
		}
	}
	return false
}

func (s *Store) pushRecent(id int64) {
	s.recent = append(s.recent, id)
	if len(s.recent) > constants.RecentRingSize {
		s.recent = s.recent[1:]
	}
}

// State captures the store for persistence.
func (s *Store) State() models.StoreState {
	st := models.StoreState{
		Patterns:     s.Patterns(),
		NextID:       s.nextID,
		RecentlyUsed: make([]int64, len(s.recent)),
	}
	copy(st.RecentlyUsed, s.recent)
	return st
}

// Restore replaces the store contents from a persisted state. Missing
// or stale fields are repaired rather than rejected: the ID counter is
// bumped past the highest stored ID and the ring is trimmed to its
// bound, dropping IDs that no longer resolve.
func (s *Store) Restore(st models.StoreState) {
	s.items = s.items[:0]
	s.byID = make(map[int64]*models.Pattern, len(st.Patterns))
	for i := range st.Patterns {
		p := st.Patterns[i].Clone()
		if _, dup := s.byID[p.ID]; dup {
			continue
		}
		s.insert(&p)
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].ID < s.items[j].ID
	})

	s.nextID = st.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}
	for _, p := range s.items {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}

	s.recent = s.recent[:0]
	for _, id := range st.RecentlyUsed {
		if _, ok := s.byID[id]; ok {
			s.pushRecent(id)
		}
	}
}
