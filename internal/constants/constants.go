// Package constants provides named constants used throughout the reflex codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Matcher dimension weights. They sum to 1.0, so the accumulated score is
// already normalized. An unconstrained (empty) pattern dimension earns half
// its weight.
const (
	// MatchWeightIntents is the weight of the intent dimension.
	MatchWeightIntents = 0.30

	// MatchWeightEmotions is the weight of the emotion dimension.
	MatchWeightEmotions = 0.20

	// MatchWeightDepths is the weight of the conversational-depth dimension.
	MatchWeightDepths = 0.15

	// MatchWeightTimesOfDay is the weight of the time-of-day dimension.
	MatchWeightTimesOfDay = 0.10

	// MatchWeightPhases is the weight of the relationship-phase dimension.
	MatchWeightPhases = 0.15

	// MatchWeightKeywords is the weight of the free-text keyword dimension.
	MatchWeightKeywords = 0.10
)

// Match selection constants
const (
	// MinMatchScore is the matcher score below which a pattern is not a
	// candidate at all, before reliability blending.
	MinMatchScore = 0.4

	// FinalMatchWeight is the share of the blended score contributed by
	// the raw matcher score.
	FinalMatchWeight = 0.7

	// FinalReliabilityWeight is the share contributed by the pattern's
	// reliability term.
	FinalReliabilityWeight = 0.3

	// ReliabilitySuccessWeight weights the pattern's success rate inside
	// the reliability term.
	ReliabilitySuccessWeight = 0.4

	// ReliabilitySatisfactionWeight weights average satisfaction inside
	// the reliability term.
	ReliabilitySatisfactionWeight = 0.4

	// ReliabilityUsageStep is the per-use increment of the usage bonus.
	ReliabilityUsageStep = 0.02

	// ReliabilityUsageCap caps the usage bonus.
	ReliabilityUsageCap = 0.2

	// TopCandidates is the number of highest-scoring candidates entered
	// into the weighted-random draw.
	TopCandidates = 3

	// RecentRingSize is the capacity of the recently-used ring. Patterns
	// in the ring are skipped to avoid immediate repetition.
	RecentRingSize = 20
)

// Extraction and deduplication constants
const (
	// MinSatisfactionToLearn is the satisfaction floor below which a
	// response is not worth learning from.
	MinSatisfactionToLearn = 0.6

	// MaxTemplateLen rejects candidate templates longer than this.
	MaxTemplateLen = 100

	// MaxUnparameterizedLen rejects candidates that came through
	// extraction unchanged while longer than this: nothing was
	// parameterized, so the pattern would be overly specific.
	MaxUnparameterizedLen = 50

	// DupTemplateSimilarity is the masked position-similarity above which
	// two templates are duplicate suspects.
	DupTemplateSimilarity = 0.7

	// DupSituationOverlap is the situation overlap above which duplicate
	// suspects are merged into the existing pattern.
	DupSituationOverlap = 0.5

	// SatisfactionSmoothing is the weight of the newest sample in the
	// satisfaction running average (old keeps 1 - SatisfactionSmoothing).
	SatisfactionSmoothing = 0.2
)

// Store curation constants
const (
	// MaxPatterns is the store size cap enforced after every insertion.
	MaxPatterns = 500

	// MinUsesBeforeCull protects patterns that have not had a fair trial:
	// neither culling nor cap eviction touches a pattern used fewer times.
	MinUsesBeforeCull = 5

	// CullMinSatisfaction removes a tried pattern whose average
	// satisfaction fell below this.
	CullMinSatisfaction = 0.4

	// CullMinSuccessRate removes a tried pattern whose success rate fell
	// below this.
	CullMinSuccessRate = 0.2

	// ValueSuccessWeight weights success rate in the eviction value score.
	ValueSuccessWeight = 0.3

	// ValueSatisfactionWeight weights average satisfaction in the value score.
	ValueSatisfactionWeight = 0.4

	// ValueRecencyWeight weights the recency term in the value score.
	ValueRecencyWeight = 0.1

	// ValueUsageStep is the per-use increment of the value usage bonus.
	ValueUsageStep = 0.01

	// ValueUsageCap caps the value usage bonus.
	ValueUsageCap = 0.2
)

// Coverage combination weights
const (
	// CoverageIntentWeight weights intent-vocabulary coverage.
	CoverageIntentWeight = 0.4

	// CoverageEmotionWeight weights emotion-vocabulary coverage.
	CoverageEmotionWeight = 0.3

	// CoverageDepthWeight weights depth-vocabulary coverage.
	CoverageDepthWeight = 0.3

	// CoverageMinSatisfaction is the satisfaction floor for a pattern to
	// count toward coverage.
	CoverageMinSatisfaction = 0.5
)

// Autonomy controller constants
const (
	// QualityWindowSize is the capacity of the quality-sample ring.
	QualityWindowSize = 50

	// AuditInterval is the tick distance between quality audits.
	AuditInterval = 200

	// AuditHistorySize bounds the kept audit records.
	AuditHistorySize = 50

	// DemotionMinSamples is the minimum number of quality samples before
	// any demotion check runs.
	DemotionMinSamples = 10

	// DemotionRecentWindow is how many newest samples form the "recent"
	// mean for the drop comparison.
	DemotionRecentWindow = 20

	// DemotionDrop demotes when the older mean exceeds the recent mean by
	// more than this.
	DemotionDrop = 0.15

	// DemotionFloor demotes unconditionally when the recent mean falls
	// below this.
	DemotionFloor = 0.3

	// HintMatchThreshold gates generator_with_hint at generator_primary.
	HintMatchThreshold = 0.6

	// DraftMatchThreshold gates pattern_draft at hybrid.
	DraftMatchThreshold = 0.5

	// AuditMatchThreshold gates pattern_with_audit at pattern_primary.
	AuditMatchThreshold = 0.5

	// BypassMatchThreshold gates pure_pattern at autonomous.
	BypassMatchThreshold = 0.6

	// SuccessQualityFloor derives success from quality when the host does
	// not report success explicitly: quality above this counts as success.
	SuccessQualityFloor = 0.5
)

// Seed catalog constants
const (
	// SeedInitialSatisfaction is the starting average satisfaction of
	// catalog seeds, high enough to make fresh seeds matchable and count
	// toward coverage.
	SeedInitialSatisfaction = 0.7
)
