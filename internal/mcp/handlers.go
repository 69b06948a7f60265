package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/ratelimit"
	"github.com/luminathea/reflex/internal/sanitize"
)

// registerTools registers the reflex tool set with the SDK server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "reflex_decide",
		Description: "Pick the response strategy for the current situation and advance the session tick",
	}, s.handleDecide)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "reflex_report",
		Description: "Report the observed quality of the response produced for the last decision",
	}, s.handleReport)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "reflex_evaluate",
		Description: "Run the autonomy level check now instead of waiting for the automatic cadence",
	}, s.handleEvaluate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "reflex_metrics",
		Description: "Get the current autonomy level, coverage, confidence, and usage counters",
	}, s.handleMetrics)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "reflex_learn",
		Description: "Extract a reusable response template from a well-received generator response",
	}, s.handleLearn)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "reflex_patterns",
		Description: "List stored response patterns with their usage statistics",
	}, s.handlePatterns)
}

// registerResources registers the metrics summary resource, which hosts
// can auto-load into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "reflex://metrics",
		Name:        "reflex-metrics",
		Description: "Current autonomy level and learning progress, refreshed on every read.",
		MIMEType:    "text/markdown",
	}, s.handleMetricsResource)
}

// handleMetricsResource renders the engine state as a markdown summary.
func (s *Server) handleMetricsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	m := s.engine.Metrics()

	var sb strings.Builder
	sb.WriteString("# Reflex Status\n\n")
	fmt.Fprintf(&sb, "- Level: **%s**\n", m.Level.String())
	fmt.Fprintf(&sb, "- Tick: %d\n", s.engine.Tick())
	fmt.Fprintf(&sb, "- Patterns: %d\n", s.engine.PatternCount())
	fmt.Fprintf(&sb, "- Coverage: %.2f\n", m.Coverage)
	fmt.Fprintf(&sb, "- Confidence: %.2f\n", m.Confidence)
	fmt.Fprintf(&sb, "- Average quality: %.2f\n", m.AvgQuality)
	fmt.Fprintf(&sb, "- Generator calls: %d\n", m.GeneratorCalls)
	fmt.Fprintf(&sb, "- Pattern calls: %d\n", m.PatternCalls)
	fmt.Fprintf(&sb, "- Bypasses: %d\n", m.BypassCount)

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      "reflex://metrics",
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

func (s *Server) handleDecide(ctx context.Context, req *sdk.CallToolRequest, args DecideInput) (_ *sdk.CallToolResult, _ DecideOutput, retErr error) {
	start := time.Now()
	defer func() { s.logTool("reflex_decide", start, retErr) }()

	if err := ratelimit.CheckLimit(s.limiters, "reflex_decide"); err != nil {
		return nil, DecideOutput{}, err
	}

	strat, tick := s.engine.Decide(args.Situation, args.Variables)
	return nil, DecideOutput{
		Tick:     tick,
		Level:    s.engine.Level().String(),
		Strategy: strat,
	}, nil
}

func (s *Server) handleReport(ctx context.Context, req *sdk.CallToolRequest, args ReportInput) (_ *sdk.CallToolResult, _ ReportOutput, retErr error) {
	start := time.Now()
	defer func() { s.logTool("reflex_report", start, retErr) }()

	if err := ratelimit.CheckLimit(s.limiters, "reflex_report"); err != nil {
		return nil, ReportOutput{}, err
	}

	if args.Quality < 0 || args.Quality > 1 {
		return nil, ReportOutput{}, fmt.Errorf("quality %v out of range [0, 1]", args.Quality)
	}

	s.engine.Report(args.Quality, args.PatternUsed, args.PatternID, args.Success)
	return nil, ReportOutput{Tick: s.engine.Tick()}, nil
}

func (s *Server) handleEvaluate(ctx context.Context, req *sdk.CallToolRequest, args EvaluateInput) (_ *sdk.CallToolResult, _ EvaluateOutput, retErr error) {
	start := time.Now()
	defer func() { s.logTool("reflex_evaluate", start, retErr) }()

	if err := ratelimit.CheckLimit(s.limiters, "reflex_evaluate"); err != nil {
		return nil, EvaluateOutput{}, err
	}

	change := s.engine.Evaluate()
	out := EvaluateOutput{
		Level:   s.engine.Level().String(),
		Changed: change != nil,
		Change:  change,
	}
	return nil, out, nil
}

func (s *Server) handleMetrics(ctx context.Context, req *sdk.CallToolRequest, args MetricsInput) (_ *sdk.CallToolResult, _ MetricsOutput, retErr error) {
	start := time.Now()
	defer func() { s.logTool("reflex_metrics", start, retErr) }()

	if err := ratelimit.CheckLimit(s.limiters, "reflex_metrics"); err != nil {
		return nil, MetricsOutput{}, err
	}

	return nil, MetricsOutput{
		Metrics:  s.engine.Metrics(),
		Tick:     s.engine.Tick(),
		Patterns: s.engine.PatternCount(),
	}, nil
}

func (s *Server) handleLearn(ctx context.Context, req *sdk.CallToolRequest, args LearnInput) (_ *sdk.CallToolResult, _ LearnOutput, retErr error) {
	start := time.Now()
	defer func() { s.logTool("reflex_learn", start, retErr) }()

	if err := ratelimit.CheckLimit(s.limiters, "reflex_learn"); err != nil {
		return nil, LearnOutput{}, err
	}

	response := sanitize.Response(args.Response)
	if response == "" {
		return nil, LearnOutput{}, fmt.Errorf("response text is required")
	}
	if args.Satisfaction < 0 || args.Satisfaction > 1 {
		return nil, LearnOutput{}, fmt.Errorf("satisfaction %v out of range [0, 1]", args.Satisfaction)
	}

	before := s.engine.PatternCount()
	id, learned := s.engine.Learn(response, args.Situation, args.Satisfaction, args.Variables)

	out := LearnOutput{Learned: learned}
	switch {
	case !learned:
		out.Message = "not stored: below the satisfaction floor or not template-shaped"
	case s.engine.PatternCount() > before:
		out.PatternID = id
		out.Message = fmt.Sprintf("stored as new pattern %d", id)
	default:
		out.PatternID = id
		out.Message = fmt.Sprintf("reinforced existing pattern %d", id)
	}
	return nil, out, nil
}

func (s *Server) handlePatterns(ctx context.Context, req *sdk.CallToolRequest, args PatternsInput) (_ *sdk.CallToolResult, _ PatternsOutput, retErr error) {
	start := time.Now()
	defer func() { s.logTool("reflex_patterns", start, retErr) }()

	if err := ratelimit.CheckLimit(s.limiters, "reflex_patterns"); err != nil {
		return nil, PatternsOutput{}, err
	}

	if args.Origin != "" && args.Origin != string(models.OriginSeed) && args.Origin != string(models.OriginLearned) {
		return nil, PatternsOutput{}, fmt.Errorf("unknown origin %q (want %q or %q)",
			args.Origin, models.OriginSeed, models.OriginLearned)
	}

	all := s.engine.Patterns()
	summaries := make([]PatternSummary, 0, len(all))
	for _, p := range all {
		if args.Origin != "" && string(p.Origin) != args.Origin {
			continue
		}
		summaries = append(summaries, PatternSummary{
			ID:              p.ID,
			Template:        p.Template,
			Intents:         p.Situation.Intents,
			Origin:          string(p.Origin),
			UseCount:        p.UseCount,
			SuccessCount:    p.SuccessCount,
			AvgSatisfaction: p.AvgSatisfaction,
			LastUsed:        p.LastUsed,
		})
	}

	if args.Top > 0 && args.Top < len(summaries) {
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].UseCount > summaries[j].UseCount
		})
		summaries = summaries[:args.Top]
	}

	return nil, PatternsOutput{Patterns: summaries, Count: len(summaries)}, nil
}
