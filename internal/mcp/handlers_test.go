package mcp

import (
	"context"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/luminathea/reflex/internal/config"
	"github.com/luminathea/reflex/internal/engine"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/ratelimit"
	"github.com/luminathea/reflex/internal/store"
)

// setupTestServer builds a server around a memory-backed, unseeded
// engine with a fixed draw seed.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Backend = store.BackendMemory
	cfg.Store.SeedOnEmpty = false

	eng, err := engine.Open(context.Background(), cfg, nil, store.NewMemoryStore(), engine.WithRandSeed(7))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { eng.Close(context.Background()) })

	srv, err := NewServer(&Config{Name: "reflex-test", Version: "v0.0.1", Engine: eng})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func TestHandleDecide_EmptyStore(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	result, out, err := srv.handleDecide(ctx, &sdk.CallToolRequest{}, DecideInput{
		Situation: models.Situation{Intents: []string{"greeting"}},
	})
	if err != nil {
		t.Fatalf("handleDecide failed: %v", err)
	}
	if result != nil {
		t.Error("expected nil result (SDK builds it from the typed output)")
	}

	if out.Tick != 1 {
		t.Errorf("Tick = %d, want 1", out.Tick)
	}
	if out.Level != "full_generator" {
		t.Errorf("Level = %q, want %q", out.Level, "full_generator")
	}
	if out.Strategy.Kind != models.StrategyGeneratorOnly {
		t.Errorf("Strategy.Kind = %q, want %q", out.Strategy.Kind, models.StrategyGeneratorOnly)
	}
}

func TestHandleDecide_TicksAdvance(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		_, out, err := srv.handleDecide(ctx, &sdk.CallToolRequest{}, DecideInput{})
		if err != nil {
			t.Fatalf("handleDecide failed: %v", err)
		}
		if out.Tick != want {
			t.Errorf("Tick = %d, want %d", out.Tick, want)
		}
	}
}

func TestHandleDecide_RateLimited(t *testing.T) {
	srv := setupTestServer(t)
	// Replace the decide limiter with one that never has a token.
	srv.limiters["reflex_decide"] = ratelimit.NewLimiter(1.0, 0)

	_, _, err := srv.handleDecide(context.Background(), &sdk.CallToolRequest{}, DecideInput{})
	if err == nil {
		t.Fatal("expected rate limit error, got nil")
	}
	if !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("error = %v, want rate limit message", err)
	}
}

func TestHandleReport(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := srv.handleDecide(ctx, &sdk.CallToolRequest{}, DecideInput{}); err != nil {
		t.Fatalf("handleDecide failed: %v", err)
	}
	_, out, err := srv.handleReport(ctx, &sdk.CallToolRequest{}, ReportInput{Quality: 0.8})
	if err != nil {
		t.Fatalf("handleReport failed: %v", err)
	}
	if out.Tick != 1 {
		t.Errorf("Tick = %d, want 1", out.Tick)
	}
}

func TestHandleReport_QualityValidation(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		quality float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"negative", -0.1, true},
		{"above one", 1.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := srv.handleReport(ctx, &sdk.CallToolRequest{}, ReportInput{Quality: tt.quality})
			if (err != nil) != tt.wantErr {
				t.Errorf("quality %v: err = %v, wantErr %v", tt.quality, err, tt.wantErr)
			}
		})
	}
}

func TestHandleEvaluate_NoChange(t *testing.T) {
	srv := setupTestServer(t)

	_, out, err := srv.handleEvaluate(context.Background(), &sdk.CallToolRequest{}, EvaluateInput{})
	if err != nil {
		t.Fatalf("handleEvaluate failed: %v", err)
	}
	if out.Changed {
		t.Error("Changed = true, want false on a fresh engine")
	}
	if out.Change != nil {
		t.Errorf("Change = %+v, want nil", out.Change)
	}
	if out.Level != "full_generator" {
		t.Errorf("Level = %q, want %q", out.Level, "full_generator")
	}
}

func TestHandleLearn(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	situation := models.Situation{
		Intents:  []string{"greeting"},
		Emotions: []string{"joy"},
	}
	in := LearnInput{
		Response:     "good morning, sam! ready for a new day?",
		Situation:    situation,
		Satisfaction: 0.9,
		Variables:    models.Variables{UserName: "sam"},
	}

	_, out, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, in)
	if err != nil {
		t.Fatalf("handleLearn failed: %v", err)
	}
	if !out.Learned {
		t.Fatal("Learned = false, want true")
	}
	if out.PatternID == 0 {
		t.Error("PatternID = 0, want assigned id")
	}
	if !strings.Contains(out.Message, "new pattern") {
		t.Errorf("Message = %q, want new-pattern message", out.Message)
	}

	// The same response again must reinforce, not duplicate.
	_, out2, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, in)
	if err != nil {
		t.Fatalf("second handleLearn failed: %v", err)
	}
	if !out2.Learned {
		t.Fatal("second Learned = false, want true")
	}
	if out2.PatternID != out.PatternID {
		t.Errorf("second PatternID = %d, want %d", out2.PatternID, out.PatternID)
	}
	if !strings.Contains(out2.Message, "reinforced") {
		t.Errorf("second Message = %q, want reinforcement message", out2.Message)
	}
	if got := srv.engine.PatternCount(); got != 1 {
		t.Errorf("pattern count = %d, want 1", got)
	}
}

func TestHandleLearn_BelowFloor(t *testing.T) {
	srv := setupTestServer(t)

	_, out, err := srv.handleLearn(context.Background(), &sdk.CallToolRequest{}, LearnInput{
		Response:     "hm, i am not sure about that.",
		Satisfaction: 0.3,
	})
	if err != nil {
		t.Fatalf("handleLearn failed: %v", err)
	}
	if out.Learned {
		t.Error("Learned = true, want false below the satisfaction floor")
	}
	if out.PatternID != 0 {
		t.Errorf("PatternID = %d, want 0", out.PatternID)
	}
}

func TestHandleLearn_Validation(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   LearnInput
	}{
		{"empty response", LearnInput{Response: "   ", Satisfaction: 0.9}},
		{"satisfaction too high", LearnInput{Response: "hello there", Satisfaction: 1.5}},
		{"satisfaction negative", LearnInput{Response: "hello there", Satisfaction: -0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, tt.in); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestHandleLearn_SanitizesMarkup(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	in := LearnInput{
		Response:     "good night, <b>sam</b>!",
		Situation:    models.Situation{Intents: []string{"farewell"}},
		Satisfaction: 0.9,
		Variables:    models.Variables{UserName: "sam"},
	}
	_, out, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, in)
	if err != nil {
		t.Fatalf("handleLearn failed: %v", err)
	}
	if !out.Learned {
		t.Fatal("Learned = false, want true")
	}

	pattern, ok := srv.engine.Pattern(out.PatternID)
	if !ok {
		t.Fatalf("pattern %d not found", out.PatternID)
	}
	if want := "good night, {userName}!"; pattern.Template != want {
		t.Errorf("Template = %q, want markup stripped to %q", pattern.Template, want)
	}
}

func TestHandleMetrics(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, LearnInput{
		Response:     "good night, sam. sleep well.",
		Situation:    models.Situation{Intents: []string{"farewell"}},
		Satisfaction: 0.8,
		Variables:    models.Variables{UserName: "sam"},
	}); err != nil {
		t.Fatalf("handleLearn failed: %v", err)
	}

	_, out, err := srv.handleMetrics(ctx, &sdk.CallToolRequest{}, MetricsInput{})
	if err != nil {
		t.Fatalf("handleMetrics failed: %v", err)
	}
	if out.Patterns != 1 {
		t.Errorf("Patterns = %d, want 1", out.Patterns)
	}
	if out.Metrics.Level != models.LevelFullGenerator {
		t.Errorf("Metrics.Level = %v, want %v", out.Metrics.Level, models.LevelFullGenerator)
	}
}

func TestHandlePatterns(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	responses := []string{
		"good morning, sam! how did you sleep?",
		"welcome back! i was thinking about you.",
	}
	for _, r := range responses {
		if _, _, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, LearnInput{
			Response:     r,
			Situation:    models.Situation{Intents: []string{"greeting"}},
			Satisfaction: 0.9,
			Variables:    models.Variables{UserName: "sam"},
		}); err != nil {
			t.Fatalf("handleLearn failed: %v", err)
		}
	}

	_, out, err := srv.handlePatterns(ctx, &sdk.CallToolRequest{}, PatternsInput{})
	if err != nil {
		t.Fatalf("handlePatterns failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
	for _, p := range out.Patterns {
		if p.Origin != string(models.OriginLearned) {
			t.Errorf("pattern %d origin = %q, want %q", p.ID, p.Origin, models.OriginLearned)
		}
		if p.Template == "" {
			t.Errorf("pattern %d has empty template", p.ID)
		}
	}
}

func TestHandlePatterns_OriginFilter(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, LearnInput{
		Response:     "thank you for telling me, sam.",
		Situation:    models.Situation{Intents: []string{"sharing"}},
		Satisfaction: 0.9,
		Variables:    models.Variables{UserName: "sam"},
	}); err != nil {
		t.Fatalf("handleLearn failed: %v", err)
	}

	_, out, err := srv.handlePatterns(ctx, &sdk.CallToolRequest{}, PatternsInput{Origin: "seed"})
	if err != nil {
		t.Fatalf("handlePatterns failed: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("seed Count = %d, want 0 on an unseeded store", out.Count)
	}

	_, out, err = srv.handlePatterns(ctx, &sdk.CallToolRequest{}, PatternsInput{Origin: "learned"})
	if err != nil {
		t.Fatalf("handlePatterns failed: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("learned Count = %d, want 1", out.Count)
	}

	if _, _, err := srv.handlePatterns(ctx, &sdk.CallToolRequest{}, PatternsInput{Origin: "mystery"}); err == nil {
		t.Error("expected error for unknown origin, got nil")
	}
}

func TestHandlePatterns_Top(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	responses := []string{
		"good morning, sam! how did you sleep?",
		"welcome back! i was thinking about you.",
		"good night, sam. rest well.",
	}
	for _, r := range responses {
		if _, _, err := srv.handleLearn(ctx, &sdk.CallToolRequest{}, LearnInput{
			Response:     r,
			Situation:    models.Situation{Intents: []string{"greeting"}},
			Satisfaction: 0.9,
			Variables:    models.Variables{UserName: "sam"},
		}); err != nil {
			t.Fatalf("handleLearn failed: %v", err)
		}
	}

	_, out, err := srv.handlePatterns(ctx, &sdk.CallToolRequest{}, PatternsInput{Top: 2})
	if err != nil {
		t.Fatalf("handlePatterns failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
}

func TestMetricsResource(t *testing.T) {
	srv := setupTestServer(t)

	res, err := srv.handleMetricsResource(context.Background(), &sdk.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleMetricsResource failed: %v", err)
	}
	if len(res.Contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(res.Contents))
	}
	c := res.Contents[0]
	if c.URI != "reflex://metrics" {
		t.Errorf("URI = %q, want %q", c.URI, "reflex://metrics")
	}
	if c.MIMEType != "text/markdown" {
		t.Errorf("MIMEType = %q, want text/markdown", c.MIMEType)
	}
	if !strings.Contains(c.Text, "# Reflex Status") {
		t.Errorf("resource text missing header: %q", c.Text)
	}
	if !strings.Contains(c.Text, "full_generator") {
		t.Errorf("resource text missing level: %q", c.Text)
	}
}
