package insights

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/consensus"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.LeadTrader{}, &models.PositionSnapshot{}, &models.TraderScore{},
		&models.PositionState{}, &models.Event{}, &models.InsightsRule{}, &models.ConsensusSnapshot{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store.New(db)
}

func seedTrader(t *testing.T, ctx context.Context, s *store.Store, leadID string, weight, quality float64, now time.Time) {
	t.Helper()
	show := true
	if err := s.UpsertLeadTrader(ctx, &models.LeadTrader{LeadID: leadID, Platform: "binance", PositionShow: &show, LastIngestAt: &now}); err != nil {
		t.Fatalf("seed trader: %v", err)
	}
	if err := s.UpsertTraderScore(ctx, &models.TraderScore{LeadID: leadID, TraderWeight: weight, QualityScore: quality, SampleSize: 1}); err != nil {
		t.Fatalf("seed score: %v", err)
	}
}

func seedSnapshot(t *testing.T, ctx context.Context, s *store.Store, leadID, symbol string, fetchedAt time.Time, side models.Side, leverage int) {
	t.Helper()
	err := s.InsertSnapshots(ctx, []models.PositionSnapshot{{
		LeadID: leadID, FetchedAt: fetchedAt, Symbol: symbol, Side: side, Leverage: leverage,
	}})
	if err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func TestEvaluate_DetectsCrowdFormationAndLeverageSpike(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	ids := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	for _, id := range ids {
		seedTrader(t, ctx, s, id, 0.8, 50, now)
		seedSnapshot(t, ctx, s, id, "BTCUSDT", now, models.SideLong, 50)
	}

	eng := New(s, consensus.New(s), nil)
	result, err := eng.Evaluate(ctx, "binance", models.SegmentBoth, time.Hour, models.ModeBalanced, 10, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(result.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(result.Symbols))
	}
	sym := result.Symbols[0]

	hasType := func(at AnomalyType) bool {
		for _, a := range sym.Anomalies {
			if a.Type == at {
				return true
			}
		}
		return false
	}
	if !hasType(AnomalyCrowdFormation) {
		t.Errorf("expected crowd formation anomaly with 9 traders >= balanced threshold 8, got %+v", sym.Anomalies)
	}
	if !hasType(AnomalyLeverageSpike) {
		t.Errorf("expected leverage spike anomaly at 50x, got %+v", sym.Anomalies)
	}
}

func TestEvaluate_StabilityScoreDegradesWithFlips(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	seedTrader(t, ctx, s, "A", 1.0, 50, now)

	eng := New(s, consensus.New(s), nil)

	// Alternate direction across four evaluations within the window.
	sides := []models.Side{models.SideLong, models.SideShort, models.SideLong, models.SideShort}
	var last *Result
	for i, side := range sides {
		tick := now.Add(time.Duration(i) * time.Minute)
		s.InsertSnapshots(ctx, []models.PositionSnapshot{{
			LeadID: "A", FetchedAt: tick, Symbol: "ETHUSDT", Side: side, Leverage: 5,
		}})
		result, err := eng.Evaluate(ctx, "binance", models.SegmentBoth, time.Hour, models.ModeBalanced, 10, tick)
		if err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
		last = result
	}

	if len(last.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(last.Symbols))
	}
	if last.Symbols[0].Stability.Flips == 0 {
		t.Errorf("expected flips > 0 after alternating direction, got 0")
	}
	if last.Symbols[0].Stability.StabilityScore >= 100 {
		t.Errorf("stabilityScore = %v, want degraded below 100", last.Symbols[0].Stability.StabilityScore)
	}
}

func TestEvaluate_LeaderboardRanksByWeightAndActivity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	seedTrader(t, ctx, s, "top", 0.9, 90, now)
	seedTrader(t, ctx, s, "bottom", 0.1, 10, now)
	seedSnapshot(t, ctx, s, "top", "BTCUSDT", now, models.SideLong, 5)
	seedSnapshot(t, ctx, s, "bottom", "BTCUSDT", now, models.SideShort, 5)

	eng := New(s, consensus.New(s), nil)
	result, err := eng.Evaluate(ctx, "binance", models.SegmentBoth, time.Hour, models.ModeBalanced, 10, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(result.Leaderboard) != 2 {
		t.Fatalf("expected 2 leaderboard entries, got %d", len(result.Leaderboard))
	}
	if result.Leaderboard[0].LeadID != "top" {
		t.Errorf("top entry = %s, want top", result.Leaderboard[0].LeadID)
	}
}

func TestEvaluate_UsesPersistedRuleOverBuiltinPreset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	if err := s.SaveInsightsRule(ctx, &models.InsightsRule{
		Platform:              "binance",
		Mode:                  models.ModeAggressive,
		CrowdingThreshold:     2,
		HighLeverageThreshold: 100,
		UnstableFlipThreshold: 100,
		LowConfidenceFloor:    0,
		ScoreMultiplier:       2.0,
	}); err != nil {
		t.Fatalf("save rule: %v", err)
	}

	seedTrader(t, ctx, s, "A", 0.5, 50, now)
	seedTrader(t, ctx, s, "B", 0.5, 50, now)
	seedSnapshot(t, ctx, s, "A", "BTCUSDT", now, models.SideLong, 5)
	seedSnapshot(t, ctx, s, "B", "BTCUSDT", now, models.SideLong, 5)

	eng := New(s, consensus.New(s), nil)
	result, err := eng.Evaluate(ctx, "binance", models.SegmentBoth, time.Hour, models.ModeBalanced, 10, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Mode != models.ModeAggressive {
		t.Errorf("mode = %v, want the persisted rule's aggressive mode, not the balanced default passed in", result.Mode)
	}
	found := false
	for _, a := range result.Symbols[0].Anomalies {
		if a.Type == AnomalyCrowdFormation {
			found = true
		}
	}
	if !found {
		t.Errorf("expected crowd formation with persisted threshold 2 and 2 traders, got %+v", result.Symbols[0].Anomalies)
	}
}
