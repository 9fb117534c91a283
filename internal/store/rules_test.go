package store

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

func newRulesTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.AutoTriggerRule{}, &models.InsightsRule{}, &models.ConsensusSnapshot{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func TestGetAutoTriggerRule_ReturnsNilWhenUnconfigured(t *testing.T) {
	ctx := context.Background()
	s := newRulesTestStore(t)

	r, err := s.GetAutoTriggerRule(ctx, "binance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil rule, got %+v", r)
	}
}

func TestSaveAutoTriggerRule_RoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newRulesTestStore(t)

	in := &models.AutoTriggerRule{Platform: "binance", Enabled: true, MinTraders: 5}
	if err := s.SaveAutoTriggerRule(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.GetAutoTriggerRule(ctx, "binance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out == nil || !out.Enabled || out.MinTraders != 5 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestSaveInsightsRule_RoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newRulesTestStore(t)

	in := &models.InsightsRule{Platform: "binance", Mode: models.ModeAggressive, CrowdingThreshold: 12}
	if err := s.SaveInsightsRule(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.GetInsightsRule(ctx, "binance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out == nil || out.Mode != models.ModeAggressive || out.CrowdingThreshold != 12 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestConsensusSnapshots_FilteredBySymbolSegmentAndWindow(t *testing.T) {
	ctx := context.Background()
	s := newRulesTestStore(t)
	now := time.Now().UTC()

	seed := func(symbol string, seg models.Segment, dir string, at time.Time) {
		if err := s.InsertConsensusSnapshot(ctx, &models.ConsensusSnapshot{
			Platform: "binance", Symbol: symbol, Segment: seg, Direction: dir, ComputedAt: at,
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	seed("BTCUSDT", models.SegmentBoth, "LONG", now.Add(-2*time.Hour))
	seed("BTCUSDT", models.SegmentBoth, "SHORT", now.Add(-30*time.Minute))
	seed("ETHUSDT", models.SegmentBoth, "LONG", now.Add(-30*time.Minute))
	seed("BTCUSDT", models.Segment("VISIBLE"), "LONG", now.Add(-30*time.Minute))

	rows, err := s.ConsensusSnapshotsForSymbol(ctx, "binance", "BTCUSDT", models.SegmentBoth, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row within the window for BTCUSDT/BOTH, got %d", len(rows))
	}
	if rows[0].Direction != "SHORT" {
		t.Errorf("direction = %s, want SHORT", rows[0].Direction)
	}
}
