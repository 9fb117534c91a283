package normalize

import (
	"testing"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/scraper"
)

func TestEventType_Mapping(t *testing.T) {
	tests := []struct {
		side, positionSide string
		want               models.EventType
	}{
		{"BUY", "LONG", models.EventOpenLong},
		{"SELL", "LONG", models.EventCloseLong},
		{"SELL", "SHORT", models.EventOpenShort},
		{"BUY", "SHORT", models.EventCloseShort},
		{"BUY", "BOTH", models.EventUnknown},
		{"SELL", "", models.EventUnknown},
	}
	for _, tt := range tests {
		if got := eventType(tt.side, tt.positionSide); got != tt.want {
			t.Errorf("eventType(%q,%q) = %v, want %v", tt.side, tt.positionSide, got, tt.want)
		}
	}
}

func TestEvents_BuildsDeterministicEventKey(t *testing.T) {
	fetchedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	raw := []scraper.RawOrder{
		{Symbol: "BTCUSDT", Side: "BUY", PositionSide: "LONG", ExecutedQty: "0.1", AvgPrice: "60000", OrderUpdateTime: fetchedAt.Add(-time.Hour).UnixMilli()},
	}
	a := Events("binance", "T1", fetchedAt, raw)
	b := Events("binance", "T1", fetchedAt, raw)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected 1 event each run, got %d and %d", len(a), len(b))
	}
	if a[0].EventKey != b[0].EventKey {
		t.Errorf("normalisation should be deterministic: %q != %q", a[0].EventKey, b[0].EventKey)
	}
	if a[0].EventType != models.EventOpenLong {
		t.Errorf("expected OPEN_LONG, got %v", a[0].EventType)
	}
}

func TestEvents_RealizedPnlOnlyWhenPositive(t *testing.T) {
	fetchedAt := time.Now().UTC()
	raw := []scraper.RawOrder{
		{Symbol: "BTCUSDT", Side: "SELL", PositionSide: "LONG", ExecutedQty: "0.1", AvgPrice: "61000", TotalPnl: "150", OrderUpdateTime: fetchedAt.UnixMilli()},
		{Symbol: "BTCUSDT", Side: "SELL", PositionSide: "LONG", ExecutedQty: "0.1", AvgPrice: "59000", TotalPnl: "-50", OrderUpdateTime: fetchedAt.UnixMilli()},
	}
	events := Events("binance", "T1", fetchedAt, raw)
	if !events[0].RealizedPnl.Valid {
		t.Error("positive totalPnl should be preserved as realizedPnl")
	}
	if events[1].RealizedPnl.Valid {
		t.Error("negative totalPnl should map to null realizedPnl")
	}
}

func TestResolveEventTime_FutureTextualDateRollsBackOneYear(t *testing.T) {
	fetchedAt := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	// "12-31, 23:00:00" interpreted in fetchedAt's year (2026) would be in
	// the future relative to fetchedAt (2026-01-05); must roll back to 2025.
	got, err := ResolveEventTime(0, "12-31, 23:00:00", fetchedAt)
	if err != nil {
		t.Fatalf("ResolveEventTime: %v", err)
	}
	if got.Year() != 2025 {
		t.Errorf("expected year rolled back to 2025, got %d", got.Year())
	}
}

func TestResolveEventTime_PrefersMillisecondField(t *testing.T) {
	fetchedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ms := time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC).UnixMilli()
	got, err := ResolveEventTime(ms, "01-01, 00:00:00", fetchedAt)
	if err != nil {
		t.Fatalf("ResolveEventTime: %v", err)
	}
	if !got.Equal(time.UnixMilli(ms).UTC()) {
		t.Errorf("expected millisecond field to take precedence, got %v", got)
	}
}
