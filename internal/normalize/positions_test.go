package normalize

import (
	"testing"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/scraper"
)

func TestPositions_OneWayBothInfersSideFromSign(t *testing.T) {
	fetchedAt := time.Now().UTC()
	raw := []scraper.RawPosition{
		{Symbol: "BTCUSDT", PositionAmount: "0.5", EntryPrice: "60000", MarkPrice: "60500", PositionSide: "BOTH", NotionalValue: "30000", Leverage: "10"},
		{Symbol: "ETHUSDT", PositionAmount: "-2", EntryPrice: "3000", MarkPrice: "2900", PositionSide: "BOTH", NotionalValue: "6000", Leverage: "5"},
	}
	snaps := Positions("T1", fetchedAt, raw)
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Side != models.SideLong {
		t.Errorf("positive positionAmount with BOTH should infer LONG, got %v", snaps[0].Side)
	}
	if snaps[1].Side != models.SideShort {
		t.Errorf("negative positionAmount with BOTH should infer SHORT, got %v", snaps[1].Side)
	}
}

func TestPositions_ExplicitSideTakesPrecedence(t *testing.T) {
	raw := []scraper.RawPosition{
		{Symbol: "BTCUSDT", PositionAmount: "-1", EntryPrice: "60000", MarkPrice: "60000", PositionSide: "LONG", NotionalValue: "60000", Leverage: "10"},
	}
	snaps := Positions("T1", time.Now().UTC(), raw)
	if snaps[0].Side != models.SideLong {
		t.Errorf("explicit positionSide=LONG should not be overridden by sign, got %v", snaps[0].Side)
	}
}

func TestPositions_MarginUSDTFromNotionalAndLeverage(t *testing.T) {
	raw := []scraper.RawPosition{
		{Symbol: "BTCUSDT", PositionAmount: "1", EntryPrice: "60000", MarkPrice: "60000", PositionSide: "LONG", NotionalValue: "60000", Leverage: "10", Isolated: true},
	}
	snaps := Positions("T1", time.Now().UTC(), raw)
	if !snaps[0].MarginUSDT.Valid {
		t.Fatal("expected MarginUSDT to be computed")
	}
	if got, _ := snaps[0].MarginUSDT.Decimal.Float64(); got != 6000 {
		t.Errorf("marginUSDT = %v, want 6000", got)
	}
	if snaps[0].MarginType != models.MarginIsolated {
		t.Errorf("isolated=true should map to MarginIsolated, got %v", snaps[0].MarginType)
	}
}

func TestPositions_SkipsUnparsablePosition(t *testing.T) {
	raw := []scraper.RawPosition{
		{Symbol: "BTCUSDT", PositionAmount: "not-a-number"},
		{Symbol: "ETHUSDT", PositionAmount: "1", EntryPrice: "3000", MarkPrice: "3000", PositionSide: "LONG"},
	}
	snaps := Positions("T1", time.Now().UTC(), raw)
	if len(snaps) != 1 {
		t.Fatalf("expected unparsable position skipped, got %d snapshots", len(snaps))
	}
}
