// Package normalize maps raw exchange shapes from the scraper into the
// internal position/event records the rest of the system operates on
// (spec §4.C). It is a pure, deterministic mapping: the same raw payload
// always normalises to the same output.
package normalize

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/scraper"
)

// Positions converts the raw activePositions[] for one trader/fetch into
// PositionSnapshot rows. Parse failures on a single position are skipped
// (the rest of the payload is still processed); malformed numeric fields
// never abort the whole trader.
func Positions(leadID string, fetchedAt time.Time, raw []scraper.RawPosition) []models.PositionSnapshot {
	out := make([]models.PositionSnapshot, 0, len(raw))
	for _, p := range raw {
		snap, ok := normalizePosition(leadID, fetchedAt, p)
		if !ok {
			continue
		}
		out = append(out, snap)
	}
	return out
}

func normalizePosition(leadID string, fetchedAt time.Time, p scraper.RawPosition) (models.PositionSnapshot, bool) {
	amount, err := decimal.NewFromString(p.PositionAmount)
	if err != nil {
		return models.PositionSnapshot{}, false
	}

	side := sideFromPosition(p.PositionSide, amount)

	entryPrice, _ := decimal.NewFromString(p.EntryPrice)
	markPrice, _ := decimal.NewFromString(p.MarkPrice)
	pnl, _ := decimal.NewFromString(p.UnrealizedPnl)

	leverage := 0
	if lev, err := strconv.Atoi(p.Leverage); err == nil {
		leverage = lev
	}

	marginUSDT := decimal.NullDecimal{}
	if notional, err := decimal.NewFromString(p.NotionalValue); err == nil && leverage > 0 {
		margin := notional.Abs().Div(decimal.NewFromInt(int64(leverage)))
		marginUSDT = decimal.NullDecimal{Decimal: margin, Valid: true}
	}

	marginType := models.MarginCross
	if p.Isolated {
		marginType = models.MarginIsolated
	}

	roePct := decimal.Zero
	if marginUSDT.Valid && marginUSDT.Decimal.GreaterThan(decimal.Zero) {
		roePct = pnl.Div(marginUSDT.Decimal).Mul(decimal.NewFromInt(100))
	}

	return models.PositionSnapshot{
		LeadID:       leadID,
		FetchedAt:    fetchedAt,
		Symbol:       p.Symbol,
		Side:         side,
		ContractType: p.ContractType,
		Leverage:     leverage,
		Size:         amount.Abs(),
		EntryPrice:   entryPrice,
		MarkPrice:    markPrice,
		MarginUSDT:   marginUSDT,
		MarginType:   marginType,
		PnlUSDT:      pnl,
		RoePct:       roePct,
	}, true
}

// sideFromPosition implements the one-way-account trap from spec §9: a
// BOTH positionSide must never be carried forward, the sign of
// positionAmount is the only reliable signal.
func sideFromPosition(positionSide string, amount decimal.Decimal) models.Side {
	switch positionSide {
	case "LONG":
		return models.SideLong
	case "SHORT":
		return models.SideShort
	default: // BOTH or unrecognised: one-way account, infer from sign.
		if amount.IsNegative() {
			return models.SideShort
		}
		return models.SideLong
	}
}
