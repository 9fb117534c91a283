package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
	"github.com/eyupilis/tracker-all-trader-sub001/internal/scraper"
)

// Events converts orderHistory.allOrders[] for one trader/fetch into
// normalised Event records. Orders that fail to parse a usable timestamp
// are skipped; everything else maps deterministically.
func Events(platform, leadID string, fetchedAt time.Time, raw []scraper.RawOrder) []models.Event {
	out := make([]models.Event, 0, len(raw))
	for _, o := range raw {
		ev, ok := normalizeEvent(platform, leadID, fetchedAt, o)
		if !ok {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// eventType maps (side, positionSide) to the semantic event type per
// spec §4.C. All other combinations are UNKNOWN.
func eventType(side, positionSide string) models.EventType {
	side = strings.ToUpper(side)
	positionSide = strings.ToUpper(positionSide)
	switch {
	case side == "BUY" && positionSide == "LONG":
		return models.EventOpenLong
	case side == "SELL" && positionSide == "LONG":
		return models.EventCloseLong
	case side == "SELL" && positionSide == "SHORT":
		return models.EventOpenShort
	case side == "BUY" && positionSide == "SHORT":
		return models.EventCloseShort
	default:
		return models.EventUnknown
	}
}

func normalizeEvent(platform, leadID string, fetchedAt time.Time, o scraper.RawOrder) (models.Event, bool) {
	eventTimeText := o.OrderUpdateTime
	var eventTimeTextStr string
	if eventTimeText > 0 {
		eventTimeTextStr = FormatEventTimeText(eventTimeText)
	}
	eventTime, err := ResolveEventTime(o.OrderUpdateTime, eventTimeTextStr, fetchedAt)
	if err != nil {
		return models.Event{}, false
	}
	if eventTimeTextStr == "" {
		eventTimeTextStr = eventTime.Format(eventTimeTextLayout)
	}

	evType := eventType(o.Side, o.PositionSide)

	amount, amountErr := decimal.NewFromString(o.ExecutedQty)
	price, priceErr := decimal.NewFromString(o.AvgPrice)

	var amountDec, priceDec decimal.NullDecimal
	if amountErr == nil {
		amountDec = decimal.NullDecimal{Decimal: amount, Valid: true}
	}
	if priceErr == nil {
		priceDec = decimal.NullDecimal{Decimal: price, Valid: true}
	}

	var realizedPnl decimal.NullDecimal
	if pnl, err := decimal.NewFromString(o.TotalPnl); err == nil && pnl.IsPositive() {
		realizedPnl = decimal.NullDecimal{Decimal: pnl, Valid: true}
	}

	var amountAsset *string
	if o.BaseAsset != "" {
		asset := o.BaseAsset
		amountAsset = &asset
	}

	key := models.BuildEventKey(platform, leadID, evType, o.Symbol, eventTimeTextStr, amount, price)

	return models.Event{
		EventKey:      key,
		Platform:      platform,
		LeadID:        leadID,
		EventType:     evType,
		Symbol:        o.Symbol,
		Price:         priceDec,
		Amount:        amountDec,
		AmountAsset:   amountAsset,
		RealizedPnl:   realizedPnl,
		EventTimeText: eventTimeTextStr,
		EventTime:     eventTime,
		FetchedAt:     fetchedAt,
	}, true
}
