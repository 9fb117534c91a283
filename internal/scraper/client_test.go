package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(srv.URL, 2*time.Second, logger.New("scraper_test"), WithRateLimit(1000, 10))
	return c, srv.Close
}

func okEnvelope(data string) string {
	return `{"success":true,"data":` + data + `}`
}

func TestFetchTrader_AllEndpointsSucceed(t *testing.T) {
	c, closeSrv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "leadCommon"):
			w.Write([]byte(okEnvelope(`{"nickname":"T1","positionShow":true}`)))
		case strings.Contains(r.URL.Path, "portfolioDetail"):
			w.Write([]byte(okEnvelope(`{"totalROI":"12.5","totalPnl":"1000","followerCount":5}`)))
		case strings.Contains(r.URL.Path, "positions"):
			w.Write([]byte(okEnvelope(`[{"symbol":"BTCUSDT","positionAmount":"0.1","entryPrice":"60000","markPrice":"60100","positionSide":"BOTH"}]`)))
		case strings.Contains(r.URL.Path, "roiSeries"):
			w.Write([]byte(okEnvelope(`[{"date":"2026-07-01","roi":1.2}]`)))
		case strings.Contains(r.URL.Path, "assetPreferences"):
			w.Write([]byte(okEnvelope(`{"symbols":["BTCUSDT","ETHUSDT"]}`)))
		case strings.Contains(r.URL.Path, "roiChart"):
			w.Write([]byte(okEnvelope(`[{"date":"2026-07-02","roi":2.1}]`)))
		case strings.Contains(r.URL.Path, "orderHistory"):
			w.Write([]byte(okEnvelope(`{"total":1,"allOrders":[{"symbol":"BTCUSDT","side":"BUY","positionSide":"LONG","executedQty":"0.1","avgPrice":"60000","orderUpdateTime":1700000000000}]}`)))
		default:
			http.NotFound(w, r)
		}
	})
	defer closeSrv()

	payload, err := c.FetchTrader(context.Background(), "T1", 0, 0)
	if err != nil {
		t.Fatalf("FetchTrader: %v", err)
	}
	if payload.LeadCommon == nil || payload.LeadCommon.Nickname != "T1" {
		t.Errorf("LeadCommon not populated: %+v", payload.LeadCommon)
	}
	if len(payload.ActivePositions) != 1 {
		t.Errorf("expected 1 position, got %d", len(payload.ActivePositions))
	}
	if payload.OrderHistory.Total != 1 {
		t.Errorf("expected order history total 1, got %d", payload.OrderHistory.Total)
	}
	if len(payload.FailedEndpoints) != 0 {
		t.Errorf("expected no failed endpoints, got %v", payload.FailedEndpoints)
	}
}

func TestFetchTrader_PartialFailureLeavesNullSubfields(t *testing.T) {
	c, closeSrv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "portfolioDetail") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "leadCommon"):
			w.Write([]byte(okEnvelope(`{"nickname":"T1"}`)))
		case strings.Contains(r.URL.Path, "positions"):
			w.Write([]byte(okEnvelope(`[]`)))
		case strings.Contains(r.URL.Path, "orderHistory"):
			w.Write([]byte(okEnvelope(`{"total":0,"allOrders":[]}`)))
		case strings.Contains(r.URL.Path, "assetPreferences"):
			w.Write([]byte(okEnvelope(`{"symbols":[]}`)))
		default:
			w.Write([]byte(okEnvelope(`[]`)))
		}
	})
	defer closeSrv()

	payload, err := c.FetchTrader(context.Background(), "T1", 0, 0)
	if err != nil {
		t.Fatalf("FetchTrader should not fail on partial failure: %v", err)
	}
	if payload.PortfolioDetail != nil {
		t.Errorf("expected nil PortfolioDetail on endpoint failure, got %+v", payload.PortfolioDetail)
	}
	if len(payload.FailedEndpoints) != 1 || payload.FailedEndpoints[0] != "detail" {
		t.Errorf("expected exactly 'detail' recorded as failed, got %v", payload.FailedEndpoints)
	}
}

func TestFetchTrader_AllEndpointsFailReturnsScrapeError(t *testing.T) {
	c, closeSrv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	defer closeSrv()

	_, err := c.FetchTrader(context.Background(), "T1", 0, 0)
	if err == nil {
		t.Fatal("expected ScrapeError when every endpoint fails")
	}
	scrapeErr, ok := err.(*ScrapeError)
	if !ok {
		t.Fatalf("expected *ScrapeError, got %T", err)
	}
	if len(scrapeErr.Causes) != 7 {
		t.Errorf("expected all 7 endpoints recorded as failed causes, got %d", len(scrapeErr.Causes))
	}
}
