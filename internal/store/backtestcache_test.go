package store

import (
	"testing"
	"time"
)

type cachedWindow struct {
	Symbol string
	Count  int
}

func TestBacktestCache_PutGetRoundTrip(t *testing.T) {
	cache, err := OpenBacktestCache(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer cache.Close()

	key := Key("BTCUSDT", time.Unix(0, 0), time.Unix(3600, 0))
	want := cachedWindow{Symbol: "BTCUSDT", Count: 42}
	if err := cache.Put(key, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got cachedWindow
	ok, err := cache.Get(key, &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBacktestCache_MissReturnsFalse(t *testing.T) {
	cache, err := OpenBacktestCache(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer cache.Close()

	var dest cachedWindow
	ok, err := cache.Get("nonexistent", &dest)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected cache miss")
	}
}

func TestBacktestCache_PutOverwritesExisting(t *testing.T) {
	cache, err := OpenBacktestCache(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer cache.Close()

	key := "k"
	if err := cache.Put(key, cachedWindow{Symbol: "A", Count: 1}); err != nil {
		t.Fatalf("put1: %v", err)
	}
	if err := cache.Put(key, cachedWindow{Symbol: "A", Count: 2}); err != nil {
		t.Fatalf("put2: %v", err)
	}

	var got cachedWindow
	if _, err := cache.Get(key, &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Count != 2 {
		t.Errorf("Count = %d, want 2 after overwrite", got.Count)
	}
}
