package server

import (
	"testing"
	"time"

	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	r := newRateLimiter(3, time.Minute, fake)

	for i := 0; i < 3; i++ {
		if !r.Allow("10.0.0.1") {
			t.Fatalf("request %d within the limit was refused", i+1)
		}
	}
	if r.Allow("10.0.0.1") {
		t.Fatal("request over the limit was allowed")
	}

	// A different caller has its own window.
	if !r.Allow("10.0.0.2") {
		t.Fatal("independent key was throttled")
	}

	fake.Advance(61 * time.Second)
	if !r.Allow("10.0.0.1") {
		t.Fatal("window expiry did not reset the counter")
	}
}

func TestRateLimiterEmptyKey(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	r := newRateLimiter(1, time.Minute, fake)

	if !r.Allow("") {
		t.Fatal("first anonymous request refused")
	}
	if r.Allow("") {
		t.Fatal("anonymous requests must share one bucket")
	}
}
