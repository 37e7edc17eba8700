package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockSetAndAdvance(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	if updated := clock.Advance(90 * time.Minute); !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockNowFuncTracksTheClock(t *testing.T) {
	clock := NewClock(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	before := nowFn()
	clock.Advance(time.Minute)
	after := nowFn()

	if !after.Equal(before.Add(time.Minute)) {
		t.Fatalf("NowFunc did not follow the clock: before=%v after=%v", before, after)
	}
}

func TestNilClockNowFuncUsesRealTime(t *testing.T) {
	var clock *Clock
	if clock.NowFunc()().IsZero() {
		t.Fatal("expected a real timestamp from a nil clock")
	}
}
