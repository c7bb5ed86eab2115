package system

import (
	"testing"
	"time"
)

func TestClockNow(t *testing.T) {
	clock := New()
	before := time.Now()
	got := clock.Now()
	after := time.Now()
	if got.Before(before.Add(-time.Second)) || got.After(after.Add(time.Second)) {
		t.Fatalf("Now() = %v, want within [%v, %v]", got, before, after)
	}
}
