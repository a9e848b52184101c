package search

import (
	"testing"
	"time"
)

func TestUnboundedBudget(t *testing.T) {
	var tm TimeManager
	tm.Start(0)

	if tm.Exceeded() {
		t.Error("unbounded budget reported exceeded")
	}
	if !tm.ShouldStartNext(time.Hour) {
		t.Error("unbounded budget refused another iteration")
	}
}

func TestExceeded(t *testing.T) {
	var tm TimeManager
	tm.Start(time.Nanosecond)
	time.Sleep(time.Millisecond)

	if !tm.Exceeded() {
		t.Error("spent budget not reported exceeded")
	}
}

func TestShouldStartNext(t *testing.T) {
	var tm TimeManager
	tm.Start(time.Hour)

	if !tm.ShouldStartNext(time.Second) {
		t.Error("refused an iteration with nearly the whole budget left")
	}
	if tm.ShouldStartNext(2 * time.Hour) {
		t.Error("started an iteration that cannot fit the budget")
	}
}
