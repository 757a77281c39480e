package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreditsWallet_ApplyUsageSameCycle(t *testing.T) {
	anchor := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	w := NewCreditsWallet(uuid.New(), anchor)

	w.ApplyUsage(3, anchor)
	w.ApplyUsage(2, anchor)

	if w.CreditsUsedThisMonth != 5 {
		t.Errorf("CreditsUsedThisMonth = %d, want 5", w.CreditsUsedThisMonth)
	}
	if w.TotalCreditsUsed != 5 {
		t.Errorf("TotalCreditsUsed = %d, want 5", w.TotalCreditsUsed)
	}
	if !w.BillingCycleAnchor.Equal(anchor) {
		t.Errorf("anchor moved unexpectedly to %v", w.BillingCycleAnchor)
	}
}

func TestCreditsWallet_ApplyUsageCycleRollover(t *testing.T) {
	anchor := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	nextCycle := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	w := NewCreditsWallet(uuid.New(), anchor)
	w.ApplyUsage(12, anchor)

	w.ApplyUsage(1, nextCycle)

	if w.CreditsUsedThisMonth != 1 {
		t.Errorf("CreditsUsedThisMonth = %d, want 1 after rollover", w.CreditsUsedThisMonth)
	}
	if w.TotalCreditsUsed != 13 {
		t.Errorf("TotalCreditsUsed = %d, want 13", w.TotalCreditsUsed)
	}
	if !w.BillingCycleAnchor.Equal(nextCycle) {
		t.Errorf("anchor = %v, want %v", w.BillingCycleAnchor, nextCycle)
	}
}
