package models

import "testing"

func TestEarningStatusTransitions(t *testing.T) {
	allowed := map[[2]EarningStatus]bool{
		{EarningStatusPending, EarningStatusApproved}: true,
		{EarningStatusApproved, EarningStatusPaid}:    true,
	}

	statuses := []EarningStatus{EarningStatusPending, EarningStatusApproved, EarningStatusPaid}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]EarningStatus{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("CanTransition(%s → %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestEarningStatusNoRegression(t *testing.T) {
	// Paid is terminal and approval is never undone.
	if EarningStatusPaid.CanTransition(EarningStatusPending) {
		t.Error("paid must not transition back to pending")
	}
	if EarningStatusApproved.CanTransition(EarningStatusPending) {
		t.Error("approved must not transition back to pending")
	}
	if EarningStatusPending.CanTransition(EarningStatusPaid) {
		t.Error("pending must not skip approval")
	}
}
