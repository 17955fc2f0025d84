package conversation

import (
	"reflect"
	"testing"
	"time"
)

func commitmentNow() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func negotiationState(turns []Turn) *CallState {
	return &CallState{
		CustomerID:        "CUST001",
		CustomerName:      "Rajesh Kumar",
		OutstandingAmount: 45000,
		IsVerified:        true,
		Stage:             StageNegotiation,
		Turns:             turns,
		OfferedPlans:      offeredPlansFixture(),
	}
}

func TestDetectCommitmentPlanAndDateAcrossTurns(t *testing.T) {
	state := negotiationState([]Turn{
		{RoleAssistant, "Thank you for confirming, Rajesh. This call is regarding your outstanding payment of ₹45,000."},
		{RoleUser, "I want a payment plan"},
		{RoleAssistant, "Here are some options:\n1. **Immediate Settlement**: Pay ₹42,750 (5% discount) in full within 7 days\n2. **3-Month Installment**: Pay ₹15,000 per month for 3 months\nWhich option works best for you?"},
		{RoleUser, "I'll take the 3-month installment plan"},
		{RoleAssistant, "Great choice, Rajesh! When would you like to make your first payment?"},
		{RoleUser, "the 15th"},
	})

	c := DetectCommitment(state, commitmentNow())
	if !c.HasBoth() {
		t.Fatalf("HasBoth() = false, want true (commitment: %+v)", c)
	}
	if c.Plan == nil || c.Plan.Index != 1 {
		t.Fatalf("plan = %+v, want index 1", c.Plan)
	}
	if c.Amount != 15000 {
		t.Errorf("amount = %v, want 15000 (parsed from plan description)", c.Amount)
	}
	if c.Date != "15-06-2025" {
		t.Errorf("date = %q, want 15-06-2025", c.Date)
	}
}

func TestDetectCommitmentIsIdempotent(t *testing.T) {
	state := negotiationState([]Turn{
		{RoleAssistant, "This call is regarding your outstanding payment of ₹45,000."},
		{RoleUser, "option 2 and I'll pay on 10th July"},
	})

	first := DetectCommitment(state, commitmentNow())
	second := DetectCommitment(state, commitmentNow())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated detection diverged: %+v vs %+v", first, second)
	}
	if !first.HasBoth() {
		t.Errorf("HasBoth() = false, want true")
	}
}

func TestDetectCommitmentDateWithWillingnessImpliesFullAmount(t *testing.T) {
	state := negotiationState([]Turn{
		{RoleAssistant, "This call is regarding your outstanding payment of ₹45,000."},
		{RoleUser, "I want to pay, I just need some time"},
		{RoleAssistant, "Of course. What date works for you?"},
		{RoleUser, "how about the 20th"},
	})
	state.OfferedPlans = nil

	c := DetectCommitment(state, commitmentNow())
	if !c.HasBoth() {
		t.Fatalf("HasBoth() = false, want true (commitment: %+v)", c)
	}
	if c.Amount != 45000 {
		t.Errorf("amount = %v, want full outstanding 45000", c.Amount)
	}
}

func TestDetectCommitmentDateAloneIsNotEnough(t *testing.T) {
	state := negotiationState([]Turn{
		{RoleAssistant, "This call is regarding your outstanding payment of ₹45,000."},
		{RoleUser, "hmm, perhaps the 20th"},
	})
	state.OfferedPlans = nil

	c := DetectCommitment(state, commitmentNow())
	if c.HasBoth() {
		t.Fatalf("HasBoth() = true without any amount signal")
	}
	if !c.HasDate {
		t.Errorf("expected the date to be detected")
	}
}

func TestDetectCommitmentIgnoresPreVerificationAmounts(t *testing.T) {
	// The ₹99,999 mention predates the disclosure marker, so it must not be
	// read as a commitment.
	state := negotiationState([]Turn{
		{RoleUser, "someone told me ₹99,999 last time"},
		{RoleAssistant, "Thank you for confirming, Rajesh. This call is regarding your outstanding payment of ₹45,000."},
		{RoleUser, "okay"},
	})
	state.OfferedPlans = nil

	c := DetectCommitment(state, commitmentNow())
	if c.HasAmount {
		t.Errorf("amount = %v, want none (pre-disclosure mention)", c.Amount)
	}
}

func TestDetectCommitmentWindowWithoutMarkersUsesRecentTurns(t *testing.T) {
	state := negotiationState([]Turn{
		{RoleUser, "₹30,000 was the old figure"},
		{RoleUser, "filler one"},
		{RoleUser, "filler two"},
		{RoleUser, "filler three"},
	})
	state.OfferedPlans = nil

	c := DetectCommitment(state, commitmentNow())
	if c.HasAmount {
		t.Errorf("amount = %v, want none (outside the lookback window)", c.Amount)
	}
}
