package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/recoverly/collections-ai-agent/internal/records"
)

const maxVerifyAttempts = 2

var identityYesPhrases = []string{
	"yes", "yeah", "yep", "speaking", "that's me", "thats me",
	"this is", "correct", "right", "haan", "i am",
}

// verify confirms the engine is talking to the right person before any debt
// detail is disclosed. Two failed attempts end the call without disclosure.
//
// The success reply deliberately contains "thank you for confirming" and
// "outstanding payment": the commitment detector and the negotiation turn
// counter both anchor on those phrases.
func (e *Engine) verify(ctx context.Context, state *CallState) (*patch, error) {
	if identityConfirmed(state.LastUserTurn(), state.CustomerName) {
		reply := fmt.Sprintf(
			"Thank you for confirming, %s. This call is regarding your outstanding payment of ₹%s on loan %s, which was due on %s. Will you be able to make this payment?",
			state.FirstName(), formatINR(state.OutstandingAmount), state.LoanID, state.DueDate,
		)
		return &patch{
			reply:        reply,
			stage:        StageDisclosure,
			awaitingUser: true,
			verified:     true,
			setVerified:  true,
		}, nil
	}

	attempts := state.VerifyAttempts + 1
	if attempts >= maxVerifyAttempts {
		reply := "I'm sorry, but I'm unable to verify your identity, so I cannot discuss this account. Please contact us directly at your convenience. Thank you, goodbye."
		summary := fmt.Sprintf("Call ended without identity verification.\nCustomer: %s\nOutstanding Amount: ₹%.0f", state.CustomerName, state.OutstandingAmount)
		record := records.CallRecord{
			CustomerID:    state.CustomerID,
			Outcome:       "verification_failed",
			PaymentStatus: "unverified",
			Summary:       summary,
		}
		if err := e.sink.SaveCallRecord(ctx, record); err != nil {
			return nil, err
		}
		return &patch{
			reply:          reply,
			stage:          StageClosing,
			isComplete:     true,
			setAttempts:    true,
			verifyAttempts: attempts,
			callOutcome:    "verification_failed",
			callSummary:    summary,
		}, nil
	}

	reply := fmt.Sprintf("I need to confirm I'm speaking with the right person. Could you confirm whether you are %s?", state.CustomerName)
	return &patch{
		reply:          reply,
		stage:          StageVerification,
		awaitingUser:   true,
		setAttempts:    true,
		verifyAttempts: attempts,
	}, nil
}

func identityConfirmed(reply, customerName string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range identityYesPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, part := range strings.Fields(strings.ToLower(customerName)) {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// disclose classifies the customer's reaction to the debt disclosure and
// routes the call. A willing customer goes to negotiation on this same
// input; every other intent goes straight to closing.
func (e *Engine) disclose(ctx context.Context, state *CallState) (*patch, error) {
	intent := e.classifier.Classify(ctx, state.LastUserTurn())
	e.logger.Info("disclosure intent classified", "intent", string(intent), "customer_id", state.CustomerID)

	if intent == IntentWilling {
		return &patch{
			stage:         StageNegotiation,
			paymentStatus: string(IntentWilling),
			continueFlow:  true,
		}, nil
	}
	return &patch{
		stage:         StageClosing,
		paymentStatus: string(intent),
		continueFlow:  true,
	}, nil
}

// close ends the call with an outcome-appropriate message and persists the
// call record. Disputes additionally open a dispute ticket whose reference
// is read back to the customer.
func (e *Engine) close(ctx context.Context, state *CallState) (*patch, error) {
	paymentStatus := state.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = "completed"
	}

	p := &patch{stage: StageClosing, isComplete: true}
	var message, outcome string

	switch paymentStatus {
	case string(IntentPaid):
		message = "Thank you for confirming your payment. We will verify this on our end and update your account. If you have any questions, please feel free to contact us. Have a good day."
		outcome = "paid"

	case string(IntentDisputed):
		reason := state.LastUserTurn()
		if reason == "" {
			reason = "Customer disputes the debt"
		}
		disputeID, err := e.sink.SaveDispute(ctx, state.CustomerID, reason)
		if err != nil {
			return nil, err
		}
		message = fmt.Sprintf(
			"I understand you're disputing this debt. I've created a dispute ticket (Reference: %s). Our disputes team will review this and contact you within 3-5 business days. Thank you for bringing this to our attention.",
			disputeID,
		)
		outcome = "disputed"
		p.disputeID = disputeID
		p.disputeReason = reason

	case string(IntentCallback):
		message = "No problem, I understand you need more time. We'll call you back as requested. Thank you for your time today."
		outcome = "callback"

	case string(IntentUnable):
		message = "I understand your current financial situation. Our team will review your case and contact you to discuss possible options. Thank you for being honest with us today."
		outcome = "unable"

	case string(IntentWilling):
		if state.PTPID != "" {
			planName := "Payment Plan"
			if state.SelectedPlan != nil {
				planName = state.SelectedPlan.Name
			}
			message = fmt.Sprintf(
				"Perfect! I've documented your commitment to the %s with payment of ₹%s starting on %s. Your PTP reference number is %s. You'll receive a confirmation shortly. Thank you for working this out with us. Have a great day!",
				planName, formatINR(state.PTPAmount), state.PTPDate, state.PTPID,
			)
			outcome = "ptp_recorded"
		} else {
			message = "Thank you for discussing this with us today. Based on our conversation, we'll follow up with you shortly to finalize the payment arrangement. If you'd like to proceed with payment before then, please contact us. Have a good day."
			outcome = "willing"
		}

	default:
		message = "Thank you for your time today. If you have any questions, please feel free to contact us. Have a good day."
		outcome = paymentStatus
	}

	summary := fmt.Sprintf(
		"Call completed.\nVerified: %t\nOutcome: %s\nPayment Status: %s\nCustomer: %s\nOutstanding Amount: ₹%.0f",
		state.IsVerified, outcome, paymentStatus, state.CustomerName, state.OutstandingAmount,
	)
	if err := e.sink.SaveCallRecord(ctx, records.CallRecord{
		CustomerID:    state.CustomerID,
		Outcome:       outcome,
		PaymentStatus: paymentStatus,
		Summary:       summary,
	}); err != nil {
		return nil, err
	}

	p.reply = message
	p.callOutcome = outcome
	p.callSummary = summary
	return p, nil
}
