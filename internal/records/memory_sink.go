package records

import (
	"context"
	"sync"
)

// MemorySink keeps records in memory. Used in development and as the test
// double for the engine.
type MemorySink struct {
	mu          sync.Mutex
	CallRecords []CallRecord
	PTPs        []PTP
	Disputes    []Dispute
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) SaveCallRecord(_ context.Context, record CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallRecords = append(s.CallRecords, record)
	return nil
}

func (s *MemorySink) SavePTP(_ context.Context, customerID string, amount float64, date, planType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newReferenceID("PTP")
	s.PTPs = append(s.PTPs, PTP{
		ID:         id,
		CustomerID: customerID,
		Amount:     amount,
		Date:       date,
		PlanType:   planType,
	})
	return id, nil
}

func (s *MemorySink) SaveDispute(_ context.Context, customerID, reason string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newReferenceID("DSP")
	s.Disputes = append(s.Disputes, Dispute{
		ID:         id,
		CustomerID: customerID,
		Reason:     reason,
	})
	return id, nil
}
