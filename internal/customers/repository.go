package customers

import (
	"context"
	"strings"
	"sync"
)

// Repository defines the interface for customer lookup
type Repository interface {
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
}

// InMemoryRepository is a Repository backed by an in-memory map, used in
// development and tests. Production deployments swap in a DB-backed
// implementation behind the same interface.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byPhone map[string]*Customer
	byID    map[string]*Customer
}

// NewInMemoryRepository creates an in-memory repository preloaded with the
// provided customers.
func NewInMemoryRepository(seed ...Customer) *InMemoryRepository {
	r := &InMemoryRepository{
		byPhone: make(map[string]*Customer),
		byID:    make(map[string]*Customer),
	}
	for i := range seed {
		c := seed[i]
		r.byPhone[normalizePhone(c.Phone)] = &c
		r.byID[c.ID] = &c
	}
	return r
}

// GetByPhone retrieves a customer by phone number.
func (r *InMemoryRepository) GetByPhone(ctx context.Context, phone string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byPhone[normalizePhone(phone)]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

// GetByID retrieves a customer by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

// normalizePhone strips everything except digits so "+91 98765-43210" and
// "9876543210" key the same record.
func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// SampleCustomers returns the demo book used when no directory is configured.
func SampleCustomers() []Customer {
	return []Customer{
		{
			ID:                "CUST001",
			Name:              "Rajesh Kumar",
			Phone:             "9876543210",
			LoanID:            "LN-2024-0045",
			OutstandingAmount: 45000,
			DueDate:           "15-01-2025",
			Language:          "en",
		},
		{
			ID:                "CUST002",
			Name:              "Priya Sharma",
			Phone:             "9123456780",
			LoanID:            "LN-2024-0112",
			OutstandingAmount: 18500,
			DueDate:           "28-02-2025",
			Language:          "en",
		},
		{
			ID:                "CUST003",
			Name:              "Amit Patel",
			Phone:             "9988776655",
			LoanID:            "LN-2023-0897",
			OutstandingAmount: 72300,
			DueDate:           "05-03-2025",
			Language:          "en",
		},
	}
}
