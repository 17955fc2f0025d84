package customers

import "errors"

// ErrCustomerNotFound is returned when no customer matches the lookup key.
var ErrCustomerNotFound = errors.New("customers: customer not found")

// Customer is a debtor on file with an outstanding balance.
type Customer struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	LoanID            string  `json:"loan_id"`
	OutstandingAmount float64 `json:"outstanding_amount"`
	DueDate           string  `json:"due_date"`
	Language          string  `json:"language"`
}
