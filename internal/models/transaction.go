package models

import "time"

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusRefunded  TransactionStatus = "refunded"
)

// LineItem is one sold position inside a transaction. Items reach the
// analytics engine already decoded; storage backends own the encoding.
type LineItem struct {
	ProductID string  `json:"product_id"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type Transaction struct {
	ID         string            `json:"id"`
	CompanyID  string            `json:"company_id"`
	CustomerID string            `json:"customer_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Status     TransactionStatus `json:"status"`
	Items      []LineItem        `json:"items"`
	Subtotal   float64           `json:"subtotal"`
	Tax        float64           `json:"tax"`
	Discount   float64           `json:"discount"`
	Total      float64           `json:"total"`
}

type Product struct {
	ID        string  `json:"id"`
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`
	Stock     int     `json:"stock"`
	Active    bool    `json:"active"`
}

type Customer struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	Name       string    `json:"name"`
	TotalSpent float64   `json:"total_spent"`
	VisitCount int       `json:"visit_count"`
	LastVisit  time.Time `json:"last_visit"`
}
