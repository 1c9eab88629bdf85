package model

import "time"

// Payee represents a known counterparty for transactions.
type Payee struct {
	CreatedAt         time.Time
	LastUsedAt        time.Time
	Name              string
	Color             string
	DefaultCategoryID *int64
	ID                int64
	UseCount          int
}
