package model

import "time"

// AccountType indicates the kind of financial account.
type AccountType string

const (
	// AccountTypeChecking represents a checking account.
	AccountTypeChecking AccountType = "checking"
	// AccountTypeSavings represents a savings account.
	AccountTypeSavings AccountType = "savings"
	// AccountTypeCredit represents a credit card account.
	AccountTypeCredit AccountType = "credit"
	// AccountTypeInvestment represents an investment account.
	AccountTypeInvestment AccountType = "investment"
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeInvestment:
		return true
	}
	return false
}

// Account represents a financial account transactions belong to.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Currency  string
	Type      AccountType
	Balance   float64
}
