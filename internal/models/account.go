package models

import "github.com/shopspring/decimal"

// AccountValidation is the account validator's answer for a single account.
type AccountValidation struct {
	AccountNumber    string          `json:"account_number"`
	Valid            bool            `json:"valid"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Message          string          `json:"message"`
}

// BalanceCheck is the result of checking an account against a required amount.
type BalanceCheck struct {
	AccountNumber     string          `json:"account_number"`
	Valid             bool            `json:"valid"`
	SufficientBalance bool            `json:"sufficient_balance"`
	AvailableBalance  decimal.Decimal `json:"available_balance"`
	Message           string          `json:"message"`
}

// FraudCheckRequest carries the transfer details the fraud screener sees.
type FraudCheckRequest struct {
	TransactionID string          `json:"transaction_id"`
	FromAccount   string          `json:"from_account"`
	ToAccount     string          `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// FraudCheckResult is the screener's verdict. RiskScore is in [0.0, 1.0].
type FraudCheckResult struct {
	TransactionID string  `json:"transaction_id"`
	Fraudulent    bool    `json:"fraudulent"`
	Reason        string  `json:"reason"`
	RiskScore     float64 `json:"risk_score"`
}
