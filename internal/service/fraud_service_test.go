package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/service"
)

type fixedScorer float64

func (s fixedScorer) Score(decimal.Decimal) float64 { return float64(s) }

func fraudRequest(from, to, amount string) *models.FraudCheckRequest {
	return &models.FraudCheckRequest{
		TransactionID: "tx-1",
		FromAccount:   from,
		ToAccount:     to,
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
	}
}

func TestCheckFraudSameAccount(t *testing.T) {
	svc := service.NewFraudService(fixedScorer(0.0))

	result, err := svc.CheckFraud(context.Background(), fraudRequest("ACC001", "ACC001", "10.00"))
	if err != nil {
		t.Fatalf("CheckFraud: %v", err)
	}
	if !result.Fraudulent {
		t.Fatal("same-account transfer must be fraudulent")
	}
	if !strings.Contains(strings.ToLower(result.Reason), "same account") {
		t.Errorf("expected same-account reason, got %q", result.Reason)
	}
}

func TestCheckFraudSuspiciousAmountHighScore(t *testing.T) {
	svc := service.NewFraudService(fixedScorer(0.95))

	result, err := svc.CheckFraud(context.Background(), fraudRequest("ACC001", "ACC002", "60000.00"))
	if err != nil {
		t.Fatalf("CheckFraud: %v", err)
	}
	if !result.Fraudulent {
		t.Fatal("suspicious amount with high score must be fraudulent")
	}
	if !strings.Contains(result.Reason, "suspicious threshold") {
		t.Errorf("expected suspicious-threshold reason, got %q", result.Reason)
	}
}

func TestCheckFraudHighScoreAlone(t *testing.T) {
	svc := service.NewFraudService(fixedScorer(0.90))

	result, err := svc.CheckFraud(context.Background(), fraudRequest("ACC001", "ACC002", "100.00"))
	if err != nil {
		t.Fatalf("CheckFraud: %v", err)
	}
	if !result.Fraudulent {
		t.Fatal("score above high-risk threshold must be fraudulent")
	}
	if !strings.Contains(result.Reason, "High risk score") {
		t.Errorf("expected high-risk-score reason, got %q", result.Reason)
	}
}

func TestCheckFraudLegitimate(t *testing.T) {
	svc := service.NewFraudService(fixedScorer(0.20))

	result, err := svc.CheckFraud(context.Background(), fraudRequest("ACC001", "ACC002", "100.00"))
	if err != nil {
		t.Fatalf("CheckFraud: %v", err)
	}
	if result.Fraudulent {
		t.Fatalf("low-score transfer must pass, reason: %q", result.Reason)
	}
	if result.RiskScore != 0.20 {
		t.Errorf("expected scorer's score surfaced, got %f", result.RiskScore)
	}
}

func TestDeterministicScorerBands(t *testing.T) {
	scorer := service.DeterministicScorer{}

	cases := []struct {
		amount string
		want   float64
	}{
		{"100.00", 0.15},
		{"9999.99", 0.15},
		{"10000.00", 0.50},
		{"49999.99", 0.50},
		{"50000.00", 0.90},
		{"250000.00", 0.90},
	}
	for _, tc := range cases {
		if got := scorer.Score(decimal.RequireFromString(tc.amount)); got != tc.want {
			t.Errorf("Score(%s) = %f, want %f", tc.amount, got, tc.want)
		}
	}
}

func TestRandomScorerStaysInBands(t *testing.T) {
	scorer := service.NewRandomScorer(42)

	for i := 0; i < 100; i++ {
		if got := scorer.Score(decimal.NewFromInt(100)); got < 0 || got >= 0.30 {
			t.Fatalf("low-band score %f out of range", got)
		}
		if got := scorer.Score(decimal.NewFromInt(20000)); got < 0.40 || got >= 0.70 {
			t.Fatalf("mid-band score %f out of range", got)
		}
		if got := scorer.Score(decimal.NewFromInt(80000)); got < 0.85 || got > 1.0 {
			t.Fatalf("high-band score %f out of range", got)
		}
	}
}
