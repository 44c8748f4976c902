package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paycore/payment-processor/internal/models"
	"github.com/paycore/payment-processor/internal/telemetry"
)

var (
	highAmountThreshold       = decimal.NewFromInt(10000)
	suspiciousAmountThreshold = decimal.NewFromInt(50000)
)

// highRiskScoreThreshold is the score above which a transfer is considered
// fraudulent regardless of amount.
const highRiskScoreThreshold = 0.80

// RiskScorer produces a risk score in [0.0, 1.0] for a transfer amount.
// The scorer is the only place randomness may live; the verdict logic in
// FraudService is deterministic given the score.
type RiskScorer interface {
	Score(amount decimal.Decimal) float64
}

// RandomScorer assigns scores from amount-banded ranges.
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomScorer(seed int64) *RandomScorer {
	return &RandomScorer{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomScorer) Score(amount decimal.Decimal) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case amount.GreaterThanOrEqual(suspiciousAmountThreshold):
		return 0.85 + s.rng.Float64()*0.15
	case amount.GreaterThanOrEqual(highAmountThreshold):
		return 0.40 + s.rng.Float64()*0.30
	default:
		return s.rng.Float64() * 0.30
	}
}

// DeterministicScorer returns fixed scores per amount band so tests and
// repeatable environments get stable verdicts.
type DeterministicScorer struct{}

func (DeterministicScorer) Score(amount decimal.Decimal) float64 {
	switch {
	case amount.GreaterThanOrEqual(suspiciousAmountThreshold):
		return 0.90
	case amount.GreaterThanOrEqual(highAmountThreshold):
		return 0.50
	default:
		return 0.15
	}
}

// FraudService screens proposed transfers. It is a stand-in for a real
// fraud-detection system and stays behind the FraudChecker interface.
type FraudService struct {
	scorer RiskScorer
}

func NewFraudService(scorer RiskScorer) *FraudService {
	return &FraudService{scorer: scorer}
}

func (s *FraudService) CheckFraud(_ context.Context, req *models.FraudCheckRequest) (*models.FraudCheckResult, error) {
	result := &models.FraudCheckResult{TransactionID: req.TransactionID}
	result.RiskScore = s.scorer.Score(req.Amount)

	// Verdict rules in priority order. Same-account transfers are always
	// fraudulent, before any score is considered.
	switch {
	case req.FromAccount == req.ToAccount:
		result.Fraudulent = true
		result.Reason = "Same account transfer detected"
	case req.Amount.GreaterThanOrEqual(suspiciousAmountThreshold) && result.RiskScore > highRiskScoreThreshold:
		result.Fraudulent = true
		result.Reason = "Transaction amount exceeds suspicious threshold"
	case result.RiskScore > highRiskScoreThreshold:
		result.Fraudulent = true
		result.Reason = fmt.Sprintf("High risk score detected: %.2f", result.RiskScore)
	default:
		result.Reason = "Transaction appears legitimate"
	}

	if result.Fraudulent {
		telemetry.Logger.Warn("Fraud detected",
			zap.String("transaction_id", req.TransactionID),
			zap.String("reason", result.Reason),
			zap.Float64("risk_score", result.RiskScore),
		)
	}
	return result, nil
}
