package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paycore/payment-processor/internal/models"
)

// PaymentRepository is an in-memory payment store for tests and single-node
// runs without Postgres. It mirrors the SQL repository's compare-and-swap
// transition semantics.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*models.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]*models.Payment)}
}

func (r *PaymentRepository) Insert(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.TransactionID]; exists {
		return models.ErrDuplicateTransaction
	}
	cp := *p
	r.payments[p.TransactionID] = &cp
	return nil
}

func (r *PaymentRepository) GetByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[transactionID]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PaymentRepository) TransitionStatus(_ context.Context, transactionID string, from, to models.PaymentStatus, failureReason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[transactionID]
	if !ok || p.Status != from {
		return 0, nil
	}
	if !models.CanTransition(from, to) {
		return 0, fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	p.Status = to
	if failureReason != "" {
		p.FailureReason = failureReason
	}
	p.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (r *PaymentRepository) ListByAccount(_ context.Context, accountNumber string) ([]*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Payment
	for _, p := range r.payments {
		if p.FromAccount == accountNumber || p.ToAccount == accountNumber {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *PaymentRepository) ListByStatus(_ context.Context, status models.PaymentStatus) ([]*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Payment
	for _, p := range r.payments {
		if p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *PaymentRepository) ListAll(_ context.Context) ([]*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
