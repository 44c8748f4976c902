package memory

import (
	"context"
	"sync"
	"time"

	"github.com/paycore/payment-processor/internal/models"
)

// AuditRepository is an append-only in-memory audit store.
type AuditRepository struct {
	mu      sync.RWMutex
	records []*models.AuditRecord
	nextID  int64
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{nextID: 1}
}

func (r *AuditRepository) Append(_ context.Context, record *models.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *record
	cp.ID = r.nextID
	r.nextID++
	r.records = append(r.records, &cp)
	record.ID = cp.ID
	return nil
}

func (r *AuditRepository) FindByTransactionID(_ context.Context, transactionID string) ([]*models.AuditRecord, error) {
	return r.filter(func(a *models.AuditRecord) bool {
		return a.TransactionID == transactionID
	}), nil
}

func (r *AuditRepository) FindByAccount(_ context.Context, accountNumber string) ([]*models.AuditRecord, error) {
	return r.filter(func(a *models.AuditRecord) bool {
		return a.FromAccount == accountNumber || a.ToAccount == accountNumber
	}), nil
}

func (r *AuditRepository) FindByFinalStatus(_ context.Context, status models.PaymentStatus) ([]*models.AuditRecord, error) {
	return r.filter(func(a *models.AuditRecord) bool {
		return a.FinalStatus == status
	}), nil
}

func (r *AuditRepository) FindByFraudCheckPassed(_ context.Context, passed bool) ([]*models.AuditRecord, error) {
	return r.filter(func(a *models.AuditRecord) bool {
		return a.FraudCheckPassed != nil && *a.FraudCheckPassed == passed
	}), nil
}

func (r *AuditRepository) FindByTimeRange(_ context.Context, start, end time.Time) ([]*models.AuditRecord, error) {
	return r.filter(func(a *models.AuditRecord) bool {
		return !a.AuditedAt.Before(start) && !a.AuditedAt.After(end)
	}), nil
}

func (r *AuditRepository) FindAll(_ context.Context) ([]*models.AuditRecord, error) {
	return r.filter(func(*models.AuditRecord) bool { return true }), nil
}

func (r *AuditRepository) filter(keep func(*models.AuditRecord) bool) []*models.AuditRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AuditRecord
	for _, a := range r.records {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}
