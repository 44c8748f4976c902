package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/paycore/payment-processor/internal/models"
)

const fraudCheckSubject = "fraud.check"

// RemoteFraudChecker delegates fraud screening to an external service over
// NATS request/reply. It implements the same FraudChecker contract as the
// local FraudService, so the orchestrator cannot tell them apart.
type RemoteFraudChecker struct {
	nc      *nats.Conn
	timeout time.Duration
}

func NewRemoteFraudChecker(nc *nats.Conn, timeout time.Duration) *RemoteFraudChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteFraudChecker{nc: nc, timeout: timeout}
}

func (c *RemoteFraudChecker) CheckFraud(ctx context.Context, req *models.FraudCheckRequest) (*models.FraudCheckResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal fraud check request: %w", err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	msg, err := c.nc.Request(fraudCheckSubject, payload, timeout)
	if err != nil {
		return nil, fmt.Errorf("fraud check request: %w", err)
	}

	var result models.FraudCheckResult
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal fraud check response: %w", err)
	}
	return &result, nil
}
