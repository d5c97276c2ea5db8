// Package events publishes committed ledger activity for downstream
// consumers.
package events

import (
	"context"

	"github.com/business-nexus/nexus/internal/domain"
)

// TopicTransactionCompleted carries one message per committed transaction.
const TopicTransactionCompleted = "transaction_completed"

// Publisher hands committed transactions to an external bus. Delivery is
// best effort; the ledger commit is the source of truth.
type Publisher interface {
	Publish(ctx context.Context, transaction domain.Transaction) error
}
