package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
)

// NopPublisher logs events instead of publishing them. Used in tests and in
// deployments without a broker.
type NopPublisher struct{}

// Publish logs the transaction at debug level.
func (NopPublisher) Publish(ctx context.Context, transaction domain.Transaction) error {
	zerolog.Ctx(ctx).Debug().
		Int64("transaction_id", transaction.ID).
		Str("account_id", transaction.AccountID).
		Msg("transaction event dropped: no broker configured")

	return nil
}
