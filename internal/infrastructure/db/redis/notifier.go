package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// Notifier publishes per-account events over Redis pub/sub so websocket
// gateways can push them to connected clients.
// Channel format: account:<account_id>:events
//
// Publishing is best-effort: failures are logged and swallowed so a push
// problem can never fail a committed ledger mutation. The authoritative
// balance is always readable over the API.
type Notifier struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewNotifier(client *redis.Client, logger zerolog.Logger) *Notifier {
	return &Notifier{client: client, logger: logger}
}

type event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type balancePayload struct {
	AccountID string  `json:"account_id"`
	Balance   float64 `json:"balance"`
}

// BalanceChanged pushes the new balance to the account's channel.
func (n *Notifier) BalanceChanged(ctx context.Context, accountID string, balance float64) {
	n.publish(ctx, accountID, event{
		Type: "balance_changed",
		Data: balancePayload{AccountID: accountID, Balance: balance},
	})
}

// TransactionCreated pushes a new ledger entry to the account's channel.
func (n *Notifier) TransactionCreated(ctx context.Context, tx *domain.Transaction) {
	n.publish(ctx, tx.AccountID, event{
		Type: "transaction_created",
		Data: tx,
	})
}

func (n *Notifier) publish(ctx context.Context, accountID string, ev event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error().Err(err).Str("event", ev.Type).Msg("failed to encode push event")
		return
	}
	if err := n.client.Publish(ctx, n.channel(accountID), payload).Err(); err != nil {
		n.logger.Warn().Err(err).
			Str("event", ev.Type).
			Str("account_id", accountID).
			Msg("failed to publish push event")
	}
}

func (n *Notifier) channel(accountID string) string {
	return fmt.Sprintf("account:%s:events", accountID)
}
