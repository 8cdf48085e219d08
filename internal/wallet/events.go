package wallet

import (
	"encoding/json"
	"fmt"
)

// Push channel names. The payload shapes are the contract; the names are
// carried from the platform's realtime gateway.
const (
	ChannelWalletUpdated      = "wallet-updated"
	ChannelTransactionUpdated = "wallet-transaction-updated"
	ChannelPaymentStatus      = "wallet-payment-status"
	ChannelMaintenance        = "wallet-maintenance"
)

// Channels lists every push channel the store subscribes to.
func Channels() []string {
	return []string{
		ChannelWalletUpdated,
		ChannelTransactionUpdated,
		ChannelPaymentStatus,
		ChannelMaintenance,
	}
}

// Event is a decoded push-channel message.
type Event interface {
	kind() string
}

// BalanceUpdated overwrites the balance with an authoritative push value.
type BalanceUpdated struct {
	NewBalance int64
}

// TransactionUpdated merges fields into an existing transaction by ID.
type TransactionUpdated struct {
	Patch TransactionPatch
}

// PaymentStatus signals a payment moved state server-side. Only its
// presence matters: the store refetches the balance instead of trusting
// any amount carried by the event, since these can arrive before the
// ledger write commits.
type PaymentStatus struct {
	Payment map[string]any
}

// Maintenance is a pure notification and never mutates wallet state.
type Maintenance struct {
	Message string
}

func (BalanceUpdated) kind() string     { return "balance_updated" }
func (TransactionUpdated) kind() string { return "transaction_updated" }
func (PaymentStatus) kind() string      { return "payment_status" }
func (Maintenance) kind() string        { return "maintenance" }

// DecodeEvent parses one raw pub/sub message into an Event.
func DecodeEvent(channel string, payload []byte) (Event, error) {
	switch channel {
	case ChannelWalletUpdated:
		var env struct {
			Type        string            `json:"type"`
			NewBalance  *float64          `json:"newBalance"`
			Transaction *TransactionPatch `json:"transaction"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", channel, err)
		}
		switch env.Type {
		case "balance_updated":
			if env.NewBalance == nil {
				return nil, fmt.Errorf("%s: balance_updated without newBalance", channel)
			}
			if *env.NewBalance < 0 {
				return nil, fmt.Errorf("%s: negative newBalance %v", channel, *env.NewBalance)
			}
			return BalanceUpdated{NewBalance: int64(*env.NewBalance)}, nil
		case "transaction_updated":
			if env.Transaction == nil {
				return nil, fmt.Errorf("%s: transaction_updated without transaction", channel)
			}
			return TransactionUpdated{Patch: *env.Transaction}, nil
		default:
			return nil, fmt.Errorf("%s: unknown event type %q", channel, env.Type)
		}
	case ChannelTransactionUpdated:
		var env struct {
			Transaction *TransactionPatch `json:"transaction"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", channel, err)
		}
		if env.Transaction == nil {
			return nil, fmt.Errorf("%s: missing transaction", channel)
		}
		return TransactionUpdated{Patch: *env.Transaction}, nil
	case ChannelPaymentStatus:
		var env struct {
			Payment map[string]any `json:"payment"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", channel, err)
		}
		return PaymentStatus{Payment: env.Payment}, nil
	case ChannelMaintenance:
		var env struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", channel, err)
		}
		return Maintenance{Message: env.Message}, nil
	default:
		return nil, fmt.Errorf("unknown push channel %q", channel)
	}
}
