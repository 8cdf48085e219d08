package wallet

import (
	"context"
	"net/http"
	"time"
)

// TransactionType classifies ledger entries as shown to the user.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypePayment    TransactionType = "payment"
	TypeRefund     TransactionType = "refund"
	TypeOther      TransactionType = "other"
)

// TransactionStatus tracks an entry through the payment pipeline.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusSuccess    TransactionStatus = "success"
	StatusFailed     TransactionStatus = "failed"
)

// Transaction is one wallet ledger entry. ID is server-assigned and opaque;
// it may be empty on entries synthesized locally for a just-opened payment
// session. Amounts are VND, no fractional subunits.
type Transaction struct {
	ID          string            `json:"id"`
	Amount      int64             `json:"amount"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	Description string            `json:"description"`
}

// TransactionPatch carries a partial transaction update from a push event.
// Nil fields were absent from the payload and must not overwrite.
type TransactionPatch struct {
	ID          string             `json:"id"`
	Amount      *int64             `json:"amount"`
	Type        *TransactionType   `json:"type"`
	Status      *TransactionStatus `json:"status"`
	CreatedAt   *time.Time         `json:"createdAt"`
	Description *string            `json:"description"`
}

// Pagination mirrors the backend's paging metadata.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// State is the wallet snapshot exposed to consumers. Transactions are
// most-recent-first. LastError holds the last failed operation's message,
// empty once a later operation succeeds.
type State struct {
	Balance      int64         `json:"balance"`
	Available    int64         `json:"available"`
	Frozen       int64         `json:"frozen"`
	Transactions []Transaction `json:"transactions"`
	Loading      bool          `json:"loading"`
	LastError    string        `json:"error"`
}

// TopupSession is the outcome of opening a payment session with the
// provider. Both fields may be empty in well-formed low-information
// responses.
type TopupSession struct {
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url"`
}

// ListQuery filters a transaction page fetch. Zero values are omitted from
// the request.
type ListQuery struct {
	Page   int
	Limit  int
	Type   TransactionType
	Status TransactionStatus
}

// TransactionPage is one page of the remote transaction history.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

// Backend is the remote payment API the store synchronizes against. The
// balance payload is returned raw because its shape is not a stable
// contract; see ExtractBalance.
type Backend interface {
	WalletBalance(ctx context.Context) (map[string]any, error)
	CreateTopup(ctx context.Context, amount int64) (TopupSession, error)
	Transactions(ctx context.Context, query ListQuery) (TransactionPage, error)
}

// BackendError is a server-reported failure (non-2xx with an optional
// message body). Transport-level failures stay plain wrapped errors.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return "payment api request failed"
}
