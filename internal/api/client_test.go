package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rentiva/walletsync/internal/wallet"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "secret-token", 2*time.Second, nil)
}

func TestWalletBalancePassesAuthAndReturnsRawPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment/wallet/balance" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"metadata":{"balance":{"available":120000}}}`))
	})

	payload, err := client.WalletBalance(context.Background())
	if err != nil {
		t.Fatalf("wallet balance: %v", err)
	}

	amount, err := wallet.ExtractBalance(payload)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if amount != 120_000 {
		t.Fatalf("expected 120000, got %d", amount)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"wallet service under maintenance"}`))
	})

	_, err := client.WalletBalance(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var be *wallet.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %T", err)
	}
	if be.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", be.Status)
	}
	if be.Message != "wallet service under maintenance" {
		t.Fatalf("unexpected message %q", be.Message)
	}
}

func TestServerErrorWithoutBodyFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.WalletBalance(context.Background())
	var be *wallet.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Error() != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("unexpected message %q", be.Error())
	}
}

func TestCreateTopupDecodesSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payment/topup" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"transaction":{"id":"tx-77"},"checkoutUrl":"https://pay.example/s/77"}}`))
	})

	session, err := client.CreateTopup(context.Background(), 50_000)
	if err != nil {
		t.Fatalf("create topup: %v", err)
	}
	if session.TransactionID != "tx-77" {
		t.Fatalf("unexpected transaction id %q", session.TransactionID)
	}
	if session.CheckoutURL != "https://pay.example/s/77" {
		t.Fatalf("unexpected checkout url %q", session.CheckoutURL)
	}
}

func TestCreateTopupToleratesLowInformationResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})

	session, err := client.CreateTopup(context.Background(), 10_000)
	if err != nil {
		t.Fatalf("create topup: %v", err)
	}
	if session.TransactionID != "" || session.CheckoutURL != "" {
		t.Fatalf("expected empty session, got %+v", session)
	}
}

func TestTransactionsSendsFiltersAndDecodesPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "20" || q.Get("type") != "deposit" || q.Get("status") != "success" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"metadata":{"transactions":[{"id":"t1","amount":5000,"type":"deposit","status":"success","createdAt":"2026-08-01T10:00:00Z","description":"Top-up"}],"pagination":{"currentPage":2,"totalPages":4,"totalItems":61,"hasNext":true,"hasPrev":true}}}`))
	})

	page, err := client.Transactions(context.Background(), wallet.ListQuery{
		Page:   2,
		Limit:  20,
		Type:   wallet.TypeDeposit,
		Status: wallet.StatusSuccess,
	})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(page.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(page.Transactions))
	}
	tx := page.Transactions[0]
	if tx.ID != "t1" || tx.Amount != 5_000 || tx.Status != wallet.StatusSuccess {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if page.Pagination.TotalItems != 61 || !page.Pagination.HasNext {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}
}

func TestTransportFailureIsWrapped(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", "", 200*time.Millisecond, nil)

	_, err := client.WalletBalance(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	var be *wallet.BackendError
	if errors.As(err, &be) {
		t.Fatal("transport failures must not look like server-reported failures")
	}
}
