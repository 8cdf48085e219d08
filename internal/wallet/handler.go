package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// StoreProvider resolves the store for the current session, or nil when no
// session is active. Routes outlive individual sessions, so the handler
// resolves per request instead of capturing a store at wiring time.
type StoreProvider func() *Store

// Handler exposes the wallet store over the local gateway.
type Handler struct {
	store    StoreProvider
	minTopup int64
	maxTopup int64
}

// NewHandler builds the wallet HTTP handler. The top-up bounds are enforced
// here: the store trusts its caller, and the gateway is that caller.
func NewHandler(store StoreProvider, minTopup, maxTopup int64) *Handler {
	return &Handler{store: store, minTopup: minTopup, maxTopup: maxTopup}
}

type topupRequest struct {
	Amount int64 `json:"amount"`
}

type topupResponse struct {
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url"`
}

// Snapshot returns the current wallet state.
func (h *Handler) Snapshot(c *fiber.Ctx) error {
	store, err := h.current()
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(store.Snapshot())
}

// Refresh triggers a balance refetch and returns the settled snapshot.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	store, err := h.current()
	if err != nil {
		return err
	}
	store.FetchBalance(c.UserContext())
	return c.Status(http.StatusOK).JSON(store.Snapshot())
}

// Topup validates bounds and opens a payment session, returning the
// checkout URL the UI redirects to.
func (h *Handler) Topup(c *fiber.Ctx) error {
	store, err := h.current()
	if err != nil {
		return err
	}

	var req topupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Amount < h.minTopup || req.Amount > h.maxTopup {
		return fiber.NewError(http.StatusBadRequest, "amount out of top-up bounds")
	}

	session, err := store.CreateTopup(c.UserContext(), req.Amount)
	if err != nil {
		return backendStatusError(err)
	}
	return c.Status(http.StatusCreated).JSON(topupResponse{
		TransactionID: session.TransactionID,
		CheckoutURL:   session.CheckoutURL,
	})
}

// Transactions proxies a paged history fetch. The caller owns pagination
// state; the store keeps only the most recently fetched page.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	store, err := h.current()
	if err != nil {
		return err
	}

	query := ListQuery{
		Page:   c.QueryInt("page"),
		Limit:  c.QueryInt("limit"),
		Type:   TransactionType(c.Query("type")),
		Status: TransactionStatus(c.Query("status")),
	}

	page, err := store.FetchTransactions(c.UserContext(), query)
	if err != nil {
		return backendStatusError(err)
	}
	return c.Status(http.StatusOK).JSON(page)
}

func (h *Handler) current() (*Store, error) {
	store := h.store()
	if store == nil {
		return nil, fiber.NewError(http.StatusServiceUnavailable, "no active wallet session")
	}
	return store, nil
}

func backendStatusError(err error) error {
	var be *BackendError
	if errors.As(err, &be) && be.Status > 0 {
		return fiber.NewError(be.Status, be.Error())
	}
	return fiber.NewError(http.StatusBadGateway, err.Error())
}
