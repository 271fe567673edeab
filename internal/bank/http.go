// Copyright (c) 2026 Veribank. All rights reserved.
// Author: platform@veribank.io

package bank

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/veribank/veribank/internal/platform/request"
	"github.com/veribank/veribank/internal/platform/respond"
	"github.com/veribank/veribank/internal/platform/validate"
)

// defaultHistoryLimit bounds the movement list when the client does not ask
// for a specific page size.
const defaultHistoryLimit = 50

// Handler implements the HTTP layer for the ledger.
type Handler struct {
	bankService *Service
}

// NewHandler constructs a new bank [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{bankService: service}
}

// Routes returns a [chi.Router] configured with the ledger endpoints.
//
// All routes require an authenticated caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listAccounts)
	router.Post("/", handler.openAccount)
	router.Get("/{id}/entries", handler.history)
	router.Post("/{id}/deposit", handler.deposit)
	router.Post("/{id}/withdraw", handler.withdraw)

	return router
}

/*
GET /api/v1/accounts.

Description: Lists every ledger account the authenticated user owns.

Response:
  - 200: []Account
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listAccounts(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	accounts, err := handler.bankService.ListAccounts(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, accounts)
}

// openAccountRequest defines the expected JSON payload for account creation.
type openAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

/*
POST /api/v1/accounts.

Description: Opens a new ledger account with a zero balance.

Request:
  - body: openAccountRequest

Response:
  - 201: Account: The created account
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) openAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input openAccountRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).MaxLen("name", input.Name, 100).
		Required("currency", input.Currency).OneOf("currency", input.Currency, "USD", "EUR", "GBP", "VND")

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.bankService.OpenAccount(request.Context(), userID, input.Name, input.Currency)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

// movementRequest defines the expected JSON payload for deposits and withdrawals.
type movementRequest struct {
	Amount int64 `json:"amount"`
}

/*
POST /api/v1/accounts/{id}/deposit.

Description: Credits the account with the given amount in minor units.

Request:
  - id: string (Account UUID)
  - body: movementRequest

Response:
  - 200: Account: Post-movement balance
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Caller does not own the account
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) deposit(writer http.ResponseWriter, request *http.Request) {
	handler.movement(writer, request, handler.bankService.Deposit)
}

/*
POST /api/v1/accounts/{id}/withdraw.

Description: Debits the account with the given amount in minor units.

Response:
  - 200: Account: Post-movement balance
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Caller does not own the account
  - 404: ErrNotFound: Unknown account
  - 422: ErrUnprocessable: Insufficient funds
*/
func (handler *Handler) withdraw(writer http.ResponseWriter, request *http.Request) {
	handler.movement(writer, request, handler.bankService.Withdraw)
}

/*
GET /api/v1/accounts/{id}/entries.

Description: Lists the account's recent movements, newest first.

Request:
  - id: string (Account UUID)
  - limit: int (Optional query parameter, 1-200)

Response:
  - 200: []Entry
  - 403: ErrForbidden: Caller does not own the account
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	accountID := requestutil.Param(request, "id")

	limit := defaultHistoryLimit
	if raw := request.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			respond.Error(writer, request, validate.RequiredError("limit", "Must be an integer between 1 and 200"))
			return
		}
		limit = parsed
	}

	entries, err := handler.bankService.History(request.Context(), userID, accountID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

// movement decodes and validates one deposit/withdraw request and delegates
// to the given service operation.
func (handler *Handler) movement(
	writer http.ResponseWriter,
	request *http.Request,
	apply func(ctx context.Context, userID, accountID string, amount int64) (*Account, error),
) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	accountID := requestutil.Param(request, "id")

	var input movementRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID("id", accountID).Positive("amount", input.Amount)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := apply(request.Context(), userID, accountID, input.Amount)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}
