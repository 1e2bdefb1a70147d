package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pradipta/bankstore-go/internal/domain"
	"github.com/pradipta/bankstore-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Accounts
// ============================================================

type createAccountRequest struct {
	ID            int32        `json:"id"`
	OwnerName     string       `json:"owner_name"`
	AccountNumber string       `json:"account_number"`
	Balance       domain.Money `json:"balance"`
}

func createAccountHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts")
		defer span.End()

		var req createAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.AccountNumber == "" {
			writeError(w, http.StatusBadRequest, "account_number is required")
			return
		}
		if req.Balance < 0 {
			writeError(w, http.StatusBadRequest, "balance must not be negative")
			return
		}

		acct := domain.Account{
			ID:            req.ID,
			OwnerName:     req.OwnerName,
			AccountNumber: req.AccountNumber,
			Balance:       req.Balance,
		}
		if !bankSvc.AddCustomer(ctx, acct) {
			writeError(w, http.StatusConflict, "account number already exists")
			return
		}
		created, _ := bankSvc.FindAccount(ctx, req.AccountNumber)
		writeJSON(w, http.StatusCreated, created)
	}
}

func getAccountHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountNumber}")
		defer span.End()

		number := chi.URLParam(r, "accountNumber")
		acct, ok := bankSvc.FindAccount(ctx, number)
		if !ok {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeJSON(w, http.StatusOK, acct)
	}
}

// ============================================================
// Transfers
// ============================================================

type transferRequest struct {
	FromAccount string       `json:"from_account"`
	ToAccount   string       `json:"to_account"`
	Amount      domain.Money `json:"amount"`
	Description string       `json:"description"`
}

type transferResponse struct {
	OperationID string          `json:"operation_id"`
	Transfer    domain.Transfer `json:"transfer"`
}

func transferHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transfers")
		defer span.End()

		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}

		opID := uuid.NewString()
		t, ok := bankSvc.Transfer(ctx, req.FromAccount, req.ToAccount, req.Amount, req.Description)
		if !ok {
			logger.Warn("transfer not processed",
				zap.String("operation_id", opID),
				zap.String("from", req.FromAccount),
				zap.String("to", req.ToAccount),
			)
			writeError(w, http.StatusUnprocessableEntity, "transfer not processed")
			return
		}
		writeJSON(w, http.StatusCreated, transferResponse{OperationID: opID, Transfer: t})
	}
}

func recentTransfersHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transfers")
		defer span.End()

		days := parseDays(r, 7)
		writeJSON(w, http.StatusOK, bankSvc.RecentTransfers(ctx, days))
	}
}

// ============================================================
// Bank analytics
// ============================================================

func dormantAccountsHandler(bankSvc *service.BankService, defaultThreshold int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bank/dormant")
		defer span.End()

		days := parseDays(r, defaultThreshold)
		writeJSON(w, http.StatusOK, bankSvc.DormantAccounts(ctx, days))
	}
}

func mostActiveAccountsHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bank/active")
		defer span.End()

		n := parseLimit(r, 5)
		writeJSON(w, http.StatusOK, bankSvc.MostActiveAccounts(ctx, n))
	}
}

func bankReportHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bank/report")
		defer span.End()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(bankSvc.Report(ctx)))
	}
}
