package handler

import (
	"net/http"

	"github.com/pradipta/bankstore-go/internal/domain"
	"github.com/pradipta/bankstore-go/internal/infra/observability"
	"github.com/pradipta/bankstore-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Session flag and operational endpoints
// ============================================================

type balanceResponse struct {
	BuyerID int32        `json:"buyer_id"`
	Balance domain.Money `json:"balance"`
}

func buyerBalanceHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buyers/{buyerId}/balance")
		defer span.End()

		buyerID, ok := urlInt32(r, "buyerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid buyer id")
			return
		}
		balance, ok := storeSvc.BuyerBalance(ctx, buyerID)
		if !ok {
			writeError(w, http.StatusNotFound, "buyer or linked account not found")
			return
		}
		writeJSON(w, http.StatusOK, balanceResponse{BuyerID: buyerID, Balance: balance})
	}
}

func userKindFromURL(r *http.Request) (domain.UserKind, bool) {
	switch chi.URLParam(r, "kind") {
	case "buyers":
		return domain.KindBuyer, true
	case "sellers":
		return domain.KindSeller, true
	}
	return "", false
}

type userInfoResponse struct {
	ID       int32           `json:"id"`
	Name     string          `json:"name"`
	Kind     domain.UserKind `json:"kind"`
	LoggedIn bool            `json:"logged_in"`
	Info     string          `json:"info"`
}

func userInfoHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/{kind}/{userId}")
		defer span.End()

		kind, ok := userKindFromURL(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "kind must be buyers or sellers")
			return
		}
		userID, ok := urlInt32(r, "userId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		u, found := storeSvc.FindUser(ctx, kind, userID)
		if !found {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, userInfoResponse{
			ID:       u.UserID(),
			Name:     u.UserName(),
			Kind:     u.Kind(),
			LoggedIn: u.LoggedIn(),
			Info:     u.Info(),
		})
	}
}

func loginHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{kind}/{userId}/login")
		defer span.End()

		kind, ok := userKindFromURL(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "kind must be buyers or sellers")
			return
		}
		userID, ok := urlInt32(r, "userId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		if !storeSvc.LoginUser(ctx, kind, userID) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "logged in"})
	}
}

func logoutHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users/{kind}/{userId}/logout")
		defer span.End()

		kind, ok := userKindFromURL(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "kind must be buyers or sellers")
			return
		}
		userID, ok := urlInt32(r, "userId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		if !storeSvc.LogoutUser(ctx, kind, userID) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "logged out"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/ledger")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetLedgerSnapshot())
	}
}
