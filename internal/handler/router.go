package handler

import (
	"net/http"

	"github.com/pradipta/bankstore-go/internal/infra/observability"
	"github.com/pradipta/bankstore-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Options tunes router defaults that come from configuration.
type Options struct {
	// DormantThresholdDays is the default dormancy window when the
	// request does not specify one.
	DormantThresholdDays int
}

// NewRouter creates the HTTP router for the ledger engine. Handlers
// only decode requests, call the services and encode the results; all
// business rules live in the service layer.
func NewRouter(bankSvc *service.BankService, storeSvc *service.StoreService, metrics *observability.Metrics, logger *zap.Logger, opts Options) http.Handler {
	if opts.DormantThresholdDays <= 0 {
		opts.DormantThresholdDays = 30
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Accounts & transfers
		r.Post("/accounts", createAccountHandler(bankSvc, logger))
		r.Get("/accounts/{accountNumber}", getAccountHandler(bankSvc, logger))
		r.Post("/transfers", transferHandler(bankSvc, logger))
		r.Get("/transfers", recentTransfersHandler(bankSvc, logger))

		// Bank analytics
		r.Get("/bank/dormant", dormantAccountsHandler(bankSvc, opts.DormantThresholdDays, logger))
		r.Get("/bank/active", mostActiveAccountsHandler(bankSvc, logger))
		r.Get("/bank/report", bankReportHandler(bankSvc, logger))

		// Item catalog
		r.Post("/items", createItemHandler(storeSvc, logger))
		r.Get("/items/{itemId}", getItemHandler(storeSvc, logger))
		r.Post("/items/{itemId}/restock", restockItemHandler(storeSvc, logger))
		r.Put("/items/{itemId}/price", setPriceHandler(storeSvc, logger))
		r.Delete("/items/{itemId}", deleteItemHandler(storeSvc, logger))

		// Buyers
		r.Post("/buyers", registerBuyerHandler(storeSvc, logger))
		r.Post("/buyers/{buyerId}/account", linkBuyerAccountHandler(storeSvc, logger))
		r.Post("/buyers/{buyerId}/deposit", buyerDepositHandler(storeSvc, logger))
		r.Post("/buyers/{buyerId}/withdraw", buyerWithdrawHandler(storeSvc, logger))
		r.Get("/buyers/{buyerId}/balance", buyerBalanceHandler(storeSvc, logger))
		r.Get("/buyers/{buyerId}/spending", buyerSpendingHandler(storeSvc, logger))
		r.Get("/buyers/{buyerId}/cashflow", buyerCashFlowHandler(storeSvc, logger))

		// Sellers
		r.Post("/sellers", registerSellerHandler(storeSvc, logger))
		r.Post("/sellers/{sellerId}/items", sellerAddItemHandler(storeSvc, logger))
		r.Delete("/sellers/{sellerId}/items/{itemId}", sellerDeleteItemHandler(storeSvc, logger))
		r.Post("/sellers/{sellerId}/items/{itemId}/restock", sellerRestockHandler(storeSvc, logger))
		r.Put("/sellers/{sellerId}/items/{itemId}/price", sellerSetPriceHandler(storeSvc, logger))
		r.Get("/sellers/{sellerId}/items/{itemId}/monthly-sales", sellerMonthlySalesHandler(storeSvc, logger))
		r.Get("/sellers/{sellerId}/popular", sellerPopularItemsHandler(storeSvc, logger))
		r.Get("/sellers/{sellerId}/loyal", sellerLoyalCustomersHandler(storeSvc, logger))

		// Purchases
		r.Post("/purchases", processPurchaseHandler(storeSvc, logger))
		r.Post("/purchases/{purchaseId}/advance", advancePurchaseHandler(storeSvc, logger))
		r.Post("/purchases/{purchaseId}/cancel", cancelPurchaseHandler(storeSvc, logger))
		r.Get("/purchases", purchasesInWindowHandler(storeSvc, logger))
		r.Get("/purchases/pending", pendingPurchasesHandler(storeSvc, logger))

		// Store analytics
		r.Get("/store/most-sold", mostSoldItemsHandler(storeSvc, logger))
		r.Get("/store/active-today", mostActiveUsersTodayHandler(storeSvc, logger))
		r.Get("/store/report", storeReportHandler(storeSvc, logger))

		// Shared user surface and login flag
		r.Get("/users/{kind}/{userId}", userInfoHandler(storeSvc, logger))
		r.Post("/users/{kind}/{userId}/login", loginHandler(storeSvc, logger))
		r.Post("/users/{kind}/{userId}/logout", logoutHandler(storeSvc, logger))

		// Metrics snapshot
		r.Get("/metrics/ledger", ledgerMetricsHandler(metrics, logger))
	})

	return r
}
