package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pradipta/bankstore-go/internal/domain"
	"github.com/pradipta/bankstore-go/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Items
// ============================================================

type createItemRequest struct {
	ID    int32        `json:"id"`
	Name  string       `json:"name"`
	Price domain.Money `json:"price"`
	Stock int32        `json:"stock"`
}

func createItemHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/items")
		defer span.End()

		var req createItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Price < 0 || req.Stock < 0 {
			writeError(w, http.StatusBadRequest, "price and stock must not be negative")
			return
		}

		item := domain.Item{ID: req.ID, Name: req.Name, Price: req.Price, Stock: req.Stock}
		if !storeSvc.AddItem(ctx, item) {
			writeError(w, http.StatusConflict, "item id already exists")
			return
		}
		created, _ := storeSvc.FindItem(ctx, req.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func getItemHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/items/{itemId}")
		defer span.End()

		id, ok := urlInt32(r, "itemId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		item, found := storeSvc.FindItem(ctx, id)
		if !found {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

type restockRequest struct {
	Qty int32 `json:"qty"`
}

func restockItemHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/items/{itemId}/restock")
		defer span.End()

		id, ok := urlInt32(r, "itemId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		var req restockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Qty <= 0 {
			writeError(w, http.StatusBadRequest, "qty must be positive")
			return
		}
		if !storeSvc.Restock(ctx, id, req.Qty) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		item, _ := storeSvc.FindItem(ctx, id)
		writeJSON(w, http.StatusOK, item)
	}
}

type priceRequest struct {
	Price domain.Money `json:"price"`
}

func setPriceHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/items/{itemId}/price")
		defer span.End()

		id, ok := urlInt32(r, "itemId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		var req priceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price < 0 {
			writeError(w, http.StatusBadRequest, "price must not be negative")
			return
		}
		if !storeSvc.SetPrice(ctx, id, req.Price) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		item, _ := storeSvc.FindItem(ctx, id)
		writeJSON(w, http.StatusOK, item)
	}
}

func deleteItemHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/items/{itemId}")
		defer span.End()

		id, ok := urlInt32(r, "itemId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		if !storeSvc.DeleteItem(ctx, id) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "item deleted"})
	}
}

// ============================================================
// Buyers and sellers
// ============================================================

type registerUserRequest struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

func registerBuyerHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/buyers")
		defer span.End()

		var req registerUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !storeSvc.RegisterBuyer(ctx, req.ID, req.Name) {
			writeError(w, http.StatusConflict, "buyer id already exists")
			return
		}
		buyer, _ := storeSvc.FindBuyer(ctx, req.ID)
		writeJSON(w, http.StatusCreated, buyer)
	}
}

func registerSellerHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sellers")
		defer span.End()

		var req registerUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !storeSvc.RegisterSeller(ctx, req.ID, req.Name) {
			writeError(w, http.StatusConflict, "seller id already exists")
			return
		}
		seller, _ := storeSvc.FindSeller(ctx, req.ID)
		writeJSON(w, http.StatusCreated, seller)
	}
}

type linkAccountRequest struct {
	AccountNumber string `json:"account_number"`
}

func linkBuyerAccountHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/buyers/{buyerId}/account")
		defer span.End()

		id, ok := urlInt32(r, "buyerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid buyer id")
			return
		}
		var req linkAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountNumber == "" {
			writeError(w, http.StatusBadRequest, "account_number is required")
			return
		}
		if !storeSvc.LinkBuyerAccount(ctx, id, req.AccountNumber) {
			writeError(w, http.StatusNotFound, "buyer or account not found")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "account linked"})
	}
}

type amountRequest struct {
	Amount domain.Money `json:"amount"`
}

func buyerDepositHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/buyers/{buyerId}/deposit")
		defer span.End()

		id, ok := urlInt32(r, "buyerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid buyer id")
			return
		}
		var req amountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !storeSvc.BuyerDeposit(ctx, id, req.Amount) {
			writeError(w, http.StatusUnprocessableEntity, "deposit not processed")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "deposit processed"})
	}
}

func buyerWithdrawHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/buyers/{buyerId}/withdraw")
		defer span.End()

		id, ok := urlInt32(r, "buyerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid buyer id")
			return
		}
		var req amountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !storeSvc.BuyerWithdraw(ctx, id, req.Amount) {
			writeError(w, http.StatusUnprocessableEntity, "withdrawal not processed")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "withdrawal processed"})
	}
}

type spendingResponse struct {
	BuyerID int32        `json:"buyer_id"`
	Days    int          `json:"days"`
	Total   domain.Money `json:"total"`
}

func buyerSpendingHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buyers/{buyerId}/spending")
		defer span.End()

		id, ok := urlInt32(r, "buyerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid buyer id")
			return
		}
		days := parseDays(r, 30)
		total, found := storeSvc.BuyerTotalSpending(ctx, id, days)
		if !found {
			writeError(w, http.StatusNotFound, "buyer not found")
			return
		}
		writeJSON(w, http.StatusOK, spendingResponse{BuyerID: id, Days: days, Total: total})
	}
}

func buyerCashFlowHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buyers/{buyerId}/cashflow")
		defer span.End()

		id, ok := urlInt32(r, "buyerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid buyer id")
			return
		}
		monthly := r.URL.Query().Get("monthly") == "true"
		flow, found := storeSvc.BuyerCashFlow(ctx, id, monthly)
		if !found {
			writeError(w, http.StatusNotFound, "buyer not found")
			return
		}
		writeJSON(w, http.StatusOK, flow)
	}
}

// ============================================================
// Seller catalog and analytics
// ============================================================

func sellerAddItemHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sellers/{sellerId}/items")
		defer span.End()

		sellerID, ok := urlInt32(r, "sellerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid seller id")
			return
		}
		var req createItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		item := domain.Item{ID: req.ID, Name: req.Name, Price: req.Price, Stock: req.Stock}
		if !storeSvc.SellerAddItem(ctx, sellerID, item) {
			writeError(w, http.StatusConflict, "seller not found or item id already exists")
			return
		}
		writeJSON(w, http.StatusCreated, statusResponse{Message: "item added"})
	}
}

func sellerDeleteItemHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/sellers/{sellerId}/items/{itemId}")
		defer span.End()

		sellerID, ok1 := urlInt32(r, "sellerId")
		itemID, ok2 := urlInt32(r, "itemId")
		if !ok1 || !ok2 {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		if !storeSvc.SellerDeleteItem(ctx, sellerID, itemID) {
			writeError(w, http.StatusNotFound, "seller or item not found")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "item deleted"})
	}
}

func sellerRestockHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sellers/{sellerId}/items/{itemId}/restock")
		defer span.End()

		sellerID, ok1 := urlInt32(r, "sellerId")
		itemID, ok2 := urlInt32(r, "itemId")
		if !ok1 || !ok2 {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		var req restockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Qty <= 0 {
			writeError(w, http.StatusBadRequest, "qty must be positive")
			return
		}
		if !storeSvc.SellerRestockItem(ctx, sellerID, itemID, req.Qty) {
			writeError(w, http.StatusNotFound, "seller or item not found")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "item restocked"})
	}
}

func sellerSetPriceHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/sellers/{sellerId}/items/{itemId}/price")
		defer span.End()

		sellerID, ok1 := urlInt32(r, "sellerId")
		itemID, ok2 := urlInt32(r, "itemId")
		if !ok1 || !ok2 {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		var req priceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price < 0 {
			writeError(w, http.StatusBadRequest, "price must not be negative")
			return
		}
		if !storeSvc.SellerSetItemPrice(ctx, sellerID, itemID, req.Price) {
			writeError(w, http.StatusNotFound, "seller or item not found")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "price updated"})
	}
}

type monthlySalesResponse struct {
	SellerID int32 `json:"seller_id"`
	ItemID   int32 `json:"item_id"`
	Sales    int   `json:"sales"`
}

func sellerMonthlySalesHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sellers/{sellerId}/items/{itemId}/monthly-sales")
		defer span.End()

		sellerID, ok1 := urlInt32(r, "sellerId")
		itemID, ok2 := urlInt32(r, "itemId")
		if !ok1 || !ok2 {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		sales, found := storeSvc.SellerMonthlyItemSales(ctx, sellerID, itemID)
		if !found {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		writeJSON(w, http.StatusOK, monthlySalesResponse{SellerID: sellerID, ItemID: itemID, Sales: sales})
	}
}

func sellerPopularItemsHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sellers/{sellerId}/popular")
		defer span.End()

		sellerID, ok := urlInt32(r, "sellerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid seller id")
			return
		}
		items, found := storeSvc.SellerMonthlyPopularItems(ctx, sellerID)
		if !found {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func sellerLoyalCustomersHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sellers/{sellerId}/loyal")
		defer span.End()

		sellerID, ok := urlInt32(r, "sellerId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid seller id")
			return
		}
		ids, found := storeSvc.SellerLoyalCustomers(ctx, sellerID)
		if !found {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		writeJSON(w, http.StatusOK, ids)
	}
}

// ============================================================
// Purchases
// ============================================================

type processPurchaseRequest struct {
	ID       int32        `json:"id"`
	BuyerID  int32        `json:"buyer_id"`
	SellerID int32        `json:"seller_id"`
	ItemID   int32        `json:"item_id"`
	Amount   domain.Money `json:"amount"`
}

type purchaseResponse struct {
	OperationID string          `json:"operation_id"`
	Purchase    domain.Purchase `json:"purchase"`
}

func processPurchaseHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/purchases")
		defer span.End()

		var req processPurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		opID := uuid.NewString()
		p := domain.Purchase{
			ID:       req.ID,
			BuyerID:  req.BuyerID,
			SellerID: req.SellerID,
			ItemID:   req.ItemID,
			Amount:   req.Amount,
			Status:   domain.StatusPending,
		}
		recorded, ok := storeSvc.ProcessPurchase(ctx, p)
		if !ok {
			logger.Warn("purchase not processed",
				zap.String("operation_id", opID),
				zap.Int32("item_id", req.ItemID),
			)
			writeError(w, http.StatusUnprocessableEntity, "purchase not processed")
			return
		}
		writeJSON(w, http.StatusCreated, purchaseResponse{OperationID: opID, Purchase: recorded})
	}
}

type advancePurchaseRequest struct {
	Status domain.PurchaseStatus `json:"status"`
}

func advancePurchaseHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/purchases/{purchaseId}/advance")
		defer span.End()

		id, ok := urlInt32(r, "purchaseId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid purchase id")
			return
		}
		var req advancePurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := storeSvc.AdvancePurchase(ctx, id, req.Status); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "status advanced"})
	}
}

func cancelPurchaseHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/purchases/{purchaseId}/cancel")
		defer span.End()

		id, ok := urlInt32(r, "purchaseId")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid purchase id")
			return
		}
		if err := storeSvc.CancelPurchase(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: "purchase canceled"})
	}
}

func purchasesInWindowHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/purchases")
		defer span.End()

		days := parseDays(r, 7)
		writeJSON(w, http.StatusOK, storeSvc.TransactionsInWindow(ctx, days))
	}
}

func pendingPurchasesHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/purchases/pending")
		defer span.End()

		writeJSON(w, http.StatusOK, storeSvc.PendingPurchases(ctx))
	}
}

// ============================================================
// Store analytics
// ============================================================

func mostSoldItemsHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/store/most-sold")
		defer span.End()

		n := parseLimit(r, 5)
		writeJSON(w, http.StatusOK, storeSvc.MostSoldItems(ctx, n))
	}
}

type activeTodayResponse struct {
	Buyer  *domain.Buyer  `json:"buyer,omitempty"`
	Seller *domain.Seller `json:"seller,omitempty"`
}

func mostActiveUsersTodayHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/store/active-today")
		defer span.End()

		buyer, seller := storeSvc.MostActiveUsersToday(ctx)
		writeJSON(w, http.StatusOK, activeTodayResponse{Buyer: buyer, Seller: seller})
	}
}

func storeReportHandler(storeSvc *service.StoreService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/store/report")
		defer span.End()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(storeSvc.Report(ctx)))
	}
}
