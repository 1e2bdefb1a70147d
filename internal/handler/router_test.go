package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pradipta/bankstore-go/internal/domain"
	"github.com/pradipta/bankstore-go/internal/handler"
	"github.com/pradipta/bankstore-go/internal/infra/observability"
	"github.com/pradipta/bankstore-go/internal/service"

	"go.uber.org/zap"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	bankSvc := service.NewBankService(1, "Bank Nasional", "", "", metrics, logger)
	storeSvc := service.NewStoreService(bankSvc, metrics, logger)
	return handler.NewRouter(bankSvc, storeSvc, metrics, logger, handler.Options{})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAccountLifecycle(t *testing.T) {
	router := newRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/accounts",
		`{"id":1,"owner_name":"Alice","account_number":"ACC-001","balance":"100.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	// Duplicate account number.
	rec = doJSON(t, router, http.MethodPost, "/v1/accounts",
		`{"id":2,"owner_name":"Mallory","account_number":"ACC-001","balance":"0.00"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/accounts/ACC-001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var acct domain.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &acct); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if acct.OwnerName != "Alice" || acct.Balance != 10000 {
		t.Errorf("account = %+v", acct)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/accounts/ACC-404", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing account: expected 404, got %d", rec.Code)
	}
}

func TestTransferFlow(t *testing.T) {
	router := newRouter(t)
	doJSON(t, router, http.MethodPost, "/v1/accounts",
		`{"id":1,"owner_name":"Alice","account_number":"ACC-001","balance":"100.00"}`)
	doJSON(t, router, http.MethodPost, "/v1/accounts",
		`{"id":2,"owner_name":"Bob","account_number":"ACC-002","balance":"0.00"}`)

	rec := doJSON(t, router, http.MethodPost, "/v1/transfers",
		`{"from_account":"ACC-001","to_account":"ACC-002","amount":"25.00","description":"rent"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		OperationID string          `json:"operation_id"`
		Transfer    domain.Transfer `json:"transfer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OperationID == "" || resp.Transfer.Amount != 2500 {
		t.Errorf("response = %+v", resp)
	}

	// Overdraft rejected without side effects.
	rec = doJSON(t, router, http.MethodPost, "/v1/transfers",
		`{"from_account":"ACC-001","to_account":"ACC-002","amount":"999.00"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("overdraft: expected 422, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/transfers?days=7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var transfers []domain.Transfer
	if err := json.Unmarshal(rec.Body.Bytes(), &transfers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(transfers) != 1 {
		t.Errorf("ledger = %+v; want one transfer", transfers)
	}
}

func TestPurchaseFlow(t *testing.T) {
	router := newRouter(t)
	doJSON(t, router, http.MethodPost, "/v1/items",
		`{"id":1,"name":"Mug","price":"5.00","stock":2}`)
	doJSON(t, router, http.MethodPost, "/v1/buyers", `{"id":100,"name":"Alice"}`)
	doJSON(t, router, http.MethodPost, "/v1/sellers", `{"id":200,"name":"Shop"}`)

	rec := doJSON(t, router, http.MethodPost, "/v1/purchases",
		`{"id":1,"buyer_id":100,"seller_id":200,"item_id":1,"amount":"5.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/purchases/1/advance", `{"status":"PAID"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance to PAID: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	// Pending to fulfillment means PAID.
	rec = doJSON(t, router, http.MethodGet, "/v1/purchases/pending", "")
	var pending []domain.Purchase
	if err := json.Unmarshal(rec.Body.Bytes(), &pending); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != 1 {
		t.Errorf("pending = %+v", pending)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/purchases/1/advance", `{"status":"COMPLETED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance to COMPLETED: expected 200, got %d", rec.Code)
	}

	// Terminal purchases reject further transitions.
	rec = doJSON(t, router, http.MethodPost, "/v1/purchases/1/cancel", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("cancel of COMPLETED: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/purchases/404/advance", `{"status":"PAID"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown purchase: expected 404, got %d", rec.Code)
	}

	// Stock exhausted after one more sale.
	doJSON(t, router, http.MethodPost, "/v1/purchases",
		`{"id":2,"buyer_id":100,"seller_id":200,"item_id":1,"amount":"5.00"}`)
	rec = doJSON(t, router, http.MethodPost, "/v1/purchases",
		`{"id":3,"buyer_id":100,"seller_id":200,"item_id":1,"amount":"5.00"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("out of stock: expected 422, got %d: %s", rec.Code, rec.Body)
	}
}

func TestBuyerMoneyEndpoints(t *testing.T) {
	router := newRouter(t)
	doJSON(t, router, http.MethodPost, "/v1/accounts",
		`{"id":1,"owner_name":"Alice","account_number":"ACC-001","balance":"10.00"}`)
	doJSON(t, router, http.MethodPost, "/v1/buyers", `{"id":100,"name":"Alice"}`)

	rec := doJSON(t, router, http.MethodPost, "/v1/buyers/100/account", `{"account_number":"ACC-001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("link: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/buyers/100/deposit", `{"amount":"5.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/buyers/100/balance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: expected 200, got %d", rec.Code)
	}
	var bal struct {
		Balance domain.Money `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &bal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bal.Balance != 1500 {
		t.Errorf("balance = %d; want 1500", bal.Balance)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/buyers/100/withdraw", `{"amount":"100.00"}`)
	if rec.Code == http.StatusOK {
		t.Error("overdraft withdraw succeeded")
	}
}

func TestUserInfoEndpoint(t *testing.T) {
	router := newRouter(t)
	doJSON(t, router, http.MethodPost, "/v1/buyers", `{"id":100,"name":"Alice"}`)
	doJSON(t, router, http.MethodPost, "/v1/users/buyers/100/login", "")

	rec := doJSON(t, router, http.MethodGet, "/v1/users/buyers/100", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("info: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var info struct {
		ID       int32           `json:"id"`
		Name     string          `json:"name"`
		Kind     domain.UserKind `json:"kind"`
		LoggedIn bool            `json:"logged_in"`
		Info     string          `json:"info"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.ID != 100 || info.Name != "Alice" || info.Kind != domain.KindBuyer || !info.LoggedIn {
		t.Errorf("info = %+v", info)
	}
	if !strings.Contains(info.Info, "Alice") {
		t.Errorf("info text = %q", info.Info)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/users/sellers/100", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("buyer id as seller: expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/v1/users/admins/100", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad kind: expected 400, got %d", rec.Code)
	}
}

func TestLoginLogoutEndpoints(t *testing.T) {
	router := newRouter(t)
	doJSON(t, router, http.MethodPost, "/v1/buyers", `{"id":100,"name":"Alice"}`)

	rec := doJSON(t, router, http.MethodPost, "/v1/users/buyers/100/login", "")
	if rec.Code != http.StatusOK {
		t.Errorf("login: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/users/buyers/100/logout", "")
	if rec.Code != http.StatusOK {
		t.Errorf("logout: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/users/admins/100/login", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad kind: expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/users/sellers/404/login", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", rec.Code)
	}
}

func TestReportsAndLedgerMetrics(t *testing.T) {
	router := newRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/bank/report", "")
	if rec.Code != http.StatusOK {
		t.Errorf("bank report: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Bank Report - Bank Nasional") {
		t.Errorf("bank report body = %q", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/store/report", "")
	if rec.Code != http.StatusOK {
		t.Errorf("store report: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/metrics/ledger", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ledger metrics: expected 200, got %d", rec.Code)
	}
	var snap observability.LedgerSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
