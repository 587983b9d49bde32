package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mizan/backend/internal/cache"
	"mizan/backend/internal/service"
	"mizan/backend/internal/store/memory"
)

func newTestHandler() http.Handler {
	svc := service.New(memory.New(), cache.NoopReportCache{}, zerolog.Nop(), time.Second)
	return New(svc, zerolog.Nop(), "http://127.0.0.1:3000").Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler()
	rec := doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ok"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/products", map[string]any{
		"name":        "Sunflower Oil 5L",
		"cost":        "22",
		"price":       "27",
		"stock_count": "10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)["product"].(map[string]any)
	id := created["id"].(string)
	if id == "" {
		t.Fatalf("missing product id: %v", created)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/products/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/products/"+id, map[string]any{
		"price": "30",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)["product"].(map[string]any)
	if updated["price"] != "30" {
		t.Fatalf("price not updated: %v", updated["price"])
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/products/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/products/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestInvoiceFlowOverHTTP(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/products", map[string]any{
		"name":        "Yeast 500g Pack",
		"price":       "4",
		"stock_count": "10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d", rec.Code)
	}
	productID := decodeBody(t, rec)["product"].(map[string]any)["id"].(string)

	rec = doJSON(t, handler, http.MethodPost, "/api/invoices", map[string]any{
		"type":         "sale",
		"contact_name": "Al Noor Bakery",
		"items": []map[string]any{
			{"product_id": productID, "quantity": "3"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice: status %d body %s", rec.Code, rec.Body.String())
	}
	invoice := decodeBody(t, rec)["invoice"].(map[string]any)
	if invoice["number"] != "INV-000001" {
		t.Fatalf("unexpected number %v", invoice["number"])
	}
	if invoice["total"] != "12" {
		t.Fatalf("unexpected total %v", invoice["total"])
	}

	// Overselling maps to a 400 with a descriptive message.
	rec = doJSON(t, handler, http.MethodPost, "/api/invoices", map[string]any{
		"type": "sale",
		"items": []map[string]any{
			{"product_id": productID, "quantity": "100"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for overselling, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/invoices?type=sale", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	invoices := decodeBody(t, rec)["invoices"].([]any)
	if len(invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(invoices))
	}

	invoiceID := invoice["id"].(string)
	rec = doJSON(t, handler, http.MethodDelete, "/api/invoices/"+invoiceID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete invoice: status %d", rec.Code)
	}
}

func TestSettlementDeleteConflictsOverHTTP(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/products", map[string]any{
		"name":        "Yeast 500g Pack",
		"price":       "4",
		"stock_count": "10",
	})
	productID := decodeBody(t, rec)["product"].(map[string]any)["id"].(string)

	rec = doJSON(t, handler, http.MethodPost, "/api/invoices", map[string]any{
		"type":   "sale",
		"status": "paid",
		"items": []map[string]any{
			{"product_id": productID, "quantity": "2"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice: status %d body %s", rec.Code, rec.Body.String())
	}
	settlementID := decodeBody(t, rec)["invoice"].(map[string]any)["cash_transaction_id"].(string)

	rec = doJSON(t, handler, http.MethodDelete, "/api/cash-transactions/"+settlementID, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for settlement delete, got %d", rec.Code)
	}
}

func TestProductUpdateAcceptsFetchedWeight(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/products", map[string]any{
		"name":            "Wheat Flour 25kg Bag",
		"price":           "78",
		"unit_mode":       "dual",
		"weight_per_unit": "25",
		"stock_count":     "100",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	id := decodeBody(t, rec)["product"].(map[string]any)["id"].(string)

	// Clients send back the stock_weight they fetched; the server keeps the
	// derived value.
	rec = doJSON(t, handler, http.MethodPatch, "/api/products/"+id, map[string]any{
		"stock_count":  "90",
		"stock_weight": "9999",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)["product"].(map[string]any)
	if updated["stock_weight"] != "2250" {
		t.Fatalf("weight must stay derived, got %v", updated["stock_weight"])
	}
}

func TestRequestValidationOverHTTP(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/products", map[string]any{
		"name":    "Mystery",
		"unknown": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields must be rejected, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/products", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/products/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/invoices?from=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad time parameter must be rejected, got %d", rec.Code)
	}
}

func TestReportsOverHTTP(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/contacts", map[string]any{
		"name": "Al Noor Bakery",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contact: status %d", rec.Code)
	}
	contactID := decodeBody(t, rec)["contact"].(map[string]any)["id"].(string)

	rec = doJSON(t, handler, http.MethodPost, "/api/cash-transactions", map[string]any{
		"type":       "receipt",
		"amount":     "40",
		"contact_id": contactID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create receipt: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/reports/cash-balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cash balance: status %d", rec.Code)
	}
	if balance := decodeBody(t, rec)["balance"]; balance != "40" {
		t.Fatalf("unexpected balance %v", balance)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/reports/financial", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("financial: status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/reports/inventory", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("inventory: status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/reports/account-statement/%s?from=2026-01-01&to=2026-12-31", contactID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement: status %d body %s", rec.Code, rec.Body.String())
	}
	statement := decodeBody(t, rec)["statement"].(map[string]any)
	if statement["contact"].(map[string]any)["id"] != contactID {
		t.Fatalf("wrong contact in statement")
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "http://127.0.0.1:3000" {
		t.Fatalf("unexpected origin header %q", origin)
	}
}
