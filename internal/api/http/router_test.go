package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/repository/memory"
	"github.com/spec-kit/queue-service/internal/service"
)

func newTestApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketStore:  store,
		ServiceStore: store.Services(),
		Allocator:    service.NewSequenceAllocator(store, 0),
		Dispatcher:   dispatcher,
	})
	registryService := service.NewRegistryService(store.Services())

	app := fiber.New()
	metrics := observability.NewMetrics()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler(nil),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Operator: handlers.NewOperatorHandler(ticketService),
		Services: handlers.NewServicesHandler(registryService),
	})
	return app, metrics
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func dataField(t *testing.T, body map[string]any, key string) any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return data[key]
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("response has no error object: %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestTicketFlowOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, nethttp.MethodPost, "/services", map[string]any{
		"company_id":              "co-1",
		"name":                    "Front Desk",
		"average_service_minutes": 5,
	})
	if status != nethttp.StatusCreated {
		t.Fatalf("register service: status %d", status)
	}
	serviceID, _ := dataField(t, body, "id").(string)
	if serviceID == "" {
		t.Fatal("register service returned no id")
	}

	status, body = doJSON(t, app, nethttp.MethodPost, "/tickets", map[string]any{
		"service_id": serviceID,
		"owner_id":   "owner-1",
	})
	if status != nethttp.StatusCreated {
		t.Fatalf("issue ticket: status %d", status)
	}
	ticketID, _ := dataField(t, body, "id").(string)
	if number, _ := dataField(t, body, "number").(float64); number != 1 {
		t.Fatalf("first ticket number = %v, want 1", number)
	}

	status, body = doJSON(t, app, nethttp.MethodGet, "/tickets/"+ticketID+"/position", nil)
	if status != nethttp.StatusOK {
		t.Fatalf("position: status %d", status)
	}
	if position, _ := dataField(t, body, "position").(float64); position != 0 {
		t.Fatalf("position = %v, want 0", position)
	}

	status, body = doJSON(t, app, nethttp.MethodPost, "/services/"+serviceID+"/call-next", nil)
	if status != nethttp.StatusOK {
		t.Fatalf("call next: status %d", status)
	}
	if got, _ := dataField(t, body, "status").(string); got != "CALLING" {
		t.Fatalf("called ticket status = %q, want CALLING", got)
	}

	status, body = doJSON(t, app, nethttp.MethodPost, "/tickets/"+ticketID+"/serve", nil)
	if status != nethttp.StatusOK {
		t.Fatalf("serve: status %d", status)
	}
	if got, _ := dataField(t, body, "status").(string); got != "SERVED" {
		t.Fatalf("served ticket status = %q, want SERVED", got)
	}

	// Serving twice violates the lifecycle.
	status, body = doJSON(t, app, nethttp.MethodPost, "/tickets/"+ticketID+"/serve", nil)
	if status != nethttp.StatusConflict {
		t.Fatalf("double serve: status %d, want 409", status)
	}
	if code := errorCode(t, body); code != "INVALID_TRANSITION" {
		t.Fatalf("double serve: code %q, want INVALID_TRANSITION", code)
	}

	status, body = doJSON(t, app, nethttp.MethodPost, "/services/"+serviceID+"/call-next", nil)
	if status != nethttp.StatusConflict {
		t.Fatalf("call next on empty queue: status %d, want 409", status)
	}
	if code := errorCode(t, body); code != "NO_PENDING_TICKETS" {
		t.Fatalf("call next on empty queue: code %q, want NO_PENDING_TICKETS", code)
	}
}

func TestIssueTicketValidation(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, nethttp.MethodPost, "/tickets", map[string]any{"service_id": "svc-1"})
	if status != nethttp.StatusBadRequest {
		t.Fatalf("status %d, want 400", status)
	}
	if code := errorCode(t, body); code != "VALIDATION_FAILED" {
		t.Fatalf("code %q, want VALIDATION_FAILED", code)
	}
}

func TestUnknownTicketReturnsNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, nethttp.MethodGet, "/tickets/missing", nil)
	if status != nethttp.StatusNotFound {
		t.Fatalf("status %d, want 404", status)
	}
	if code := errorCode(t, body); code != "NOT_FOUND" {
		t.Fatalf("code %q, want NOT_FOUND", code)
	}
}

func TestOwnerListingOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	_, body := doJSON(t, app, nethttp.MethodPost, "/services", map[string]any{
		"company_id": "co-1",
		"name":       "Desk",
	})
	serviceID, _ := dataField(t, body, "id").(string)

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, app, nethttp.MethodPost, "/tickets", map[string]any{
			"service_id": serviceID,
			"owner_id":   "owner-1",
		})
		if status != nethttp.StatusCreated {
			t.Fatalf("issue ticket %d: status %d", i, status)
		}
	}

	status, body := doJSON(t, app, nethttp.MethodGet, "/owners/owner-1/tickets?active=true", nil)
	if status != nethttp.StatusOK {
		t.Fatalf("owner listing: status %d", status)
	}
	items, ok := body["data"].([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("owner listing returned %v, want 3 tickets", body["data"])
	}
}

func TestFailedRequestCountedWithMappedStatus(t *testing.T) {
	app, metrics := newTestApp(t)

	status, _ := doJSON(t, app, nethttp.MethodGet, "/tickets/missing", nil)
	if status != nethttp.StatusNotFound {
		t.Fatalf("status %d, want 404", status)
	}
	if got := metrics.RequestCount("/tickets/missing", nethttp.MethodGet, nethttp.StatusNotFound); got != 1 {
		t.Fatalf("404 response counted %d times, want 1", got)
	}
	if got := metrics.RequestCount("/tickets/missing", nethttp.MethodGet, nethttp.StatusOK); got != 0 {
		t.Fatalf("failed request counted as 200 %d times, want 0", got)
	}
}

func TestHealthLive(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, nethttp.MethodGet, "/health/live", nil)
	if status != nethttp.StatusOK || body["status"] != "ok" {
		t.Fatalf("health live: status %d body %v", status, body)
	}
}

func TestCompanyServicesListing(t *testing.T) {
	app, _ := newTestApp(t)

	for i := 0; i < 2; i++ {
		status, _ := doJSON(t, app, nethttp.MethodPost, "/services", map[string]any{
			"company_id": "co-7",
			"name":       fmt.Sprintf("Desk %d", i+1),
		})
		if status != nethttp.StatusCreated {
			t.Fatalf("register service %d: status %d", i, status)
		}
	}

	status, body := doJSON(t, app, nethttp.MethodGet, "/companies/co-7/services", nil)
	if status != nethttp.StatusOK {
		t.Fatalf("company listing: status %d", status)
	}
	items, ok := body["data"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("company listing returned %v, want 2 services", body["data"])
	}
}
