package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"savoria/internal/menu"

	"github.com/gin-gonic/gin"
)

const testPassword = "admin123"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := menu.NewStore(menu.NewInMemoryRepository(), nil, menu.WithPollInterval(0))
	store.Initialize(context.Background())
	t.Cleanup(store.Dispose)

	return NewRouter(store, testPassword)
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestGetMenuAlwaysOK(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		Categories []menu.Category `json:"categories"`
		Items      []menu.MenuItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Categories) == 0 || len(body.Items) == 0 {
		t.Fatalf("expected default catalog, got %d categories / %d items", len(body.Categories), len(body.Items))
	}
}

// failingRepository simulates a dead storage backend.
type failingRepository struct{}

func (failingRepository) Load(ctx context.Context) (*menu.Snapshot, error) {
	return nil, menu.ErrBackendUnavailable
}

func (failingRepository) Save(ctx context.Context, snap *menu.Snapshot) error {
	return menu.ErrBackendUnavailable
}

func TestGetMenuFallsBackWhenBackendDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := menu.NewStore(failingRepository{}, nil, menu.WithPollInterval(0))
	store.Initialize(context.Background())
	t.Cleanup(store.Dispose)
	r := NewRouter(store, testPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("menu endpoint must answer 200 even with a dead backend, got %d", w.Code)
	}
}

func TestAdminRoutesRequirePassword(t *testing.T) {
	r := newTestRouter(t)

	body := bytes.NewBufferString(`{"name":"Waffles","price":11,"category":"breakfast"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/menu", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestAdminLogin(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		password string
		want     int
	}{
		{testPassword, http.StatusOK},
		{"wrong", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		body := bytes.NewBufferString(fmt.Sprintf(`{"password":%q}`, tc.password))
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Errorf("login with %q: expected %d, got %d", tc.password, tc.want, w.Code)
		}
	}
}

func TestAdminCRUDFlow(t *testing.T) {
	r := newTestRouter(t)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("admin-password", testPassword)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Add
	w := do(http.MethodPost, "/api/admin/menu", `{"name":"Waffles","price":11,"category":"breakfast"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var added struct {
		Success bool          `json:"success"`
		Item    menu.MenuItem `json:"item"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &added); err != nil {
		t.Fatalf("add: invalid body: %v", err)
	}
	if !added.Success || added.Item.ID == 0 {
		t.Fatalf("add: bad result %+v", added)
	}

	// Update
	w = do(http.MethodPut, fmt.Sprintf("/api/admin/menu/%d", added.Item.ID), `{"price":13.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	// Update of an unknown id
	w = do(http.MethodPut, "/api/admin/menu/424242", `{"price":1}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("update unknown: expected 404, got %d", w.Code)
	}

	// Delete, then delete again (idempotent)
	w = do(http.MethodDelete, fmt.Sprintf("/api/admin/menu/%d", added.Item.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	w = do(http.MethodDelete, fmt.Sprintf("/api/admin/menu/%d", added.Item.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("repeat delete: expected 200, got %d", w.Code)
	}
}

func TestMockPaymentEndpoints(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/pay/telebirr", "/api/pay/mobile-banking"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"itemId":1,"amount":12.99}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
		var body struct {
			Success bool `json:"success"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || !body.Success {
			t.Errorf("%s: unexpected body %s", path, w.Body.String())
		}
	}
}
