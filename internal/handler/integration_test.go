//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/dineup/api/internal/config"
	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/router"
	"github.com/dineup/api/internal/ws"
)

// TestIntegrationFlow exercises the storefront lifecycle against a real
// PostgreSQL database: bootstrap a store and owner, manage the menu and an
// offer through the admin API, read the public menu with resolved prices,
// place a guest order and walk it through the status machine.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	if err := database.Migrate(connStr, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:        "8081",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
	}
	queries := database.New(pool)
	hub := ws.NewHub()
	go hub.Run()

	server := httptest.NewServer(router.New(cfg, queries, pool, hub))
	defer server.Close()

	// --- Bootstrap: store and owner are provisioned out of band ---
	storeID := createStore(t, ctx, pool)
	createOwner(t, ctx, pool, storeID)

	token := login(t, server, "owner@test.com", "password123")
	adminBase := fmt.Sprintf("/stores/%s/admin", storeID)

	// --- Menu management through the admin API ---
	itemResp := httpPostJSON(t, server, adminBase+"/menu", map[string]interface{}{
		"category": "Mains",
		"name":     "Paneer Tikka",
		"price":    "200",
	}, token)
	itemID := uuid.MustParse(itemResp["id"].(string))

	httpPostJSON(t, server, fmt.Sprintf("%s/menu/%s/variants", adminBase, itemID), map[string]interface{}{
		"name":  "Half",
		"price": "120",
	}, token)

	httpPostJSON(t, server, adminBase+"/offers", map[string]interface{}{
		"menu_item_id": itemID.String(),
		"offer_price":  "150",
		"starts_at":    time.Now().Add(-time.Hour).Format(time.RFC3339),
		"ends_at":      time.Now().Add(time.Hour).Format(time.RFC3339),
	}, token)

	// --- Public menu resolves the offer ---
	menu := httpGetJSON(t, server, fmt.Sprintf("/stores/%s/menu", storeID), "")
	items := menu["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 menu item, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["display_price"].(string) != "150.00" {
		t.Fatalf("display_price: got %s, want 150.00", first["display_price"])
	}
	if first["strikethrough_price"].(string) != "200.00" {
		t.Fatalf("strikethrough_price: got %s, want 200.00", first["strikethrough_price"])
	}
	if first["discount_percent"].(float64) != 25 {
		t.Fatalf("discount_percent: got %v, want 25", first["discount_percent"])
	}

	// --- Guest checkout charges the offer price ---
	// 2 x 150 = 300 subtotal, +5% GST = 315, +10 flat fee = 325.
	orderResp := httpPostJSON(t, server, fmt.Sprintf("/stores/%s/orders", storeID), map[string]interface{}{
		"order_type":    "PICKUP",
		"customer_name": "Asha",
		"items": []map[string]interface{}{
			{"menu_item_id": itemID.String(), "quantity": 2},
		},
	}, "")
	orderID := uuid.MustParse(orderResp["id"].(string))
	if got := orderResp["total_amount"].(string); got != "325.00" {
		t.Fatalf("total_amount: got %s, want 325.00", got)
	}
	if got := orderResp["order_number"].(string); got != "ORD-0001" {
		t.Fatalf("order_number: got %s, want ORD-0001", got)
	}
	if orderResp["whatsapp_link"].(string) == "" {
		t.Fatal("expected a whatsapp_link")
	}

	// --- Admin walks the order through the status machine ---
	for _, status := range []string{"PREPARING", "READY", "COMPLETED"} {
		resp := httpPutJSON(t, server, fmt.Sprintf("%s/orders/%s/status", adminBase, orderID),
			map[string]string{"status": status}, token)
		if resp["status"].(string) != status {
			t.Fatalf("status: got %s, want %s", resp["status"], status)
		}
	}

	// Second order gets the next number.
	second := httpPostJSON(t, server, fmt.Sprintf("/stores/%s/orders", storeID), map[string]interface{}{
		"order_type":    "PICKUP",
		"customer_name": "Ravi",
		"items": []map[string]interface{}{
			{"menu_item_id": itemID.String(), "variant_name": "Half", "quantity": 1},
		},
	}, "")
	if got := second["order_number"].(string); got != "ORD-0002" {
		t.Fatalf("order_number: got %s, want ORD-0002", got)
	}
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func createStore(t *testing.T, ctx context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO stores (owner_id, name, slug, whatsapp_phone, currency_symbol,
		                     gst_percentage, extra_charge_amount, extra_charge_type)
		 VALUES ($1, 'Test Kitchen', 'test-kitchen', '+911234567890', '₹', 5, 10, 'FLAT_FEE')
		 RETURNING id`,
		uuid.New(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return id
}

func createOwner(t *testing.T, ctx context.Context, pool *pgxpool.Pool, storeID uuid.UUID) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO users (store_id, email, password_hash, name, role)
		 VALUES ($1, 'owner@test.com', $2, 'Test Owner', 'OWNER')`,
		storeID, string(hash),
	)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	resp := httpPostJSON(t, server, "/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	}, "")
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %+v", resp)
	}
	return token
}

// --- HTTP helpers ---

func doJSON(t *testing.T, server *httptest.Server, method, path string, body interface{}, token string) map[string]interface{} {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req, err := http.NewRequest(method, server.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("%s %s: status %d, body: %v", method, path, resp.StatusCode, errResp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpPostJSON(t *testing.T, server *httptest.Server, path string, body interface{}, token string) map[string]interface{} {
	t.Helper()
	return doJSON(t, server, http.MethodPost, path, body, token)
}

func httpPutJSON(t *testing.T, server *httptest.Server, path string, body interface{}, token string) map[string]interface{} {
	t.Helper()
	return doJSON(t, server, http.MethodPut, path, body, token)
}

func httpGetJSON(t *testing.T, server *httptest.Server, path, token string) map[string]interface{} {
	t.Helper()
	return doJSON(t, server, http.MethodGet, path, nil, token)
}
