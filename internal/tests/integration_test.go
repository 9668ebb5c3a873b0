//go:build integration

package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory-api/internal"
	"inventory-api/internal/auth"
	"inventory-api/internal/config"
	"inventory-api/internal/models"
	"inventory-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "supersecretkeyforintegrationtesting1"

// newIntegrationServer builds a server against the test database with the
// local token manager standing in for the identity provider.
func newIntegrationServer(t *testing.T) (*internal.Server, string) {
	t.Helper()
	testutil.RequireIntegration(t)

	db := testutil.NewTestDB(t)
	testutil.ResetSchema(t, db)

	manager := auth.NewTokenManager(testSecret, "inventory-api", "inventory-api", time.Hour)
	srv := internal.NewServer(db, manager, &config.Config{})

	token, err := manager.GenerateToken("itest-user", "itest@example.com")
	require.NoError(t, err)

	return srv, token
}

func doJSON(t *testing.T, srv *internal.Server, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	return w
}

func createItem(t *testing.T, srv *internal.Server, token, name, description string, price float64, quantity int) models.Item {
	t.Helper()

	payload := map[string]any{"name": name, "price": price, "quantity": quantity}
	if description != "" {
		payload["description"] = description
	}

	w := doJSON(t, srv, "POST", "/api/items", token, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var it models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
	return it
}

func listItems(t *testing.T, srv *internal.Server) []models.Item {
	t.Helper()

	w := doJSON(t, srv, "GET", "/api/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	return items
}

func TestDBPing(t *testing.T) {
	srv, _ := newIntegrationServer(t)

	w := doJSON(t, srv, "GET", "/dbping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "db: ok", w.Body.String())
}

func TestCreateAndListRoundTrip(t *testing.T) {
	srv, token := newIntegrationServer(t)

	created := []models.Item{
		createItem(t, srv, token, "Sony PS5", "Next-gen console", 499.99, 10),
		createItem(t, srv, token, "iPhone 15", "Latest smartphone", 999.00, 25),
		createItem(t, srv, token, "Gaming Chair", "", 250.00, 15),
	}

	items := listItems(t, srv)
	require.Len(t, items, len(created))

	byID := map[int64]models.Item{}
	for _, it := range items {
		byID[it.ID] = it
	}
	require.Len(t, byID, len(created), "ids must be unique")

	for _, want := range created {
		got, ok := byID[want.ID]
		require.True(t, ok, "created item %d missing from list", want.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Price, got.Price)
		assert.Equal(t, want.Quantity, got.Quantity)
		if want.Description == nil {
			assert.Nil(t, got.Description)
		} else {
			require.NotNil(t, got.Description)
			assert.Equal(t, *want.Description, *got.Description)
		}
	}
}

func TestCreateAssignsServerFields(t *testing.T) {
	srv, token := newIntegrationServer(t)

	before := time.Now().Add(-time.Minute)
	it := createItem(t, srv, token, "Logitech Mouse", "Wireless mouse", 49.50, 100)

	assert.Greater(t, it.ID, int64(0))
	assert.False(t, it.CreatedAt.IsZero())
	assert.True(t, it.CreatedAt.After(before), "created_at must come from the server clock")

	// Client-supplied id and created_at are ignored
	w := doJSON(t, srv, "POST", "/api/items", token, map[string]any{
		"id": 424242, "created_at": "1999-01-01T00:00:00Z",
		"name": "Desk", "price": 80.0, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var forged models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forged))
	assert.NotEqual(t, int64(424242), forged.ID)
	assert.True(t, forged.CreatedAt.After(before))
}

func TestCreateOmittedDescriptionIsNull(t *testing.T) {
	srv, token := newIntegrationServer(t)

	w := doJSON(t, srv, "POST", "/api/items", token, map[string]any{
		"name": "Keyboard", "price": 30.0, "quantity": 7,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	val, present := raw["description"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	srv, token := newIntegrationServer(t)

	it := createItem(t, srv, token, "Sony PS5", "Next-gen console", 499.99, 10)

	w := doJSON(t, srv, "PUT", fmt.Sprintf("/api/items/%d", it.ID), token, map[string]any{
		"name": "Sony PS5 Slim", "description": "Refreshed console", "price": 449.99, "quantity": 8,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, it.ID, updated.ID)
	assert.Equal(t, "Sony PS5 Slim", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Refreshed console", *updated.Description)
	assert.Equal(t, 449.99, updated.Price)
	assert.Equal(t, 8, updated.Quantity)
	assert.Equal(t, it.CreatedAt.UTC(), updated.CreatedAt.UTC(), "created_at is immutable")

	items := listItems(t, srv)
	require.Len(t, items, 1)
	assert.Equal(t, "Sony PS5 Slim", items[0].Name)
}

func TestUpdateUnknownIDReturns404(t *testing.T) {
	srv, token := newIntegrationServer(t)

	w := doJSON(t, srv, "PUT", "/api/items/9999", token, map[string]any{
		"name": "Ghost", "price": 1.0, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 404 must not create a record
	assert.Empty(t, listItems(t, srv))
}

func TestDeleteItem(t *testing.T) {
	srv, token := newIntegrationServer(t)

	it := createItem(t, srv, token, "Gaming Chair", "Ergonomic chair", 250.00, 15)

	w := doJSON(t, srv, "DELETE", fmt.Sprintf("/api/items/%d", it.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Item deleted")

	assert.Empty(t, listItems(t, srv))

	// Search must omit it too
	w = doJSON(t, srv, "GET", "/api/items/search?q=chair", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Empty(t, found)

	// Second delete is a 404
	w = doJSON(t, srv, "DELETE", fmt.Sprintf("/api/items/%d", it.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUnknownIDReturns404(t *testing.T) {
	srv, token := newIntegrationServer(t)

	w := doJSON(t, srv, "DELETE", "/api/items/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	srv, token := newIntegrationServer(t)

	ps5 := createItem(t, srv, token, "Sony PS5", "Next-gen console", 499.99, 10)
	mouse := createItem(t, srv, token, "Logitech Mouse", "Wireless mouse", 49.50, 100)

	search := func(q string) []models.Item {
		w := doJSON(t, srv, "GET", "/api/items/search?q="+q, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var items []models.Item
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		return items
	}

	// Name match, different case
	got := search("ps5")
	require.Len(t, got, 1)
	assert.Equal(t, ps5.ID, got[0].ID)

	// Description match
	got = search("WIRELESS")
	require.Len(t, got, 1)
	assert.Equal(t, mouse.ID, got[0].ID)

	// Substring across both fields
	got = search("mouse")
	require.Len(t, got, 1)

	// No match returns an empty array, not null
	got = search("zzz")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMutationsWithoutTokenChangeNothing(t *testing.T) {
	srv, token := newIntegrationServer(t)
	it := createItem(t, srv, token, "Desk", "", 80.0, 2)

	w := doJSON(t, srv, "POST", "/api/items", "", map[string]any{
		"name": "Intruder", "price": 1.0, "quantity": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, "PUT", fmt.Sprintf("/api/items/%d", it.ID), "", map[string]any{
		"name": "Hacked", "price": 0.0, "quantity": 0,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, "DELETE", fmt.Sprintf("/api/items/%d", it.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	items := listItems(t, srv)
	require.Len(t, items, 1)
	assert.Equal(t, "Desk", items[0].Name)
}

func TestInvalidTokenRejected(t *testing.T) {
	srv, _ := newIntegrationServer(t)

	w := doJSON(t, srv, "POST", "/api/items", "definitely-not-valid", map[string]any{
		"name": "Intruder", "price": 1.0, "quantity": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}
