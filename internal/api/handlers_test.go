package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/settlement"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	l := ledger.New(store)
	require.NoError(t, l.Init(context.Background()))

	server := httptest.NewServer(NewHandler(l).Routes())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createGroup(t *testing.T, server *httptest.Server, name string) models.Group {
	t.Helper()
	var group models.Group
	resp := doJSON(t, http.MethodPost, server.URL+"/api/groups", map[string]string{"name": name}, &group)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return group
}

func addPerson(t *testing.T, server *httptest.Server, name string) models.Person {
	t.Helper()
	var person models.Person
	resp := doJSON(t, http.MethodPost, server.URL+"/api/people", map[string]string{"name": name}, &person)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return person
}

func TestGroupLifecycle(t *testing.T) {
	server := setupTestServer(t)

	group := createGroup(t, server, "Roommates")
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Roommates", group.Name)

	// The new group is listed and active.
	var list struct {
		Groups        []models.Group `json:"groups"`
		ActiveGroupID string         `json:"active_group_id"`
	}
	resp := doJSON(t, http.MethodGet, server.URL+"/api/groups", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Groups, 1)
	assert.Equal(t, group.ID, list.ActiveGroupID)

	// Rename it.
	var updated models.Group
	resp = doJSON(t, http.MethodPut, server.URL+"/api/groups/"+group.ID,
		map[string]string{"name": "Flat 12", "description": "new place"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Flat 12", updated.Name)

	// The last group cannot be removed.
	resp = doJSON(t, http.MethodDelete, server.URL+"/api/groups/"+group.ID, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// With a second group present, removal works.
	second := createGroup(t, server, "Trip")
	resp = doJSON(t, http.MethodDelete, server.URL+"/api/groups/"+second.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateGroupValidation(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/groups", map[string]string{"name": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Whitespace passes shape validation but fails in the ledger.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/groups", map[string]string{"name": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSwitchGroup(t *testing.T) {
	server := setupTestServer(t)

	first := createGroup(t, server, "First")
	createGroup(t, server, "Second")

	var switched models.Group
	resp := doJSON(t, http.MethodPost, server.URL+"/api/groups/"+first.ID+"/activate", nil, &switched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first.ID, switched.ID)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/groups/unknown/activate", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPersonEndpoints(t *testing.T) {
	server := setupTestServer(t)
	createGroup(t, server, "Roommates")

	alice := addPerson(t, server, "Alice")
	bob := addPerson(t, server, "Bob")

	// Duplicate active name is rejected.
	resp := doJSON(t, http.MethodPost, server.URL+"/api/people", map[string]string{"name": "Alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Alice pays, so she cannot be removed.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/expenses", map[string]any{
		"title": "Dinner", "amount": 40.0, "payer_id": alice.ID,
		"participants": []string{alice.ID, bob.ID},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/people/"+alice.ID, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Bob only participated and can be soft-deleted.
	resp = doJSON(t, http.MethodDelete, server.URL+"/api/people/"+bob.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/people/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExpenseEndpoints(t *testing.T) {
	server := setupTestServer(t)
	createGroup(t, server, "Roommates")
	alice := addPerson(t, server, "Alice")
	bob := addPerson(t, server, "Bob")

	var expense models.Expense
	resp := doJSON(t, http.MethodPost, server.URL+"/api/expenses", map[string]any{
		"title": "Dinner", "amount": 42.5, "payer_id": alice.ID,
		"participants": []string{alice.ID, bob.ID}, "category": "food",
	}, &expense)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 42.5, expense.Amount)

	// Shape validation rejects a non-positive amount before the ledger.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/expenses", map[string]any{
		"title": "Bad", "amount": -1.0, "payer_id": alice.ID,
		"participants": []string{alice.ID},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Same for a participant listed twice.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/expenses", map[string]any{
		"title": "Bad", "amount": 10.0, "payer_id": alice.ID,
		"participants": []string{bob.ID, bob.ID},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var updated models.Expense
	resp = doJSON(t, http.MethodPut, server.URL+"/api/expenses/"+expense.ID, map[string]any{
		"title": "Brunch", "amount": 30.0, "payer_id": bob.ID,
		"participants": []string{bob.ID},
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, expense.ID, updated.ID)
	assert.Equal(t, "Brunch", updated.Title)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/expenses/"+expense.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/expenses/"+expense.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettlementEndpoint(t *testing.T) {
	server := setupTestServer(t)
	createGroup(t, server, "Roommates")

	// No expenses yet: nothing to settle.
	resp := doJSON(t, http.MethodGet, server.URL+"/api/settlement", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	alice := addPerson(t, server, "Alice")
	bob := addPerson(t, server, "Bob")

	resp = doJSON(t, http.MethodPost, server.URL+"/api/expenses", map[string]any{
		"title": "Lunch", "amount": 10.0, "payer_id": alice.ID,
		"participants": []string{alice.ID, bob.ID},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result settlement.Result
	resp = doJSON(t, http.MethodGet, server.URL+"/api/settlement", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 10.0, result.TotalAmount)
	require.Len(t, result.OptimalTransfers, 1)
	assert.Equal(t, bob.ID, result.OptimalTransfers[0].FromPersonID)
	assert.Equal(t, alice.ID, result.OptimalTransfers[0].ToPersonID)
	assert.Equal(t, 5.0, result.OptimalTransfers[0].Amount)
}

func TestClearAllEndpoint(t *testing.T) {
	server := setupTestServer(t)
	createGroup(t, server, "Roommates")

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/data", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var list struct {
		Groups        []models.Group `json:"groups"`
		ActiveGroupID string         `json:"active_group_id"`
	}
	resp = doJSON(t, http.MethodGet, server.URL+"/api/groups", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list.Groups)
	assert.Empty(t, list.ActiveGroupID)
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
