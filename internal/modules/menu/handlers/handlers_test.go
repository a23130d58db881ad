package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockboard/internal/modules/menu"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	tree, err := menu.DefaultTree()
	require.NoError(t, err)

	router := chi.NewRouter()
	NewHandler(tree, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func doGet(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleGetRoutes(t *testing.T) {
	rec := doGet(setupRouter(t), "/menu/routes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var routes []menu.RouteEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&routes))
	assert.Len(t, routes, 21)
}

func TestHandleGetMenu(t *testing.T) {
	rec := doGet(setupRouter(t), "/menu/")
	require.Equal(t, http.StatusOK, rec.Code)

	var roots []menu.Node
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&roots))
	require.Len(t, roots, 9)
	assert.Equal(t, "/market", roots[1].Key)
	assert.Len(t, roots[1].Children, 3)
}

func TestHandleResolve(t *testing.T) {
	router := setupRouter(t)

	rec := doGet(router, "/menu/resolve?path=/market/sectors")
	require.Equal(t, http.StatusOK, rec.Code)
	var res menu.Resolution
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "MarketSectors", res.Component)
	assert.Equal(t, "/market", res.Parent)

	rec = doGet(router, "/menu/resolve?path=/bogus")
	require.Equal(t, http.StatusNotFound, rec.Code)
	res = menu.Resolution{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, menu.DefaultPath, res.Path)
	assert.False(t, res.Found)
}

func TestHandleGetParent(t *testing.T) {
	router := setupRouter(t)

	rec := doGet(router, "/menu/parent?path=/watchlist/alerts")
	require.Equal(t, http.StatusOK, rec.Code)
	var parent menu.Node
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&parent))
	assert.Equal(t, "/watchlist", parent.Key)

	rec = doGet(router, "/menu/parent?path=/dashboard")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "/dashboard")

	rec = doGet(router, "/menu/parent")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetSectionAndSubMenu(t *testing.T) {
	router := setupRouter(t)

	rec := doGet(router, "/menu/section?path=/ai-monitor/patterns")
	require.Equal(t, http.StatusOK, rec.Code)
	var section map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&section))
	assert.Equal(t, "/ai-monitor", section["key"])
	assert.Equal(t, true, section["active"])

	rec = doGet(router, "/menu/submenu?key=/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
