package item

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, func()) {
	teardown := setup(t)
	handler := NewHandler(service)
	router := mux.NewRouter()
	router.HandleFunc("/api/item", handler.List).Methods("GET")
	router.HandleFunc("/api/item", handler.Create).Methods("POST")
	router.HandleFunc("/api/item/{itemId}", handler.Get).Methods("GET")
	router.HandleFunc("/api/item/{itemId}", handler.Delete).Methods("DELETE")
	router.HandleFunc("/api/item/{itemId}/quantity", handler.SetQuantity).Methods("PUT")
	router.HandleFunc("/api/item/{itemId}/entry", handler.AddEntry).Methods("POST")
	return router, teardown
}

func doRequest(router http.Handler, method, path, body string, withUser bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if withUser {
		req = req.WithContext(ctx)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Create(t *testing.T) {
	t.Run("should create item with derived fields", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		// when
		rr := doRequest(router, "POST", "/api/item", `{"name":"TV","price":100,"quantity":3,"purchaseLinks":["https://shop.test/tv"]}`, true)

		// then
		require.Equal(t, http.StatusCreated, rr.Code)
		var dto ItemDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
		assert.Equal(t, "TV", dto.Name)
		assert.Equal(t, 300.0, dto.TotalPrice)
		assert.Equal(t, 300.0, dto.Remaining)
		assert.Equal(t, []string{"https://shop.test/tv"}, dto.PurchaseLinks)
	})

	t.Run("should reject empty name", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		rr := doRequest(router, "POST", "/api/item", `{"name":"","price":10}`, true)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should return forbidden without user", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		rr := doRequest(router, "POST", "/api/item", `{"name":"TV","price":10}`, false)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestHandler_AddEntry(t *testing.T) {
	t.Run("should add contribution", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		// given
		bike := createItem(t, "Bike", "1000", 1)

		// when
		rr := doRequest(router, "POST", "/api/item/"+bike.Id.String()+"/entry", `{"amount":250,"quantity":2}`, true)

		// then
		require.Equal(t, http.StatusCreated, rr.Code)
		var result EntryResultDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
		assert.Equal(t, 250.0, result.Item.AmountSaved)
		assert.Equal(t, 25.0, result.Item.ProgressPercentage)
		assert.Equal(t, 2, result.Entry.Quantity)
	})

	t.Run("should reject zero amount", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		bike := createItem(t, "Bike", "1000", 1)

		rr := doRequest(router, "POST", "/api/item/"+bike.Id.String()+"/entry", `{"amount":0}`, true)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should return not found for unknown item", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		rr := doRequest(router, "POST", "/api/item/"+uuid.NewString()+"/entry", `{"amount":10}`, true)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("should reject malformed item id", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		rr := doRequest(router, "POST", "/api/item/not-a-uuid/entry", `{"amount":10}`, true)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_SetQuantity(t *testing.T) {
	t.Run("should reject fractional quantity", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		tv := createItem(t, "TV", "100", 1)

		rr := doRequest(router, "PUT", "/api/item/"+tv.Id.String()+"/quantity", `{"quantity":1.5}`, true)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should update quantity", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		tv := createItem(t, "TV", "100", 1)

		rr := doRequest(router, "PUT", "/api/item/"+tv.Id.String()+"/quantity", `{"quantity":4}`, true)

		require.Equal(t, http.StatusOK, rr.Code)
		var dto ItemDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
		assert.Equal(t, 400.0, dto.TotalPrice)
	})
}

func TestHandler_Delete(t *testing.T) {
	router, teardown := setupRouter(t)
	defer teardown()

	rr := doRequest(router, "DELETE", "/api/item/"+uuid.NewString(), "", true)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHandler_Get_NotFound(t *testing.T) {
	router, teardown := setupRouter(t)
	defer teardown()

	rr := doRequest(router, "GET", "/api/item/"+uuid.NewString(), "", true)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_AddEntry_OutOfRange(t *testing.T) {
	t.Run("should reject a single amount beyond storage range", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		bike := createItem(t, "Bike", "1000", 1)

		rr := doRequest(router, "POST", "/api/item/"+bike.Id.String()+"/entry", `{"amount":1e12}`, true)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should reject an entry that overflows the amount saved", func(t *testing.T) {
		router, teardown := setupRouter(t)
		defer teardown()

		// given
		house := createItem(t, "House", "999999999999", 1)
		_, _, err := service.AddEntry(ctx, house.Id, d("999999999999"), 1, "")
		require.NoError(t, err)

		// when
		rr := doRequest(router, "POST", "/api/item/"+house.Id.String()+"/entry", `{"amount":1}`, true)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		stored, err := service.GetItem(ctx, house.Id)
		require.NoError(t, err)
		assertDecimal(t, "999999999999", stored.AmountSaved)
	})
}
