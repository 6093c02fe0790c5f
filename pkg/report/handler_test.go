package report

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cofrinho/cofrinho/pkg/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) (*Handler, func()) {
	teardown := setup(t)
	renderer, err := NewCsvSummaryRenderer("USD")
	require.NoError(t, err)
	return NewHandler(service, renderer), teardown
}

func TestHandler_GetSummary(t *testing.T) {
	t.Run("should return json summary", func(t *testing.T) {
		handler, teardown := setupHandler(t)
		defer teardown()

		// given
		_, err := itemService.CreateItem(ctx, item.Item{Name: "Bike", Price: d("1000"), Quantity: 1, AmountSaved: d("500")})
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/api/summary", nil).WithContext(ctx)
		rr := httptest.NewRecorder()

		// when
		handler.GetSummary(rr, req)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		var dto SummaryDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
		assert.Equal(t, 1, dto.Items.Count)
		assert.Equal(t, 1000.0, dto.Items.TotalValue)
		assert.Equal(t, 50.0, dto.Items.GlobalProgress)
		assert.Equal(t, 10.75, dto.Investments.CdiRate)
		assert.Empty(t, dto.Investments.ByType)
	})

	t.Run("should render csv", func(t *testing.T) {
		handler, teardown := setupHandler(t)
		defer teardown()

		// given
		_, err := itemService.CreateItem(ctx, item.Item{Name: "Sofa", Price: d("1234.5"), Quantity: 2, AmountSaved: d("100")})
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/api/summary?format=csv", nil).WithContext(ctx)
		rr := httptest.NewRecorder()

		// when
		handler.GetSummary(rr, req)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
		rows, err := csv.NewReader(rr.Body).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"section", "metric", "value"}, rows[0])
		assert.Contains(t, rows, []string{"items", "total_value", "$2,469.00"})
		assert.Contains(t, rows, []string{"items", "total_saved", "$100.00"})
		assert.Contains(t, rows, []string{"items", "progress", "4.05%"})
		assert.Contains(t, rows, []string{"investments", "cdi_rate", "10.75%"})
	})

	t.Run("should reject unknown format", func(t *testing.T) {
		handler, teardown := setupHandler(t)
		defer teardown()

		req := httptest.NewRequest("GET", "/api/summary?format=xml", nil).WithContext(ctx)
		rr := httptest.NewRecorder()

		handler.GetSummary(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should forbid anonymous requests", func(t *testing.T) {
		handler, teardown := setupHandler(t)
		defer teardown()

		req := httptest.NewRequest("GET", "/api/summary", nil)
		rr := httptest.NewRecorder()

		handler.GetSummary(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestNewCsvSummaryRenderer(t *testing.T) {
	_, err := NewCsvSummaryRenderer("XYZ")
	assert.Error(t, err)

	renderer, err := NewCsvSummaryRenderer("USD")
	require.NoError(t, err)
	assert.Equal(t, "$0.01", renderer.Money(d("0.005")))
}
