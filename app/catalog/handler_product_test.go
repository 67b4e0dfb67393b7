package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sufrahub/sufra/models"
)

// --- Tests ---

func TestHandleGetProduct(t *testing.T) {
	allMockProducts := []models.Product{
		{
			ID:        1,
			Code:      "BURG001",
			Name:      "Classic Burger",
			BasePrice: decimal.NewFromFloat(10.00),
			Category:  models.Category{Code: "burgers", Name: "Burgers"},
			Sizes: []models.Size{
				{ID: 1, Name: models.SizeSmall, PriceDelta: decimal.Decimal{}},
				{ID: 2, Name: models.SizeMedium, PriceDelta: decimal.NewFromFloat(5.00)},
			},
			Extras: []models.Extra{
				{ID: 1, Name: "Cheese", NameAr: "جبنة", PriceDelta: decimal.NewFromFloat(2.00)},
				{ID: 2, Name: "Onion", PriceDelta: decimal.NewFromFloat(1.00)},
			},
		},
		{
			ID:        2,
			Code:      "DRNK001",
			Name:      "Lemon Mint",
			BasePrice: decimal.NewFromFloat(4.50),
			Category:  models.Category{Code: "drinks", Name: "Drinks"},
		},
	}

	testCases := []struct {
		name               string
		productCode        string
		query              string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name:        "Success with sizes and extras",
			productCode: "BURG001",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProductDetail
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, "BURG001", resp.Code)
				assert.Equal(t, 10.00, resp.BasePrice)
				assert.Equal(t, "burgers", resp.Category.Code)
				assert.Len(t, resp.Sizes, 2)
				assert.Equal(t, "SMALL", resp.Sizes[0].Name)
				assert.Equal(t, 0.0, resp.Sizes[0].PriceDelta)
				assert.Equal(t, "MEDIUM", resp.Sizes[1].Name)
				assert.Equal(t, 5.00, resp.Sizes[1].PriceDelta)
				assert.Len(t, resp.Extras, 2)
				assert.Equal(t, "Cheese", resp.Extras[0].Name)
				assert.Equal(t, 2.00, resp.Extras[0].PriceDelta)
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "BURG001", repo.lastCalledCode)
			},
		},
		{
			name:        "Arabic extra names with lang=ar",
			productCode: "BURG001",
			query:       "?lang=ar",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProductDetail
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, "جبنة", resp.Extras[0].Name)
				// Extras without a translation fall back to English.
				assert.Equal(t, "Onion", resp.Extras[1].Name)
			},
		},
		{
			name:        "Product not found",
			productCode: "NONEXISTENT",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Product not found", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "NONEXISTENT", repo.lastCalledCode)
			},
		},
		{
			name:        "Repository internal error",
			productCode: "BURG001",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: errors.New("db connection lost")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Failed to retrieve product", errResp["error"])
			},
		},
		{
			name:        "Product with no sizes or extras",
			productCode: "DRNK001",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProductDetail
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, "DRNK001", resp.Code)
				assert.Len(t, resp.Sizes, 0)
				assert.Len(t, resp.Extras, 0)
			},
		},
		{
			name:        "Empty product code",
			productCode: "",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusNotFound,
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "", repo.lastCalledCode)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo)
			req := httptest.NewRequest("GET", "/catalog/"+tc.productCode+tc.query, nil)
			req.SetPathValue("code", tc.productCode)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetProduct(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

func TestHandleCreateProduct(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkRepoCall      func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name: "Success with sizes and extras",
			body: `{
				"code": "BURG002",
				"name": "Double Burger",
				"name_ar": "برجر دبل",
				"base_price": "14.00",
				"category_id": 1,
				"sizes": [
					{"name": "SMALL", "price_delta": "0"},
					{"name": "LARGE", "price_delta": "6.50"}
				],
				"extras": [{"name": "Bacon", "price_delta": "3.00"}]
			}`,
			mockRepoSetup:      func() *MockProductRepo { return &MockProductRepo{} },
			expectedStatusCode: http.StatusCreated,
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.NotNil(t, repo.createdProduct)
				assert.Equal(t, "BURG002", repo.createdProduct.Code)
				assert.Equal(t, "برجر دبل", repo.createdProduct.NameAr)
				assert.True(t, repo.createdProduct.BasePrice.Equal(decimal.NewFromFloat(14.00)))
				assert.Len(t, repo.createdProduct.Sizes, 2)
				assert.Equal(t, models.SizeLarge, repo.createdProduct.Sizes[1].Name)
				assert.Len(t, repo.createdProduct.Extras, 1)
			},
		},
		{
			name:               "Missing required fields",
			body:               `{"name": "No Code"}`,
			mockRepoSetup:      func() *MockProductRepo { return &MockProductRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Negative base price",
			body:               `{"code": "X001", "name": "X", "base_price": "-1.00", "category_id": 1}`,
			mockRepoSetup:      func() *MockProductRepo { return &MockProductRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "Duplicate code maps to conflict",
			body: `{"code": "BURG001", "name": "Clone", "base_price": "10.00", "category_id": 1}`,
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: models.ErrDuplicateProductCode}
			},
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:               "Invalid JSON body",
			body:               `{not json`,
			mockRepoSetup:      func() *MockProductRepo { return &MockProductRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo)
			req := httptest.NewRequest("POST", "/admin/products", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			handler.HandleCreateProduct(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}
