package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufrahub/sufra/internal/session"
	"github.com/sufrahub/sufra/models"
)

// --- Mock Repository ---

type MockOrderRepo struct {
	Orders []models.Order
	Err    error

	lastStatusNumber string
	lastStatusTo     models.OrderStatus
	lastPaidNumber   string
	lastPaid         bool
	lastFilters      models.OrderFilters
}

func (m *MockOrderRepo) GetByNumber(number string) (*models.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Orders {
		if m.Orders[i].Number == number {
			return &m.Orders[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (m *MockOrderRepo) GetByUser(userID uint) ([]models.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Order
	for _, o := range m.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderRepo) GetFilteredOrders(offset, limit int, filters models.OrderFilters) ([]models.Order, int64, error) {
	m.lastFilters = filters
	if m.Err != nil {
		return nil, 0, m.Err
	}
	var out []models.Order
	for _, o := range m.Orders {
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		if filters.UserID != 0 && o.UserID != filters.UserID {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *MockOrderRepo) UpdateStatus(number string, to models.OrderStatus) (*models.Order, error) {
	m.lastStatusNumber = number
	m.lastStatusTo = to
	if m.Err != nil {
		return nil, m.Err
	}
	order, err := m.GetByNumber(number)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, to) {
		return nil, models.ErrInvalidTransition
	}
	order.Status = to
	return order, nil
}

func (m *MockOrderRepo) MarkPaid(number string, paid bool) (*models.Order, error) {
	m.lastPaidNumber = number
	m.lastPaid = paid
	if m.Err != nil {
		return nil, m.Err
	}
	order, err := m.GetByNumber(number)
	if err != nil {
		return nil, err
	}
	order.Paid = paid
	return order, nil
}

// --- Helpers ---

func testOrder(number string, userID uint, status models.OrderStatus) models.Order {
	return models.Order{
		Number:      number,
		UserID:      userID,
		Phone:       "+966501234567",
		Street:      "King Fahd Road 12",
		City:        "Riyadh",
		Country:     "SA",
		Subtotal:    decimal.NewFromFloat(36.00),
		DeliveryFee: decimal.NewFromFloat(5.00),
		Total:       decimal.NewFromFloat(41.00),
		Status:      status,
		CreatedAt:   time.Now(),
		Lines: []models.OrderLine{
			{
				ProductID:     1,
				ProductName:   "Classic Burger",
				ProductNameAr: "برجر كلاسيك",
				SizeName:      "MEDIUM",
				Extras: models.ExtraSnapshots{
					{ID: 1, Name: "Cheese", NameAr: "جبنة", PriceDelta: decimal.NewFromFloat(2.00)},
				},
				UnitPrice: decimal.NewFromFloat(18.00),
				Quantity:  2,
			},
		},
	}
}

func customerSession(userID uint) session.Session {
	return session.Session{Token: "tok", UserID: userID, Role: models.RoleCustomer}
}

func adminSession() session.Session {
	return session.Session{Token: "tok", UserID: 99, Role: models.RoleAdmin}
}

func withSession(req *http.Request, sess session.Session) *http.Request {
	return req.WithContext(session.NewContext(req.Context(), sess))
}

// --- Tests ---

func TestHandleGetMine(t *testing.T) {
	repo := &MockOrderRepo{Orders: []models.Order{
		testOrder("ORD-AAA", 7, models.StatusPending),
		testOrder("ORD-BBB", 7, models.StatusDelivered),
		testOrder("ORD-CCC", 8, models.StatusPending),
	}}
	handler := NewOrdersHandler(repo)

	req := withSession(httptest.NewRequest("GET", "/orders", nil), customerSession(7))
	rec := httptest.NewRecorder()

	handler.HandleGetMine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []OrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "ORD-AAA", resp[0].Number)
	assert.Equal(t, 41.00, resp[0].Total)
	require.Len(t, resp[0].Lines, 1)
	assert.Equal(t, "Classic Burger", resp[0].Lines[0].ProductName)
	assert.Equal(t, 36.00, resp[0].Lines[0].LineTotal)
	assert.Equal(t, []string{"Cheese"}, resp[0].Lines[0].ExtraNames)
}

func TestHandleGetOne(t *testing.T) {
	newRepo := func() *MockOrderRepo {
		return &MockOrderRepo{Orders: []models.Order{
			testOrder("ORD-AAA", 7, models.StatusPending),
		}}
	}

	t.Run("owner sees own order", func(t *testing.T) {
		handler := NewOrdersHandler(newRepo())
		req := withSession(httptest.NewRequest("GET", "/orders/ORD-AAA", nil), customerSession(7))
		req.SetPathValue("number", "ORD-AAA")
		rec := httptest.NewRecorder()

		handler.HandleGetOne(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp OrderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ORD-AAA", resp.Number)
	})

	t.Run("other customer gets 404", func(t *testing.T) {
		handler := NewOrdersHandler(newRepo())
		req := withSession(httptest.NewRequest("GET", "/orders/ORD-AAA", nil), customerSession(8))
		req.SetPathValue("number", "ORD-AAA")
		rec := httptest.NewRecorder()

		handler.HandleGetOne(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("admin sees any order", func(t *testing.T) {
		handler := NewOrdersHandler(newRepo())
		req := withSession(httptest.NewRequest("GET", "/orders/ORD-AAA", nil), adminSession())
		req.SetPathValue("number", "ORD-AAA")
		rec := httptest.NewRecorder()

		handler.HandleGetOne(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown number", func(t *testing.T) {
		handler := NewOrdersHandler(newRepo())
		req := withSession(httptest.NewRequest("GET", "/orders/ORD-ZZZ", nil), customerSession(7))
		req.SetPathValue("number", "ORD-ZZZ")
		rec := httptest.NewRecorder()

		handler.HandleGetOne(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("arabic line names with lang=ar", func(t *testing.T) {
		handler := NewOrdersHandler(newRepo())
		req := withSession(httptest.NewRequest("GET", "/orders/ORD-AAA?lang=ar", nil), customerSession(7))
		req.SetPathValue("number", "ORD-AAA")
		rec := httptest.NewRecorder()

		handler.HandleGetOne(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp OrderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "برجر كلاسيك", resp.Lines[0].ProductName)
		assert.Equal(t, []string{"جبنة"}, resp.Lines[0].ExtraNames)
	})
}

func TestHandleGetAll(t *testing.T) {
	repo := &MockOrderRepo{Orders: []models.Order{
		testOrder("ORD-AAA", 7, models.StatusPending),
		testOrder("ORD-BBB", 8, models.StatusDelivered),
	}}
	handler := NewOrdersHandler(repo)

	t.Run("status filter", func(t *testing.T) {
		req := withSession(httptest.NewRequest("GET", "/admin/orders?status=PENDING", nil), adminSession())
		rec := httptest.NewRecorder()

		handler.HandleGetAll(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Total  int             `json:"total"`
			Orders []OrderResponse `json:"orders"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, "ORD-AAA", resp.Orders[0].Number)
		assert.Equal(t, models.StatusPending, repo.lastFilters.Status)
	})

	t.Run("user filter", func(t *testing.T) {
		req := withSession(httptest.NewRequest("GET", "/admin/orders?user_id=8", nil), adminSession())
		rec := httptest.NewRecorder()

		handler.HandleGetAll(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(8), repo.lastFilters.UserID)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		req := withSession(httptest.NewRequest("GET", "/admin/orders?status=SHIPPED", nil), adminSession())
		rec := httptest.NewRecorder()

		handler.HandleGetAll(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUpdateStatus(t *testing.T) {
	testCases := []struct {
		name               string
		number             string
		body               string
		initialStatus      models.OrderStatus
		repoErr            error
		expectedStatusCode int
	}{
		{
			name:               "Allowed transition",
			number:             "ORD-AAA",
			body:               `{"status": "PREPARING"}`,
			initialStatus:      models.StatusPending,
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "Cancellation from pending",
			number:             "ORD-AAA",
			body:               `{"status": "CANCELLED"}`,
			initialStatus:      models.StatusPending,
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "Skipping a step conflicts",
			number:             "ORD-AAA",
			body:               `{"status": "DELIVERED"}`,
			initialStatus:      models.StatusPending,
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:               "Cancelling en route conflicts",
			number:             "ORD-AAA",
			body:               `{"status": "CANCELLED"}`,
			initialStatus:      models.StatusOnWay,
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:               "Unknown status value",
			number:             "ORD-AAA",
			body:               `{"status": "SHIPPED"}`,
			initialStatus:      models.StatusPending,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Unknown order",
			number:             "ORD-ZZZ",
			body:               `{"status": "PREPARING"}`,
			initialStatus:      models.StatusPending,
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "Invalid JSON",
			number:             "ORD-AAA",
			body:               `{oops`,
			initialStatus:      models.StatusPending,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Repository error",
			number:             "ORD-AAA",
			body:               `{"status": "PREPARING"}`,
			initialStatus:      models.StatusPending,
			repoErr:            errors.New("db down"),
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockOrderRepo{
				Orders: []models.Order{testOrder("ORD-AAA", 7, tc.initialStatus)},
				Err:    tc.repoErr,
			}
			handler := NewOrdersHandler(repo)
			req := withSession(httptest.NewRequest("PATCH", "/admin/orders/"+tc.number+"/status", strings.NewReader(tc.body)), adminSession())
			req.SetPathValue("number", tc.number)
			rec := httptest.NewRecorder()

			handler.HandleUpdateStatus(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}

func TestHandleMarkPaid(t *testing.T) {
	repo := &MockOrderRepo{Orders: []models.Order{testOrder("ORD-AAA", 7, models.StatusPending)}}
	handler := NewOrdersHandler(repo)

	req := withSession(httptest.NewRequest("PATCH", "/admin/orders/ORD-AAA/paid", strings.NewReader(`{"paid": true}`)), adminSession())
	req.SetPathValue("number", "ORD-AAA")
	rec := httptest.NewRecorder()

	handler.HandleMarkPaid(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp OrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Paid)
	assert.Equal(t, "ORD-AAA", repo.lastPaidNumber)
	assert.True(t, repo.lastPaid)
}
