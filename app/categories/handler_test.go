package categories

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sufrahub/sufra/models"
)

// --- Mock Repository ---

type MockCategoryRepo struct {
	Categories []models.Category
	ListErr    error
	CreateErr  error
	UpdateErr  error
	DeleteErr  error

	LastSaved   *models.Category
	LastDeleted uint
}

func (m *MockCategoryRepo) GetAllCategories() ([]models.Category, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Categories, nil
}

func (m *MockCategoryRepo) CreateCategory(category *models.Category) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.LastSaved = category
	return nil
}

func (m *MockCategoryRepo) UpdateCategory(category *models.Category) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.LastSaved = category
	return nil
}

func (m *MockCategoryRepo) DeleteCategory(id uint) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.LastDeleted = id
	return nil
}

// --- Tests ---

func TestHandleGetAll(t *testing.T) {
	testCases := []struct {
		name               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success with categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{
						{ID: 1, Code: "burgers", Name: "Burgers", NameAr: "برجر"},
						{ID: 2, Code: "drinks", Name: "Drinks", NameAr: "مشروبات"},
					},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
				assert.Equal(t, "burgers", resp[0].Code)
				assert.Equal(t, "برجر", resp[0].NameAr)
				assert.Equal(t, "Drinks", resp[1].Name)
			},
		},
		{
			name: "Success with no categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 0)
			},
		},
		{
			name: "Repository error",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{ListErr: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "failed to fetch categories", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest("GET", "/categories", nil)
			rec := httptest.NewRecorder()

			handler.HandleGetAll(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:               "Success",
			body:               `{"code": "desserts", "name": "Desserts", "name_ar": "حلويات"}`,
			mockRepoSetup:      func() *MockCategoryRepo { return &MockCategoryRepo{} },
			expectedStatusCode: http.StatusCreated,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved)
				assert.Equal(t, "desserts", repo.LastSaved.Code)
				assert.Equal(t, "حلويات", repo.LastSaved.NameAr)
			},
		},
		{
			name:               "Missing code",
			body:               `{"name": "Desserts"}`,
			mockRepoSetup:      func() *MockCategoryRepo { return &MockCategoryRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Invalid JSON",
			body:               `{oops`,
			mockRepoSetup:      func() *MockCategoryRepo { return &MockCategoryRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "Duplicate code",
			body: `{"code": "burgers", "name": "Burgers"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: models.ErrDuplicateCategoryCode}
			},
			expectedStatusCode: http.StatusConflict,
		},
		{
			name: "Repository error",
			body: `{"code": "burgers", "name": "Burgers"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest("POST", "/admin/categories", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			handler.HandleCreate(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	testCases := []struct {
		name               string
		id                 string
		body               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:               "Success",
			id:                 "3",
			body:               `{"code": "sides", "name": "Sides", "name_ar": "مقبلات"}`,
			mockRepoSetup:      func() *MockCategoryRepo { return &MockCategoryRepo{} },
			expectedStatusCode: http.StatusOK,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved)
				assert.Equal(t, uint(3), repo.LastSaved.ID)
				assert.Equal(t, "sides", repo.LastSaved.Code)
			},
		},
		{
			name:               "Invalid id",
			id:                 "abc",
			body:               `{"code": "sides", "name": "Sides"}`,
			mockRepoSetup:      func() *MockCategoryRepo { return &MockCategoryRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "Not found",
			id:   "99",
			body: `{"code": "sides", "name": "Sides"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{UpdateErr: models.ErrCategoryNotFound}
			},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name: "Duplicate code",
			id:   "3",
			body: `{"code": "burgers", "name": "Burgers"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{UpdateErr: models.ErrDuplicateCategoryCode}
			},
			expectedStatusCode: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest("PUT", "/admin/categories/"+tc.id, strings.NewReader(tc.body))
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()

			handler.HandleUpdate(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	testCases := []struct {
		name               string
		id                 string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:               "Success",
			id:                 "2",
			mockRepoSetup:      func() *MockCategoryRepo { return &MockCategoryRepo{} },
			expectedStatusCode: http.StatusNoContent,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Equal(t, uint(2), repo.LastDeleted)
			},
		},
		{
			name:               "Invalid id",
			id:                 "abc",
			mockRepoSetup:      func() *MockCategoryRepo { return &MockCategoryRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "Not found",
			id:   "99",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{DeleteErr: models.ErrCategoryNotFound}
			},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name: "Category still in use",
			id:   "1",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{DeleteErr: models.ErrCategoryInUse}
			},
			expectedStatusCode: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest("DELETE", "/admin/categories/"+tc.id, nil)
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()

			handler.HandleDelete(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}
