package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
	"github.com/flicky/shopsphere-api/internal/service"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, c *model.Category) error {
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return repository.ErrDuplicate
		}
	}
	c.ID = uuid.New()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepo) List(_ context.Context, _ bool) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, c *model.Category) error {
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.categories, id)
	return nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func token(t *testing.T, role model.Role) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func newTestRouter(h Handlers) *gin.Engine {
	r := gin.New()
	Register(r, h, testSecret)
	return r
}

func do(r http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrProductNotFound, http.StatusNotFound},
		{service.ErrOrderAccessDenied, http.StatusForbidden},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrDuplicateReview, http.StatusConflict},
		{service.ErrEmptyOrder, http.StatusBadRequest},
		{service.ErrOrderNotCancel, http.StatusBadRequest},
		{service.ErrInvalidCouponCode, http.StatusBadRequest},
		{fmt.Errorf("add item: %w", service.ErrCartItemNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respondError(c, errors.New("pg: connection refused")) })

	w := do(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Message)
}

func TestCategoryHandler(t *testing.T) {
	repo := newMockCategoryRepo()
	r := newTestRouter(Handlers{Category: NewCategoryHandler(service.NewCategoryService(repo))})
	admin := token(t, model.RoleAdmin)

	w := do(r, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Home & Garden"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID   uuid.UUID `json:"id"`
		Slug string    `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "home-garden", created.Slug)

	w = do(r, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Home & Garden"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodGet, "/api/categories/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/categories/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Category not found", decode(t, w).Message)

	w = do(r, http.MethodGet, "/api/categories/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryHandler_ValidationErrors(t *testing.T) {
	r := newTestRouter(Handlers{Category: NewCategoryHandler(service.NewCategoryService(newMockCategoryRepo()))})

	w := do(r, http.MethodPost, "/api/categories", token(t, model.RoleAdmin), map[string]any{"description": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "name", env.Errors[0].Field)
	assert.Equal(t, "name is required", env.Errors[0].Message)
}

func TestRouter_AccessControl(t *testing.T) {
	r := newTestRouter(Handlers{
		Product: NewProductHandler(nil),
		Order:   NewOrderHandler(nil),
		Admin:   NewAdminHandler(nil),
	})
	user := token(t, model.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/products", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/products", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/orders", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/admin/dashboard/stats", user, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/orders/my-orders", "", nil).Code)
}

func TestOrderHandler_StatusValidation(t *testing.T) {
	r := newTestRouter(Handlers{Order: NewOrderHandler(nil)})
	path := "/api/orders/" + uuid.NewString() + "/status"

	w := do(r, http.MethodPut, path, token(t, model.RoleAdmin), map[string]any{"status": "lost"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "status", env.Errors[0].Field)
	assert.Equal(t, "Invalid order status", env.Errors[0].Message)
}

func TestOrderHandler_PaymentMethodValidation(t *testing.T) {
	r := newTestRouter(Handlers{Order: NewOrderHandler(nil)})
	body := map[string]any{
		"items":           []map[string]any{{"product": uuid.NewString(), "quantity": 1}},
		"shippingAddress": map[string]any{"street": "1 Main St", "city": "Springfield"},
		"paymentMethod":   "barter",
	}

	w := do(r, http.MethodPost, "/api/orders", token(t, model.RoleUser), body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "paymentMethod", env.Errors[0].Field)
}

func TestBindOptionalJSON(t *testing.T) {
	r := gin.New()
	r.PUT("/", func(c *gin.Context) {
		var req dto.CancelOrderRequest
		if bindOptionalJSON(c, &req) {
			ok(c, req.Reason)
		}
	})
	send := func(body string, length int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = length
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("", 0).Code)
	assert.Equal(t, http.StatusOK, send("", -1).Code, "chunked empty body")

	w := send(`{"reason":"changed my mind"}`, -1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "changed my mind")

	assert.Equal(t, http.StatusBadRequest, send("{not json", -1).Code)
	long := `{"reason":"` + strings.Repeat("x", 501) + `"}`
	assert.Equal(t, http.StatusBadRequest, send(long, int64(len(long))).Code)
}

func TestHealthHandler(t *testing.T) {
	r := newTestRouter(Handlers{Health: NewHealthHandler(stubPinger{}, nil, nil)})
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "", nil).Code)

	w := do(r, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"connected"`)
	assert.NotContains(t, w.Body.String(), "redis")

	r = newTestRouter(Handlers{Health: NewHealthHandler(stubPinger{err: errors.New("down")}, nil, nil)})
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/readyz", "", nil).Code)
}

func TestRouter_NoRoute(t *testing.T) {
	r := newTestRouter(Handlers{})
	w := do(r, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)
}
