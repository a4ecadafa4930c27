package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/shopfront/internal/domain/auth"
	"github.com/shopfront/shopfront/internal/domain/landing"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/product"
)

var testSecret = []byte("test-secret")

type productRepoStub struct {
	products map[int64]product.Product
	nextID   int64
}

func (s *productRepoStub) List(context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *productRepoStub) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *productRepoStub) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *productRepoStub) Create(_ context.Context, p *product.Product) error {
	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = *p
	return nil
}

func (s *productRepoStub) Update(_ context.Context, p *product.Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *productRepoStub) Delete(_ context.Context, id int64) error {
	if _, ok := s.products[id]; !ok {
		return product.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

type orderRepoStub struct {
	orders map[int64]order.Order
	nextID int64
}

func (s *orderRepoStub) Create(_ context.Context, o *order.Order) error {
	o.ID = s.nextID
	s.nextID++
	s.orders[o.ID] = *o
	return nil
}

func (s *orderRepoStub) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (s *orderRepoStub) List(context.Context) ([]order.Order, error) {
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *orderRepoStub) Update(_ context.Context, o *order.Order) error {
	if _, ok := s.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	s.orders[o.ID] = *o
	return nil
}

func (s *orderRepoStub) Delete(_ context.Context, id int64) error {
	if _, ok := s.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

type landingRepoStub struct {
	bySlug map[string]landing.Page
	nextID int64
}

func (s *landingRepoStub) Create(_ context.Context, p *landing.Page) error {
	if _, ok := s.bySlug[p.Slug]; ok {
		return landing.ErrSlugTaken
	}
	p.ID = s.nextID
	s.nextID++
	s.bySlug[p.Slug] = *p
	return nil
}

func (s *landingRepoStub) List(context.Context) ([]landing.Page, error) {
	out := make([]landing.Page, 0, len(s.bySlug))
	for _, p := range s.bySlug {
		out = append(out, p)
	}
	return out, nil
}

func (s *landingRepoStub) GetBySlug(_ context.Context, slug string) (*landing.Page, error) {
	p, ok := s.bySlug[slug]
	if !ok {
		return nil, landing.ErrNotFound
	}
	return &p, nil
}

func (s *landingRepoStub) Delete(_ context.Context, id int64) error {
	for slug, p := range s.bySlug {
		if p.ID == id {
			delete(s.bySlug, slug)
			return nil
		}
	}
	return landing.ErrNotFound
}

type adminRepoStub struct {
	byEmail map[string]*auth.Admin
	nextID  int64
}

func (s *adminRepoStub) Create(_ context.Context, a *auth.Admin) error {
	if _, ok := s.byEmail[a.Email]; ok {
		return auth.ErrEmailTaken
	}
	a.ID = s.nextID
	s.nextID++
	s.byEmail[a.Email] = a
	return nil
}

func (s *adminRepoStub) GetByEmail(_ context.Context, email string) (*auth.Admin, error) {
	a, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return a, nil
}

type testEnv struct {
	router   http.Handler
	products *productRepoStub
	orders   *orderRepoStub
	pages    *landingRepoStub
	auth     *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	products := &productRepoStub{products: make(map[int64]product.Product), nextID: 1}
	orders := &orderRepoStub{orders: make(map[int64]order.Order), nextID: 1}
	pages := &landingRepoStub{bySlug: make(map[string]landing.Page), nextID: 1}
	authSvc := auth.NewService(&adminRepoStub{byEmail: make(map[string]*auth.Admin), nextID: 1}, testSecret, time.Hour)

	h := New(products, order.NewService(products, orders), pages, authSvc)
	return &testEnv{
		router:   h.Router(testSecret),
		products: products,
		orders:   orders,
		pages:    pages,
		auth:     authSvc,
	}
}

func (e *testEnv) seedProduct(t *testing.T, name string, sell int64) product.Product {
	t.Helper()
	p := product.Product{
		Name:      name,
		SellPrice: decimal.NewFromInt(sell),
		Images:    []string{"https://images.example.com/p.jpg"},
	}
	require.NoError(t, e.products.Create(context.Background(), &p))
	return p
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.auth.SignUp(ctx, "Store Admin", "admin@example.com", "correct horse")
	require.NoError(t, err)
	token, _, err := e.auth.SignIn(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func checkoutBody(productID int64, quantity int, extra string) string {
	return fmt.Sprintf(`{
		"customer": {"name": "Rahim Uddin", "mobileNumber": "01712345678", "address": "Dhanmondi, Dhaka"},
		"orderItems": [{"productId": %d, "quantity": %d}],
		"shippingCharge": 150%s
	}`, productID, quantity, extra)
}

func TestCheckoutComputesServerSideTotal(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Basmati Rice 5kg", 100)

	// The client-sent totalPrice is an unknown field and is ignored.
	w := env.do(http.MethodPost, "/api/checkout", "", checkoutBody(p.ID, 2, `, "totalPrice": 1`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, float64(350), body["totalPrice"])
	assert.Equal(t, "pending", body["orderStatus"])

	items := body["orderItems"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Basmati Rice 5kg", item["name"])
	assert.Equal(t, float64(100), item["price"])
}

func TestCheckoutIgnoresClientStatus(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Rice", 100)

	w := env.do(http.MethodPost, "/api/checkout", "", checkoutBody(p.ID, 1, `, "orderStatus": "delivered"`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pending", decodeBody(t, w)["orderStatus"])
}

func TestCheckoutUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/checkout", "", checkoutBody(42, 1, ""))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "product 42 not found")
	assert.Empty(t, env.orders.orders)
}

func TestCheckoutValidationFieldMap(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/checkout", "", `{
		"customer": {"name": "", "mobileNumber": "0171", "address": ""},
		"orderItems": []
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "customer.name")
	assert.Contains(t, fields, "customer.mobileNumber")
	assert.Contains(t, fields, "customer.address")
	assert.Contains(t, fields, "orderItems")
}

func TestCheckoutMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/checkout", "", `{"customer": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "body")
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/admin/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/admin/orders", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminProductCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.do(http.MethodPost, "/api/admin/products", token, `{
		"name": "Miniket Rice 25kg",
		"images": ["https://images.example.com/miniket.jpg"],
		"purchasePrice": 1650,
		"sellPrice": 1950
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody(t, w)
	id := int64(created["id"].(float64))
	assert.Equal(t, float64(1950), created["sellPrice"])

	w = env.do(http.MethodPut, fmt.Sprintf("/api/admin/products/%d", id), token, `{
		"name": "Miniket Rice 25kg",
		"images": ["https://images.example.com/miniket.jpg"],
		"purchasePrice": 1650,
		"sellPrice": -1
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "sellPrice")

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/admin/products/%d", id), token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/products/%d", id), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminOrderUpdate(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	p := env.seedProduct(t, "Rice", 100)

	w := env.do(http.MethodPost, "/api/checkout", "", checkoutBody(p.ID, 1, ""))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int64(decodeBody(t, w)["id"].(float64))

	w = env.do(http.MethodPut, fmt.Sprintf("/api/admin/orders/%d", orderID), token,
		checkoutBody(p.ID, 3, `, "orderStatus": "delivered"`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "delivered", body["orderStatus"])
	assert.Equal(t, float64(450), body["totalPrice"])
}

func TestLandingPageLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	p := env.seedProduct(t, "Basmati Rice 5kg", 750)

	pageBody := fmt.Sprintf(`{
		"name": "Weekly Rice Deals",
		"slug": "weekly-rice-deals",
		"landingPageProducts": [{
			"productId": %d,
			"description": "Aged basmati, free delivery this week.",
			"faqs": [{"question": "Fresh harvest?", "answer": "Yes."}]
		}]
	}`, p.ID)

	w := env.do(http.MethodPost, "/api/admin/landing-pages", token, pageBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Public fetch by slug.
	w = env.do(http.MethodGet, "/api/landing-pages/weekly-rice-deals", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Weekly Rice Deals", body["name"])

	// Duplicate slug conflicts.
	w = env.do(http.MethodPost, "/api/admin/landing-pages", token, pageBody)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown slug.
	w = env.do(http.MethodGet, "/api/landing-pages/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLandingPageUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.do(http.MethodPost, "/api/admin/landing-pages", token, `{
		"name": "Deals",
		"slug": "deals",
		"landingPageProducts": [{
			"productId": 42,
			"description": "Gone.",
			"faqs": [{"question": "Q", "answer": "A"}]
		}]
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, env.pages.bySlug)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/sign-up", "", `{
		"name": "Store Admin",
		"email": "admin@example.com",
		"password": "correct horse",
		"confirmPassword": "correct horse"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "admin@example.com", user["email"])

	// Mismatched confirmation.
	w = env.do(http.MethodPost, "/api/auth/sign-up", "", `{
		"name": "Store Admin",
		"email": "other@example.com",
		"password": "correct horse",
		"confirmPassword": "wrong horse"
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "confirmPassword")

	// Duplicate email.
	w = env.do(http.MethodPost, "/api/auth/sign-up", "", `{
		"name": "Store Admin",
		"email": "admin@example.com",
		"password": "correct horse",
		"confirmPassword": "correct horse"
	}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password.
	w = env.do(http.MethodPost, "/api/auth/sign-in", "", `{
		"email": "admin@example.com",
		"password": "wrong"
	}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Successful sign-in yields a token accepted by the admin routes.
	w = env.do(http.MethodPost, "/api/auth/sign-in", "", `{
		"email": "admin@example.com",
		"password": "correct horse"
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = env.do(http.MethodGet, "/api/admin/orders", token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Session probe.
	w = env.do(http.MethodGet, "/api/auth/session", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	sess := decodeBody(t, w)["session"].(map[string]any)
	assert.Equal(t, "admin@example.com", sess["email"])

	w = env.do(http.MethodGet, "/api/auth/session", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeBody(t, w)["session"])

	// Sign-out is stateless.
	w = env.do(http.MethodPost, "/api/auth/sign-out", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
}

func TestInvalidIDParam(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/products/abc", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "id")
}
