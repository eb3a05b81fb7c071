package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/server"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testApp struct {
	e   *echo.Echo
	gdb *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gdb, err := db.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{
		JWTSecret:       "e2e-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		FEURL:           "http://localhost:3000",
		PageSize:        8,
		MaxPageSize:     100,
		MediaBaseURL:    "/media/",
	}
	return &testApp{e: server.NewRouter(cfg, gdb, cache.NopCache{}, zap.NewNop()), gdb: gdb}
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body=%s", rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body=%s", rec.Body.String())
	return v
}

type authResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type detailResp struct {
	Detail string `json:"detail"`
}

type productResp struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      string  `json:"price"`
	Rating     float64 `json:"rating"`
	NumReviews int64   `json:"numReviews"`
}

type productPage struct {
	Count   int64         `json:"count"`
	Next    *string       `json:"next"`
	Results []productResp `json:"results"`
}

type cartResp struct {
	Items []struct {
		ID       int64 `json:"id"`
		Quantity int64 `json:"quantity"`
	} `json:"items"`
	Total string `json:"total"`
}

type orderResp struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	TotalPrice string `json:"total_price"`
	Items      []struct {
		ProductName string `json:"product_name"`
		Price       string `json:"price"`
		Quantity    int64  `json:"quantity"`
	} `json:"items"`
}

func (a *testApp) register(t *testing.T, username string) authResp {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register/", "", map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "password123",
		"first_name": "Taro",
	})
	requireStatus(t, rec, http.StatusCreated)
	return decode[authResp](t, rec)
}

func (a *testApp) seedProduct(t *testing.T, name, price string, stock int64) model.Product {
	t.Helper()
	p := model.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, IsActive: true}
	require.NoError(t, a.gdb.Create(&p).Error)
	return p
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth_RegisterLoginRefresh(t *testing.T) {
	app := newTestApp(t)
	reg := app.register(t, "alice")
	assert.NotEmpty(t, reg.Access)
	assert.Equal(t, "Taro", reg.Name)
	assert.False(t, reg.IsAdmin)

	//同じusernameは409
	rec := app.do(t, http.MethodPost, "/api/auth/register/", "", map[string]string{
		"username": "alice", "password": "password123", "first_name": "Taro",
	})
	requireStatus(t, rec, http.StatusConflict)

	rec = app.do(t, http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "wrong-pass"})
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = app.do(t, http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "password123"})
	requireStatus(t, rec, http.StatusOK)
	login := decode[authResp](t, rec)

	rec = app.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": login.Refresh})
	requireStatus(t, rec, http.StatusOK)
	rotated := decode[authResp](t, rec)
	assert.NotEqual(t, login.Refresh, rotated.Refresh)

	//使用済みrefreshの再利用は401、その後は新しいrefreshも無効
	rec = app.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": login.Refresh})
	requireStatus(t, rec, http.StatusUnauthorized)
	rec = app.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": rotated.Refresh})
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestProducts_ListAndDetail(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 10; i++ {
		app.seedProduct(t, "Item "+strconv.Itoa(i), "10.00", 5)
	}

	rec := app.do(t, http.MethodGet, "/api/products/", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[productPage](t, rec)
	assert.Equal(t, int64(10), page.Count)
	assert.Len(t, page.Results, 8)
	assert.NotNil(t, page.Next)

	rec = app.do(t, http.MethodGet, "/api/products/?page=2", "", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[productPage](t, rec).Results, 2)

	rec = app.do(t, http.MethodGet, "/api/products/?page=9", "", nil)
	requireStatus(t, rec, http.StatusNotFound)

	id := page.Results[0].ID
	rec = app.do(t, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10)+"/", "", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "10.00", decode[productResp](t, rec).Price)

	rec = app.do(t, http.MethodGet, "/api/products/999999/", "", nil)
	requireStatus(t, rec, http.StatusNotFound)
}

// カート追加 → 注文 → カートが空になるまで
func TestCheckoutFlow(t *testing.T) {
	app := newTestApp(t)
	user := app.register(t, "buyer")
	bean := app.seedProduct(t, "Beans", "10.00", 20)
	mug := app.seedProduct(t, "Mug", "2.50", 20)

	//未ログインは401
	rec := app.do(t, http.MethodGet, "/api/cart/", "", nil)
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = app.do(t, http.MethodPost, "/api/cart/add/", user.Access, map[string]any{"product_id": bean.ID, "quantity": 1})
	requireStatus(t, rec, http.StatusOK)
	rec = app.do(t, http.MethodPost, "/api/cart/add/", user.Access, map[string]any{"product_id": bean.ID, "quantity": 1})
	requireStatus(t, rec, http.StatusOK)
	rec = app.do(t, http.MethodPost, "/api/cart/add/", user.Access, map[string]any{"product_id": mug.ID, "quantity": 2})
	requireStatus(t, rec, http.StatusOK)

	//同じ商品は1行にまとまる
	rec = app.do(t, http.MethodGet, "/api/cart", user.Access, nil)
	requireStatus(t, rec, http.StatusOK)
	cart := decode[cartResp](t, rec)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "25.00", cart.Total)

	shipTo := map[string]string{"address": "1-2-3", "city": "Tokyo", "postal_code": "100-0001", "country": "JP"}
	rec = app.do(t, http.MethodPost, "/api/orders/add/", user.Access, shipTo)
	requireStatus(t, rec, http.StatusCreated)
	order := decode[orderResp](t, rec)
	assert.Equal(t, "25.00", order.TotalPrice)
	assert.Equal(t, "PENDING", order.Status)
	assert.Len(t, order.Items, 2)

	rec = app.do(t, http.MethodGet, "/api/cart/", user.Access, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Empty(t, decode[cartResp](t, rec).Items)

	rec = app.do(t, http.MethodPost, "/api/orders/add/", user.Access, shipTo)
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "Cart is empty", decode[detailResp](t, rec).Detail)

	//価格を変えても注文の明細は当時の価格のまま
	require.NoError(t, app.gdb.Model(&model.Product{}).Where("id = ?", bean.ID).Update("price", "99.00").Error)
	orderPath := "/api/orders/" + strconv.FormatInt(order.ID, 10) + "/"
	rec = app.do(t, http.MethodGet, orderPath, user.Access, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "25.00", decode[orderResp](t, rec).TotalPrice)

	rec = app.do(t, http.MethodGet, "/api/orders/myorders/", user.Access, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]orderResp](t, rec), 1)

	rec = app.do(t, http.MethodPatch, orderPath, user.Access, map[string]string{"status": "paid"})
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "PAID", decode[orderResp](t, rec).Status)

	//他人の注文は404
	other := app.register(t, "someone")
	rec = app.do(t, http.MethodGet, orderPath, other.Access, nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestReviews(t *testing.T) {
	app := newTestApp(t)
	p := app.seedProduct(t, "Phone", "499.99", 3)
	path := "/api/products/" + strconv.FormatInt(p.ID, 10) + "/reviews/"

	a := app.register(t, "reviewer1")
	b := app.register(t, "reviewer2")

	rec := app.do(t, http.MethodPost, path, a.Access, map[string]any{"rating": 5, "comment": "great"})
	requireStatus(t, rec, http.StatusCreated)
	rec = app.do(t, http.MethodPost, path, a.Access, map[string]any{"rating": 4})
	requireStatus(t, rec, http.StatusConflict)
	rec = app.do(t, http.MethodPost, path, b.Access, map[string]any{"rating": 3})
	requireStatus(t, rec, http.StatusCreated)

	rec = app.do(t, http.MethodGet, "/api/products/"+strconv.FormatInt(p.ID, 10)+"/", "", nil)
	requireStatus(t, rec, http.StatusOK)
	got := decode[productResp](t, rec)
	assert.InDelta(t, 4.0, got.Rating, 0.0001)
	assert.Equal(t, int64(2), got.NumReviews)
}

func TestAddresses(t *testing.T) {
	app := newTestApp(t)
	user := app.register(t, "addr")

	body := map[string]string{"address": "1-2-3", "city": "Tokyo", "postal_code": "100-0001", "country": "JP"}
	rec := app.do(t, http.MethodPost, "/api/orders/addresses/", user.Access, body)
	requireStatus(t, rec, http.StatusCreated)
	first := decode[map[string]any](t, rec)
	assert.Equal(t, true, first["is_default"])

	rec = app.do(t, http.MethodPost, "/api/orders/addresses/", user.Access, body)
	requireStatus(t, rec, http.StatusCreated)
	second := decode[map[string]any](t, rec)
	assert.Equal(t, false, second["is_default"])

	rec = app.do(t, http.MethodGet, "/api/orders/addresses/", user.Access, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	id := strconv.FormatInt(int64(first["id"].(float64)), 10)
	other := app.register(t, "stranger")
	rec = app.do(t, http.MethodGet, "/api/orders/addresses/"+id+"/", other.Access, nil)
	requireStatus(t, rec, http.StatusNotFound)

	rec = app.do(t, http.MethodDelete, "/api/orders/addresses/"+id+"/", user.Access, nil)
	requireStatus(t, rec, http.StatusNoContent)
}

func TestAdminEndpoints_RequireAdmin(t *testing.T) {
	app := newTestApp(t)
	user := app.register(t, "plain")

	rec := app.do(t, http.MethodPost, "/api/admin/products/create/", user.Access, map[string]any{"name": "x", "price": "1.00"})
	requireStatus(t, rec, http.StatusForbidden)

	rec = app.do(t, http.MethodGet, "/api/admin/audit-logs/", user.Access, nil)
	requireStatus(t, rec, http.StatusForbidden)

	//DBで昇格すれば通る（roleはDBから読む）
	require.NoError(t, app.gdb.Model(&model.User{}).Where("id = ?", user.ID).Update("role", model.RoleAdmin).Error)
	cat := model.Category{Name: "Device", Slug: "device"}
	require.NoError(t, app.gdb.Create(&cat).Error)
	rec = app.do(t, http.MethodPost, "/api/admin/products/create/", user.Access, map[string]any{
		"name": "Admin Item", "price": "12.30", "stock": 4, "category_id": cat.ID,
	})
	requireStatus(t, rec, http.StatusCreated)
	assert.Equal(t, "12.30", decode[productResp](t, rec).Price)

	rec = app.do(t, http.MethodGet, "/api/admin/audit-logs/?action=CREATE_PRODUCT", user.Access, nil)
	requireStatus(t, rec, http.StatusOK)
}

// force-logout後は古いaccess tokenが使えない
func TestForceLogout_RevokesAccessToken(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "boss")
	require.NoError(t, app.gdb.Model(&model.User{}).Where("id = ?", admin.ID).Update("role", model.RoleAdmin).Error)
	target := app.register(t, "victim")

	rec := app.do(t, http.MethodGet, "/api/cart/", target.Access, nil)
	requireStatus(t, rec, http.StatusOK)

	rec = app.do(t, http.MethodPost, "/api/admin/users/"+strconv.FormatInt(target.ID, 10)+"/force-logout/", admin.Access, nil)
	requireStatus(t, rec, http.StatusOK)

	rec = app.do(t, http.MethodGet, "/api/cart/", target.Access, nil)
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = app.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": target.Refresh})
	requireStatus(t, rec, http.StatusUnauthorized)
}

// 非公開で作った商品は一覧にも詳細にも出ない
func TestAdminCreateInactiveProduct_NotPublic(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "editor")
	require.NoError(t, app.gdb.Model(&model.User{}).Where("id = ?", admin.ID).Update("role", model.RoleAdmin).Error)
	cat := model.Category{Name: "Device", Slug: "device"}
	require.NoError(t, app.gdb.Create(&cat).Error)
	app.seedProduct(t, "Public Phone", "10.00", 1)

	rec := app.do(t, http.MethodPost, "/api/admin/products/create/", admin.Access, map[string]any{
		"name": "Draft Phone", "price": "20.00", "stock": 1, "is_active": false, "category_id": cat.ID,
	})
	requireStatus(t, rec, http.StatusCreated)
	draft := decode[map[string]any](t, rec)
	assert.Equal(t, false, draft["is_active"])
	draftID := strconv.FormatInt(int64(draft["id"].(float64)), 10)

	rec = app.do(t, http.MethodGet, "/api/products/", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[productPage](t, rec)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Public Phone", page.Results[0].Name)

	rec = app.do(t, http.MethodGet, "/api/products/"+draftID+"/", "", nil)
	requireStatus(t, rec, http.StatusNotFound)

	//価格の上限を超えると400
	rec = app.do(t, http.MethodPost, "/api/admin/products/create/", admin.Access, map[string]any{
		"name": "Too Expensive", "price": "100000000.00", "category_id": cat.ID,
	})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "price is too large", decode[detailResp](t, rec).Detail)
}
