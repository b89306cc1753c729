package adminapi

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylehub/stylehub/config"
	"github.com/stylehub/stylehub/internal/app"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/internal/testutil"
	"github.com/stylehub/stylehub/internal/webserver"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@stylehub.com"
	adminPassword = "admin-password"
)

type testEnv struct {
	app *app.Application
	db  *gorm.DB
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.Web.StaticDir = ""
	cfg.Web.AdminDir = t.TempDir()
	application := app.NewApplication(cfg)
	db := testutil.NewTestDB(t)
	application.OverrideDB(db)
	webserver.Init(application)
	Init()

	testutil.CreateUser(t, db, adminEmail, adminPassword, domain.RoleAdmin, domain.UserStatusActive)
	return &testEnv{app: application, db: db}
}

func request(t *testing.T, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	webserver.Root().ServeHTTP(rec, req)
	return rec
}

func signIn(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := request(t, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[len(cookies)-1]
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func createTestProduct(t *testing.T, db *gorm.DB, name, price, category string, featured bool, status string) domain.Product {
	t.Helper()
	p := domain.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Image:    domain.DefaultProductImage,
		Featured: featured,
		Status:   status,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestProductLifecycle(t *testing.T) {
	env := setup(t)
	admin := signIn(t, adminEmail, adminPassword)

	rec := request(t, http.MethodPost, "/api/products",
		`{"name":"Tee","price":"19.99","category":"men","featured":1}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, true, data["success"])
	id := int64(data["id"].(float64))
	require.NotZero(t, id)

	var stored domain.Product
	require.NoError(t, env.db.First(&stored, id).Error)
	assert.Equal(t, domain.ProductStatusActive, stored.Status)
	assert.True(t, stored.Featured)
	assert.Equal(t, domain.DefaultProductImage, stored.Image)
	assert.Equal(t, "19.99", stored.Price.StringFixed(2))

	rec = request(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Tee"`)

	rec = request(t, http.MethodPut, "/api/products",
		`{"id":`+jsonInt(id)+`,"name":"Tee","price":24.5,"category":"men","featured":0}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, env.db.First(&stored, id).Error)
	assert.Equal(t, "24.50", stored.Price.StringFixed(2))
	assert.False(t, stored.Featured)

	rec = request(t, http.MethodDelete, "/api/products/"+jsonInt(id), "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = request(t, http.MethodGet, "/api/products", "", nil)
	assert.NotContains(t, rec.Body.String(), `"Tee"`)
	rec = request(t, http.MethodGet, "/api/products/"+jsonInt(id), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the row survives the soft delete
	require.NoError(t, env.db.First(&stored, id).Error)
	assert.Equal(t, domain.ProductStatusDeleted, stored.Status)

	rec = request(t, http.MethodPost, "/api/admin/products/"+jsonInt(id)+"/restore", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = request(t, http.MethodGet, "/api/products?id="+jsonInt(id), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductWritesRequireAdmin(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.db, "shopper@example.com", "shopper-pass", domain.RoleCustomer, domain.UserStatusActive)
	body := `{"name":"Tee","price":"19.99","category":"men"}`

	rec := request(t, http.MethodPost, "/api/products", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	customer := signIn(t, "shopper@example.com", "shopper-pass")
	rec = request(t, http.MethodPost, "/api/products", body, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	env.db.Model(&domain.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestProductValidation(t *testing.T) {
	setup(t)
	admin := signIn(t, adminEmail, adminPassword)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing name", `{"price":"10","category":"men"}`, "MISSING_NAME"},
		{"missing price", `{"name":"Cap","category":"men"}`, "MISSING_PRICE"},
		{"bad price", `{"name":"Cap","price":"ten","category":"men"}`, "INVALID_PRICE"},
		{"negative price", `{"name":"Cap","price":-1,"category":"men"}`, "INVALID_PRICE"},
		{"bad category", `{"name":"Cap","price":"10","category":"kids"}`, "INVALID_CATEGORY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(t, http.MethodPost, "/api/products", tt.body, admin)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	setup(t)
	admin := signIn(t, adminEmail, adminPassword)

	rec := request(t, http.MethodPut, "/api/products/999",
		`{"name":"Ghost","price":"1","category":"men"}`, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = request(t, http.MethodPut, "/api/products", `{"name":"Ghost","price":"1","category":"men"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_ID", decode(t, rec)["code"])
}

func TestFeaturedProducts(t *testing.T) {
	env := setup(t)
	for i := 0; i < 8; i++ {
		createTestProduct(t, env.db, "Featured", "10.00", domain.CategoryWomen, true, domain.ProductStatusActive)
	}
	createTestProduct(t, env.db, "Hidden", "10.00", domain.CategoryWomen, true, domain.ProductStatusDeleted)

	for _, target := range []string{"/api/products/featured", "/api/products?featured=1"} {
		rec := request(t, http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rows := decode(t, rec)["data"].([]interface{})
		assert.Len(t, rows, 6, target)
		assert.NotContains(t, rec.Body.String(), "Hidden")
	}
}

func TestAdminProductViews(t *testing.T) {
	env := setup(t)
	admin := signIn(t, adminEmail, adminPassword)
	createTestProduct(t, env.db, "Live", "12.00", domain.CategoryMen, false, domain.ProductStatusActive)
	gone := createTestProduct(t, env.db, "Gone", "8.00", domain.CategoryAccessories, false, domain.ProductStatusDeleted)

	rec := request(t, http.MethodGet, "/api/admin/products", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"].([]interface{}), 2)

	rec = request(t, http.MethodGet, "/api/admin/products/"+jsonInt(gone.ID), "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Gone"`)

	rec = request(t, http.MethodGet, "/api/admin/products/export", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
	assert.Contains(t, rec.Body.String(), "8.00")
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.db, "idle@example.com", "correct-horse", domain.RoleCustomer, domain.UserStatusDisabled)

	rec := request(t, http.MethodPost, "/api/auth/login",
		`{"email":"idle@example.com","password":"correct-horse"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = request(t, http.MethodPost, "/api/auth/login",
		`{"email":"`+adminEmail+`","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode(t, rec)["msg"])
}

func TestLoginStampsLastLogin(t *testing.T) {
	env := setup(t)
	before := time.Now().Add(-time.Second)
	cookie := signIn(t, strings.ToUpper(adminEmail), adminPassword)

	var user domain.SysUser
	require.NoError(t, env.db.Where("email = ?", adminEmail).First(&user).Error)
	assert.True(t, user.LastLogin.After(before))

	rec := request(t, http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoleAdmin, decode(t, rec)["data"].(map[string]interface{})["role"])
}

func TestAuthActionDispatch(t *testing.T) {
	setup(t)

	rec := request(t, http.MethodPost, "/api/auth",
		`{"action":"register","firstName":"Ada","lastName":"Byron","email":"ada@example.com","password":"analytical"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = request(t, http.MethodPost, "/api/auth",
		`{"action":"register","firstName":"Ada","lastName":"Byron","email":"ADA@example.com","password":"analytical"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_EXISTS", decode(t, rec)["code"])

	rec = request(t, http.MethodPost, "/api/auth",
		`{"action":"register","firstName":"Bo","lastName":"B","email":"bo@example.com","password":"short"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PASSWORD", decode(t, rec)["code"])

	rec = request(t, http.MethodPost, "/api/auth",
		`{"action":"login","email":"ada@example.com","password":"analytical"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, domain.RoleCustomer, user["role"])
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	cookie := cookies[len(cookies)-1]

	rec = request(t, http.MethodPost, "/api/auth", `{"action":"logout"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = request(t, http.MethodGet, "/api/auth/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(t, http.MethodPost, "/api/auth", `{"action":"reset"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ACTION", decode(t, rec)["code"])
}

func TestContactSubmission(t *testing.T) {
	env := setup(t)
	published := make(chan domain.ContactMessage, 1)
	require.NoError(t, env.app.Bus().Subscribe(app.TopicContactCreated, func(msg domain.ContactMessage) {
		published <- msg
	}))

	rec := request(t, http.MethodPost, "/api/contact",
		`{"firstName":"Jo","lastName":"Doe","email":"jo@example.com","subject":"Sizes","message":"<b>Hi</b>"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored domain.ContactMessage
	require.NoError(t, env.db.First(&stored).Error)
	assert.Equal(t, domain.MessageStatusNew, stored.Status)
	assert.Equal(t, "&lt;b&gt;Hi&lt;/b&gt;", stored.Message)

	select {
	case msg := <-published:
		assert.Equal(t, stored.ID, msg.ID)
	case <-time.After(time.Second):
		t.Fatal("contact event not published")
	}

	rec = request(t, http.MethodPost, "/api/contact",
		`{"firstName":"Sean","lastName":"O'Brien","email":" o'brien@example.com ","subject":"Fit","message":"Hi"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quoted domain.ContactMessage
	require.NoError(t, env.db.Where("subject = ?", "Fit").First(&quoted).Error)
	assert.Equal(t, "o'brien@example.com", quoted.Email)
	assert.Equal(t, "O&#39;Brien", quoted.LastName)

	rec = request(t, http.MethodPost, "/api/contact",
		`{"firstName":"Jo","lastName":"Doe","email":"jo@example.com","message":"Hi"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_SUBJECT", decode(t, rec)["code"])

	rec = request(t, http.MethodPost, "/api/contact",
		`{"firstName":"Jo","lastName":"Doe","email":"not-an-email","subject":"x","message":"Hi"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_EMAIL", decode(t, rec)["code"])
}

func TestMessagesMarkRead(t *testing.T) {
	env := setup(t)
	admin := signIn(t, adminEmail, adminPassword)
	msg := domain.ContactMessage{ID: 7, FirstName: "Jo", Email: "jo@example.com", Subject: "s", Message: "m", Status: domain.MessageStatusNew}
	require.NoError(t, env.db.Create(&msg).Error)

	rec := request(t, http.MethodGet, "/api/admin/messages", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"].([]interface{}), 1)

	rec = request(t, http.MethodPut, "/api/admin/messages/7/read", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, env.db.First(&msg, 7).Error)
	assert.Equal(t, domain.MessageStatusRead, msg.Status)

	rec = request(t, http.MethodPut, "/api/admin/messages/8/read", "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, env.db.Migrator().DropTable(&domain.ContactMessage{}))
	rec = request(t, http.MethodPut, "/api/admin/messages/7/read", "", admin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DATABASE_ERROR", decode(t, rec)["code"])
}

func TestDashboardStats(t *testing.T) {
	env := setup(t)
	admin := signIn(t, adminEmail, adminPassword)

	rec := request(t, http.MethodGet, "/api/admin/stats", "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"prices":{"mean":0,"median":0,"min":0,"max":0}`)

	createTestProduct(t, env.db, "A", "10.00", domain.CategoryMen, false, domain.ProductStatusActive)
	createTestProduct(t, env.db, "B", "20.00", domain.CategoryMen, false, domain.ProductStatusActive)
	createTestProduct(t, env.db, "C", "60.00", domain.CategoryMen, false, domain.ProductStatusActive)
	createTestProduct(t, env.db, "D", "500.00", domain.CategoryMen, false, domain.ProductStatusDeleted)

	rec = request(t, http.MethodGet, "/api/admin/stats", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Data.ActiveProducts)
	assert.Equal(t, int64(1), resp.Data.Users)
	assert.Equal(t, PriceSummary{Mean: 30, Median: 20, Min: 10, Max: 60}, resp.Data.Prices)
}

func TestUsersHidePasswordHash(t *testing.T) {
	setup(t)
	admin := signIn(t, adminEmail, adminPassword)

	rec := request(t, http.MethodGet, "/api/admin/users", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), adminEmail)
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestDashboardPageGate(t *testing.T) {
	env := setup(t)
	require.NoError(t, writeFile(env.app.Config().Web.AdminDir, "dashboard.html", "<h1>Dashboard</h1>"))

	rec := request(t, http.MethodGet, "/admin/dashboard", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, webserver.SignInPage, rec.Header().Get(echo.HeaderLocation))

	admin := signIn(t, adminEmail, adminPassword)
	rec = request(t, http.MethodGet, "/admin", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard")
}

func TestStorageErrorDetailOnlyInDebug(t *testing.T) {
	env := setup(t)
	admin := signIn(t, adminEmail, adminPassword)
	require.NoError(t, env.db.Migrator().DropTable(&domain.ContactMessage{}))

	rec := request(t, http.MethodGet, "/api/admin/messages", "", admin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, decode(t, rec)["error"])

	env.app.Config().Web.Debug = true
	rec = request(t, http.MethodGet, "/api/admin/messages", "", admin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotNil(t, decode(t, rec)["error"])
}

func TestJobsRunOnDemand(t *testing.T) {
	env := setup(t)
	admin := signIn(t, adminEmail, adminPassword)
	require.NoError(t, env.db.Create(&domain.SysSession{ID: "stale", ExpiresAt: time.Now().Add(-time.Hour)}).Error)

	rec := request(t, http.MethodGet, "/api/admin/jobs", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clear_expired_sessions")

	rec = request(t, http.MethodPost, "/api/admin/jobs/clear_expired_sessions/run", "", admin)
	require.Equal(t, http.StatusNoContent, rec.Code)
	var count int64
	env.db.Model(&domain.SysSession{}).Where("id = ?", "stale").Count(&count)
	assert.Zero(t, count)

	rec = request(t, http.MethodPost, "/api/admin/jobs/reindex/run", "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDbmsOverview(t *testing.T) {
	env := setup(t)
	admin := signIn(t, adminEmail, adminPassword)
	createTestProduct(t, env.db, "A", "10.00", domain.CategoryMen, false, domain.ProductStatusActive)

	rec := request(t, http.MethodGet, "/api/admin/dbms/tables", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []DBMSTableInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	counts := map[string]int64{}
	for _, tbl := range resp.Data {
		counts[tbl.Name] = tbl.RowCount
	}
	assert.Equal(t, int64(1), counts["products"])
	assert.Equal(t, int64(1), counts["sys_user"])

	rec = request(t, http.MethodGet, "/api/admin/dbms/serverinfo", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database_type":"sqlite"`)
}

func TestCreateUpdateDeleteEndToEnd(t *testing.T) {
	setup(t)
	admin := signIn(t, adminEmail, adminPassword)

	rec := request(t, http.MethodPost, "/api/products", `{"name":"Tee","price":20,"category":"men"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := jsonInt(int64(decode(t, rec)["data"].(map[string]interface{})["id"].(float64)))

	rec = request(t, http.MethodGet, "/api/products", "", nil)
	var list struct {
		Data []domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	tee := list.Data[0]
	assert.Equal(t, "Tee", tee.Name)
	assert.Equal(t, domain.ProductStatusActive, tee.Status)
	assert.False(t, tee.Featured)
	assert.Equal(t, domain.DefaultProductImage, tee.Image)

	rec = request(t, http.MethodPut, "/api/products/"+id, `{"name":"Tee","price":999,"category":"men"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = request(t, http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one struct {
		Data domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.True(t, one.Data.Price.Equal(decimal.NewFromInt(999)))

	for i := 0; i < 2; i++ {
		rec = request(t, http.MethodDelete, "/api/products", `{"id":`+id+`}`, admin)
		require.Equal(t, http.StatusOK, rec.Code, "delete #%d", i+1)
	}
	rec = request(t, http.MethodGet, "/api/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = request(t, http.MethodGet, "/api/products", "", nil)
	assert.JSONEq(t, `{"code":"SUCCESS","msg":"ok","data":[]}`, rec.Body.String())
}
