package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"consultancy_crm_backend/internal/models"
	"consultancy_crm_backend/internal/repositories"
	"consultancy_crm_backend/internal/router"
	"consultancy_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "secret123"

type clientEnvelope struct {
	Success       bool          `json:"success"`
	Data          models.Client `json:"data"`
	Message       string        `json:"message"`
	Code          string        `json:"code"`
	MissingFields []string      `json:"missingFields"`
}

type listEnvelope struct {
	Success bool            `json:"success"`
	Data    []models.Client `json:"data"`
	Message string          `json:"message"`
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repositories.NewFileClientRepository(filepath.Join(t.TempDir(), "clients.json"))
	gate, err := services.NewAuthService(testPassword, "test-signing-secret", services.SessionTTL)
	require.NoError(t, err)

	engine := gin.New()
	router.Setup(engine, repo, gate, false)
	return engine
}

func doJSON(engine *gin.Engine, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, engine *gin.Engine) *http.Cookie {
	t.Helper()
	w := doJSON(engine, http.MethodPost, "/login", gin.H{"password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == services.SessionCookieName {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func validPayload() gin.H {
	return gin.H{
		"name":      "Ram Gopal",
		"gender":    "Male",
		"mobile":    "9990001111",
		"dob":       "1990-01-01",
		"birthTime": "10:30",
		"dot":       "2024-05-01",
	}
}

func TestAPI_RequiresSession(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(engine, http.MethodGet, "/api/clients", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var envelope clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "Session expired. Please login again.", envelope.Message)
}

func TestLogin_InvalidPassword(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(engine, http.MethodPost, "/login", gin.H{"password": "nope"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "Invalid password", envelope.Message)
	assert.Empty(t, w.Result().Cookies())

	w = doJSON(engine, http.MethodPost, "/login", gin.H{}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Password is required", envelope.Message)
}

func TestLoginLogout_SessionLifecycle(t *testing.T) {
	engine := newTestEngine(t)
	cookie := login(t, engine)

	w := doJSON(engine, http.MethodGet, "/api/clients", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// Logout clears the cookie and redirects to the login page.
	w = doJSON(engine, http.MethodGet, "/logout", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The old session no longer authorizes access.
	w = doJSON(engine, http.MethodGet, "/api/clients", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPageRoutes_RedirectRules(t *testing.T) {
	engine := newTestEngine(t)

	// Protected page without a session redirects to /login.
	w := doJSON(engine, http.MethodGet, "/dashboard", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// Root without a session also lands on /login.
	w = doJSON(engine, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// Visiting the login page while authenticated bounces to the dashboard.
	cookie := login(t, engine)
	w = doJSON(engine, http.MethodGet, "/login", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestCreateClient_ScenarioAndDefaults(t *testing.T) {
	engine := newTestEngine(t)
	cookie := login(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/clients", validPayload(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "Ram Gopal", envelope.Data.Name)
	assert.Equal(t, float64(0), envelope.Data.ChargeableAmount)
	assert.Equal(t, float64(0), envelope.Data.PaidAmount)
	assert.WithinDuration(t, time.Now().UTC(), envelope.Data.CreatedAt, 5*time.Second)
}

func TestCreateClient_MissingFields(t *testing.T) {
	engine := newTestEngine(t)
	cookie := login(t, engine)

	payload := validPayload()
	delete(payload, "mobile")
	delete(payload, "dot")

	w := doJSON(engine, http.MethodPost, "/api/clients", payload, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, []string{"Mobile Number", "Date of Visit"}, envelope.MissingFields)
	assert.Contains(t, envelope.Message, "Mobile Number")

	// Nothing was persisted.
	list := doJSON(engine, http.MethodGet, "/api/clients", nil, cookie)
	var listed listEnvelope
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
	assert.Empty(t, listed.Data)
}

func TestCreateClient_Duplicate(t *testing.T) {
	engine := newTestEngine(t)
	cookie := login(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/clients", validPayload(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	dup := validPayload()
	dup["name"] = "RAM GOPAL"
	w = doJSON(engine, http.MethodPost, "/api/clients", dup, cookie)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "DUPLICATE_CLIENT", envelope.Code)
}

func TestUpdateClient_Endpoint(t *testing.T) {
	engine := newTestEngine(t)
	cookie := login(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/clients", validPayload(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	update := validPayload()
	update["chargeableAmount"] = 500
	update["paidAmount"] = 200
	w = doJSON(engine, http.MethodPut, "/api/clients/"+created.Data.ID, update, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var updated clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, float64(500), updated.Data.ChargeableAmount)
	assert.Equal(t, float64(200), updated.Data.PaidAmount)
	assert.Equal(t, created.Data.ID, updated.Data.ID)

	w = doJSON(engine, http.MethodPut, "/api/clients/no-such-id", validPayload(), cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteClient_Endpoint(t *testing.T) {
	engine := newTestEngine(t)
	cookie := login(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/clients", validPayload(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created clientEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(engine, http.MethodDelete, "/api/clients/"+created.Data.ID, nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/clients/"+created.Data.ID, nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(engine, http.MethodDelete, "/api/clients/"+created.Data.ID, nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchClients_Endpoint(t *testing.T) {
	engine := newTestEngine(t)
	cookie := login(t, engine)

	people := []gin.H{
		{"name": "Anna", "gender": "Female", "mobile": "9990001111"},
		{"name": "HANNAH", "gender": "Female", "mobile": "8880002222"},
		{"name": "Ram Gopal", "gender": "Male", "mobile": "7770003333"},
	}
	for _, p := range people {
		payload := validPayload()
		for k, v := range p {
			payload[k] = v
		}
		w := doJSON(engine, http.MethodPost, "/api/clients", payload, cookie)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(engine, http.MethodGet, "/api/clients/search?name=ann", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var listed listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 2)

	w = doJSON(engine, http.MethodGet, "/api/clients/search?gender=Female", nil, cookie)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 2)
	for _, c := range listed.Data {
		assert.Equal(t, "Female", c.Gender)
	}

	w = doJSON(engine, http.MethodGet, "/api/clients/search?name=ann&mobile=999", nil, cookie)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Anna", listed.Data[0].Name)

	// No criteria returns everything.
	w = doJSON(engine, http.MethodGet, "/api/clients/search", nil, cookie)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Data, 3)
}
