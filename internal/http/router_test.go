package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/marketplace-api/internal/auth"
	"github.com/redmonkez12/marketplace-api/internal/config"
	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/logging"
	"github.com/redmonkez12/marketplace-api/internal/offer"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

func newTestRouter(t *testing.T, enforceOwnership bool) http.Handler {
	t.Helper()
	logger := logging.NewLoggerWithWriter(io.Discard, false)
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "prod", TrustedOrigins: []string{"*"}},
		Auth:   config.AuthConfig{EnforceOwnership: enforceOwnership},
		Search: config.SearchConfig{DefaultLimit: 10, MaxLimit: 100},
	}

	images := imagestore.NewMemoryStore("http://img.test")
	layout := imagestore.NewLayout("vinted")
	users := user.NewMemoryRepository()

	userService := user.NewService(users, images, layout, logger)
	offerService := offer.NewService(offer.NewMemoryRepository(), users, images, layout, logger, enforceOwnership)

	return NewRouter(cfg,
		user.NewHandler(userService, logger, 10<<20, enforceOwnership),
		offer.NewHandler(offerService, cfg.Search, 10<<20),
		auth.NewMiddleware(userService),
		logger,
	)
}

func do(h http.Handler, method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func form(t *testing.T, fields map[string]string, fileField string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "pic.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func signup(t *testing.T, h http.Handler, email, username string) (id, token string) {
	t.Helper()
	body, ct := form(t, map[string]string{"email": email, "username": username, "password": "secret"}, "")
	rec := do(h, http.MethodPost, "/user/signup", "", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ID    string `json:"_id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID, resp.Token
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(h, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"api is running"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, false)
	do(h, http.MethodGet, "/offer/abc", "", nil, "")

	rec := do(h, http.MethodGet, "/metrics", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/offer/{id}"`)
}

func TestSwaggerDisabledInProduction(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(h, http.MethodGet, "/swagger/index.html", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketplaceFlow(t *testing.T) {
	h := newTestRouter(t, false)
	sellerID, sellerToken := signup(t, h, "seller@x.com", "seller")

	body, ct := form(t, map[string]string{"title": "Veste", "price": "40", "city": "Nantes"}, "picture")
	rec := do(h, http.MethodPost, "/offer/publish", sellerToken, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var published struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &published))

	rec = do(h, http.MethodGet, "/offers?title=veste", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found offer.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found.Offers, 1)
	require.NotNil(t, found.Offers[0].Owner)
	assert.Equal(t, sellerID, found.Offers[0].Owner.ID)
	assert.Equal(t, "seller", found.Offers[0].Owner.Account.Username)

	rec = do(h, http.MethodDelete, "/offer/delete/"+published.ID, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodDelete, "/offer/delete/"+published.ID, sellerToken, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/offer/"+published.ID, "", nil, "")
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestUserRoutesOpenWithoutOwnership(t *testing.T) {
	h := newTestRouter(t, false)
	id, _ := signup(t, h, "a@x.com", "a")

	body, ct := form(t, map[string]string{"username": "renamed"}, "")
	rec := do(h, http.MethodPut, "/user/update/"+id, "", body, ct)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, http.MethodDelete, "/user/"+id, "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserRoutesRequireOwnerToken(t *testing.T) {
	h := newTestRouter(t, true)
	id, token := signup(t, h, "a@x.com", "a")
	_, otherToken := signup(t, h, "b@x.com", "b")

	rec := do(h, http.MethodDelete, "/user/"+id, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodDelete, "/user/"+id, otherToken, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodDelete, "/user/"+id, token, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
