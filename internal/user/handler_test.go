package user

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/marketplace-api/internal/auth"
)

func newTestRouter(t *testing.T, enforceOwnership bool) (http.Handler, *Service) {
	t.Helper()
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, svc.logger, 10<<20, enforceOwnership)
	authMiddleware := auth.NewMiddleware(svc)

	r := chi.NewRouter()
	r.Post("/user/signup", h.Signup)
	r.Post("/user/login", h.Login)
	r.Group(func(r chi.Router) {
		if enforceOwnership {
			r.Use(authMiddleware.RequireAuth)
		}
		r.Put("/user/update/{id}", h.Update)
		r.Delete("/user/{id}", h.Delete)
	})
	return r, svc
}

func doJSON(t *testing.T, h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signup(t *testing.T, h http.Handler, email string) SignupResponse {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/user/signup",
		`{"email":"`+email+`","username":"a","password":"pw","phone":"0600"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SignupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_SignupLoginScenario(t *testing.T) {
	h, _ := newTestRouter(t, false)

	rec := doJSON(t, h, http.MethodPost, "/user/signup", `{"email":"a@x.com","username":"a","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	token, _ := body["token"].(string)
	require.Len(t, token, auth.TokenLength)
	assert.NotEmpty(t, body["_id"])
	account := body["account"].(map[string]any)
	assert.Equal(t, "a@x.com", account["email"])
	assert.Contains(t, account, "avatar_url")
	assert.Nil(t, account["avatar_url"])

	rec = doJSON(t, h, http.MethodPost, "/user/login", `{"email":"a@x.com","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, token, login.Token)
	assert.Equal(t, "a", login.Account.Username)

	rec = doJSON(t, h, http.MethodPost, "/user/login", `{"email":"a@x.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
}

func TestHandler_SignupFailures(t *testing.T) {
	h, _ := newTestRouter(t, false)
	signup(t, h, "a@x.com")

	rec := doJSON(t, h, http.MethodPost, "/user/signup", `{"email":"a@x.com","username":"b","password":"other"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"This email already has an account"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/user/signup", `{"email":"a@x.com","username":"b"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"This email already has an account"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/user/signup", `{"email":"b@x.com","password":"pw"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Missing parameters"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/user/signup", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestHandler_SignupMultipartWithAvatar(t *testing.T) {
	h, _ := newTestRouter(t, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("email", "a@x.com"))
	require.NoError(t, mw.WriteField("username", "a"))
	require.NoError(t, mw.WriteField("password", "pw"))
	fw, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/signup", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SignupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Account.AvatarURL)
	assert.Equal(t, "http://img.test/vinted/users/"+resp.ID+"/avatar", *resp.Account.AvatarURL)
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	h, svc := newTestRouter(t, false)
	created := signup(t, h, "a@x.com")

	rec := doJSON(t, h, http.MethodPut, "/user/update/"+created.ID, `{"username":"renamed","phone":""}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"User modified succesfully !"`, rec.Body.String())

	u, err := svc.repo.GetByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", u.Account.Username)
	assert.Equal(t, "0600", u.Account.Phone, "empty values are ignored")

	rec = doJSON(t, h, http.MethodPut, "/user/update/unknown", `{"username":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodDelete, "/user/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User deleted succesfully !"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodDelete, "/user/"+created.ID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_OwnershipEnforced(t *testing.T) {
	h, _ := newTestRouter(t, true)
	a := signup(t, h, "a@x.com")
	b := signup(t, h, "b@x.com")

	rec := doJSON(t, h, http.MethodPut, "/user/update/"+a.ID, `{"username":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/user/update/"+a.ID, `{"username":"x"}`, b.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Forbidden"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodDelete, "/user/"+a.ID, "", b.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/user/update/"+a.ID, `{"username":"x"}`, a.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/user/"+a.ID, "", a.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
