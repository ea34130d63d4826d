package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm_Multipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Jacket"))
	require.NoError(t, mw.WriteField("brand", ""))
	fw, err := mw.CreateFormFile("picture", "jacket.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/offer/publish", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	form, err := ParseForm(req, 1<<20)
	require.NoError(t, err)
	defer form.Close()

	assert.Equal(t, "Jacket", form.Get("title"))
	require.NotNil(t, form.Optional("title"))
	assert.Nil(t, form.Optional("brand"), "empty value counts as absent")
	assert.Nil(t, form.Optional("size"))

	fh, ok := form.File("picture")
	require.True(t, ok)
	assert.Equal(t, "jacket.jpg", fh.Filename)

	file, err := fh.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestParseForm_JSON(t *testing.T) {
	payload, err := json.Marshal(map[string]any{
		"email":    "a@x.com",
		"price":    20.5,
		"verified": true,
		"phone":    nil,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/user/signup", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	form, err := ParseForm(req, 1<<20)
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", form.Get("email"))
	assert.Equal(t, "20.5", form.Get("price"))
	assert.Equal(t, "true", form.Get("verified"))
	assert.Nil(t, form.Optional("phone"))
	_, ok := form.File("avatar")
	assert.False(t, ok)
}

func TestParseForm_EmptyJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/user/update/1", http.NoBody)
	req.Header.Set("Content-Type", "application/json")

	form, err := ParseForm(req, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "", form.Get("username"))
}

func TestParseForm_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")

	_, err := ParseForm(req, 1<<20)
	assert.Error(t, err)
}

func TestParseForm_URLEncoded(t *testing.T) {
	values := url.Values{"email": {"a@x.com"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ParseForm(req, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", form.Get("email"))
	assert.Equal(t, "pw", form.Get("password"))
	assert.NoError(t, form.Close())
}

func TestRespondHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, "boom", http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	RespondUnauthorized(rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
}
