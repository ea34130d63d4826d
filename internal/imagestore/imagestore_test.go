package imagestore

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestForm adapts a parsed *http.Request to FormFiles
type requestForm struct {
	r *http.Request
}

func (f requestForm) File(key string) (*multipart.FileHeader, bool) {
	if f.r.MultipartForm == nil || len(f.r.MultipartForm.File[key]) == 0 {
		return nil, false
	}
	return f.r.MultipartForm.File[key][0], true
}

func parsedForm(t *testing.T) requestForm {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/signup", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return requestForm{r: req}
}

func TestOpenFormFile(t *testing.T) {
	form := parsedForm(t)

	file, closer, err := OpenFormFile(form, "avatar")
	require.NoError(t, err)
	require.NotNil(t, file)
	defer closer.Close()

	assert.Equal(t, "me.png", file.Filename)
	assert.EqualValues(t, len("png bytes"), file.Size)
	data, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestOpenFormFile_Absent(t *testing.T) {
	file, closer, err := OpenFormFile(parsedForm(t), "picture")
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Nil(t, closer)
}

func TestFormatAndContentType(t *testing.T) {
	tests := []struct {
		name       string
		file       File
		wantFormat string
		wantType   string
	}{
		{"extension wins", File{Filename: "a.JPG"}, "jpg", "image/jpeg"},
		{"declared type", File{Filename: "blob", ContentType: "image/webp"}, "webp", "image/webp"},
		{"unknown", File{Filename: "blob"}, "", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFormat, formatOf(tt.file))
			assert.Equal(t, tt.wantType, contentTypeOf(tt.file))
		})
	}
}

func TestFolderPrefix(t *testing.T) {
	assert.Equal(t, "vinted/offers/1/", folderPrefix("/vinted/offers/1/"))
	assert.Equal(t, "", folderPrefix("/"))
	assert.Equal(t, "a/b", cleanKey("a//b/"))
}

func TestObjectName(t *testing.T) {
	name := objectName("vinted/offers/1", "Jean Bleu.JPG")
	assert.Regexp(t, `^vinted/offers/1/jean-bleu-[0-9a-f]{8}$`, name)

	assert.NotEqual(t, name, objectName("vinted/offers/1", "Jean Bleu.JPG"))
	assert.Regexp(t, `^vinted/offers/1/[0-9a-f-]{36}$`, objectName("vinted/offers/1", ""))
}
