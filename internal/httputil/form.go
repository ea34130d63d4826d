package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
)

// Form holds the textual fields and uploaded files of a request body.
// Multipart, urlencoded and JSON bodies are all flattened into it.
type Form struct {
	fields    map[string]string
	files     map[string]*multipart.FileHeader
	multipart *multipart.Form
}

// ParseForm reads the request body according to its content type.
func ParseForm(r *http.Request, maxMemory int64) (*Form, error) {
	f := &Form{
		fields: make(map[string]string),
		files:  make(map[string]*multipart.FileHeader),
	}

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("invalid content type: %w", err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
		f.multipart = r.MultipartForm
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				f.fields[k] = v[0]
			}
		}
		for k, v := range r.MultipartForm.File {
			if len(v) > 0 {
				f.files[k] = v[0]
			}
		}
	case "application/json":
		if err := f.decodeJSON(r.Body); err != nil {
			return nil, err
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				f.fields[k] = v[0]
			}
		}
	}

	return f, nil
}

func (f *Form) decodeJSON(body io.Reader) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}

	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			f.fields[k] = val
		case json.Number:
			f.fields[k] = val.String()
		case bool:
			f.fields[k] = strconv.FormatBool(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("invalid value for %q: %w", k, err)
			}
			f.fields[k] = string(b)
		}
	}

	return nil
}

// Get returns the raw field value, empty when absent.
func (f *Form) Get(key string) string {
	return f.fields[key]
}

// Optional returns a pointer to the field value, or nil when the field is
// absent or empty. Empty strings count as absent for partial updates.
func (f *Form) Optional(key string) *string {
	v, ok := f.fields[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// File returns the uploaded file stored under key.
func (f *Form) File(key string) (*multipart.FileHeader, bool) {
	fh, ok := f.files[key]
	return fh, ok
}

// Close removes temporary files created while parsing a multipart body.
func (f *Form) Close() error {
	if f.multipart == nil {
		return nil
	}
	return f.multipart.RemoveAll()
}
