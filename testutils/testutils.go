package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"echochats/utils"

	"github.com/gin-gonic/gin"
)

func InitTestMain() {
	gin.SetMode(gin.TestMode)
	utils.Logger.SetOutput(io.Discard)
}

func SetupTestRouter() *gin.Engine {
	return gin.New()
}

// Upload describes a file part of a multipart form.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

// MultipartRequest builds a multipart/form-data request carrying fields and
// an optional file.
func MultipartRequest(t *testing.T, method, target string, fields map[string]string, file *Upload) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// FileHeader returns the parsed header of a single uploaded file, as a
// handler would see it.
func FileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	req := MultipartRequest(t, http.MethodPost, "/", nil, &Upload{Field: "file", Filename: filename, Content: content})
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func JSONRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}
