package upload_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/vango-dev/regform/pkg/upload"
)

type recordingStore struct {
	saveFn func(filename, contentType string, r io.Reader) (*upload.File, error)
}

func (s *recordingStore) Save(filename, contentType string, r io.Reader) (*upload.File, error) {
	if s.saveFn != nil {
		return s.saveFn(filename, contentType, r)
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, err
	}
	return &upload.File{ID: "temp123", Filename: filename, ContentType: contentType, Size: n}, nil
}

func (s *recordingStore) Lookup(string) (*upload.File, error) { return nil, upload.ErrNotFound }
func (s *recordingStore) Claim(string) (*upload.File, error)  { return nil, upload.ErrNotFound }
func (s *recordingStore) Cleanup(time.Duration) error         { return nil }

func newMultipartUploadRequest(t *testing.T, filename string, contentTypeHeader string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("note", "ignored"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentTypeHeader != "" {
		h.Set("Content-Type", contentTypeHeader)
	}

	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("part.Write: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandler_RejectsNonPOST(t *testing.T) {
	h := upload.Handler(&recordingStore{})
	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandler_FailsWhenNotMultipart(t *testing.T) {
	h := upload.Handler(&recordingStore{})
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandler_FailsWhenNoFileProvided(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("not_file", "x"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	h := upload.Handler(&recordingStore{})
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandler_RecordsDeclaredType(t *testing.T) {
	store := upload.NewMemoryStore(1024*1024, time.Minute)
	h := upload.Handler(store)

	// The declared type is recorded as sent, even though the bytes are text.
	content := []byte("not really a png")
	req := newMultipartUploadRequest(t, "me.png", "image/png", content)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%q", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want %q", ct, "application/json")
	}

	var resp struct {
		TempID      string `json:"temp_id"`
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal response: %v; body=%q", err, rec.Body.String())
	}
	if resp.TempID == "" {
		t.Fatal("expected temp_id")
	}
	if resp.Filename != "me.png" || resp.ContentType != "image/png" || resp.Size != int64(len(content)) {
		t.Fatalf("unexpected response: %+v", resp)
	}

	file, err := store.Lookup(resp.TempID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if file.MediaType() != "image/png" {
		t.Fatalf("MediaType() = %q", file.MediaType())
	}
}

func TestHandler_RejectsTooLargeFile(t *testing.T) {
	store := upload.NewMemoryStore(16, time.Minute)
	h := upload.HandlerWithConfig(store, &upload.Config{MaxFileSize: 16})

	req := newMultipartUploadRequest(t, "big.png", "image/png", bytes.Repeat([]byte("a"), 256))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d; body=%q", rec.Code, http.StatusRequestEntityTooLarge, rec.Body.String())
	}
	if store.Len() != 0 {
		t.Fatalf("oversize file was recorded")
	}
}

func TestHandler_RejectsTooLargeBodyAtHTTPLevel(t *testing.T) {
	// The store has no limit of its own; only the body limit applies.
	h := upload.HandlerWithConfig(&recordingStore{}, &upload.Config{MaxFileSize: 16})

	req := newMultipartUploadRequest(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 128*1024))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d; body=%q", rec.Code, http.StatusRequestEntityTooLarge, rec.Body.String())
	}
}

func TestHandler_MapsStoreErrTooLargeTo413(t *testing.T) {
	store := &recordingStore{
		saveFn: func(string, string, io.Reader) (*upload.File, error) {
			return nil, upload.ErrTooLarge
		},
	}
	h := upload.HandlerWithConfig(store, &upload.Config{MaxFileSize: 1024 * 1024})

	req := newMultipartUploadRequest(t, "test.txt", "text/plain", []byte("x"))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandler_MapsStoreErrorTo500(t *testing.T) {
	store := &recordingStore{
		saveFn: func(string, string, io.Reader) (*upload.File, error) {
			return nil, errors.New("boom")
		},
	}
	h := upload.HandlerWithConfig(store, &upload.Config{MaxFileSize: 1024 * 1024})

	req := newMultipartUploadRequest(t, "test.txt", "text/plain", []byte("x"))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
