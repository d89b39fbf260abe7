package upload_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/regform/pkg/upload"
)

func TestMemoryStore_SaveAndClaim(t *testing.T) {
	store := upload.NewMemoryStore(10*1024*1024, time.Hour)

	content := []byte("hello world")
	file, err := store.Save("test.txt", "text/plain", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if file.ID == "" {
		t.Fatal("expected non-empty temp ID")
	}

	got, err := store.Lookup(file.ID)
	if err != nil {
		t.Fatalf("failed to look up: %v", err)
	}
	if got.Filename != "test.txt" {
		t.Errorf("expected filename test.txt, got %s", got.Filename)
	}
	if got.ContentType != "text/plain" {
		t.Errorf("expected content type text/plain, got %s", got.ContentType)
	}
	if got.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), got.Size)
	}

	if _, err := store.Claim(file.ID); err != nil {
		t.Fatalf("failed to claim: %v", err)
	}
	if _, err := store.Claim(file.ID); !errors.Is(err, upload.ErrNotFound) {
		t.Errorf("second claim error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_LookupReturnsCopy(t *testing.T) {
	store := upload.NewMemoryStore(0, 0)
	file, _ := store.Save("a.png", "image/png", strings.NewReader("x"))

	file.ContentType = "text/plain"
	got, _ := store.Lookup(file.ID)
	if got.ContentType != "image/png" {
		t.Errorf("stored file was modified through returned pointer")
	}
}

func TestMemoryStore_SizeLimit(t *testing.T) {
	store := upload.NewMemoryStore(100, time.Hour)

	_, err := store.Save("large.txt", "text/plain", bytes.NewReader(make([]byte, 200)))
	if !errors.Is(err, upload.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}

	if _, err := store.Save("exact.txt", "text/plain", bytes.NewReader(make([]byte, 100))); err != nil {
		t.Errorf("file at the limit rejected: %v", err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := upload.NewMemoryStore(0, time.Hour)

	if _, err := store.Lookup("nonexistent"); !errors.Is(err, upload.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := upload.NewMemoryStore(0, time.Millisecond)
	file, _ := store.Save("old.png", "image/png", strings.NewReader("x"))

	time.Sleep(10 * time.Millisecond)

	if _, err := store.Lookup(file.ID); !errors.Is(err, upload.ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired file not removed")
	}
}

func TestMemoryStore_Cleanup(t *testing.T) {
	store := upload.NewMemoryStore(0, 0)
	store.Save("old.txt", "text/plain", strings.NewReader("old"))

	time.Sleep(10 * time.Millisecond)
	fresh, _ := store.Save("new.txt", "text/plain", strings.NewReader("new"))

	if err := store.Cleanup(5 * time.Millisecond); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	if _, err := store.Lookup(fresh.ID); err != nil {
		t.Errorf("fresh file removed: %v", err)
	}
}

func TestMemoryStore_RunStopsWithContext(t *testing.T) {
	store := upload.NewMemoryStore(0, time.Millisecond)
	store.Save("old.txt", "text/plain", strings.NewReader("x"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if store.Len() != 0 {
		t.Error("sweeper did not remove expired file")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSaveHeader(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("photo", "me.gif")
	part.Write([]byte("GIF89a"))
	w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}

	store := upload.NewMemoryStore(0, 0)
	file, err := upload.SaveHeader(store, req.MultipartForm.File["photo"][0])
	if err != nil {
		t.Fatalf("SaveHeader: %v", err)
	}
	// CreateFormFile declares application/octet-stream.
	if file.Filename != "me.gif" || file.ContentType != "application/octet-stream" || file.Size != 6 {
		t.Errorf("unexpected file: %+v", file)
	}
}

func TestFileString(t *testing.T) {
	var nilFile *upload.File
	if nilFile.String() != "<no file>" || nilFile.MediaType() != "" {
		t.Errorf("nil file formatting")
	}
	f := &upload.File{Filename: "a.png", ContentType: "image/png", Size: 3}
	if f.String() != "a.png (image/png, 3 bytes)" {
		t.Errorf("String() = %q", f.String())
	}
}
