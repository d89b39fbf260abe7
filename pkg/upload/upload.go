package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNotFound is returned when a temp file doesn't exist.
var ErrNotFound = errors.New("upload: file not found")

// ErrExpired is returned when a temp file has expired.
var ErrExpired = errors.New("upload: file expired")

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("upload: file too large")

// Store records uploaded files by temp ID.
type Store interface {
	// Save consumes r and records the file. It returns the temp ID.
	Save(filename string, contentType string, r io.Reader) (*File, error)

	// Lookup returns the file recorded under tempID.
	Lookup(tempID string) (*File, error)

	// Claim returns the file recorded under tempID and forgets it.
	Claim(tempID string) (*File, error)

	// Cleanup removes files older than maxAge.
	Cleanup(maxAge time.Duration) error
}

// File describes an uploaded file. Its content is not retained.
type File struct {
	// ID is the temp ID the client refers to the file by.
	ID string `json:"temp_id"`

	// Filename is the original filename from the client.
	Filename string `json:"filename"`

	// ContentType is the MIME type declared by the client.
	ContentType string `json:"content_type"`

	// Size is the number of bytes received.
	Size int64 `json:"size"`

	// ReceivedAt is when the upload completed.
	ReceivedAt time.Time `json:"-"`
}

// MediaType returns the declared content type.
func (f *File) MediaType() string {
	if f == nil {
		return ""
	}
	return f.ContentType
}

func (f *File) String() string {
	if f == nil {
		return "<no file>"
	}
	return fmt.Sprintf("%s (%s, %d bytes)", f.Filename, f.ContentType, f.Size)
}

// SaveHeader records a file taken from an already parsed multipart form.
func SaveHeader(store Store, fh *multipart.FileHeader) (*File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return store.Save(fh.Filename, fh.Header.Get("Content-Type"), src)
}

// Handler returns an http.Handler for file uploads.
// Mount this on your router: r.Post("/upload", upload.Handler(store))
//
// The handler expects a multipart form with a "file" field.
// It returns JSON describing the recorded file:
//
//	{"temp_id": "abc123", "filename": "me.png", "content_type": "image/png", "size": 2048}
func Handler(store Store) http.Handler {
	return HandlerWithConfig(store, DefaultConfig())
}

// HandlerWithConfig returns an upload handler with custom configuration.
func HandlerWithConfig(store Store, config *Config) http.Handler {
	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Limit the whole body; multipart framing adds a little on top of the file.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

		mr, err := r.MultipartReader()
		if err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				http.Error(w, "No file provided", http.StatusBadRequest)
				return
			}
			if err != nil {
				writeReadError(w, err)
				return
			}
			if part.FormName() != "file" || part.FileName() == "" {
				part.Close()
				continue
			}

			file, err := store.Save(part.FileName(), part.Header.Get("Content-Type"), part)
			part.Close()
			if err != nil {
				if tooLarge(err) {
					http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "Upload failed", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(file)
			return
		}
	})
}

func writeReadError(w http.ResponseWriter, err error) {
	if tooLarge(err) {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "Failed to parse form", http.StatusBadRequest)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.Is(err, ErrTooLarge) || errors.As(err, &maxErr)
}

// DefaultMaxFileSize is the size limit used when none is configured.
const DefaultMaxFileSize = 5 * 1024 * 1024

// multipartOverhead bounds the boundary and header bytes of a single part.
const multipartOverhead = 64 * 1024

// Config holds configuration for the upload handler.
type Config struct {
	// MaxFileSize is the maximum allowed file size in bytes.
	// Default: 5MB.
	MaxFileSize int64

	// TempExpiry is how long temp IDs stay valid.
	// Default: 30 minutes.
	TempExpiry time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: DefaultMaxFileSize,
		TempExpiry:  30 * time.Minute,
	}
}
