package server

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/vango-dev/regform/internal/registration"
	"github.com/vango-dev/regform/pkg/form"
	"github.com/vango-dev/regform/pkg/toast"
	"github.com/vango-dev/regform/pkg/upload"
)

// servePage renders a fresh form.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderPage(w, s.form.Initial(), nil); err != nil {
		s.logger.Error("page render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// serveFallbackSubmit handles a plain form post from a page without a live
// session. The whole draft is applied to a fresh store and submitted; the
// response is the resulting page, with every error visible on failure or
// the success notification and an empty form on success.
func (s *Server) serveFallbackSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Upload.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	store := form.NewStore(s.form)
	toasts := toast.NewCenter(toast.EmitterFunc(func(string, any) {}), toast.WithDuration(0))
	defer toasts.Close()
	submitter := registration.NewSubmitter(toasts, s.logger)

	for _, f := range registration.Fields {
		value, err := s.fallbackValue(r, f)
		if err != nil {
			if errors.Is(err, upload.ErrTooLarge) {
				http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
				return
			}
			s.logger.Error("fallback upload error", "error", err)
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}
		if err := store.Change(f.Name, value); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	status := http.StatusOK
	err := store.Submit(func(d registration.Draft) {
		submitter.Handle(d)
		releasePhoto(s.uploads, d)
	})
	if errors.Is(err, form.ErrInvalid) {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.renderPage(w, store.State(), toasts.Active()); err != nil {
		s.logger.Error("page render error", "error", err)
	}
}

// fallbackValue reads the value of f from a posted form.
func (s *Server) fallbackValue(r *http.Request, f registration.Field) (any, error) {
	switch f.Control {
	case registration.ControlCheckbox:
		return r.FormValue(f.Name) != "", nil
	case registration.ControlFile:
		fh := postedFile(r.MultipartForm, f.Name)
		if fh == nil {
			return (*upload.File)(nil), nil
		}
		return upload.SaveHeader(s.uploads, fh)
	default:
		return r.FormValue(f.Name), nil
	}
}

func postedFile(mf *multipart.Form, name string) *multipart.FileHeader {
	if mf == nil || len(mf.File[name]) == 0 {
		return nil
	}
	fh := mf.File[name][0]
	if fh.Filename == "" {
		// Browsers send an empty part when no file is selected.
		return nil
	}
	return fh
}

// healthResponse is the body of the health endpoint.
type healthResponse struct {
	Status  string         `json:"status"`
	Metrics *ServerMetrics `json:"metrics"`
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(healthResponse{Status: "ok", Metrics: s.Metrics()})
}
