package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/vango-dev/regform/internal/registration"
	"github.com/vango-dev/regform/pkg/form"
	"github.com/vango-dev/regform/pkg/toast"
	"github.com/vango-dev/regform/pkg/upload"
)

//go:embed assets/page.html assets/client.js
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/page.html"))

// pageData is the view model of the registration page.
type pageData struct {
	Title        string
	Action       string
	LivePath     string
	UploadPath   string
	ClientPath   string
	Accept       string
	Fields       []fieldData
	Submitting   bool
	Toasts       []toast.Toast
	ToastSeconds string
}

// fieldData is one rendered control.
type fieldData struct {
	registration.Field
	Value    string
	Checked  bool
	FileName string
	Error    string
	Status   string
	Choices  []choiceData
}

type choiceData struct {
	registration.Option
	Selected bool
}

// buildPage renders state into the page view model. Only visible errors
// are included; password values are never written into the HTML.
func (s *Server) buildPage(st form.State[registration.Draft], toasts []toast.Toast) pageData {
	data := pageData{
		Title:        "Registration Form",
		Action:       PathPage,
		LivePath:     PathLive,
		UploadPath:   PathUpload,
		ClientPath:   PathThinClient,
		Accept:       strings.Join(registration.ImageTypes, ","),
		Submitting:   st.Submitting,
		Toasts:       toasts,
	}
	// Server-rendered toasts fade out with CSS; sticky ones have no timer.
	if d := s.config.SessionConfig.ToastDuration; d > 0 {
		data.ToastSeconds = fmt.Sprintf("%g", d.Seconds())
	}

	for _, f := range registration.Fields {
		fd := fieldData{
			Field:  f,
			Error:  st.VisibleError(f.Name),
			Status: st.Status(f.Name).String(),
		}

		switch v := s.form.Get(st.Values, f.Name).(type) {
		case string:
			if f.Control != registration.ControlPassword {
				fd.Value = v
			}
		case bool:
			fd.Checked = v
		case *upload.File:
			if v != nil {
				fd.FileName = v.Filename
			}
		}

		for _, opt := range f.Options {
			fd.Choices = append(fd.Choices, choiceData{Option: opt, Selected: opt.Value == fd.Value})
		}
		data.Fields = append(data.Fields, fd)
	}
	return data
}

// renderPage writes the page for state.
func (s *Server) renderPage(w io.Writer, st form.State[registration.Draft], toasts []toast.Toast) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, s.buildPage(st, toasts)); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
