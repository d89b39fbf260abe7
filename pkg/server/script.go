package server

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// clientScript is the browser half of the live form, served at PathThinClient.
var clientScript = mustAsset("assets/client.js")

// clientScriptETag is derived from the script bytes.
var clientScriptETag = func() string {
	sum := sha256.Sum256(clientScript)
	return `"regform-` + hex.EncodeToString(sum[:12]) + `"`
}()

func mustAsset(name string) []byte {
	data, err := assets.ReadFile(name)
	if err != nil {
		panic("server: missing embedded asset " + name)
	}
	return data
}

func (s *Server) serveClientScript(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "application/javascript; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("ETag", clientScriptETag)
	if s.config != nil && s.config.DevMode {
		h.Set("Cache-Control", "no-store")
	} else {
		h.Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if notModified(r.Header.Get("If-None-Match"), clientScriptETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(clientScript)
	}
}

// notModified reports whether an If-None-Match header names etag.
// Comparison is weak, so W/"x" matches "x".
func notModified(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
		if tag == "*" || tag == etag {
			return true
		}
	}
	return false
}
