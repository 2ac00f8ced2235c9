package handle

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"medichat/api/internal/chat"
	"medichat/api/internal/util"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// secureFilename keeps the base name and replaces anything outside
// [A-Za-z0-9_.-] with an underscore.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilename.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}

// Upload accepts one multipart "file" and returns it base64-encoded so the
// client can attach it to a later chat message.
func (h *Handle) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	tooLarge := fmt.Sprintf("File too large. Maximum size is %dMB.", h.opts.MaxUploadBytes>>20)

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if hdr.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	name := secureFilename(hdr.Filename)
	if name == "" || !util.AllowedUpload(name) {
		writeError(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("upload %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, chat.FriendlyError(err))
		return
	}
	mime := hdr.Header.Get("Content-Type")
	if mime == "" {
		mime = util.SniffImageMIME(data)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     base64.StdEncoding.EncodeToString(data),
		"mimeType": mime,
		"filename": name,
	})
}
