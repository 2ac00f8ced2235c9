package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"medichat/api/internal/script"
)

type DetectRequest struct {
	Text string `json:"text"`
}

type DetectResponse struct {
	DetectedScript script.Label    `json:"detected_script"`
	Language       script.Language `json:"language,omitempty"`
	Instruction    string          `json:"instruction"`
}

// Detect runs script detection alone, without calling a model.
func (h *Handle) Detect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}
	label := h.svc.Detector.DetectScript(req.Text)
	writeJSON(w, http.StatusOK, DetectResponse{
		DetectedScript: label,
		Language:       label.Language(),
		Instruction:    script.CreateInstruction(label, req.Text),
	})
}
