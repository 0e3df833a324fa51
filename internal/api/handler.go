package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"applyboost/internal/config"
	"applyboost/internal/docparse"
	"applyboost/internal/extract"
	"applyboost/internal/llm"
	"applyboost/internal/memory"
)

type Handler struct {
	Config  config.Config
	Extract *extract.Service
	Memory  memory.Store
	Gateway llm.Provider
}

func NewHandler(cfg config.Config, svc *extract.Service, mem memory.Store, gateway llm.Provider) *Handler {
	return &Handler{
		Config:  cfg,
		Extract: svc,
		Memory:  mem,
		Gateway: gateway,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	for _, op := range h.Extract.Operations() {
		mux.HandleFunc(op.Route, h.operationHandler(op))
	}
	mux.HandleFunc("/api/test", h.handleTest)
	mux.HandleFunc("/api/memory/save", h.handleMemorySave)
	mux.HandleFunc("/api/memory/search", h.handleMemorySearch)
	mux.HandleFunc("/api/resume/upload", h.handleResumeUpload)
}

func (h *Handler) operationHandler(op extract.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		result, err := h.Extract.Run(r.Context(), op.Name, body)
		if err != nil {
			writeError(w, op.Name, err)
			return
		}
		switch op.ResponseKey {
		case "":
			writeJSON(w, http.StatusOK, result)
		default:
			writeJSON(w, http.StatusOK, map[string]any{op.ResponseKey: result})
		}
	}
}

func (h *Handler) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	msg, err := h.Gateway.Complete(r.Context(), "Say 'Hello, API is working!'", llm.ModeText)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": msg})
}

func (h *Handler) handleMemorySave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var tags []string
	if raw, ok := body["tags"].([]any); ok {
		for _, t := range raw {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
	}
	content, _ := json.Marshal(body)
	id, err := h.Memory.Save(r.Context(), string(content), tags)
	if err != nil {
		log.Printf("memory save failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to save memory"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handler) handleMemorySearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	limit := body.Limit
	if limit <= 0 {
		limit = h.Config.Memory.SearchLimit
	}
	items, err := h.Memory.Search(r.Context(), body.Query, limit)
	if err != nil {
		// Absent memory context must not block the caller.
		log.Printf("memory search degraded to empty: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"items": []string{}})
		return
	}
	contents := make([]string, 0, len(items))
	for _, item := range items {
		contents = append(contents, item.Content)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": contents})
}

func (h *Handler) handleResumeUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = mimeFromName(header.Filename)
	}
	text, err := docparse.Extract(mime, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

func mimeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return docparse.MimePDF
	case ".docx":
		return docparse.MimeDocx
	default:
		return "text/plain"
	}
}

func writeError(w http.ResponseWriter, operation string, err error) {
	var classified *extract.Error
	if errors.As(err, &classified) {
		log.Printf("operation %s failed (%s): %v", operation, classified.Kind, classified.Unwrap())
	} else {
		log.Printf("operation %s failed: %v", operation, err)
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
