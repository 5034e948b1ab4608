// Package api exposes the manual-assistant HTTP API and MCP tool surface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/nkoval/ragman/internal/docparse"
	"github.com/nkoval/ragman/internal/status"
)

const maxUploadSize = 50 << 20 // 50MB
const maxAskBodySize = 1 << 20 // 1MB

// Ingestor runs a document through the ingestion pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, path string) error
}

// Answerer produces grounded answers, complete or streamed.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
	AnswerStream(ctx context.Context, question string, onToken func(token string) error) error
}

// StatusReporter produces image-analysis progress snapshots.
type StatusReporter interface {
	Report() (status.Snapshot, error)
}

// DocumentLister enumerates ingested source documents.
type DocumentLister interface {
	Sources() ([]string, error)
}

// Deps holds the handler dependencies.
type Deps struct {
	Ingestor  Ingestor
	Answerer  Answerer
	Reporter  StatusReporter
	Documents DocumentLister
	UploadDir string
}

// NewHandler returns the HTTP handler for all assistant endpoints.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)

	r.Get("/health", handleHealth)
	r.Post("/upload", handleUpload(deps))
	r.Post("/ask", handleAsk(deps))
	r.Get("/documents", handleDocuments(deps))
	r.Get("/queue-status", handleQueueStatus(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		defer r.Body.Close()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file is required: %v", err)
			return
		}
		defer file.Close()

		name := filepath.Base(header.Filename)
		if name == "" || name == "." {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file name is required")
			return
		}
		if !docparse.Supported(name) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unsupported file type: %s", name)
			return
		}

		path := filepath.Join(deps.UploadDir, name)
		if err := saveUpload(path, file); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving upload: %v", err)
			return
		}

		if err := deps.Ingestor.Ingest(r.Context(), path); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "processing document: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": fmt.Sprintf("%s processed successfully", name),
		})
	}
}

func saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

type askRequest struct {
	Question string `json:"question"`
}

func handleAsk(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxAskBodySize)
		defer r.Body.Close()

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Question == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "question is required")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			httpError(w, http.StatusInternalServerError, "api_error", "streaming not supported")
			return
		}

		// SSE headers go out with the first token, so failures before any
		// output can still be reported as a plain HTTP error.
		started := false
		startStream := func() {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			started = true
		}

		err := deps.Answerer.AnswerStream(r.Context(), req.Question, func(token string) error {
			if !started {
				startStream()
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", token); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
		if err != nil {
			slog.Error("answer stream failed", "error", err)
			if !started {
				httpError(w, http.StatusBadGateway, "api_error", "answer generation failed: %v", err)
				return
			}
			// Mid-stream failure: surface it as a final event so clients
			// do not hang waiting for tokens.
			errPayload, marshalErr := json.Marshal(map[string]any{
				"error": map[string]any{
					"message": "answer generation failed",
					"type":    "server_error",
				},
			})
			if marshalErr == nil {
				fmt.Fprintf(w, "data: %s\n\n", errPayload)
			}
		}

		if !started {
			startStream()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

func handleDocuments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := deps.Documents.Sources()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing documents: %v", err)
			return
		}
		if sources == nil {
			sources = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]string{"documents": sources})
	}
}

func handleQueueStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Reporter.Report()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading queue status: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
