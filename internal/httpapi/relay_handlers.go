package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/voiyce/voiyce/internal/relay"
)

type textResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// handleTranscribe accepts a multipart audio upload under the "audio" field
// and returns the cleaned transcript. The upload is consumed exactly once;
// nothing about it survives the response.
func (r *Router) handleTranscribe(w http.ResponseWriter, req *http.Request) {
	if !r.requests.Add() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Server is shutting down"})
		return
	}
	defer r.requests.Done()

	req.Body = http.MaxBytesReader(w, req.Body, r.cfg.MaxUploadBytes)

	file, header, err := req.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No audio file provided"})
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")

	text, err := r.service.Transcribe(req.Context(), file, header.Filename, mimeType)
	if err != nil {
		r.logger.Printf("transcribe failed: %v", err)
		captureError(req, err, "transcribe request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Transcription failed",
			Details: upstreamDetails(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, textResponse{Text: text})
}

// handleSummarize condenses already-transcribed text into a first-person
// summary. Body: {"text": "..."}.
func (r *Router) handleSummarize(w http.ResponseWriter, req *http.Request) {
	if !r.requests.Add() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Server is shutting down"})
		return
	}
	defer r.requests.Done()

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No text provided"})
		return
	}

	summary, err := r.service.Summarize(req.Context(), body.Text)
	if err != nil {
		if errors.Is(err, relay.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No text provided"})
			return
		}
		r.logger.Printf("summarize failed: %v", err)
		captureError(req, err, "summarize request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Summarization failed",
			Details: upstreamDetails(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, textResponse{Text: summary})
}

// upstreamDetails extracts the provider-level cause for the details field,
// leaving the stage attribution to logs.
func upstreamDetails(err error) string {
	var ue *relay.UpstreamError
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}
