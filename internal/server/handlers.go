package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-tabulator/internal/pipeline"
	"github.com/jonathan/resume-tabulator/internal/types"
)

// missingFileIDMessage is the 400 body for any request without a usable id.
const missingFileIDMessage = "Missing file_id"

// handleProcess processes one file named by {"file_id": "..."}.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeProcessRequest(w, r)
	if err != nil {
		s.logger.Debug("rejected process request", "request_id", requestID(r.Context()), "error", err)
		s.errorResponse(w, http.StatusBadRequest, missingFileIDMessage)
		return
	}

	if !s.runMu.TryRLock() {
		s.errorResponse(w, HTTPStatus(ErrBatchInProgress), ErrBatchInProgress.Error())
		return
	}
	_, err = s.runner.RunSingle(r.Context(), req.FileID)
	s.runMu.RUnlock()
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusBadRequest {
			s.errorResponse(w, status, missingFileIDMessage)
			return
		}
		s.logger.Error("process failed", "request_id", requestID(r.Context()), "file_id", req.FileID, "error", err)
		s.errorResponse(w, status, err.Error())
		return
	}

	s.logger.Info("file processed", "request_id", requestID(r.Context()), "file_id", req.FileID)
	s.jsonResponse(w, http.StatusOK, types.ProcessResponse{
		Status:  "ok",
		Message: "Resume processed successfully",
	})
}

// decodeProcessRequest reads and validates the request body. Any failure
// means there is no file id to work with.
func (s *Server) decodeProcessRequest(w http.ResponseWriter, r *http.Request) (*types.ProcessRequest, error) {
	var req types.ProcessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, &ErrValidation{Field: "body", Message: err.Error()}
	}
	req.FileID = strings.TrimSpace(req.FileID)
	if err := s.validator.Struct(&req); err != nil {
		return nil, validationError(err)
	}
	return &req, nil
}

// handleBatch runs a full batch and returns its summary.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		s.errorResponse(w, HTTPStatus(ErrOutputBusy), ErrOutputBusy.Error())
		return
	}
	defer s.runMu.Unlock()

	result, err := s.runner.RunBatch(r.Context())
	if err != nil {
		s.logger.Error("batch failed", "request_id", requestID(r.Context()), "error", err)
		s.jsonResponse(w, HTTPStatus(err), map[string]any{"error": err.Error(), "result": result})
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleBatchStream runs a batch and streams progress events via SSE.
func (s *Server) handleBatchStream(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		s.errorResponse(w, HTTPStatus(ErrOutputBusy), ErrOutputBusy.Error())
		return
	}
	defer s.runMu.Unlock()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.runner.StreamBatch(r.Context(), func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("file", event); err != nil {
			s.logger.Warn("failed to write SSE event", "request_id", requestID(r.Context()), "error", err)
		}
	})
	if err != nil {
		s.logger.Error("streamed batch failed", "request_id", requestID(r.Context()), "error", err)
		sse.WriteError(err.Error())
		return
	}
	sse.WriteEvent("complete", result) //nolint:errcheck
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ErrValidation{Field: fieldErrs[0].Field(), Message: fieldErrs[0].Tag()}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}
