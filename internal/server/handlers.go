package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/tablespan/pkg/buildinfo"
	errs "github.com/matzehuels/tablespan/pkg/errors"
	tsio "github.com/matzehuels/tablespan/pkg/io"
	"github.com/matzehuels/tablespan/pkg/observability"
	"github.com/matzehuels/tablespan/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type healthBody struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// renderParams holds the fields of a render request beyond the table
// document itself.
type renderParams struct {
	Format  string           `json:"format"`
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Version: buildinfo.Version, Commit: buildinfo.Commit})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := decodeDocument(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Input{Spans: doc.Spans, Table: doc.Table},
		pipeline.Options{Formats: []string{pipeline.FormatJSON}})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, pipeline.FormatJSON, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := decodeDocument(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var params renderParams
	if err := json.Unmarshal(body, &params); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeMalformedInput, err, "invalid render options"))
		return
	}
	if params.Format == "" {
		params.Format = pipeline.DefaultFormat
	}
	if err := pipeline.ValidateFormat(params.Format); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := params.Options
	opts.Formats = []string{params.Format}
	opts.Refresh = false

	res, err := s.runner.Execute(r.Context(), pipeline.Input{Spans: doc.Spans, Table: doc.Table, Content: doc.Content}, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, params.Format, res)
}

// decodeDocument decodes a request body holding a table document. Syntax
// errors are reported as malformed input.
func decodeDocument(body []byte) (tsio.Document, error) {
	var doc tsio.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		if errs.GetCode(err) == "" {
			return doc, errs.Wrap(errs.ErrCodeMalformedInput, err, "request body must be a table document")
		}
		return doc, err
	}
	return doc, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errTooLarge{limit: tooLarge.Limit}
		}
		return nil, errs.Wrap(errs.ErrCodeMalformedInput, err, "read request body")
	}
	return body, nil
}

type errTooLarge struct{ limit int64 }

func (e errTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.limit)
}

func writeArtifact(w http.ResponseWriter, format string, res *pipeline.Result) {
	data := res.Artifacts[format]
	h := w.Header()
	h.Set("Content-Type", contentTypes[format])
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Table-Hash", res.TableHash)
	if res.CacheInfo.RenderHit {
		h.Set("X-Cache", "hit")
	} else {
		h.Set("X-Cache", "miss")
	}
	if format == pipeline.FormatXLSX {
		h.Set("Content-Disposition", `attachment; filename="table.xlsx"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// statusFor maps an error to its HTTP status and public code.
func statusFor(err error) (int, errs.Code) {
	var tooLarge errTooLarge
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, errs.ErrCodeMalformedInput
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, errs.ErrCodeInternal
	}
	code := errs.GetCode(err)
	switch code {
	case errs.ErrCodeMalformedInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidBorder,
		errs.ErrCodeInvalidAlign, errs.ErrCodeInvalidOption:
		return http.StatusBadRequest, code
	case errs.ErrCodeInvalidSpan, errs.ErrCodeDuplicateAnchor, errs.ErrCodeMissingContent,
		errs.ErrCodeTableTooLarge:
		return http.StatusUnprocessableEntity, code
	}
	return http.StatusInternalServerError, errs.ErrCodeInternal
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	ctx := r.Context()
	observability.HTTP().OnError(ctx, r.Method, r.URL.Path, string(code), err)

	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFromContext(ctx), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: string(code), Message: msg, RequestID: RequestIDFromContext(ctx)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
