package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"gounivar/domain/dataset"
	"gounivar/domain/stats"
	"gounivar/internal/analysis"
	"gounivar/internal/errors"
	"gounivar/internal/report"
)

// variableList accepts either [{name, kind}] or {name: kind}; the object
// form is ordered by name
type variableList []stats.Variable

func (v *variableList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var m map[string]stats.VariableKind
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = stats.VariablesFromMap(m)
		return nil
	}
	var list []stats.Variable
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*v = list
	return nil
}

// analyzeRequest carries a dataset inline as named columns
type analyzeRequest struct {
	Columns      map[string][]dataset.Value `json:"columns" validate:"required,min=1"`
	Variables    variableList               `json:"variables" validate:"required,min=1"`
	Axes         []string                   `json:"axes" validate:"dive,required"`
	AssumeNormal *bool                      `json:"assume_normal"`
}

type tableRequest struct {
	analyzeRequest
	Format    string `json:"format"`
	Precision *int   `json:"precision" validate:"omitempty,min=0,max=12"`
	// Variable selects the detail table's variable
	Variable string `json:"variable"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.analyze(r, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDescriptiveTable(w http.ResponseWriter, r *http.Request) {
	s.handleTable(w, r, func(rep *report.Report, req *tableRequest) (report.Table, error) {
		return rep.DescriptiveTable(nil, nil)
	})
}

func (s *Server) handleDetailTable(w http.ResponseWriter, r *http.Request) {
	s.handleTable(w, r, func(rep *report.Report, req *tableRequest) (report.Table, error) {
		if req.Variable == "" {
			return report.Table{}, errors.ValidationError("variable is required for a detail table")
		}
		return rep.DetailTable(req.Variable, nil)
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request, build func(*report.Report, *tableRequest) (report.Table, error)) {
	var req tableRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	format := report.FormatJSON
	if req.Format != "" {
		f, err := report.ParseFormat(req.Format)
		if err != nil {
			s.writeError(w, err)
			return
		}
		format = f
	}
	opts := report.DefaultOptions()
	opts.Precision = s.config.Precision
	if req.Precision != nil {
		opts.Precision = *req.Precision
	}

	result, err := s.analyze(r, &req.analyzeRequest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rep, err := report.New(result, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	table, err := build(rep, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, table, format); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) analyze(r *http.Request, req *analyzeRequest) (*stats.Analysis, error) {
	ds, err := datasetOf(req.Columns)
	if err != nil {
		return nil, err
	}

	assumeNormal := s.config.AssumeNormal
	if req.AssumeNormal != nil {
		assumeNormal = *req.AssumeNormal
	}
	analyzer := analysis.New(ds,
		analysis.WithConcurrency(s.config.Concurrency),
		analysis.WithAssumeNormal(assumeNormal),
		analysis.WithLogger(s.logger),
	)

	start := time.Now()
	result, err := analyzer.Analyze(r.Context(), req.Variables, req.Axes)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.analyses.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.analyses.WithLabelValues("ok").Inc()
	s.metrics.observe(result)
	return result, nil
}

// datasetOf builds columns in name order
func datasetOf(columns map[string][]dataset.Value) (*dataset.Dataset, error) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]dataset.Column, len(names))
	for i, name := range names {
		cols[i] = dataset.Column{Name: name, Values: columns[name]}
	}
	return dataset.New(cols...)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.InvalidInput(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return errors.InvalidInput("invalid JSON body: " + err.Error())
	}

	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
			}
			return errors.ValidationError(strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid request")
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusOf(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func statusOf(code string) int {
	switch code {
	case errors.CodeValidationError, errors.CodeInvalidInput, errors.CodeConfigInvalid, errors.CodeUnsupportedFormat:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
