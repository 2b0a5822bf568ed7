package labd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/experiment"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/metrics"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/report"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/stats"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *Store
	Executor *Executor
	now      func() time.Time
}

func NewHTTPServer(executor *Executor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    executor.Store(),
		Executor: executor,
		now:      time.Now,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.HandleFunc("/v1/experiments", s.handleExperiments)
	s.mux.HandleFunc("/v1/experiments/", s.handleExperimentByID)
	s.mux.HandleFunc("/v1/report", s.handleReport)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleExperiments handles /v1/experiments
func (s *HTTPServer) handleExperiments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExperiment(w, r)
	case http.MethodGet:
		s.handleListExperiments(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleExperimentByID handles /v1/experiments/{id} and its sub-resources
func (s *HTTPServer) handleExperimentByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/experiments/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "experiment ID is required")
		return
	}

	if strings.HasSuffix(path, ":stop") {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleStopExperiment(w, strings.TrimSuffix(path, ":stop"))
		return
	}

	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		s.handleGetExperiment(w, id)
	case "methods":
		s.handleMethods(w, id)
	case "analysis":
		s.handleAnalysis(w, id)
	case "export":
		s.handleExport(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

// handleCreateExperiment handles POST /v1/experiments
func (s *HTTPServer) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.Executor.Start(req)
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	logger.Info("experiment created (HTTP)", "experiment_id", rec.ID, "kind", rec.Kind)
	s.writeJSON(w, http.StatusCreated, map[string]any{"experiment": rec})
}

// handleListExperiments handles GET /v1/experiments?limit=&offset=&status=
func (s *HTTPServer) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if parsed, err := strconv.Atoi(q.Get("limit")); err == nil && parsed > 0 {
		limit = utils.Clamp(parsed, 1, 1000)
	}
	offset := 0
	if parsed, err := strconv.Atoi(q.Get("offset")); err == nil && parsed >= 0 {
		offset = parsed
	}

	recs := s.store.List(limit, offset, models.ExperimentStatus(strings.ToLower(q.Get("status"))))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"experiments": recs,
		"limit":       limit,
		"offset":      offset,
	})
}

func (s *HTTPServer) handleGetExperiment(w http.ResponseWriter, id string) {
	rec, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "experiment not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"experiment": rec})
}

func (s *HTTPServer) handleStopExperiment(w http.ResponseWriter, id string) {
	rec, err := s.Executor.Stop(id)
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}
	logger.Info("experiment cancelled (HTTP)", "experiment_id", id)
	s.writeJSON(w, http.StatusOK, map[string]any{"experiment": rec.Summary()})
}

// finished returns the record if it exists and has results.
func (s *HTTPServer) finished(w http.ResponseWriter, id string) (Record, bool) {
	rec, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "experiment not found")
		return Record{}, false
	}
	if rec.Results == nil {
		s.writeError(w, http.StatusConflict, "experiment has no results yet")
		return Record{}, false
	}
	return rec, true
}

// handleMethods serves display-ready series. GA configurations are listed
// as GA_Config_<n> series of their outcomes.
func (s *HTTPServer) handleMethods(w http.ResponseWriter, id string) {
	rec, ok := s.finished(w, id)
	if !ok {
		return
	}

	var methods []experiment.MethodResult
	switch {
	case rec.Results.Individual != nil:
		methods = experiment.PrepareMethodResults(rec.Results.Individual)
	case rec.Results.AllMethods != nil:
		methods = experiment.PrepareAllMethodsResults(rec.Results.AllMethods)
	case rec.Results.Genetic != nil:
		for i, e := range rec.Results.Genetic.Experiments {
			methods = append(methods, experiment.MethodResult{
				Name:  experiment.GAConfigName(i),
				Data:  e.Outcomes,
				Stats: stats.Compute(e.Outcomes),
			})
		}
	}
	if methods == nil {
		methods = []experiment.MethodResult{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"experiment_id": id, "methods": methods})
}

func (s *HTTPServer) handleAnalysis(w http.ResponseWriter, id string) {
	rec, ok := s.finished(w, id)
	if !ok {
		return
	}
	doc := report.Build(reportInput(rec.Problem, rec.Repetitions, *rec.Results), s.now())
	body := map[string]any{
		"experiment_id": id,
		"analysis":      doc.Analysis,
	}
	if ga := rec.Results.Genetic; ga != nil {
		body["best_configuration"] = ga.BestConfiguration
		body["summary"] = doc.GeneticAlgorithms.Summary
		body["parameter_analysis"] = ga.Comparison
	}
	s.writeJSON(w, http.StatusOK, body)
}

// handleExport handles GET /v1/experiments/{id}/export?format=json|csv
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, id string) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, ok := s.finished(w, id)
	if !ok {
		return
	}
	s.writeReport(w, format, reportInput(rec.Problem, rec.Repetitions, *rec.Results))
}

// handleReport combines up to one experiment of each kind:
// GET /v1/report?individual=&all_methods=&genetic=&format=
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	format, err := report.ParseFormat(q.Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in report.Input
	found := false
	for _, kind := range []models.ExperimentKind{
		models.ExperimentKindIndividual, models.ExperimentKindAllMethods, models.ExperimentKindGenetic,
	} {
		id := q.Get(string(kind))
		if id == "" {
			continue
		}
		rec, ok := s.finished(w, id)
		if !ok {
			return
		}
		if rec.Kind != kind {
			s.writeError(w, http.StatusBadRequest, "experiment "+id+" is not a "+string(kind)+" experiment")
			return
		}
		if !found {
			in.Problem = rec.Problem
			in.Repetitions = rec.Repetitions
			found = true
		}
		switch kind {
		case models.ExperimentKindIndividual:
			in.Individual = rec.Results.Individual
		case models.ExperimentKindAllMethods:
			in.AllMethods = rec.Results.AllMethods
		case models.ExperimentKindGenetic:
			in.Genetic = rec.Results.Genetic
		}
	}
	if !found {
		s.writeError(w, http.StatusBadRequest, "at least one of individual, all_methods or genetic is required")
		return
	}
	s.writeReport(w, format, in)
}

func (s *HTTPServer) writeReport(w http.ResponseWriter, format report.Format, in report.Input) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="optimization-report.`+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	if err := report.Write(w, format, in, s.now()); err != nil {
		logger.Error("failed to write report", "format", format, "error", err)
	}
}

// statusForError maps executor and store sentinels to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunTerminal), errors.Is(err, ErrRunExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrRunIDMissing):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
