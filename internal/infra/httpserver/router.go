package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/chat-pattern-explorer/internal/application/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/application/workspace"
	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/domain/chatfile"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/middleware"
)

// failureMessage is the only thing a client learns about a failed analysis.
const failureMessage = "Something went wrong on our side"

type Options struct {
	AllowedOrigins []string
	// MaxUploadMB caps the upload body. 0 or less means no cap.
	MaxUploadMB int
	Health      map[string]middleware.HealthChecker
	Metrics     *middleware.Metrics
	Log         *zap.Logger
}

type Router struct {
	ws        *workspace.Workspace
	svc       *appanalysis.Service
	metrics   *middleware.Metrics
	log       *zap.Logger
	maxUpload int64 // 0 = unlimited
}

func NewRouter(ws *workspace.Workspace, svc *appanalysis.Service, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := &Router{
		ws:      ws,
		svc:     svc,
		metrics: opts.Metrics,
		log:     opts.Log,
	}
	if opts.MaxUploadMB > 0 {
		r.maxUpload = int64(opts.MaxUploadMB) << 20
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(opts.Log))
	mux.Use(opts.Metrics.Middleware)

	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.ReadinessHandler(func() bool {
		return ws.State() == workspace.Ready
	}))
	mux.Get("/metrics", opts.Metrics.Handler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(r.requireReady)
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/results", r.wrap(r.handleSave))
		rt.Get("/results", r.wrap(r.handleList))
		rt.Get("/results/{id}", r.wrap(r.handleGet))
		rt.Get("/current", r.wrap(r.handleCurrent))
		rt.Put("/current", r.wrap(r.handleSelect))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks client input errors.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var bad badRequest
		switch {
		case errors.As(err, &bad):
			writeError(w, http.StatusBadRequest, bad.msg)
		case errors.Is(err, chatfile.ErrInvalidFileType):
			writeError(w, http.StatusUnsupportedMediaType, chatfile.Notice)
		case errors.Is(err, domain.ErrNotReady):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, domain.ErrAnalysisInProgress),
			errors.Is(err, domain.ErrNothingToSave):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrEntryNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrAnalysisFailed):
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":  failureMessage,
				"result": domain.Result{},
			})
		default:
			r.log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func (r *Router) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.ws.State() != workspace.Ready {
			writeError(w, http.StatusServiceUnavailable, domain.ErrNotReady.Error())
			return
		}
		next.ServeHTTP(w, req)
	})
}

// POST /v1/analyze
// multipart form, field "file" berisi export chat .txt
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if r.maxUpload > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return badRequest{msg: fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit)}
		}
		return badRequest{msg: "multipart field \"file\" is required"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return badRequest{msg: "could not read upload"}
	}

	name := middleware.SanitizeFileName(header.Filename)
	chat, err := chatfile.Validate(name, header.Header.Get("Content-Type"), data)
	if err != nil {
		r.metrics.UploadsRejected.Add(1)
		return err
	}

	r.metrics.AnalysesTotal.Add(1)
	res, err := r.svc.Analyze(req.Context(), chat.Content)
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisFailed) {
			r.metrics.AnalysesFailed.Add(1)
		}
		return err
	}
	if err := r.ws.SetAnalyzed(chat.Name, res); err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{
		"name":   chat.Name,
		"result": res,
	})
}

// POST /v1/results
// Body (opsional): {"name": "<override>"}
func (r *Router) handleSave(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name string `json:"name"`
	}
	if req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return badRequest{msg: "invalid JSON body"}
		}
	}

	entry, err := r.ws.SavePending(req.Context(), middleware.SanitizeFileName(body.Name))
	if err != nil {
		return err
	}
	r.metrics.ResultsSaved.Add(1)
	return writeJSON(w, http.StatusCreated, entry)
}

// GET /v1/results
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.ws.Saved()
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/results/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateEntryID(id); err != nil {
		return badRequest{msg: err.Error()}
	}
	entry, err := r.ws.Entry(domain.EntryID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, entry)
}

// GET /v1/current
func (r *Router) handleCurrent(w http.ResponseWriter, req *http.Request) error {
	res, ok, err := r.ws.Current()
	if err != nil {
		return err
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no current result")
		return nil
	}
	return writeJSON(w, http.StatusOK, res)
}

// PUT /v1/current
// Body: {"id": "<entry id>"} atau {"index": 0}
func (r *Router) handleSelect(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ID    string `json:"id"`
		Index *int   `json:"index"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{msg: "invalid JSON body"}
	}

	var (
		entry domain.SavedEntry
		err   error
	)
	switch {
	case body.ID != "":
		if verr := middleware.ValidateEntryID(body.ID); verr != nil {
			return badRequest{msg: verr.Error()}
		}
		entry, err = r.ws.SelectID(domain.EntryID(body.ID))
	case body.Index != nil:
		if *body.Index < 0 {
			return badRequest{msg: "index cannot be negative"}
		}
		entry, err = r.ws.Select(*body.Index)
	default:
		return badRequest{msg: "id or index is required"}
	}
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}
