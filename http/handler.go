// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime"
	"net"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on http.DefaultServeMux
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/felixge/fgprof"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/google/uuid"
	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/logger"
	"github.com/molecula/qsarview/monitor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// HeaderRequestID carries the identifier of a request in both directions.
const HeaderRequestID = "X-Request-ID"

// Handler represents an HTTP handler.
type Handler struct {
	Handler http.Handler

	router *mux.Router

	logger logger.Logger

	// Keeps the query argument validators for each handler
	validators map[string]*queryValidationSpec

	api *qsarview.API

	pages *pages

	// openLimiter bounds how often POST /open may launch an application.
	openLimiter *rate.Limiter

	ln net.Listener

	closeTimeout time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	server *http.Server
}

// handlerOption is a functional option type for Handler
type handlerOption func(s *Handler) error

func OptHandlerAllowedOrigins(origins []string) handlerOption {
	return func(h *Handler) error {
		if len(origins) == 0 {
			return nil
		}
		h.Handler = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"Content-Type", HeaderRequestID}),
			handlers.AllowedMethods([]string{"GET", "HEAD", "POST"}),
		)(h.Handler)
		return nil
	}
}

// OptHandlerAccessLog writes an access log line in Apache Combined Log
// Format to w for every request. A nil w disables the access log.
func OptHandlerAccessLog(w io.Writer) handlerOption {
	return func(h *Handler) error {
		if w == nil {
			return nil
		}
		h.Handler = handlers.CombinedLoggingHandler(w, h.Handler)
		return nil
	}
}

// OptHandlerProfiling mounts the runtime profiles under /debug/pprof/ and
// the wall-clock profiler under /debug/fgprof.
func OptHandlerProfiling(enabled bool) handlerOption {
	return func(h *Handler) error {
		if !enabled {
			return nil
		}
		h.router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux).Methods("GET").Name("Pprof")
		h.router.Handle("/debug/fgprof", fgprof.Handler()).Methods("GET").Name("Fgprof")
		return nil
	}
}

// OptHandlerOpenRateLimit allows perSecond POST /open requests per second,
// with bursts of up to perSecond rounded up. Zero means no limit.
func OptHandlerOpenRateLimit(perSecond float64) handlerOption {
	return func(h *Handler) error {
		if perSecond < 0 {
			return errors.Errorf("negative open rate limit: %v", perSecond)
		}
		if perSecond == 0 {
			h.openLimiter = nil
			return nil
		}
		burst := int(math.Ceil(perSecond))
		h.openLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

func OptHandlerAPI(api *qsarview.API) handlerOption {
	return func(h *Handler) error {
		h.api = api
		return nil
	}
}

func OptHandlerLogger(logger logger.Logger) handlerOption {
	return func(h *Handler) error {
		h.logger = logger
		return nil
	}
}

func OptHandlerListener(ln net.Listener) handlerOption {
	return func(h *Handler) error {
		h.ln = ln
		return nil
	}
}

// OptHandlerCloseTimeout controls how long to wait for the http Server to
// shutdown cleanly before forcibly destroying it. Default is 30 seconds.
func OptHandlerCloseTimeout(d time.Duration) handlerOption {
	return func(h *Handler) error {
		h.closeTimeout = d
		return nil
	}
}

// OptHandlerTimeouts sets the read and write timeouts of the http Server.
// Zero means no timeout.
func OptHandlerTimeouts(read, write time.Duration) handlerOption {
	return func(h *Handler) error {
		h.readTimeout = read
		h.writeTimeout = write
		return nil
	}
}

// NewHandler returns a new instance of Handler with a default logger.
func NewHandler(opts ...handlerOption) (*Handler, error) {
	pages, err := newPages()
	if err != nil {
		return nil, errors.Wrap(err, "parsing page templates")
	}
	handler := &Handler{
		logger:       logger.NopLogger,
		closeTimeout: time.Second * 30,
		pages:        pages,
	}
	handler.router = newRouter(handler)
	handler.Handler = handler.router
	handler.populateValidators()

	for _, opt := range opts {
		err := opt(handler)
		if err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}

	if handler.api == nil {
		return nil, errors.New(errors.ErrUncoded, "must pass OptHandlerAPI")
	}

	if handler.ln == nil {
		return nil, errors.New(errors.ErrUncoded, "must pass OptHandlerListener")
	}

	handler.server = &http.Server{
		Handler:      handler,
		ReadTimeout:  handler.readTimeout,
		WriteTimeout: handler.writeTimeout,
	}

	return handler, nil
}

func (h *Handler) Serve() error {
	err := h.server.Serve(h.ln)
	if err != nil && err != http.ErrServerClosed {
		h.logger.Errorf("HTTP handler terminated with error: %s", err)
		return errors.Wrap(err, "serve http")
	}
	return nil
}

// Close tries to cleanly shutdown the HTTP server, and failing that, after a
// timeout, calls Server.Close.
func (h *Handler) Close() error {
	deadlineCtx, cancelFunc := context.WithDeadline(context.Background(), time.Now().Add(h.closeTimeout))
	defer cancelFunc()
	err := h.server.Shutdown(deadlineCtx)
	if err != nil {
		err = h.server.Close()
	}
	return errors.Wrap(err, "shutdown/close http server")
}

func (h *Handler) populateValidators() {
	h.validators = map[string]*queryValidationSpec{}
	h.validators["Home"] = queryValidationSpecRequired()
	h.validators["About"] = queryValidationSpecRequired()
	h.validators["Receptor"] = queryValidationSpecRequired().Optional("dataset", "ligand")
	h.validators["GetCatalog"] = queryValidationSpecRequired()
	h.validators["GetStructure"] = queryValidationSpecRequired()
	h.validators["Download"] = queryValidationSpecRequired()
	h.validators["PostOpen"] = queryValidationSpecRequired()
	h.validators["GetVersion"] = queryValidationSpecRequired()
	h.validators["GetHealth"] = queryValidationSpecRequired()
	h.validators["GetInfo"] = queryValidationSpecRequired()
}

func (h *Handler) queryArgValidator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := mux.CurrentRoute(r).GetName()

		if validator, ok := h.validators[key]; ok {
			if err := validator.validate(r.URL.Query()); err != nil {
				h.writeError(w, qsarview.NewErrBadRequest("%v", err))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requestID echoes the caller's request ID, or assigns a new one.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(HeaderRequestID, id)
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) collectStats(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(t)

		path, err := mux.CurrentRoute(r).GetPathTemplate()
		if err != nil {
			path = "unknown"
		}
		qsarview.SummaryHTTPRequests.WithLabelValues(path, r.Method).Observe(dur.Seconds())
		h.logger.Debugf("%s %s %s %v", r.Header.Get(HeaderRequestID), r.Method, r.URL.String(), dur)
	})
}

// newRouter creates a new mux http router.
func newRouter(handler *Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", handler.handleHome).Methods("GET").Name("Home")
	router.HandleFunc("/about", handler.handleAbout).Methods("GET").Name("About")
	router.HandleFunc("/receptor/{variant}", handler.handleReceptor).Methods("GET").Name("Receptor")
	router.HandleFunc("/api/catalog/{variant}/{dataset}", handler.handleGetCatalog).Methods("GET").Name("GetCatalog")
	router.HandleFunc("/api/structure/{variant}/{dataset}/{ligand}", handler.handleGetStructure).Methods("GET").Name("GetStructure")
	router.HandleFunc("/download/{variant}/{dataset}/{ligand}", handler.handleDownload).Methods("GET", "HEAD").Name("Download")
	router.HandleFunc("/open/{variant}/{dataset}/{ligand}", handler.handlePostOpen).Methods("POST").Name("PostOpen")
	router.HandleFunc("/version", handler.handleGetVersion).Methods("GET").Name("GetVersion")
	router.HandleFunc("/health", handler.handleGetHealth).Methods("GET").Name("GetHealth")
	router.HandleFunc("/info", handler.handleGetInfo).Methods("GET").Name("GetInfo")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET").Name("Metrics")

	router.Use(handler.requestID)
	router.Use(handler.queryArgValidator)
	router.Use(handler.collectStats)
	return router
}

// ServeHTTP handles an HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			stack := debug.Stack()
			msg := "PANIC: %s\n%s"
			h.logger.Errorf(msg, err, stack)
			monitor.CaptureException(monitor.LevelPanic, "PANIC: %s %s: %v", r.Method, r.URL.Path, err)
			fmt.Fprintf(w, msg, err, stack)
		}
	}()

	h.Handler.ServeHTTP(w, r)
}

// statusCode maps an error to the HTTP status it is reported with.
func statusCode(err error) int {
	switch errors.CodeOf(err) {
	case qsarview.ErrBadRequest:
		return http.StatusBadRequest
	case qsarview.ErrNotFound, qsarview.ErrFileIntegrityMismatch:
		return http.StatusNotFound
	case qsarview.ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as a coded JSON body.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		monitor.CaptureException(monitor.LevelError, "%v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, werr := fmt.Fprintln(w, errors.MarshalJSON(err)); werr != nil {
		h.logger.Printf("error writing error response: %v", werr)
	}
}

// writeJSON sends v as the JSON body of a 200 response.
func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Printf("write response error: %s", err)
	}
}

// selection reads the receptor, dataset and ligand route variables. Any
// of them may be absent from the route.
func selection(r *http.Request) (v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string, err error) {
	vars := mux.Vars(r)
	if s, ok := vars["variant"]; ok {
		if v, err = qsarview.ParseReceptorVariant(s); err != nil {
			return v, d, "", err
		}
	}
	if s, ok := vars["dataset"]; ok {
		if d, err = qsarview.ParseDatasetKind(s); err != nil {
			return v, d, "", err
		}
	}
	return v, d, vars["ligand"], nil
}

// handleGetCatalog handles GET /api/catalog/{variant}/{dataset}. An empty
// catalog is a 200 with "empty" set.
func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	if !validHeaderAcceptJSON(r.Header) {
		http.Error(w, "JSON only acceptable response", http.StatusNotAcceptable)
		return
	}
	v, d, _, err := selection(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.api.Catalog(v, d)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, view)
}

// handleGetStructure handles GET /api/structure/{variant}/{dataset}/{ligand}.
func (h *Handler) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	if !validHeaderAcceptJSON(r.Header) {
		http.Error(w, "JSON only acceptable response", http.StatusNotAcceptable)
		return
	}
	v, d, ligand, err := selection(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.api.Structure(v, d, ligand)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, view)
}

// handleDownload handles GET /download/{variant}/{dataset}/{ligand}. The
// body is the file exactly as stored.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	v, d, ligand, err := selection(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.api.Structure(v, d, ligand)
	if err != nil {
		h.writeError(w, err)
		return
	}

	f := view.File
	w.Header().Set("Content-Type", qsarview.PDBContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("ETag", `"`+view.Digest+`"`)
	http.ServeContent(w, r, f.Name, f.ModTime, bytes.NewReader(f.Content))
}

type openResponse struct {
	Path string `json:"path"`
}

// handlePostOpen handles POST /open/{variant}/{dataset}/{ligand}: the
// structure file is opened with the default application of the host the
// server runs on.
func (h *Handler) handlePostOpen(w http.ResponseWriter, r *http.Request) {
	if h.openLimiter != nil && !h.openLimiter.Allow() {
		qsarview.CounterOpensRateLimited.Inc()
		h.writeError(w, qsarview.NewErrTooManyRequests("open"))
		return
	}
	v, d, ligand, err := selection(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	path, err := h.api.Open(r.Context(), v, d, ligand)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, openResponse{Path: path})
}

func (h *Handler) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	if !validHeaderAcceptJSON(r.Header) {
		http.Error(w, "JSON only acceptable response", http.StatusNotAcceptable)
		return
	}
	h.writeJSON(w, struct {
		Version string `json:"version"`
	}{
		Version: h.api.Version(),
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	DataDir string `json:"dataDir"`
}

func (h *Handler) handleGetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, healthResponse{Status: "OK", DataDir: h.api.DataDir()})
}

// handleGetInfo handles GET /info.
func (h *Handler) handleGetInfo(w http.ResponseWriter, r *http.Request) {
	if !validHeaderAcceptJSON(r.Header) {
		http.Error(w, "JSON only acceptable response", http.StatusNotAcceptable)
		return
	}
	info, err := h.api.Info()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, info)
}

// validHeaderAcceptJSON returns false if one or more Accept
// headers are present, but none of them are "application/json"
// (or any matching wildcard). Otherwise returns true.
func validHeaderAcceptJSON(header http.Header) bool {
	return validHeaderAcceptType(header, "application", "json")
}

func validHeaderAcceptType(header http.Header, typ, subtyp string) bool {
	if v, found := header["Accept"]; found {
		for _, v := range v {
			for _, v := range strings.Split(v, ",") {
				t, _, err := mime.ParseMediaType(strings.TrimSpace(v))
				if err != nil && err != mime.ErrInvalidMediaParameter {
					continue
				}
				spl := strings.SplitN(t, "/", 2)
				if len(spl) < 2 {
					continue
				}
				switch {
				case spl[0] == typ && spl[1] == subtyp:
					return true
				case spl[0] == "*" && spl[1] == subtyp:
					return true
				case spl[0] == typ && spl[1] == "*":
					return true
				case spl[0] == "*" && spl[1] == "*":
					return true
				}
			}
		}
		return false
	}
	return true
}

type queryValidationSpec struct {
	required []string
	args     map[string]struct{}
}

func queryValidationSpecRequired(requiredArgs ...string) *queryValidationSpec {
	args := map[string]struct{}{}
	for _, arg := range requiredArgs {
		args[arg] = struct{}{}
	}

	return &queryValidationSpec{
		required: requiredArgs,
		args:     args,
	}
}

func (s *queryValidationSpec) Optional(args ...string) *queryValidationSpec {
	for _, arg := range args {
		s.args[arg] = struct{}{}
	}
	return s
}

func (s queryValidationSpec) validate(query url.Values) error {
	for _, req := range s.required {
		if query.Get(req) == "" {
			return errors.Errorf("%s is required", req)
		}
	}
	for k := range query {
		if _, ok := s.args[k]; !ok {
			return errors.Errorf("%s is not a valid argument", k)
		}
	}
	return nil
}
