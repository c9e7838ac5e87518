// Package serve runs a development server that renders the Elm client on
// every request, so a frontend build can fetch it while the API description
// is being edited.
package serve

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/schema"

	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/input"
	"github.com/jhickner/servant-elm/elmgen"
)

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

type Cmd struct {
	input.Options
	Port int `help:"Port to listen on." default:"9000" short:"p"`
}

func (c *Cmd) Run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	addr := fmt.Sprintf("localhost:%d", c.Port)
	fmt.Printf("servant-elm serve listening on http://%s/api.elm\n", addr)
	return http.ListenAndServe(addr, NewHandler(c.Options, logger))
}

// RenderOptions are the query parameters of GET /api.elm.
type RenderOptions struct {
	Prefix   string `schema:"prefix"`
	Module   string `schema:"module"`
	Comments string `schema:"comments"`
}

// NewHandler serves:
//
//	GET /api.elm?prefix=..&module=..&comments=none  the generated module
//	GET /schema.json                                the parsed schema
//
// The input is reloaded on every request.
func NewHandler(in input.Options, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{in: in, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api.elm", s.elm)
	mux.HandleFunc("GET /schema.json", s.schema)
	return withLogging(logger, withCORS(mux))
}

type server struct {
	in     input.Options
	logger *slog.Logger
}

func (s *server) elm(w http.ResponseWriter, r *http.Request) {
	var opts RenderOptions
	if err := schemaDecoder.Decode(&opts, r.URL.Query()); err != nil {
		http.Error(w, "invalid query: "+err.Error(), http.StatusBadRequest)
		return
	}

	sch, err := s.in.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	res, err := elmgen.FromSchema(sch).
		WithURLPrefix(opts.Prefix).
		ModuleName(opts.Module).
		PreserveComments(opts.Comments).
		WithLogger(s.logger).
		Generate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Elm-Module", res.Files[0].Path)
	if _, err := w.Write(res.Files[0].Content); err != nil {
		s.logger.ErrorContext(r.Context(), "write module", slog.Any("error", err))
	}
}

func (s *server) schema(w http.ResponseWriter, r *http.Request) {
	sch, err := s.in.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sch); err != nil {
		s.logger.ErrorContext(r.Context(), "encode schema", slog.Any("error", err))
	}
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request with its status and duration.
func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		}
		if rec.status >= 400 {
			logger.WarnContext(r.Context(), "request failed", attrs...)
			return
		}
		logger.InfoContext(r.Context(), "request completed", attrs...)
	})
}

// withCORS allows any origin, so a frontend dev server on another port can
// fetch the module.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
