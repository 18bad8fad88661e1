package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/middleware"
)

// Prefix is the path under which procedures are served.
const Prefix = "/api/"

const maxBodyBytes = 1 << 20

// ProcedureFunc runs one procedure. userID is empty for anonymous callers.
type ProcedureFunc func(ctx context.Context, userID string, input json.RawMessage) (any, error)

type procedure struct {
	mutation  bool
	protected bool
	fn        ProcedureFunc
}

// Router dispatches /api/<router>.<procedure> calls.
type Router struct {
	procs map[string]procedure
	log   *log.Logger
}

func NewRouter(log *log.Logger) *Router {
	return &Router{procs: make(map[string]procedure), log: log}
}

// Query registers a read procedure callable with GET or POST.
func (rt *Router) Query(name string, fn ProcedureFunc) {
	rt.procs[name] = procedure{fn: fn}
}

// ProtectedQuery registers a read procedure that requires a caller.
func (rt *Router) ProtectedQuery(name string, fn ProcedureFunc) {
	rt.procs[name] = procedure{protected: true, fn: fn}
}

// Mutation registers a POST-only procedure that requires a caller.
func (rt *Router) Mutation(name string, fn ProcedureFunc) {
	rt.procs[name] = procedure{mutation: true, protected: true, fn: fn}
}

// Procedures returns the registered procedure names.
func (rt *Router) Procedures() []string {
	names := make([]string, 0, len(rt.procs))
	for name := range rt.procs {
		names = append(names, name)
	}
	return names
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, Prefix)
	p, ok := rt.procs[name]
	if !ok {
		handleError(w, rt.log, name, apperr.NotFoundf("no procedure %q", name))
		return
	}

	if r.Method != http.MethodPost && (r.Method != http.MethodGet || p.mutation) {
		w.Header().Set("Allow", allowed(p))
		writeJSON(w, rt.log, http.StatusMethodNotAllowed, map[string]any{
			"error": errorBody{Code: "METHOD_NOT_SUPPORTED", Message: "method not supported"},
		})
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	if p.protected && userID == "" {
		handleError(w, rt.log, name, apperr.New(apperr.Unauthorized, "authentication required"))
		return
	}

	input, err := readInput(w, r)
	if err != nil {
		handleError(w, rt.log, name, err)
		return
	}

	data, err := p.fn(r.Context(), userID, input)
	if err != nil {
		handleError(w, rt.log, name, err)
		return
	}
	writeData(w, rt.log, data)
}

func allowed(p procedure) string {
	if p.mutation {
		return http.MethodPost
	}
	return http.MethodGet + ", " + http.MethodPost
}

// readInput returns the raw JSON input of a call: the "input" query parameter
// for GET, the body for POST. Missing input reads as an empty object.
func readInput(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	var raw []byte
	if r.Method == http.MethodGet {
		raw = []byte(r.URL.Query().Get("input"))
	} else {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			return nil, apperr.BadRequestf("failed to read request body")
		}
		raw = body
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, apperr.BadRequestf("input is not valid JSON")
	}
	return raw, nil
}

// decode unmarshals a procedure input into T.
func decode[T any](input json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(input, &v); err != nil {
		return v, apperr.BadRequestf("invalid input: %v", err)
	}
	return v, nil
}

type idInput struct {
	ID string `json:"id"`
}

type ideaIDInput struct {
	IdeaID string `json:"ideaId"`
}

type slugInput struct {
	Slug string `json:"slug"`
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.BadRequestf("%s is required", name)
	}
	return nil
}

var success = map[string]bool{"success": true}
