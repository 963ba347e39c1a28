/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions decode JSON requests, call into the session
    (internal/game) and encode JSON responses.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Does the schematic/class exist?)
    - Error Mapping (domain errors become 400/404/409, incomplete data 503)
    - Locking is the session's job; handlers never touch shared state directly.
*/

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/assignee"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/catalog"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/game"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/schematic"
)

// Request DTOs

type RateRequest struct {
	Resource catalog.ResourceDoc `json:"resource"`
	Class    string              `json:"class"`
	Weights  map[string]int      `json:"weights"` // empty means any quality
}

type NameRequest struct {
	Name string `json:"name"`
}

type FavoriteRequest struct {
	Name      string `json:"name"`
	Schematic int    `json:"schematic"`
}

// Response DTOs

type RateResponse struct {
	Rate  float64 `json:"rate"`
	Grade string  `json:"grade"`
}

type PairView struct {
	Class      string         `json:"class"`
	Filter     string         `json:"filter"`
	Weights    map[string]int `json:"weights,omitempty"`
	Schematics []int          `json:"schematics"`
}

type WrapperView struct {
	Class   string         `json:"class"`
	Filter  string         `json:"filter"`
	Weights map[string]int `json:"weights,omitempty"`
	Name    string         `json:"name"`
	Primary bool           `json:"primary"`
	Groups  []string       `json:"groups,omitempty"`
}

type ProblemsResponse struct {
	Accepted int      `json:"accepted"`
	Problems []string `json:"problems"`
}

type StatusResponse struct {
	Galaxy     string   `json:"galaxy"`
	Complete   bool     `json:"complete"`
	Problems   []string `json:"problems"`
	Schematics int      `json:"schematics"`
	Spawning   int      `json:"spawning"`
	Inventory  int      `json:"inventory"`
	Clients    int      `json:"clients"`
}

// Server bundles what the handlers need.
type Server struct {
	Session  *game.Session
	Hub      *Hub
	Limiter  *Limiter
	ErrorLog *log.Logger
}

// NewServer wires a server. limiter may be nil to disable rate limiting.
func NewServer(session *game.Session, hub *Hub, limiter *Limiter, errLog *log.Logger) *Server {
	if errLog == nil {
		errLog = log.New(io.Discard, "", 0)
	}
	return &Server{Session: session, Hub: hub, Limiter: limiter, ErrorLog: errLog}
}

// Routes returns the full handler chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Information Endpoints
	mux.HandleFunc("GET /api/status", s.HandleStatus)
	mux.HandleFunc("GET /api/pairs", s.HandlePairs)
	mux.HandleFunc("GET /api/experiments", s.HandleExperiments)
	mux.HandleFunc("GET /api/alerts", s.HandleAlerts)
	mux.HandleFunc("GET /api/best", s.HandleBest)
	mux.HandleFunc("POST /api/rate", s.HandleRate)

	// Data feeds
	mux.HandleFunc("GET /api/inventory", s.HandleGetInventory)
	mux.HandleFunc("PUT /api/inventory", s.HandlePutInventory)
	mux.HandleFunc("PUT /api/spawning", s.HandlePutSpawning)

	// Assignees
	mux.HandleFunc("GET /api/assignees", s.HandleGetAssignees)
	mux.HandleFunc("POST /api/assignees", s.HandleAddAssignee)
	mux.HandleFunc("POST /api/assignees/remove", s.HandleRemoveAssignee)
	mux.HandleFunc("POST /api/favorites", s.HandleAddFavorite)
	mux.HandleFunc("POST /api/favorites/remove", s.HandleRemoveFavorite)

	if s.Hub != nil {
		mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.Hub, w, r)
		})
	}

	var h http.Handler = mux
	if s.Limiter != nil {
		h = s.Limiter.Middleware(h)
	}
	return CORS(h)
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		missing    *resource.MissingResourceClassError
		unknownSt  *resource.UnknownStatError
		degenerate *resource.DegenerateWeightError
		wrapper    *schematic.InvalidWrapperError
	)
	switch {
	case errors.As(err, &missing),
		errors.Is(err, game.ErrUnknownSchematic),
		errors.Is(err, game.ErrUnknownPair),
		errors.Is(err, assignee.ErrUnknownAssignee):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, assignee.ErrDuplicateAssignee):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &unknownSt),
		errors.As(err, &degenerate),
		errors.As(err, &wrapper),
		errors.Is(err, resource.ErrInvalidValue),
		errors.Is(err, assignee.ErrEmptyName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.ErrorLog.Printf("API: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
	}
}

// requireComplete answers 503 when the catalog skipped entries.
func (s *Server) requireComplete(w http.ResponseWriter) bool {
	if s.Session.Complete() {
		return true
	}
	http.Error(w, "data not fully available", http.StatusServiceUnavailable)
	return false
}

func flag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// parseWeights reads "SR:66,UT:33" into a stat-name map.
func parseWeights(v string) (map[string]int, error) {
	out := make(map[string]int)
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, num, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("weight %q: want STAT:N", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", part, err)
		}
		out[strings.TrimSpace(name)] = n
	}
	return out, nil
}

func problemStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

// HandleStatus reports what the session has loaded.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cat := s.Session.Catalog()
	resp := StatusResponse{
		Galaxy:     s.Session.Galaxy(),
		Complete:   cat.Complete(),
		Problems:   problemStrings(cat.Problems),
		Schematics: len(cat.Schematics),
		Spawning:   len(s.Session.Board().Spawning()),
		Inventory:  len(s.Session.Inventory()),
	}
	if s.Hub != nil {
		resp.Clients = s.Hub.Clients()
	}
	writeJSON(w, resp)
}

// HandlePairs returns the requirements of the tracked schematics.
// ?hq=1 selects weighted requirements, otherwise any-quality ones.
func (s *Server) HandlePairs(w http.ResponseWriter, r *http.Request) {
	if !s.requireComplete(w) {
		return
	}
	ps, err := s.Session.Pairs(flag(r, "hq"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	tree := s.Session.Catalog().Tree
	out := make([]PairView, 0, len(ps))
	for _, p := range ps {
		v := PairView{Class: tree.Name(p.Class), Filter: p.Filter.String(), Schematics: p.Schematics()}
		if !p.IsAny() {
			v.Weights = catalog.FromWeights(p.Filter.Weights())
		}
		out = append(out, v)
	}
	writeJSON(w, out)
}

// HandleExperiments returns the merged requirements of ?schematic=ID.
func (s *Server) HandleExperiments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("schematic"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ws, err := s.Session.Experiments(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tree := s.Session.Catalog().Tree
	out := make([]WrapperView, 0, len(ws))
	for _, x := range ws {
		v := WrapperView{
			Class:   tree.Name(x.Class),
			Filter:  x.Filter.String(),
			Name:    x.Name,
			Primary: x.Primary,
			Groups:  x.Groups,
		}
		if !x.IsAny() {
			v.Weights = catalog.FromWeights(x.Filter.Weights())
		}
		out = append(out, v)
	}
	writeJSON(w, out)
}

// HandleAlerts runs the spawn-vs-inventory comparison.
// ?hq=1 for weighted requirements, ?great=1 to ignore inventory and use the Great floor.
func (s *Server) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if !s.requireComplete(w) {
		return
	}
	views, err := s.Session.Alerts(flag(r, "hq"), flag(r, "great"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, views)
}

// HandleBest ranks held stacks for ?class=NAME&weights=SR:66,UT:33.
func (s *Server) HandleBest(w http.ResponseWriter, r *http.Request) {
	weights, err := parseWeights(r.URL.Query().Get("weights"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ranked, err := s.Session.BestFor(r.URL.Query().Get("class"), weights)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, ranked)
}

// HandleRate rates one resource against a class and weights.
func (s *Server) HandleRate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	rate, err := s.Session.Rate(req.Resource, req.Class, req.Weights)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, RateResponse{Rate: rate, Grade: s.Session.Grade(rate)})
}

// HandleGetInventory returns the held stacks.
func (s *Server) HandleGetInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, catalog.InventoryFile{Galaxy: s.Session.Galaxy(), Inventory: s.Session.Inventory()})
}

// HandlePutInventory replaces the held stacks.
func (s *Server) HandlePutInventory(w http.ResponseWriter, r *http.Request) {
	var req catalog.InventoryFile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	problems, err := s.Session.SetInventory(req.Inventory)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, ProblemsResponse{Accepted: len(req.Inventory) - len(problems), Problems: problemStrings(problems)})
}

// HandlePutSpawning replaces the spawn board.
func (s *Server) HandlePutSpawning(w http.ResponseWriter, r *http.Request) {
	var req catalog.SpawnFile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	problems := s.Session.SetSpawning(req)
	writeJSON(w, ProblemsResponse{Accepted: len(s.Session.Board().Spawning()), Problems: problemStrings(problems)})
}

// HandleGetAssignees lists assignees with their favorites.
func (s *Server) HandleGetAssignees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Assignees().Snapshot())
}

// HandleAddAssignee creates an assignee.
func (s *Server) HandleAddAssignee(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := s.Session.AddAssignee(req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, s.Session.Assignees().Snapshot())
}

// HandleRemoveAssignee deletes an assignee.
func (s *Server) HandleRemoveAssignee(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := s.Session.RemoveAssignee(req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, s.Session.Assignees().Snapshot())
}

// HandleAddFavorite adds a schematic to an assignee's favorites.
func (s *Server) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := s.Session.AddFavorite(req.Name, req.Schematic); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, s.Session.Assignees().Snapshot())
}

// HandleRemoveFavorite drops a schematic from an assignee's favorites.
func (s *Server) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := s.Session.RemoveFavorite(req.Name, req.Schematic); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, s.Session.Assignees().Snapshot())
}
