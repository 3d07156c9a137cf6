package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/gridskirmish/game/config"
	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/service"
	"github.com/wricardo/mcp-training/gridskirmish/game/session"
	"github.com/wricardo/mcp-training/gridskirmish/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Battle operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetBattleState).Methods("GET")
	api.HandleFunc("/sessions/{id}/report", s.handleGetReport).Methods("GET")
	api.HandleFunc("/sessions/{id}/tick", s.handleTick).Methods("POST")
	api.HandleFunc("/sessions/{id}/turns", s.handleRunTurns).Methods("POST")
	api.HandleFunc("/sessions/{id}/place", s.handlePlaceUnit).Methods("POST")
	api.HandleFunc("/sessions/{id}/start", s.handleStartBattle).Methods("POST")
	api.HandleFunc("/sessions/{id}/ack", s.handleAcknowledge).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Decision map
	api.HandleFunc("/sessions/{id}/route", s.handleGetRoute).Methods("GET")
	api.HandleFunc("/sessions/{id}/route/choose", s.handleChooseRoute).Methods("POST")
	api.HandleFunc("/sessions/{id}/route/new", s.handleNewRoute).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrReservesRemaining),
		errors.Is(err, service.ErrBattleNotOver):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, engine.ErrNoReserves),
		errors.Is(err, engine.ErrInvalidPlacement),
		errors.Is(err, engine.ErrRosterFull),
		errors.Is(err, engine.ErrUnknownReserveKind),
		errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, service.ErrInvalidRouteChoice),
		errors.Is(err, service.ErrInvalidTick):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

// decodeOptional decodes a JSON body if one was sent
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) broadcast(sessionID string, state *engine.BattleState, turn *engine.TurnRecord) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastState(sessionID, state, turn)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
		Seed       int64  `json:"seed,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID, req.Seed)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Battle Handlers

func (s *Server) handleGetBattleState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetBattleState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetBattleState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"phase":      state.Phase,
		"outcome":    state.Outcome,
		"report":     engine.BattleReport(state),
	})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		DT float64 `json:"dt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Tick(r.Context(), sessionID, req.DT)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if result.Turn != nil {
		s.broadcast(sessionID, result.BattleState, result.Turn)
		logTurn(sessionID, result.Turn)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRunTurns(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	req := struct {
		Count int `json:"count"`
	}{Count: 1}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Count < 1 {
		respondError(w, http.StatusBadRequest, "count must be at least 1")
		return
	}

	result, err := s.service.RunTurns(r.Context(), sessionID, req.Count)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var last *engine.TurnRecord
	if result.TurnsExecuted > 0 && result.BattleState != nil && len(result.BattleState.History) > 0 {
		last = &result.BattleState.History[len(result.BattleState.History)-1]
	}
	s.broadcast(sessionID, result.BattleState, last)

	stop := result.StopReasonCode
	if stop == "" {
		stop = "none"
	}
	fmt.Printf("[TURNS] session=%s exec=%d/%d stop=%s red=%d blue=%d outcome=%s\n",
		sessionID, result.TurnsExecuted, result.RequestedTurns, stop,
		result.EndRed.Alive, result.EndBlue.Alive, result.Outcome)

	respondJSON(w, http.StatusOK, result)
}

func logTurn(sessionID string, turn *engine.TurnRecord) {
	attacks, moves := 0, 0
	for _, a := range turn.Actions {
		switch a.Action {
		case engine.ActionAttack:
			attacks++
		case engine.ActionMove:
			moves++
		}
	}
	fmt.Printf("[TURN] session=%s turn=%d attacks=%d moves=%d kills=%d red=%d blue=%d\n",
		sessionID, turn.Number, attacks, moves, turn.Kills(), turn.RedAlive, turn.BlueAlive)
}

func (s *Server) handlePlaceUnit(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Reserve int `json:"reserve"`
		X       int `json:"x"`
		Y       int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.PlaceUnit(r.Context(), sessionID, req.Reserve, engine.Position{X: req.X, Y: req.Y})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.BattleState, nil)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStartBattle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.StartBattle(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state, nil)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Battle started",
		"state":   state,
	})
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Acknowledge(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Battle acknowledged",
		"report":  engine.BattleReport(state),
		"state":   state,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Seed int64 `json:"seed,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.Reset(r.Context(), sessionID, req.Seed)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state, nil)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Battle reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetTurnHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Decision Map Handlers

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	route, err := s.service.GetRoute(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, route)
}

func (s *Server) handleChooseRoute(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.ChooseRoute(r.Context(), sessionID, req.Index)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventRoute, result.Route)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleNewRoute(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Seed int64 `json:"seed,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	route, err := s.service.NewRoute(r.Context(), sessionID, req.Seed)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventRoute, route)
	}
	respondJSON(w, http.StatusOK, route)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := config.ConfigID(mux.Vars(r)["name"])

	battleConfig, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, battleConfig)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.BattleConfig
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}
	configID := req.ConfigID
	if configID == "" {
		configID = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "_"))
	}

	battleConfig := req.BattleConfig
	if err := s.service.SaveConfig(r.Context(), configID, &battleConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("sessionId")
	}
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
