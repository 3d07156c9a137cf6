package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/mapgraph"
)

var (
	ErrInvalidRouteChoice = errors.New("invalid route choice")
	ErrBattleNotOver      = errors.New("battle is not over")
	ErrInvalidTick        = errors.New("tick must not be negative")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a session, used for consistent API responses
func (s *gameServiceImpl) getConfigID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if sess.Config.Name == "" {
		return "default"
	}
	return sess.Config.Name
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.GetState().Clone()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess),
		Seed:           state.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		BattleState:    state,
		BattleConfig:   sess.Config,
		Route:          routeState(sess.Route),
	}
}

// persist saves the session, logging instead of failing the request
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after %s: %v\n", sessionID, after, err)
	}
}

// CreateSession creates a new battle session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed int64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.BattleConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if configName != "" {
		sess.ConfigID = configName
	} else {
		sess.ConfigID = s.getConfigID(sess)
	}
	s.persist(sess.ID, "create")

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Tick feeds dt seconds into the battle. At most one turn resolves per tick.
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, dt float64) (*TurnResult, error) {
	if dt < 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTick, dt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	record := sess.Engine.Update(dt)
	state := sess.Engine.GetState().Clone()
	result := &TurnResult{
		Success:     record != nil,
		BattleState: state,
		Message:     state.Message,
		Turn:        record,
	}
	if record != nil {
		result.Events = turnEvents(*record, state)
		s.persist(sessionID, "tick")
	}
	return result, nil
}

// RunTurns resolves up to n turns immediately, ignoring the turn timer
func (s *gameServiceImpl) RunTurns(ctx context.Context, sessionID string, n int) (*BulkTurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkTurnResult{
		RequestedTurns: n,
		Events:         make([]GameEvent, 0),
		Success:        true,
		StartRed:       sess.Engine.GetTeamStats(engine.TeamRed),
		StartBlue:      sess.Engine.GetTeamStats(engine.TeamBlue),
	}
	if n > engine.MaxBulkTurns {
		result.Truncated = true
		result.Limit = engine.MaxBulkTurns
		n = engine.MaxBulkTurns
	}

	phase := sess.Engine.GetPhase()
	if phase != engine.PhaseBattle && n > 0 {
		result.Success = false
		if phase == engine.PhaseGameOver {
			result.StoppedReason = "Battle is already over"
			result.StopReasonCode = "game_over"
		} else {
			result.StoppedReason = fmt.Sprintf("Battle has not started (phase %s)", phase)
			result.StopReasonCode = "wrong_phase"
		}
	}

	records := sess.Engine.RunTurns(n)
	state := sess.Engine.GetState().Clone()
	for _, r := range records {
		result.Turns = append(result.Turns, summarizeTurn(r))
		result.Events = append(result.Events, turnEvents(r, state)...)
	}
	result.TurnsExecuted = len(records)
	if result.Success && len(records) < n {
		result.StoppedReason = "Battle ended"
		result.StopReasonCode = "game_over"
	}

	result.BattleState = state
	result.EndRed = sess.Engine.GetTeamStats(engine.TeamRed)
	result.EndBlue = sess.Engine.GetTeamStats(engine.TeamBlue)
	result.GameOver = sess.Engine.IsGameOver()
	result.Outcome = sess.Engine.GetOutcome()
	result.Message = state.Message
	result.Balance = state.Balance

	if len(records) > 0 {
		s.persist(sessionID, "turns")
	}
	return result, nil
}

// PlaceUnit deploys one unit from a reserve
func (s *gameServiceImpl) PlaceUnit(ctx context.Context, sessionID string, reserve int, pos engine.Position) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	placed, err := sess.Engine.PlaceUnit(reserve, pos)
	if err != nil {
		return nil, err
	}
	unit := *placed
	state := sess.Engine.GetState().Clone()
	s.persist(sessionID, "placement")

	p := unit.Pos
	return &PlacementResult{
		Success:           true,
		Unit:              &unit,
		ReservesRemaining: state.ReservesRemaining(),
		BattleState:       state,
		Message:           state.Message,
		Events: []GameEvent{{
			Type:      "placed",
			Message:   fmt.Sprintf("%s #%d placed at (%d,%d)", unit.Kind, unit.ID, p.X, p.Y),
			Timestamp: time.Now(),
			UnitID:    unit.ID,
			Position:  &p,
		}},
	}, nil
}

// StartBattle leaves the placing phase
func (s *gameServiceImpl) StartBattle(ctx context.Context, sessionID string) (*engine.BattleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.StartBattle(); err != nil {
		return nil, err
	}
	s.persist(sessionID, "start")
	return sess.Engine.GetState().Clone(), nil
}

// Acknowledge confirms a finished battle
func (s *gameServiceImpl) Acknowledge(ctx context.Context, sessionID string) (*engine.BattleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if !sess.Engine.Acknowledge() {
		return nil, fmt.Errorf("acknowledge: %w (phase %s)", ErrBattleNotOver, sess.Engine.GetPhase())
	}
	s.persist(sessionID, "acknowledge")
	return sess.Engine.GetState().Clone(), nil
}

// Reset restarts the battle. A zero seed replays the current seed.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string, seed int64) (*engine.BattleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	var state *engine.BattleState
	if seed != 0 {
		state = sess.Engine.Reseed(seed)
	} else {
		state = sess.Engine.Reset()
	}

	s.persist(sessionID, "reset")
	return state.Clone(), nil
}

// GetBattleState retrieves the current battle state
func (s *gameServiceImpl) GetBattleState(ctx context.Context, sessionID string) (*engine.BattleState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetTurnHistory returns paginated turn history
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetTurnHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var turns []engine.TurnRecord
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = history[start:end]
	}

	if turns == nil {
		turns = []engine.TurnRecord{}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetRoute returns the session's position on the decision map
func (s *gameServiceImpl) GetRoute(ctx context.Context, sessionID string) (*RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if sess.Route == nil {
		sess.Route = NewRoute(sess.Config, sess.Engine.GetState().Seed)
		s.persist(sessionID, "route")
	}
	return routeState(sess.Route), nil
}

// ChooseRoute follows the option at index from the current node
func (s *gameServiceImpl) ChooseRoute(ctx context.Context, sessionID string, index int) (*RouteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if sess.Route == nil {
		sess.Route = NewRoute(sess.Config, sess.Engine.GetState().Seed)
	}
	tr := sess.Route
	if tr.Finished() {
		return nil, fmt.Errorf("%w: route already reached %s", ErrInvalidRouteChoice, tr.Node().Label)
	}
	options := tr.Options()
	if !tr.Choose(index) {
		return nil, fmt.Errorf("%w: option %d of %d", ErrInvalidRouteChoice, index+1, len(options))
	}

	node := tr.Node()
	events := []GameEvent{{
		Type:      "route_choice",
		Message:   fmt.Sprintf("Moved to %s", node.Label),
		Timestamp: time.Now(),
	}}
	message := fmt.Sprintf("You travel to %s.", node.Label)
	if tr.Finished() {
		events = append(events, GameEvent{
			Type:      "route_end",
			Message:   fmt.Sprintf("Reached %s", node.Label),
			Timestamp: time.Now(),
		})
		message = fmt.Sprintf("You reached %s. The road ends here.", node.Label)
	}
	s.persist(sessionID, "route choice")

	return &RouteResult{
		Success: true,
		Route:   routeState(tr),
		Message: message,
		Events:  events,
	}, nil
}

// NewRoute replaces the session's decision map. A zero seed picks one from the clock.
func (s *gameServiceImpl) NewRoute(ctx context.Context, sessionID string, seed int64) (*RouteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Route = NewRoute(sess.Config, engine.ResolveSeed(seed))
	s.persist(sessionID, "new route")
	return routeState(sess.Route), nil
}

// ListConfigs returns available battle configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific battle configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BattleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a battle configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BattleConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func routeState(tr *mapgraph.Traversal) *RouteState {
	if tr == nil || tr.Graph == nil {
		return nil
	}
	return &RouteState{
		Current:  tr.Node(),
		Options:  tr.Options(),
		Path:     append([]int(nil), tr.Path...),
		Finished: tr.Finished(),
		Levels:   tr.Graph.Levels,
		Nodes:    len(tr.Graph.Nodes),
		Map:      mapgraph.Describe(tr.Graph),
	}
}

func summarizeTurn(r engine.TurnRecord) TurnSummary {
	sum := TurnSummary{
		Number:    r.Number,
		Kills:     r.Kills(),
		RedAlive:  r.RedAlive,
		BlueAlive: r.BlueAlive,
		Outcome:   r.Outcome,
	}
	for _, a := range r.Actions {
		switch a.Action {
		case engine.ActionAttack:
			sum.Attacks++
		case engine.ActionMove:
			sum.Moves++
		case engine.ActionHold:
			sum.Holds++
		}
	}
	return sum
}

// turnEvents expands a turn record into events. Holds are folded into the
// turn summary to keep the stream short.
func turnEvents(r engine.TurnRecord, state *engine.BattleState) []GameEvent {
	now := time.Now()
	sum := summarizeTurn(r)
	events := []GameEvent{{
		Type: "turn",
		Message: fmt.Sprintf("Turn %d: %d attacks, %d moves, %d holds, red %d, blue %d",
			r.Number, sum.Attacks, sum.Moves, sum.Holds, r.RedAlive, r.BlueAlive),
		Timestamp: now,
		Turn:      r.Number,
	}}

	for _, a := range r.Actions {
		switch a.Action {
		case engine.ActionAttack:
			to := a.To
			events = append(events, GameEvent{
				Type:      "attack",
				Message:   fmt.Sprintf("%s #%d hits #%d for %d (hp %d)", a.Team, a.UnitID, a.TargetID, a.Damage, a.TargetHP),
				Timestamp: now,
				Turn:      r.Number,
				UnitID:    a.UnitID,
				Position:  &to,
			})
			if a.Killed {
				events = append(events, GameEvent{
					Type:      "kill",
					Message:   fmt.Sprintf("%s #%d falls", a.Team.Opponent(), a.TargetID),
					Timestamp: now,
					Turn:      r.Number,
					UnitID:    a.TargetID,
					Position:  &to,
				})
			}
		case engine.ActionMove:
			to := a.To
			events = append(events, GameEvent{
				Type:      "move",
				Message:   fmt.Sprintf("%s #%d moves to (%d,%d)", a.Team, a.UnitID, to.X, to.Y),
				Timestamp: now,
				Turn:      r.Number,
				UnitID:    a.UnitID,
				Position:  &to,
			})
		}
	}

	if r.Outcome != engine.OutcomeNone {
		msg := string(r.Outcome)
		if state != nil && state.Message != "" {
			msg = state.Message
		}
		events = append(events, GameEvent{
			Type:      "game_over",
			Message:   msg,
			Timestamp: now,
			Turn:      r.Number,
		})
	}
	return events
}
