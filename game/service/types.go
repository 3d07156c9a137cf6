package service

import (
	"time"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/mapgraph"
)

// SessionInfo provides information about a battle session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	Seed           int64                `json:"seed"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	BattleState    *engine.BattleState  `json:"battle_state"`
	BattleConfig   *engine.BattleConfig `json:"battle_config"`
	Route          *RouteState          `json:"route,omitempty"`
}

// TurnResult contains the outcome of a tick
type TurnResult struct {
	Success     bool                `json:"success"` // true when a turn was resolved
	BattleState *engine.BattleState `json:"battle_state"`
	Message     string              `json:"message"`
	Turn        *engine.TurnRecord  `json:"turn,omitempty"`
	Events      []GameEvent         `json:"events,omitempty"`
}

// BulkTurnResult contains the result of running several turns at once
type BulkTurnResult struct {
	TurnsExecuted  int                 `json:"turns_executed"`
	RequestedTurns int                 `json:"requested_turns"`
	Success        bool                `json:"success"`
	BattleState    *engine.BattleState `json:"battle_state"`
	Events         []GameEvent         `json:"events"`
	StoppedReason  string              `json:"stopped_reason,omitempty"`
	StopReasonCode string              `json:"stop_reason_code,omitempty"` // game_over|wrong_phase
	Truncated      bool                `json:"truncated,omitempty"`
	Limit          int                 `json:"limit,omitempty"`

	// Start/end snapshot
	StartRed  engine.TeamStats `json:"start_red"`
	StartBlue engine.TeamStats `json:"start_blue"`
	EndRed    engine.TeamStats `json:"end_red"`
	EndBlue   engine.TeamStats `json:"end_blue"`

	// Per-turn compact trace (only for this call)
	Turns []TurnSummary `json:"turns,omitempty"`

	GameOver bool           `json:"game_over"`
	Outcome  engine.Outcome `json:"outcome,omitempty"`
	Message  string         `json:"message,omitempty"`
	Balance  string         `json:"balance,omitempty"`
}

// TurnSummary is a compact record of one resolved turn
type TurnSummary struct {
	Number    int            `json:"number"`
	Attacks   int            `json:"attacks"`
	Moves     int            `json:"moves"`
	Holds     int            `json:"holds"`
	Kills     int            `json:"kills"`
	RedAlive  int            `json:"red_alive"`
	BlueAlive int            `json:"blue_alive"`
	Outcome   engine.Outcome `json:"outcome,omitempty"`
}

// PlacementResult contains the result of deploying a reserve unit
type PlacementResult struct {
	Success           bool                `json:"success"`
	Unit              *engine.Unit        `json:"unit,omitempty"`
	ReservesRemaining int                 `json:"reserves_remaining"`
	BattleState       *engine.BattleState `json:"battle_state"`
	Message           string              `json:"message"`
	Events            []GameEvent         `json:"events,omitempty"`
}

// GameEvent represents something that happened during play
type GameEvent struct {
	Type      string           `json:"type"` // turn, attack, kill, move, hold, game_over, placed, battle_started, route_choice, route_end, reset
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Turn      int              `json:"turn,omitempty"`
	UnitID    int              `json:"unit_id,omitempty"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []engine.TurnRecord `json:"turns"`
	TotalTurns  int                 `json:"total_turns"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// RouteState describes where the player stands on the decision map
type RouteState struct {
	Current  mapgraph.DecisionNode   `json:"current"`
	Options  []mapgraph.DecisionNode `json:"options"`
	Path     []int                   `json:"path"`
	Finished bool                    `json:"finished"`
	Levels   int                     `json:"levels"`
	Nodes    int                     `json:"nodes"`
	Map      []string                `json:"map,omitempty"`
}

// RouteResult contains the result of a route choice
type RouteResult struct {
	Success bool        `json:"success"`
	Route   *RouteState `json:"route"`
	Message string      `json:"message"`
	Events  []GameEvent `json:"events,omitempty"`
}

// ConfigInfo provides information about a battle configuration
type ConfigInfo struct {
	Filename        string `json:"filename"`
	ConfigID        string `json:"config_id"` // The identifier to use for session creation
	Name            string `json:"name"`      // Display name
	Description     string `json:"description"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	ObstaclePercent int    `json:"obstacle_percent"`
	Placement       bool   `json:"placement"`
	RedUnits        int    `json:"red_units"`
	BlueUnits       int    `json:"blue_units"`
	Reserves        int    `json:"reserves"`
}

// NewConfigInfo summarizes a config stored under filename
func NewConfigInfo(filename, configID string, config *engine.BattleConfig) *ConfigInfo {
	info := &ConfigInfo{
		Filename:        filename,
		ConfigID:        configID,
		Name:            config.Name,
		Description:     config.Description,
		Width:           config.Grid.Width,
		Height:          config.Grid.Height,
		ObstaclePercent: config.Grid.ObstaclePercent,
		Placement:       config.Placement,
	}
	for _, s := range config.Teams.Red {
		info.RedUnits += s.Count
	}
	for _, s := range config.Teams.Blue {
		info.BlueUnits += s.Count
	}
	for _, u := range config.Units {
		if u.Team == engine.TeamRed {
			info.RedUnits++
		} else {
			info.BlueUnits++
		}
	}
	if config.Placement {
		for _, s := range config.Reserves {
			info.Reserves += s.Count
		}
	}
	return info
}
