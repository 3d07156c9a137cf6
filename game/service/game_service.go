package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/mapgraph"
)

// GameService defines all battle-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed int64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Battle Operations
	Tick(ctx context.Context, sessionID string, dt float64) (*TurnResult, error)
	RunTurns(ctx context.Context, sessionID string, n int) (*BulkTurnResult, error)
	PlaceUnit(ctx context.Context, sessionID string, reserve int, pos engine.Position) (*PlacementResult, error)
	StartBattle(ctx context.Context, sessionID string) (*engine.BattleState, error)
	Acknowledge(ctx context.Context, sessionID string) (*engine.BattleState, error)
	Reset(ctx context.Context, sessionID string, seed int64) (*engine.BattleState, error)

	// Battle State
	GetBattleState(ctx context.Context, sessionID string) (*engine.BattleState, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Decision Map
	GetRoute(ctx context.Context, sessionID string) (*RouteState, error)
	ChooseRoute(ctx context.Context, sessionID string, index int) (*RouteResult, error)
	NewRoute(ctx context.Context, sessionID string, seed int64) (*RouteState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.BattleConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.BattleConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.BattleConfig, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.BattleConfig, seed int64) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles battle configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BattleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BattleConfig
	SaveConfig(name string, config *engine.BattleConfig) error
}

// Session represents an active battle session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.BattleEngine
	Config         *engine.BattleConfig
	Route          *mapgraph.Traversal
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// RouteOptions converts the config's route section into generator options
func RouteOptions(config *engine.BattleConfig) mapgraph.Options {
	if config == nil {
		return mapgraph.Options{}
	}
	return mapgraph.Options{
		Levels:     config.Route.Levels,
		MaxBranch:  config.Route.MaxBranch,
		MaxParents: config.Route.MaxParents,
	}
}

// NewRoute generates a decision map for the session config and places the
// player on its root
func NewRoute(config *engine.BattleConfig, seed int64) *mapgraph.Traversal {
	g := mapgraph.Generate(RouteOptions(config), engine.NewRNG(seed))
	return mapgraph.NewTraversal(g)
}
