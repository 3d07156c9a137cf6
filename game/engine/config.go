package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("config validation")

// GridConfig describes the battlefield terrain
type GridConfig struct {
	Width           int      `yaml:"width" json:"width"`
	Height          int      `yaml:"height" json:"height"`
	ObstaclePercent int      `yaml:"obstacle_percent" json:"obstacle_percent"`
	SpawnRows       int      `yaml:"spawn_rows" json:"spawn_rows"`
	DeployRows      int      `yaml:"deploy_rows" json:"deploy_rows"`
	MaxAttempts     int      `yaml:"max_attempts,omitempty" json:"max_attempts,omitempty"`
	Layout          []string `yaml:"layout,omitempty" json:"layout,omitempty"`
}

// UnitKind is a catalogue entry
type UnitKind struct {
	HP          int    `yaml:"hp" json:"hp"`
	Attack      int    `yaml:"attack" json:"attack"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Squad is a number of units of one kind
type Squad struct {
	Kind  string `yaml:"kind" json:"kind"`
	Count int    `yaml:"count" json:"count"`
}

// TeamSquads lists the randomly deployed squads of each team
type TeamSquads struct {
	Red  []Squad `yaml:"red,omitempty" json:"red,omitempty"`
	Blue []Squad `yaml:"blue,omitempty" json:"blue,omitempty"`
}

// FixedUnit pins a unit to a cell
type FixedUnit struct {
	Team Team   `yaml:"team" json:"team"`
	Kind string `yaml:"kind" json:"kind"`
	X    int    `yaml:"x" json:"x"`
	Y    int    `yaml:"y" json:"y"`
}

// RouteConfig shapes the decision map offered between battles
type RouteConfig struct {
	Levels     int `yaml:"levels" json:"levels"`
	MaxBranch  int `yaml:"max_branch" json:"max_branch"`
	MaxParents int `yaml:"max_parents" json:"max_parents"`
}

// Messages are the banners shown to the player
type Messages struct {
	Welcome  string `yaml:"welcome" json:"welcome"`
	Placing  string `yaml:"placing,omitempty" json:"placing,omitempty"`
	Ready    string `yaml:"ready,omitempty" json:"ready,omitempty"`
	Battle   string `yaml:"battle,omitempty" json:"battle,omitempty"`
	RedWins  string `yaml:"red_wins" json:"red_wins"`
	BlueWins string `yaml:"blue_wins" json:"blue_wins"`
	Draw     string `yaml:"draw" json:"draw"`
}

// BattleConfig represents a battle configuration loaded from YAML or JSON
type BattleConfig struct {
	Name         string              `yaml:"name" json:"name"`
	Description  string              `yaml:"description" json:"description"`
	Seed         int64               `yaml:"seed,omitempty" json:"seed,omitempty"`
	TurnInterval float64             `yaml:"turn_interval,omitempty" json:"turn_interval,omitempty"`
	Placement    bool                `yaml:"placement,omitempty" json:"placement,omitempty"`
	MaxUnits     int                 `yaml:"max_units,omitempty" json:"max_units,omitempty"`
	Grid         GridConfig          `yaml:"grid" json:"grid"`
	Catalogue    map[string]UnitKind `yaml:"catalogue" json:"catalogue"`
	Teams        TeamSquads          `yaml:"teams" json:"teams"`
	Units        []FixedUnit         `yaml:"units,omitempty" json:"units,omitempty"`
	Reserves     []Squad             `yaml:"reserves,omitempty" json:"reserves,omitempty"`
	Route        RouteConfig         `yaml:"route" json:"route"`
	Messages     Messages            `yaml:"messages" json:"messages"`
}

var defaultMessages = Messages{
	Welcome:  "The armies take the field.",
	Placing:  "Place your units, then press SPACE to start.",
	Ready:    "All units placed. Press SPACE to start the battle.",
	Battle:   "Battle!",
	RedWins:  "RED TEAM WINS!",
	BlueWins: "BLUE TEAM WINS!",
	Draw:     "Both armies have fallen. It's a draw.",
}

// messagesFor fills missing banners with the defaults
func messagesFor(config *BattleConfig) Messages {
	if config == nil {
		return defaultMessages
	}
	m := config.Messages
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Welcome, defaultMessages.Welcome)
	fill(&m.Placing, defaultMessages.Placing)
	fill(&m.Ready, defaultMessages.Ready)
	fill(&m.Battle, defaultMessages.Battle)
	fill(&m.RedWins, defaultMessages.RedWins)
	fill(&m.BlueWins, defaultMessages.BlueWins)
	fill(&m.Draw, defaultMessages.Draw)
	return m
}

// ApplyDefaults fills optional zero-valued fields
func ApplyDefaults(config *BattleConfig) {
	if config.TurnInterval == 0 {
		config.TurnInterval = DefaultTurnInterval
	}
	if config.MaxUnits == 0 {
		config.MaxUnits = DefaultMaxUnits
	}
	if config.Grid.MaxAttempts == 0 {
		config.Grid.MaxAttempts = DefaultMaxAttempts
	}
	if config.Grid.SpawnRows == 0 {
		config.Grid.SpawnRows = 1
	}
	if config.Grid.DeployRows == 0 {
		config.Grid.DeployRows = config.Grid.SpawnRows
	}
	if config.Route.MaxBranch == 0 {
		config.Route.MaxBranch = 3
	}
	if config.Route.MaxParents == 0 {
		config.Route.MaxParents = 3
	}
}

// DefaultBattleConfig is the classic 8x16 skirmish: sixteen footmen a side
func DefaultBattleConfig() *BattleConfig {
	return &BattleConfig{
		Name:         "Classic Skirmish",
		Description:  "Sixteen footmen a side on a randomly obstructed field",
		TurnInterval: DefaultTurnInterval,
		MaxUnits:     DefaultMaxUnits,
		Grid: GridConfig{
			Width:           8,
			Height:          16,
			ObstaclePercent: 20,
			SpawnRows:       3,
			DeployRows:      4,
			MaxAttempts:     DefaultMaxAttempts,
		},
		Catalogue: map[string]UnitKind{
			"footman": {HP: 10, Attack: 3, Description: "Line infantry"},
		},
		Teams: TeamSquads{
			Red:  []Squad{{Kind: "footman", Count: 16}},
			Blue: []Squad{{Kind: "footman", Count: 16}},
		},
		Route:    RouteConfig{Levels: 3, MaxBranch: 3, MaxParents: 3},
		Messages: defaultMessages,
	}
}

// DefaultSetupConfig is the placement variant: five raiders against a
// hand-placed blue company
func DefaultSetupConfig() *BattleConfig {
	config := DefaultBattleConfig()
	config.Name = "Setup Skirmish"
	config.Description = "Place your company, then hold the line against the raiders"
	config.Placement = true
	config.Catalogue = map[string]UnitKind{
		"footman": {HP: 10, Attack: 3, Description: "Line infantry"},
		"warrior": {HP: 12, Attack: 3, Description: "Sturdy front liner"},
		"archer":  {HP: 8, Attack: 4, Description: "Hits hard, breaks easily"},
		"knight":  {HP: 16, Attack: 2, Description: "Armored and slow to kill"},
	}
	config.Teams = TeamSquads{Red: []Squad{{Kind: "footman", Count: 5}}}
	config.Reserves = []Squad{
		{Kind: "warrior", Count: 3},
		{Kind: "archer", Count: 2},
		{Kind: "knight", Count: 2},
	}
	return config
}

// ValidateBattleConfig validates a battle configuration for correctness and playability
func ValidateBattleConfig(config *BattleConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.TurnInterval < 0 {
		return fmt.Errorf("%w: turn_interval must not be negative, got %g", ErrInvalidConfig, config.TurnInterval)
	}
	if config.MaxUnits < 0 {
		return fmt.Errorf("%w: max_units must not be negative, got %d", ErrInvalidConfig, config.MaxUnits)
	}

	g := config.Grid
	if g.Width < MinGridSize || g.Width > MaxGridSize {
		return fmt.Errorf("%w: grid.width must be between %d and %d, got %d", ErrInvalidConfig, MinGridSize, MaxGridSize, g.Width)
	}
	if g.Height < MinGridSize || g.Height > MaxGridSize {
		return fmt.Errorf("%w: grid.height must be between %d and %d, got %d", ErrInvalidConfig, MinGridSize, MaxGridSize, g.Height)
	}
	if g.ObstaclePercent < 0 || g.ObstaclePercent > MaxObstaclePercent {
		return fmt.Errorf("%w: grid.obstacle_percent must be between 0 and %d, got %d", ErrInvalidConfig, MaxObstaclePercent, g.ObstaclePercent)
	}
	if g.SpawnRows < 0 || 2*g.SpawnRows > g.Height {
		return fmt.Errorf("%w: grid.spawn_rows must fit twice in the grid height, got %d", ErrInvalidConfig, g.SpawnRows)
	}
	if g.DeployRows < 0 || 2*g.DeployRows > g.Height {
		return fmt.Errorf("%w: grid.deploy_rows must fit twice in the grid height, got %d", ErrInvalidConfig, g.DeployRows)
	}
	if g.MaxAttempts < 0 {
		return fmt.Errorf("%w: grid.max_attempts must not be negative, got %d", ErrInvalidConfig, g.MaxAttempts)
	}

	var layout *Grid
	if len(g.Layout) > 0 {
		if len(g.Layout) != g.Height {
			return fmt.Errorf("%w: layout must have %d rows to match grid.height, got %d", ErrInvalidConfig, g.Height, len(g.Layout))
		}
		parsed, err := GridFromRows(g.Layout)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if parsed.Width != g.Width {
			return fmt.Errorf("%w: layout rows must have %d cells to match grid.width, got %d", ErrInvalidConfig, g.Width, parsed.Width)
		}
		if !CornersConnected(parsed) {
			return fmt.Errorf("%w: layout does not connect (0,0) to (%d,%d)", ErrInvalidConfig, g.Width-1, g.Height-1)
		}
		layout = parsed
	}

	if len(config.Catalogue) == 0 {
		return fmt.Errorf("%w: catalogue must define at least one unit kind", ErrInvalidConfig)
	}
	for name, kind := range config.Catalogue {
		if kind.HP <= 0 {
			return fmt.Errorf("%w: catalogue[%s].hp must be positive, got %d", ErrInvalidConfig, name, kind.HP)
		}
		if kind.Attack < 0 {
			return fmt.Errorf("%w: catalogue[%s].attack must not be negative, got %d", ErrInvalidConfig, name, kind.Attack)
		}
	}

	total := 0
	checkSquads := func(field string, squads []Squad) (int, error) {
		n := 0
		for i, s := range squads {
			if _, ok := config.Catalogue[s.Kind]; !ok {
				return 0, fmt.Errorf("%w: %s[%d] uses unknown kind '%s'", ErrInvalidConfig, field, i, s.Kind)
			}
			if s.Count < 0 {
				return 0, fmt.Errorf("%w: %s[%d].count must not be negative, got %d", ErrInvalidConfig, field, i, s.Count)
			}
			n += s.Count
		}
		return n, nil
	}
	// a fixed layout can put rocks in the deploy rows
	openCells := func(fromRow, toRow int) int {
		if layout == nil {
			return (toRow - fromRow) * g.Width
		}
		n := 0
		for y := fromRow; y < toRow; y++ {
			for x := 0; x < g.Width; x++ {
				if !layout.Blocked(Position{X: x, Y: y}) {
					n++
				}
			}
		}
		return n
	}
	for _, side := range []struct {
		field    string
		squads   []Squad
		from, to int
	}{
		{"teams.red", config.Teams.Red, 0, g.DeployRows},
		{"teams.blue", config.Teams.Blue, g.Height - g.DeployRows, g.Height},
	} {
		n, err := checkSquads(side.field, side.squads)
		if err != nil {
			return err
		}
		if cells := openCells(side.from, side.to); n > cells {
			return fmt.Errorf("%w: %s deploys %d units but only %d deploy cells exist", ErrInvalidConfig, side.field, n, cells)
		}
		total += n
	}

	seen := make(map[Position]bool)
	for i, u := range config.Units {
		if !u.Team.Valid() {
			return fmt.Errorf("%w: units[%d].team must be red or blue, got '%s'", ErrInvalidConfig, i, u.Team)
		}
		if _, ok := config.Catalogue[u.Kind]; !ok {
			return fmt.Errorf("%w: units[%d] uses unknown kind '%s'", ErrInvalidConfig, i, u.Kind)
		}
		pos := Position{X: u.X, Y: u.Y}
		if pos.X < 0 || pos.X >= g.Width || pos.Y < 0 || pos.Y >= g.Height {
			return fmt.Errorf("%w: units[%d] at (%d,%d) is outside the grid", ErrInvalidConfig, i, u.X, u.Y)
		}
		if layout != nil && layout.Blocked(pos) {
			return fmt.Errorf("%w: units[%d] at (%d,%d) stands on an obstacle", ErrInvalidConfig, i, u.X, u.Y)
		}
		if seen[pos] {
			return fmt.Errorf("%w: units[%d] at (%d,%d) overlaps another unit", ErrInvalidConfig, i, u.X, u.Y)
		}
		seen[pos] = true
		total++
	}

	if config.Placement {
		n, err := checkSquads("reserves", config.Reserves)
		if err != nil {
			return err
		}
		total += n
	}

	if config.MaxUnits > 0 && total > config.MaxUnits {
		return fmt.Errorf("%w: %d units exceed max_units %d", ErrInvalidConfig, total, config.MaxUnits)
	}

	r := config.Route
	if r.Levels < 0 || r.Levels > MaxRouteLevels {
		return fmt.Errorf("%w: route.levels must be between 0 and %d, got %d", ErrInvalidConfig, MaxRouteLevels, r.Levels)
	}
	if r.MaxBranch < 0 || r.MaxParents < 0 {
		return fmt.Errorf("%w: route.max_branch and route.max_parents must not be negative", ErrInvalidConfig)
	}

	return nil
}

// ParseBattleConfig decodes and validates a configuration. JSON input is
// accepted since it is valid YAML.
func ParseBattleConfig(data []byte) (*BattleConfig, error) {
	var config BattleConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	ApplyDefaults(&config)
	if err := ValidateBattleConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadBattleConfig loads a battle configuration from a file
func LoadBattleConfig(filename string) (*BattleConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseBattleConfig(data)
}

// InitBattleStateFromConfig builds a fresh battle. A zero seed falls back to
// the config seed, then to the clock. The seed actually used is recorded in
// the state so the battle can be replayed.
func InitBattleStateFromConfig(config *BattleConfig, seed int64) *BattleState {
	if config == nil {
		config = DefaultBattleConfig()
	}
	seed = ResolveSeed(seed, config.Seed)
	rng := NewRNG(seed)
	msgs := messagesFor(config)

	var grid *Grid
	var report GenerationReport
	if len(config.Grid.Layout) > 0 {
		parsed, err := GridFromRows(config.Grid.Layout)
		if err == nil {
			grid = parsed
			report = GenerationReport{Fixed: true}
		}
	}
	if grid == nil {
		grid, report = GenerateGrid(GridOptions{
			Width:           config.Grid.Width,
			Height:          config.Grid.Height,
			ObstaclePercent: config.Grid.ObstaclePercent,
			SpawnRows:       config.Grid.SpawnRows,
			MaxAttempts:     config.Grid.MaxAttempts,
		}, rng)
	}

	turnInterval := config.TurnInterval
	if turnInterval <= 0 {
		turnInterval = DefaultTurnInterval
	}

	state := &BattleState{
		Grid:         grid,
		Units:        Roster{},
		Phase:        PhaseBattle,
		TurnInterval: turnInterval,
		MaxUnits:     config.MaxUnits,
		Message:      msgs.Welcome,
		ConfigName:   config.Name,
		Seed:         seed,
		Generation:   report,
		History:      []TurnRecord{},
	}

	for _, fu := range config.Units {
		kind := config.Catalogue[fu.Kind]
		pos := Position{X: fu.X, Y: fu.Y}
		if !grid.InBounds(pos) || state.Units.IndexAt(pos) != NotFound {
			continue
		}
		// Fixed units claim their cell even when generation put a rock there.
		grid.SetBlocked(pos, false)
		state.Units = append(state.Units, state.newUnit(fu.Team, fu.Kind, kind.HP, kind.Attack, pos))
	}

	deployRows := config.Grid.DeployRows
	if deployRows <= 0 {
		deployRows = 1
	}
	state.Generation.Undeployed += state.deploy(TeamRed, config.Teams.Red, config.Catalogue, 0, deployRows, rng)
	state.Generation.Undeployed += state.deploy(TeamBlue, config.Teams.Blue, config.Catalogue, grid.Height-deployRows, grid.Height, rng)

	if config.Placement {
		state.Phase = PhasePlacing
		state.Message = msgs.Placing
		for _, s := range config.Reserves {
			kind := config.Catalogue[s.Kind]
			state.Reserves = append(state.Reserves, Reserve{Kind: s.Kind, HP: kind.HP, Attack: kind.Attack, Count: s.Count})
		}
	}

	state.refreshViews()
	return state
}

// deploy scatters squads over the free cells of rows [fromRow, toRow) and
// returns how many units found no cell or were over the unit cap
func (bs *BattleState) deploy(team Team, squads []Squad, catalogue map[string]UnitKind, fromRow, toRow int, rng *rand.Rand) int {
	var free []Position
	for y := fromRow; y < toRow; y++ {
		for x := 0; x < bs.Grid.Width; x++ {
			p := Position{X: x, Y: y}
			if !bs.Grid.Blocked(p) && bs.Units.IndexAt(p) == NotFound {
				free = append(free, p)
			}
		}
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	next, dropped := 0, 0
	for _, s := range squads {
		kind := catalogue[s.Kind]
		for n := 0; n < s.Count; n++ {
			if next >= len(free) || (bs.MaxUnits > 0 && len(bs.Units) >= bs.MaxUnits) {
				dropped++
				continue
			}
			bs.Units = append(bs.Units, bs.newUnit(team, s.Kind, kind.HP, kind.Attack, free[next]))
			next++
		}
	}
	return dropped
}
