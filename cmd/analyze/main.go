// Command analyze runs batches of headless battles for each configuration in
// the configs directory and prints win rates, battle length, grid generation
// effort, and units that start cut off from every enemy.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/gridskirmish/game/config"
	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
)

// Analysis aggregates the battles run for one configuration
type Analysis struct {
	ConfigID string
	Name     string
	Battles  int

	RedWins  int
	BlueWins int
	Draws    int
	Stalled  int // hit the turn limit without a result

	TotalTurns    int
	TotalAttempts int
	Carved        int // grids that needed the fallback corridor
	IsolatedUnits int // units with no reachable enemy at the first turn
}

// AverageTurns returns the mean battle length
func (a *Analysis) AverageTurns() float64 {
	if a.Battles == 0 {
		return 0
	}
	return float64(a.TotalTurns) / float64(a.Battles)
}

// AverageAttempts returns the mean number of grid generation attempts
func (a *Analysis) AverageAttempts() float64 {
	if a.Battles == 0 {
		return 0
	}
	return float64(a.TotalAttempts) / float64(a.Battles)
}

// Rate returns n as a percentage of the battles run
func (a *Analysis) Rate(n int) float64 {
	if a.Battles == 0 {
		return 0
	}
	return 100 * float64(n) / float64(a.Battles)
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Batch-run headless battles per configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing battle configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringSliceFlag{Name: "config", Usage: "Only analyze these configuration ids"},
			&cli.IntFlag{Name: "seeds", Value: 50, Usage: "Battles per configuration"},
			&cli.Int64Flag{Name: "start-seed", Value: 1, Usage: "First seed; each battle uses the next one"},
			&cli.IntFlag{Name: "max-turns", Value: 2000, Usage: "Turn limit per battle"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.Root().Writer, cmd.String("config-dir"), cmd.StringSlice("config"),
				cmd.Int64("start-seed"), cmd.Int("seeds"), cmd.Int("max-turns"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// run analyzes the selected configurations, or every valid one when ids is empty
func run(w io.Writer, configDir string, ids []string, startSeed int64, seeds, maxTurns int) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			ids = append(ids, info.ConfigID)
		}
	}

	for _, id := range ids {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", id)
		battleConfig, err := manager.LoadConfig(id)
		if err != nil {
			fmt.Fprintf(w, "Error loading config: %v\n", err)
			continue
		}
		analysis, err := analyzeConfig(id, battleConfig, startSeed, seeds, maxTurns)
		if err != nil {
			fmt.Fprintf(w, "Error running battles: %v\n", err)
			continue
		}
		printAnalysis(w, analysis)
	}
	return nil
}

// analyzeConfig runs seeds battles starting at startSeed. Placement configs
// deploy their reserves automatically.
func analyzeConfig(id string, battleConfig *engine.BattleConfig, startSeed int64, seeds, maxTurns int) (*Analysis, error) {
	a := &Analysis{ConfigID: id, Name: battleConfig.Name}

	for i := 0; i < seeds; i++ {
		battle, err := engine.NewEngine(battleConfig, startSeed+int64(i))
		if err != nil {
			return nil, err
		}
		if battle.GetPhase() == engine.PhasePlacing {
			if err := battle.AutoDeploy(); err != nil {
				return nil, fmt.Errorf("seed %d: %w", startSeed+int64(i), err)
			}
		}

		state := battle.GetState()
		a.Battles++
		a.TotalAttempts += state.Generation.Attempts
		if state.Generation.Carved {
			a.Carved++
		}
		a.IsolatedUnits += isolatedUnits(state)

		battle.RunTurns(maxTurns)
		a.TotalTurns += state.Turn

		switch state.Outcome {
		case engine.OutcomeRed:
			a.RedWins++
		case engine.OutcomeBlue:
			a.BlueWins++
		case engine.OutcomeDraw:
			a.Draws++
		default:
			a.Stalled++
		}
	}
	return a, nil
}

// isolatedUnits counts living units that cannot reach any enemy over terrain
func isolatedUnits(state *engine.BattleState) int {
	n := 0
	for i, u := range state.Units {
		if !u.Alive || state.Units.AliveCount(u.Team.Opponent()) == 0 {
			continue
		}
		if target, _ := state.FindNearestEnemy(i); target == engine.NotFound {
			n++
		}
	}
	return n
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Battles: %d\n", a.Battles)
	fmt.Fprintf(w, "Red wins: %d (%.1f%%)\n", a.RedWins, a.Rate(a.RedWins))
	fmt.Fprintf(w, "Blue wins: %d (%.1f%%)\n", a.BlueWins, a.Rate(a.BlueWins))
	fmt.Fprintf(w, "Draws: %d (%.1f%%)\n", a.Draws, a.Rate(a.Draws))
	fmt.Fprintf(w, "Average turns: %.1f\n", a.AverageTurns())
	fmt.Fprintf(w, "Average generation attempts: %.1f\n", a.AverageAttempts())

	if a.Carved > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d grids ran out of attempts and were carved open\n", a.Carved)
	}
	if a.IsolatedUnits > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d units started with no reachable enemy\n", a.IsolatedUnits)
	}
	if a.Stalled > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d battles hit the turn limit without a result\n", a.Stalled)
	} else {
		fmt.Fprintf(w, "✅ Every battle reached a result\n")
	}
}
