// Command desktop plays battles in a window. It runs the screen director
// locally: logo, title, decision map, battle, report.
//
// Controls:
//   - ENTER / SPACE / click: dismiss cards
//   - 1-3 or click: pick a route on the decision map, SPACE skips it
//   - 1-9 or click a reserve, then click cells: place units, SPACE starts
//   - C: copy the last battle report to the clipboard
//   - ESC: quit
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/gridskirmish/game/config"
	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
)

const (
	screenWidth  = 960
	screenHeight = 720
	headerHeight = 70
	panelWidth   = 260
	margin       = 20
	maxCellSize  = 40
	slotHeight   = 30
	slotGap      = 6
	frameDelta   = 1.0 / 60
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "desktop",
		Usage: "Play grid skirmish battles in a window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing battle configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "config", Usage: "Configuration id (defaults to the directory default)"},
			&cli.Int64Flag{Name: "seed", Usage: "Seed for the first battle; 0 seeds from the clock"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			battleConfig, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
			if err != nil {
				return err
			}

			ebiten.SetWindowTitle(fmt.Sprintf("Grid Skirmish - %s", battleConfig.Name))
			ebiten.SetWindowSize(screenWidth, screenHeight)
			return ebiten.RunGame(NewGame(battleConfig, cmd.Int64("seed")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the named configuration, or the directory default when
// name is empty. A missing directory falls back to the built-in battle.
func loadConfig(dir, name string) (*engine.BattleConfig, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		log.Printf("Using built-in configuration: %v", err)
		return engine.DefaultBattleConfig(), nil
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}
