// Package engine provides the core battle logic for Grid Skirmish.
//
// The engine package implements the auto-battler mechanics including:
//   - Obstacle generation with a guaranteed corner-to-corner path
//   - Breadth-first pathfinding around terrain and other units
//   - Deterministic turn order and melee resolution
//   - Unit placement before the battle starts
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for battle operations,
// implemented by BattleEngine. BattleState holds the grid, the roster and the
// turn timer, while BattleConfig defines the battlefield and armies loaded
// from YAML files.
//
// Usage:
//
//	config, err := engine.LoadBattleConfig("configs/classic.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	battle, err := engine.NewEngine(config, 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Feed frame time; a turn resolves once per turn interval
//	if turn := battle.Update(1.0 / 60); turn != nil {
//		fmt.Println(turn.RedAlive, turn.BlueAlive)
//	}
//
// Battle Rules:
//
// Every turn the roster is sorted (blue first, then red) and each living unit
// either hits an adjacent enemy for its attack value or takes one step toward
// the nearest reachable enemy. The battle ends when a team has no living units.
package engine
