// Package config loads and caches battle configurations for Grid Skirmish.
//
// Configurations are YAML files (JSON is accepted too) in a config
// directory. Each one describes the battlefield grid, the unit catalogue,
// how many units each team fields, optional fixed units and placement
// reserves, the decision map shape and the banner messages.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	battle, err := manager.LoadConfig("classic")
//	configs, err := manager.ListConfigs()
//
// The default configuration is classic when present, else the first valid
// file, else the built-in classic battle.
package config
