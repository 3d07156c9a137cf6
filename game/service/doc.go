// Package service provides the business logic layer for Grid Skirmish.
//
// The service package implements:
//   - Multi-session battle management
//   - Turn stepping, both timed ticks and bulk runs
//   - Reserve placement for setup battles
//   - The decision map walked between battles
//   - Paginated turn history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level battle operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages battle configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the battle engine. Each session owns its own engine and decision map, so
// sessions never share state.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.RunTurns(ctx, info.ID, 10)
package service
