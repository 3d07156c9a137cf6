// Package api provides the HTTP REST API for Grid Skirmish.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - create a session {"config_id", "seed"}
//   - GET /api/sessions - list sessions
//   - GET /api/sessions/{id} - session details
//   - DELETE /api/sessions/{id} - delete a session
//
// Battle:
//   - GET /api/sessions/{id}/state - current battle state
//   - GET /api/sessions/{id}/report - text summary of the battle
//   - POST /api/sessions/{id}/tick - advance the turn timer {"dt"}
//   - POST /api/sessions/{id}/turns - resolve up to {"count"} turns
//   - POST /api/sessions/{id}/place - deploy a reserve {"reserve", "x", "y"}
//   - POST /api/sessions/{id}/start - end placement and start the battle
//   - POST /api/sessions/{id}/ack - acknowledge a finished battle
//   - POST /api/sessions/{id}/reset - restart, optionally with {"seed"}
//   - GET /api/sessions/{id}/history?page=&limit=&order= - turn history
//
// Decision map:
//   - GET /api/sessions/{id}/route - position and options
//   - POST /api/sessions/{id}/route/choose - follow option {"index"} (0-based)
//   - POST /api/sessions/{id}/route/new - generate a new map {"seed"}
//
// Configuration:
//   - GET /api/configs - list configurations
//   - POST /api/configs - save a configuration
//   - GET /api/configs/{name} - fetch one configuration
//
// Other:
//   - GET /api/health - liveness check
//   - GET /ws?session={id} - WebSocket state updates
//
// Errors are returned as JSON with a matching status code:
//
//	{"error": "battle is not over"}
//
// Missing sessions and configs map to 404, phase conflicts to 409 and
// malformed input to 400.
package api
