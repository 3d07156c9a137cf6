package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
)

func createTestConfig() *engine.BattleConfig {
	return &engine.BattleConfig{
		Name:         "Test Config",
		Description:  "Test configuration",
		TurnInterval: 1.0,
		Grid: engine.GridConfig{
			Width:           6,
			Height:          8,
			ObstaclePercent: 15,
			SpawnRows:       2,
			DeployRows:      2,
		},
		Catalogue: map[string]engine.UnitKind{"footman": {HP: 10, Attack: 3}},
		Teams: engine.TeamSquads{
			Red:  []engine.Squad{{Kind: "footman", Count: 4}},
			Blue: []engine.Squad{{Kind: "footman", Count: 4}},
		},
		Route: engine.RouteConfig{Levels: 2, MaxBranch: 2, MaxParents: 2},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", config, 11)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil {
			t.Fatal("Expected engine to be initialized")
		}
		if session.Engine.GetState().Seed != 11 {
			t.Errorf("Expected seed 11, got %d", session.Engine.GetState().Seed)
		}
		if session.Route == nil || session.Route.Graph.Levels != 2 {
			t.Error("Expected a decision map shaped by the config")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", config, 0)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", config, 0)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", config, 0)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid session ID", func(t *testing.T) {
		for _, id := range []string{"../escape", "has space", "dot.json"} {
			_, err := manager.Create(id, config, 0)
			if !errors.Is(err, ErrInvalidSessionID) {
				t.Errorf("Expected ErrInvalidSessionID for %q, got %v", id, err)
			}
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Name = ""
		_, err := manager.Create("invalid-test", invalidConfig, 0)
		if !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("get-test", createTestConfig(), 1)

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the same session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session.ID != "get-test" {
			t.Errorf("Expected original ID, got %s", session.ID)
		}
	})

	t.Run("non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("goc", config, 3)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("goc", config, 4)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected existing session to be returned")
	}
	if second.Engine.GetState().Seed != 3 {
		t.Errorf("Expected original seed 3, got %d", second.Engine.GetState().Seed)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("delete-me", createTestConfig(), 0)

	if err := manager.Delete("DELETE-ME"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("delete-me"); err != ErrSessionNotFound {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("delete-me"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if err := manager.DeleteFromMemory("delete-me"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound from DeleteFromMemory, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	ids := []string{"list-1", "list-2", "list-3"}
	for _, id := range ids {
		manager.Create(id, config, 0)
	}

	sessions := manager.List()
	if len(sessions) != 3 || manager.Count() != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}
	found := make(map[string]bool)
	for _, s := range sessions {
		found[s.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			t.Errorf("Session %s not found in list", id)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	active, _ := manager.Create("active", config, 0)
	expired, _ := manager.Create("expired", config, 0)

	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	deleted := manager.CleanupExpiredSessions(1 * time.Hour)
	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}
	if _, err := manager.Get("expired"); err != ErrSessionNotFound {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("access-test", createTestConfig(), 0)
	originalTime := session.LastAccessedAt

	time.Sleep(10 * time.Millisecond)

	if err := manager.UpdateLastAccessed("access-test"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("c-%d", id%40)
			if _, err := manager.GetOrCreate(sessionID, config, int64(id+1)); err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
			manager.UpdateLastAccessed(sessionID)
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 40 {
		t.Errorf("Expected 40 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config, 5)
	session2, _ := manager.Create("iso-2", config, 5)

	session1.Engine.RunTurns(3)

	if session2.Engine.GetState().Turn != 0 {
		t.Error("Session 2 should not be affected by session 1 turns")
	}
	if session1.Engine.GetState().Turn == session2.Engine.GetState().Turn {
		t.Error("Sessions should have independent battle state")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config, 0)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if len(session.ID) != 4 || !validID(session.ID) {
			t.Errorf("Expected 4-character hex ID, got %q", session.ID)
		}
	}
}
