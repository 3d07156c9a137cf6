// Package session keeps battle sessions alive between requests.
//
// Manager stores sessions in memory under case-insensitive IDs and, when
// built with NewManagerWithPersistence, writes them through to a
// SessionPersistence. Sessions missing from memory are loaded lazily on Get.
//
// Session IDs are either caller supplied (letters, digits, '-' and '_') or
// generated as 4 hex characters from crypto/rand.
//
// FilePersistence stores one JSON document per session holding the config
// id, the seed, the full battle state and the decision map walk. Loading
// rebuilds the engine from the config and then restores the saved state, so
// a restored battle resolves its next turns exactly like the original would.
//
// Usage:
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", config, 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Engine.RunTurns(10)
//
// RunCleanup expires idle sessions on a ticker until its context is done.
package session
