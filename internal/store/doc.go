// Package store provides the SQLite database that backs seorec.
//
// The store owns:
//   - Analyses: the parent rows recommendations hang off (created here only so
//     the engine can be driven end to end; the engine never creates them)
//   - Recommendations and their actions, examples and resources
//
// Reads and writes of the recommendation graph go through internal/persist.
// Store wires a pinned connection and a ConnCoordinator to it so every
// statement of a save runs inside one BEGIN IMMEDIATE ... COMMIT.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity (ON DELETE CASCADE)
//
// The schema version is kept in PRAGMA user_version, which the health probe
// reads and the writer's schema guard compares against CurrentSchemaVersion.
package store
