// Package session keeps micromouse trial sessions in memory and on disk.
//
// Each Session owns a TrialEngine, so two sessions on the same maze have
// fully independent robots. Session IDs are case-insensitive, limited to
// letters, digits, '-' and '_', and generated as 4 hex characters when
// the caller does not pick one.
//
// With a FilePersistence attached, every session is written to
// <sessions-dir>/<id>.json. The file references the maze by config ID and
// carries the full TrialState, including the robot snapshot, so a
// reloaded session continues exploring or navigating where it stopped:
//
//	persistence, _ := session.NewFilePersistence(dir, configs)
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		return err
//	}
//	done := manager.StartCleanup(ctx, time.Minute, time.Hour)
//
// Cleanup only evicts idle sessions from memory. Their files remain and
// Get loads them back on demand.
package session
