// Package snapshot provides the project snapshot store for projsnap.
//
// A snapshot captures the text content of every eligible file under a project
// root. Each snapshot is persisted as one pretty-printed JSON record named by
// its id:
//
//	<dir>/backup_<epoch_millis>.json
//
// Records are written to a temp file, fsynced, then renamed into place, so a
// crash never leaves a half-written record under the final name.
//
// Traversal policy:
//
//  1. Entries whose name starts with "." are skipped
//  2. node_modules, target, dist and build are skipped
//  3. Entries matching a configured glob pattern are skipped
//  4. Files that are not valid UTF-8 (or cannot be read) are skipped silently
//
// The in-memory index is filled once by Open and is the only source for
// queries afterwards. A single mutex serializes every operation, including
// traversal of large trees.
package snapshot
