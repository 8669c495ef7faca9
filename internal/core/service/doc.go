// Package service provides the snapshot services of projsnap.
//
// Services orchestrate the snapshot store and add the concerns the store
// itself does not carry:
//
//   - SnapshotService: request validation, logging, metrics and retention
//     around every store operation
//   - AutoSnapshotter: watches a project tree and captures a debounced
//     "auto" snapshot after changes settle
//
// The store is injected through the SnapshotRepository interface.
package service
