// Package domain defines the core domain models for projsnap.
//
// Domain models are plain values without IO dependencies:
//
//   - Snapshot: an immutable capture of a project tree's text files
//   - FileRecord: one captured file with its content digest
//   - Errors: coded domain errors shared by storage, service and HTTP layers
//
// The JSON shape of Snapshot is the persisted record format and must stay
// compatible with records written by earlier versions.
package domain
