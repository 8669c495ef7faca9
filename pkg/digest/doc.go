// Package digest computes content fingerprints for captured files.
//
// A digest is the lowercase hex SHA-256 of the payload, 64 characters long.
// Digests are point-in-time fingerprints used for display and comparison;
// they are never used to deduplicate stored content.
package digest
