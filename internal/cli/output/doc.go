// Package output provides output formatting for the projsnap CLI.
//
// Formatters render command results as an aligned table (the default), JSON
// or YAML. Values that implement Tabular choose their own table layout;
// wide mode adds columns.
package output
