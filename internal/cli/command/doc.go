// Package command provides the projsnap CLI commands.
//
// Commands are built with urfave/cli/v2. Each action parses its flags,
// calls projsnap-server over HTTP and prints the result in the selected
// output format:
//
//   - snapshot: create, list, show, restore, delete, compare, prune
//   - system: health, status, version
//   - config: show, set
package command
