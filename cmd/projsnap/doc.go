// Package main provides the entry point for projsnap, the command-line
// client of projsnap-server.
//
// Usage:
//
//	projsnap snapshot create --root . --label before-upgrade
//	projsnap snapshot list -o json
//	projsnap snapshot compare backup_1700000000000 --path ./main.go
//	projsnap config set server 10.0.0.5:5090
package main
