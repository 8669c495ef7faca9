// Package buildinfo exposes projsnap build metadata.
//
// Version, Commit and BuildTime are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/projsnap/internal/infra/buildinfo.Version=v0.3.0 \
//	  -X github.com/yndnr/projsnap/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// When they are left unset, Get falls back to the VCS stamp the Go
// toolchain embeds in the binary.
package buildinfo
