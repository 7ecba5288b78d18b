// Package version reports build information for the execkit binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/execkit/version.Version=1.0.0" ./cmd/execkit
//
// Missing values are filled from the build info the Go toolchain embeds.
package version
