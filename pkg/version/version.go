// Package version holds the engine's build version, set at link time via
// -ldflags (e.g. "-X github.com/reachgraph/reachgraph/pkg/version.Version=v0.3.0").
package version

// Version is the current build's version tag. "dev" marks a non-release build.
var Version = "dev"
