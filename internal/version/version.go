// Package version carries the build version, set at link time via
//
//	-ldflags "-X github.com/tradelog/trading-journal-backend/internal/version.Version=v1.2.3"
package version

// Version is "dev" unless overridden by the build.
var Version = "dev"
