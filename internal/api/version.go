package api

// Build metadata injected via -ldflags -X. Reported in the User-Agent header and
// the CLI version template; the defaults apply to local builds and tests.
//
//nolint:gochecknoglobals // these are set at build time
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)
