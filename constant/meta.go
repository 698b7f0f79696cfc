// Package constant defines immutable application-level identifiers.
package constant

const (
	// App is the application identifier used for paths, env prefixes and the keyring service.
	App = "trackall"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// Repository is the GitHub owner/name releases are published under.
	Repository = "mcmeskajr-prog/trackall"

	// UserAgent is sent with every catalog request.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
