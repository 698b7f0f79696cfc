// Package key defines the canonical set of configuration identifiers.
package key

// Logging
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI execution environment
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Iconography
const (
	IconsVariant = "icons.variant"
)

// Search routing and the per-session response cache.
const (
	SearchCacheSize            = "search.cache_size"
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Catalog credentials and locale. Empty credentials fall back to the keyring and then to storage.
const (
	TMDBKey       = "tmdb.key"
	TMDBLanguage  = "tmdb.language"
	ProxyURL      = "proxy.url"
	SteamLanguage = "steam.language"
	SteamCountry  = "steam.country"
)

// Outbound traffic shaping.
const (
	NetworkRateLimit = "network.rate_limit"
)

// Library ownership and persistence.
const (
	LibraryOwner  = "library.owner"
	StorageRemote = "storage.remote"
)

// Background write queue.
const (
	SyncQueueSize   = "sync.queue_size"
	SyncMaxAttempts = "sync.max_attempts"
	SyncInterval    = "sync.interval"
)
