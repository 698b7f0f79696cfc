// Package where resolves application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/mcmeskajr-prog/trackall/constant"
	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "TRACKALL_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory, honoring TRACKALL_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the cache directory. It falls back to ./cache when the platform provides none.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is the directory for daily log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Data holds everything that must survive a cache wipe: the local store, the queue snapshot and the identity.
func Data() string {
	return ensureDir(filepath.Join(Config(), "data"))
}

// Database is the local bolt store.
func Database() string {
	return filepath.Join(Data(), "library.db")
}

// SyncQueue is the snapshot of writes that were still pending at shutdown.
func SyncQueue() string {
	return filepath.Join(Data(), "pending.jsonl")
}

// Identity stores the generated owner id.
func Identity() string {
	return filepath.Join(Data(), "owner")
}

// Queries is the search query suggestion registry.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}
