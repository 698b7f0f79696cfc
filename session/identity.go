package session

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/where"
	"github.com/spf13/viper"
)

// Owner returns the configured owner id, or a generated one persisted on first use.
func Owner() (string, error) {
	if owner := strings.TrimSpace(viper.GetString(key.LibraryOwner)); owner != "" {
		return owner, nil
	}

	path := where.Identity()
	data, err := filesystem.API().ReadFile(path)
	switch {
	case err == nil && strings.TrimSpace(string(data)) != "":
		return strings.TrimSpace(string(data)), nil
	case err != nil && !os.IsNotExist(err):
		return "", err
	}

	owner := uuid.NewString()
	if err := filesystem.WriteAtomic(path, []byte(owner)); err != nil {
		return "", err
	}

	return owner, nil
}
