// Package auth keeps catalog credentials in the system keyring.
package auth

import (
	"errors"

	"github.com/mcmeskajr-prog/trackall/constant"
	"github.com/samber/mo"
	"github.com/zalando/go-keyring"
)

// Secret names understood by the keyring.
const (
	TMDB  = "tmdb"
	Proxy = "proxy"
)

// Secrets lists every name that can be stored.
var Secrets = []string{TMDB, Proxy}

// Set stores a secret under the application service.
func Set(name, value string) error {
	return keyring.Set(constant.App, name, value)
}

// Get returns the stored secret. A missing secret or an unavailable keyring yields None.
func Get(name string) mo.Option[string] {
	value, err := keyring.Get(constant.App, name)
	if err != nil || value == "" {
		return mo.None[string]()
	}
	return mo.Some(value)
}

// Delete removes a secret. Deleting a missing secret is not an error.
func Delete(name string) error {
	err := keyring.Delete(constant.App, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
