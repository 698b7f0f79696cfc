// Package config provides centralized management for application settings and the Viper-based configuration engine.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mcmeskajr-prog/trackall/constant"
	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes configuration keys into environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads dotenv files, binds environment variables, registers defaults and reads the config file if present.
func Setup() error {
	if err := loadDotenv(".env", filepath.Join(where.Config(), ".env")); err != nil {
		return err
	}

	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// loadDotenv exports variables from the given dotenv files without overriding the real environment.
// Earlier paths win over later ones.
func loadDotenv(paths ...string) error {
	for _, path := range paths {
		exists, err := filesystem.API().Exists(path)
		if err != nil || !exists {
			continue
		}

		file, err := filesystem.API().Open(path)
		if err != nil {
			return err
		}

		env, err := godotenv.Parse(file)
		_ = file.Close()
		if err != nil {
			return err
		}

		for name, value := range env {
			if _, set := os.LookupEnv(name); !set {
				_ = os.Setenv(name, value)
			}
		}
	}

	return nil
}
