// Package config, CLI'nin bağlantı ayarlarını ortam değişkenlerinden, .env
// dosyasından ve komut satırı bayraklarından okuyarak tek bir dbquery.Config
// üretmesini sağlar.
//
// Öncelik sırası (yüksekten düşüğe):
//
//	1. Açıkça verilen bayraklar (--driver, --host ...)
//	2. .env dosyası
//	3. Ortam değişkenleri (DB_CONNECTION, DB_HOST ...)
//
// Boş kalan alanlar daha sonra dbquery.Config.WithDefaults ile doldurulur.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	dbquery "github.com/biyonik/go-dbquery"
)

// DefaultEnvFile is read when Options.EnvFile is empty. Its absence is not an error.
const DefaultEnvFile = ".env"

// envKeys maps config keys to the environment variables that feed them.
var envKeys = map[string]string{
	"driver":   "DB_CONNECTION",
	"database": "DB_DATABASE",
	"host":     "DB_HOST",
	"port":     "DB_PORT",
	"user":     "DB_USERNAME",
	"password": "DB_PASSWORD",
}

// Options controls where Load looks for settings.
type Options struct {
	// Fs is the filesystem the env file is read from. Defaults to the OS filesystem.
	Fs afero.Fs

	// EnvFile is an explicit .env path. When set, the file must exist.
	EnvFile string

	// Flags, if set, is consulted for changed flags named after the config keys.
	Flags *pflag.FlagSet
}

// Load resolves a dbquery.Config from the environment, the env file and flags.
func Load(opts Options) (dbquery.Config, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	v := viper.New()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return dbquery.Config{}, err
		}
	}

	changed := map[string]bool{}
	if opts.Flags != nil {
		for key := range envKeys {
			f := opts.Flags.Lookup(key)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return dbquery.Config{}, err
			}
			changed[key] = f.Changed
		}
	}

	dotenv, err := readEnvFile(opts.Fs, opts.EnvFile)
	if err != nil {
		return dbquery.Config{}, err
	}
	for key, env := range envKeys {
		value, ok := dotenv[env]
		if !ok || changed[key] {
			continue
		}
		v.Set(key, value)
	}

	settings := make(map[string]any, len(envKeys))
	for key := range envKeys {
		if v.IsSet(key) {
			settings[key] = v.Get(key)
		}
	}
	return dbquery.ConfigFromMap(settings)
}

// readEnvFile parses the env file into a map. A missing default file yields an empty map.
func readEnvFile(fsys afero.Fs, path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return values, nil
}
