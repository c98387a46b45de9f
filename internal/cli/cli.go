// Package cli implements the bunim command-line interface: manifest
// inspection, dependency resolution, and package installation commands
// built on cobra, with charmbracelet/log for output.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// defaultRegistryURL is the ecosystem's canonical package index.
const defaultRegistryURL = "https://raw.githubusercontent.com/nim-lang/packages/master/packages.json"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
}

// config carries the few settings the core packages need. Layering is
// flags over environment over config file over defaults; core packages
// only ever see the final plain values.
type config struct {
	PkgDir   string
	Registry string
	NimBin   string
}

func loadConfig() config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "bunim"))
	}
	v.SetEnvPrefix("BUNIM")
	v.AutomaticEnv()

	v.SetDefault("pkgdir", defaultPkgDir())
	v.SetDefault("registry", defaultRegistryURL)
	v.SetDefault("nim", "nim")

	// A missing config file just means defaults.
	_ = v.ReadInConfig()

	return config{
		PkgDir:   v.GetString("pkgdir"),
		Registry: v.GetString("registry"),
		NimBin:   v.GetString("nim"),
	}
}

func defaultPkgDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bunim/pkgs"
	}
	return filepath.Join(home, ".bunim", "pkgs")
}
