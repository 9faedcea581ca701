// Package config reads and writes the small subset of gitconfig this
// core cares about: the user identity used to stamp commits.
package config

import (
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"

	"github.com/nullpointr/corvid/ginternals"
)

var loadOptions = ini.LoadOptions{
	SkipUnrecognizableLines: true,
}

// Identity holds the name and email used to author and commit.
type Identity struct {
	Name  string
	Email string
}

// IsZero returns whether both fields are empty.
func (id Identity) IsZero() bool {
	return id.Name == "" && id.Email == ""
}

// LoadIdentity reads the [user] section of the config file living at
// configPath. A missing file is not an error; it yields a zero
// Identity.
func LoadIdentity(configPath string) (Identity, error) {
	cfg, err := ini.LoadSources(loadOptions, configPath)
	if err != nil {
		if isNotExist(err) {
			return Identity{}, nil
		}
		return Identity{}, xerrors.Errorf("could not load %s: %w", configPath, ginternals.ErrIoError)
	}

	sec := cfg.Section("user")
	return Identity{
		Name:  sec.Key("name").String(),
		Email: sec.Key("email").String(),
	}, nil
}

// SaveIdentity persists id's Name and Email under the [user] section
// of the config file living at configPath, preserving any other
// content already present there.
func SaveIdentity(configPath string, id Identity) error {
	cfg, err := ini.LoadSources(loadOptions, configPath)
	if err != nil {
		if !isNotExist(err) {
			return xerrors.Errorf("could not load %s: %w", configPath, ginternals.ErrIoError)
		}
		cfg = ini.Empty(loadOptions)
	}

	sec := cfg.Section("user")
	sec.Key("name").SetValue(id.Name)
	sec.Key("email").SetValue(id.Email)

	if err := cfg.SaveTo(configPath); err != nil {
		return xerrors.Errorf("could not save %s: %w", configPath, ginternals.ErrIoError)
	}
	return nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || xerrors.Is(err, os.ErrNotExist)
}
