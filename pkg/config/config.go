// Package config holds the formctl settings file and resolves the effective
// settings from flags, environment and file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/faciam-dev/gcform/internal/fileutil"
)

// Defaults used when nothing else is configured.
const (
	DefaultSchemaFile = "form_config.yaml"
	DefaultRecordFile = "input_data.yaml"
	DefaultColumns    = 3
)

// ErrUnknownKey is returned by File.Set and File.Get for unsupported keys.
var ErrUnknownKey = errors.New("unknown config key")

// Profile points formctl at a remote API server.
type Profile struct {
	Name   string `json:"name"`
	APIURL string `json:"apiUrl"`
	Token  string `json:"token"`
}

type File struct {
	SchemaFile    string             `json:"schemaFile,omitempty"`
	RecordFile    string             `json:"recordFile,omitempty"`
	ColumnsPerRow int                `json:"columnsPerRow,omitempty"`
	EventsConfig  string             `json:"eventsConfig,omitempty"`
	LogLevel      string             `json:"logLevel,omitempty"`
	Active        string             `json:"active"`
	Profiles      map[string]Profile `json:"profiles"`
	Version       int                `json:"version"`
}

func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".formctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func Load() (*File, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	b, ok, err := fileutil.ReadIfExists(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &File{Active: "default", Profiles: map[string]Profile{}, Version: 1}, nil
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	if f.Active == "" {
		f.Active = "default"
	}
	if f.Version == 0 {
		f.Version = 1
	}
	return &f, nil
}

func Save(f *File) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(p, b)
}

// Keys lists the settings accepted by Set and Get.
func Keys() []string {
	keys := []string{"schemaFile", "recordFile", "columnsPerRow", "eventsConfig", "logLevel", "active", "apiUrl", "token"}
	sort.Strings(keys)
	return keys
}

// Set changes one setting. apiUrl and token belong to the active profile.
func (f *File) Set(key, val string) error {
	switch key {
	case "schemaFile":
		f.SchemaFile = val
	case "recordFile":
		f.RecordFile = val
	case "columnsPerRow":
		n, err := cast.ToIntE(strings.TrimSpace(val))
		if err != nil || n < 0 {
			return fmt.Errorf("columnsPerRow must be a non-negative integer, got %q", val)
		}
		f.ColumnsPerRow = n
	case "eventsConfig":
		f.EventsConfig = val
	case "logLevel":
		f.LogLevel = val
	case "active":
		f.Active = val
	case "apiUrl", "token":
		p := f.profile()
		if key == "apiUrl" {
			p.APIURL = val
		} else {
			p.Token = val
		}
		f.Profiles[p.Name] = p
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Get returns one setting as text.
func (f *File) Get(key string) (string, error) {
	switch key {
	case "schemaFile":
		return f.SchemaFile, nil
	case "recordFile":
		return f.RecordFile, nil
	case "columnsPerRow":
		if f.ColumnsPerRow == 0 {
			return "", nil
		}
		return strconv.Itoa(f.ColumnsPerRow), nil
	case "eventsConfig":
		return f.EventsConfig, nil
	case "logLevel":
		return f.LogLevel, nil
	case "active":
		return f.Active, nil
	case "apiUrl":
		return f.profile().APIURL, nil
	case "token":
		return f.profile().Token, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

func (f *File) profile() Profile {
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	if f.Active == "" {
		f.Active = "default"
	}
	p := f.Profiles[f.Active]
	p.Name = f.Active
	return p
}
