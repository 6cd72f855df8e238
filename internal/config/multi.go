package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoConfig = errors.New("no config selected")

const DefaultLabel = "Default"

func ConfigRoot() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "noveld")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "noveld")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "noveld")
}

// Store is a directory of labelled yaml profiles plus a pointer file naming
// the active one.
type Store struct {
	Root string
}

func DefaultStore() Store {
	return Store{Root: ConfigRoot()}
}

func (s Store) ConfigsDir() string {
	return filepath.Join(s.Root, "configs")
}

func (s Store) currentFile() string {
	return filepath.Join(s.Root, "current_config")
}

func (s Store) Path(label string) string {
	return filepath.Join(s.ConfigsDir(), label+".yaml")
}

func (s Store) ensureDirs() error {
	return os.MkdirAll(s.ConfigsDir(), 0755)
}

func checkLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return errors.New("label cannot be empty")
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("invalid label %q", label)
	}

	return nil
}

func (s Store) setCurrent(label string) error {
	return os.WriteFile(s.currentFile(), []byte(label), 0644)
}

func (s Store) CurrentLabel() (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(s.currentFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func (s Store) ActivePath() (string, error) {
	label, err := s.CurrentLabel()
	if err != nil || label == "" {
		return "", ErrNoConfig
	}

	return s.Path(label), nil
}

// PathByLabel returns the file of an existing profile.
func (s Store) PathByLabel(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}

	path := s.Path(label)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("config %q does not exist", label)
	}

	return path, nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func (s Store) List() ([]ConfigInfo, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.ConfigsDir())
	if err != nil {
		return nil, err
	}

	active, _ := s.CurrentLabel()

	var out []ConfigInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}

		label := strings.TrimSuffix(e.Name(), ".yaml")
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   s.Path(label),
			Active: label == active,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })

	return out, nil
}

func (s Store) Switch(label string) error {
	if _, err := s.PathByLabel(label); err != nil {
		return err
	}

	return s.setCurrent(label)
}

// Add copies an existing yaml file in as a new profile after checking that
// it parses.
func (s Store) Add(label, srcPath string) error {
	if err := checkLabel(label); err != nil {
		return err
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	dst := s.Path(label)
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("config %q already exists", label)
	}

	if _, err := loadYAML(srcPath); err != nil {
		return fmt.Errorf("read %s: %w", srcPath, err)
	}

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, raw, 0644)
}

func (s Store) Create(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := s.Path(label)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config %q already exists", label)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

// Rename moves a profile. Default stays put because Remove falls back to it.
func (s Store) Rename(oldLabel, newLabel string) error {
	if oldLabel == DefaultLabel {
		return fmt.Errorf("the %s config cannot be renamed", DefaultLabel)
	}
	if err := checkLabel(newLabel); err != nil {
		return err
	}

	oldPath, err := s.PathByLabel(oldLabel)
	if err != nil {
		return err
	}

	newPath := s.Path(newLabel)
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := s.CurrentLabel(); active == oldLabel {
		return s.setCurrent(newLabel)
	}

	return nil
}

// Remove deletes a profile. Removing the active one makes Default active;
// the returned label is the profile active afterwards.
func (s Store) Remove(label string) (string, error) {
	if label == DefaultLabel {
		return "", errors.New("cannot remove the Default config")
	}

	path, err := s.PathByLabel(label)
	if err != nil {
		return "", err
	}

	active, _ := s.CurrentLabel()
	if active == label {
		if err := s.Switch(DefaultLabel); err != nil {
			return "", fmt.Errorf("failed switching to Default: %w", err)
		}
		active = DefaultLabel
	}

	return active, os.Remove(path)
}

// Reset overwrites the active profile with the defaults.
func (s Store) Reset() (string, error) {
	path, err := s.ActivePath()
	if err != nil {
		return "", err
	}

	return path, SaveYAML(DefaultConfig(), path)
}

// Init creates Default.yaml and makes it active. os.ErrExist means it was
// already there and was only re-activated.
func (s Store) Init() (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := s.Path(DefaultLabel)
	if _, err := os.Stat(path); err == nil {
		_ = s.setCurrent(DefaultLabel)
		return path, os.ErrExist
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, s.setCurrent(DefaultLabel)
}
