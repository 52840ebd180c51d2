package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// newViper reads reel files only; environment variables are not bound.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	return v
}

// decodeHook lets durations be written as "3s" and name lists as "a,b,c".
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// yamlFiles lists the YAML files of dir in alphabetical order.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && isYAML(e.Name())
	})
	sort.Strings(files)
	return files, nil
}

// LoadFileInto loads one YAML file into out (out must be a pointer).
func LoadFileInto(configPath string, out interface{}) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := v.Unmarshal(out, decodeHook()); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// LoadDirInto merges every YAML file of configDir into out. Files are merged
// alphabetically, later files overriding earlier ones.
func LoadDirInto(configDir string, out interface{}) error {
	files, err := yamlFiles(configDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no YAML files found in config directory: %s", configDir)
	}

	v := newViper()
	for _, name := range files {
		v.SetConfigFile(filepath.Join(configDir, name))
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to merge config from %s: %w", name, err)
		}
	}

	if err := v.Unmarshal(out, decodeHook()); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// LoadCustomConfig loads T from a single file or a merged directory.
// T may embed ReelConfig to add fields of its own.
func LoadCustomConfig[T any](configPath string) (*T, error) {
	info, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config path: %w", err)
	}

	var out T
	if info.IsDir() {
		err = LoadDirInto(configPath, &out)
	} else {
		err = LoadFileInto(configPath, &out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadReelConfig loads one reel from a file or a merged directory.
func LoadReelConfig(configPath string) (*ReelConfig, error) {
	cfg, err := LoadCustomConfig[ReelConfig](configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Code == "" && !isDir(configPath) {
		cfg.Code = codeFromFile(configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reel config %s: %w", configPath, err)
	}
	return cfg, nil
}

// LoadReelConfigs loads reels from path. A file yields one reel; a directory
// yields one reel per YAML file, with the file name as default code.
func LoadReelConfigs(path string) ([]*ReelConfig, error) {
	if !isDir(path) {
		cfg, err := LoadReelConfig(path)
		if err != nil {
			return nil, err
		}
		return []*ReelConfig{cfg}, nil
	}

	files, err := yamlFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in config directory: %s", path)
	}

	cfgs := make([]*ReelConfig, 0, len(files))
	for _, name := range files {
		cfg, err := LoadReelConfig(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}

	dupes := lo.FindDuplicatesBy(cfgs, func(c *ReelConfig) string { return c.Code })
	if len(dupes) > 0 {
		return nil, fmt.Errorf("duplicate reel code %q in %s", dupes[0].Code, path)
	}
	return cfgs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func codeFromFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
