package game

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestLoadDirInto_Merges(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "base.yaml", `code: office
name: Office Party
reel_container: "#reel"
max_reel_items: 30
prizes:
  - name: Mug
    probability: 50
  - name: Hoodie
    probability: 30
  - name: Laptop
    probability: 1
`)
	writeFile(t, tmpDir, "override.yaml", `name: Office Party 2026
max_reel_items: 12
`)
	writeFile(t, tmpDir, "zz-final.yml", `item_height: 64
remove_winner: false
`)

	var cfg ReelConfig
	if err := LoadDirInto(tmpDir, &cfg); err != nil {
		t.Fatalf("Failed to load config from directory: %v", err)
	}

	if cfg.Code != "office" {
		t.Errorf("Expected Code 'office', got '%s'", cfg.Code)
	}
	if len(cfg.Prizes) != 3 || cfg.Prizes[2].Name != "Laptop" || cfg.Prizes[0].Probability != 50 {
		t.Errorf("Expected three prizes from base.yaml, got %v", cfg.Prizes)
	}
	if cfg.Name != "Office Party 2026" {
		t.Errorf("Expected Name overridden, got '%s'", cfg.Name)
	}
	if cfg.MaxReelItems != 12 {
		t.Errorf("Expected MaxReelItems 12, got %d", cfg.MaxReelItems)
	}
	if cfg.ItemHeight != 64 {
		t.Errorf("Expected ItemHeight 64, got %v", cfg.ItemHeight)
	}
	if cfg.RemoveWinner == nil || *cfg.RemoveWinner {
		t.Errorf("Expected RemoveWinner false, got %v", cfg.RemoveWinner)
	}
}

func TestLoadDirInto_AlphabeticalOrder(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "z-file.yaml", "max_reel_items: 100\nname: Z\n")
	writeFile(t, tmpDir, "a-file.yaml", "code: ordered\nmax_reel_items: 20\nname: A\n")
	writeFile(t, tmpDir, "m-file.yaml", "max_reel_items: 50\nname: M\n")
	writeFile(t, tmpDir, "notes.txt", "max_reel_items: 999\n")

	var cfg ReelConfig
	if err := LoadDirInto(tmpDir, &cfg); err != nil {
		t.Fatalf("Failed to load config from directory: %v", err)
	}

	if cfg.MaxReelItems != 100 {
		t.Errorf("Expected MaxReelItems 100 (z-file.yaml loaded last), got %d", cfg.MaxReelItems)
	}
	if cfg.Name != "Z" {
		t.Errorf("Expected Name 'Z', got '%s'", cfg.Name)
	}
	if cfg.Code != "ordered" {
		t.Errorf("Expected Code 'ordered' from a-file.yaml, got '%s'", cfg.Code)
	}
}

func TestLoadDirInto_Errors(t *testing.T) {
	var cfg ReelConfig
	if err := LoadDirInto(t.TempDir(), &cfg); err == nil {
		t.Error("Expected error when loading from empty directory, got nil")
	}
	if err := LoadDirInto("/non/existent/dir", &cfg); err == nil {
		t.Error("Expected error when loading from non-existent directory, got nil")
	}
}

func TestLoadReelConfig_NamesAsString(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "lobby.yaml", `reel_container: "#lobby"
names: "alice,bob,carol"
prizes:
  - name: Sticker
    probability: 1
`)

	cfg, err := LoadReelConfig(filepath.Join(tmpDir, "lobby.yaml"))
	if err != nil {
		t.Fatalf("Failed to load reel config: %v", err)
	}
	if cfg.Code != "lobby" {
		t.Errorf("Expected code from file name 'lobby', got '%s'", cfg.Code)
	}
	if len(cfg.Names) != 3 || cfg.Names[1] != "bob" {
		t.Errorf("Expected names [alice bob carol], got %v", cfg.Names)
	}
}

func TestLoadReelConfig_IgnoresEnvironment(t *testing.T) {
	t.Setenv("NAME", "from-env")
	t.Setenv("CODE", "from-env")
	t.Setenv("NAMES", "eve")

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "gala.yaml", `name: Gala
reel_container: "#gala"
names: [ann, bo]
prizes:
  - name: Mug
    probability: 1
`)

	cfg, err := LoadReelConfig(filepath.Join(tmpDir, "gala.yaml"))
	if err != nil {
		t.Fatalf("Failed to load reel config: %v", err)
	}
	if cfg.Name != "Gala" || cfg.Code != "gala" {
		t.Errorf("Expected name 'Gala' and code 'gala' from the file, got '%s' and '%s'", cfg.Name, cfg.Code)
	}
	if len(cfg.Names) != 2 || cfg.Names[0] != "ann" {
		t.Errorf("Expected names [ann bo], got %v", cfg.Names)
	}
}

func TestLoadReelConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing container", content: "code: x\nprizes:\n  - name: A\n    probability: 1\n"},
		{name: "missing prizes", content: "code: x\nreel_container: \"#r\"\n"},
		{name: "negative weight", content: "code: x\nreel_container: \"#r\"\nprizes:\n  - name: A\n    probability: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeFile(t, tmpDir, "reel.yaml", tt.content)
			if _, err := LoadReelConfig(filepath.Join(tmpDir, "reel.yaml")); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLoadReelConfigs_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "b-stage.yaml", "reel_container: \"#stage\"\nprizes:\n  - name: Car\n    probability: 1\n")
	writeFile(t, tmpDir, "a-lobby.yaml", "code: lobby\nreel_container: \"#lobby\"\nprizes:\n  - name: Pen\n    probability: 3\n")

	cfgs, err := LoadReelConfigs(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load reel configs: %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("Expected 2 reels, got %d", len(cfgs))
	}
	if cfgs[0].Code != "lobby" || cfgs[1].Code != "b-stage" {
		t.Errorf("Expected codes [lobby b-stage], got [%s %s]", cfgs[0].Code, cfgs[1].Code)
	}
}

func TestLoadReelConfigs_DuplicateCode(t *testing.T) {
	tmpDir := t.TempDir()
	body := "code: same\nreel_container: \"#r\"\nprizes:\n  - name: A\n    probability: 1\n"
	writeFile(t, tmpDir, "one.yaml", body)
	writeFile(t, tmpDir, "two.yaml", body)

	if _, err := LoadReelConfigs(tmpDir); err == nil {
		t.Error("Expected duplicate code error, got nil")
	}
}

func TestLoadCustomConfig_Embedded(t *testing.T) {
	type EventReel struct {
		ReelConfig `mapstructure:",squash"`
		Sponsor    string `mapstructure:"sponsor"`
	}

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "event.yaml", "code: gala\nsponsor: Acme\nmax_reel_items: 8\n")

	cfg, err := LoadCustomConfig[EventReel](filepath.Join(tmpDir, "event.yaml"))
	if err != nil {
		t.Fatalf("Failed to load custom config: %v", err)
	}
	if cfg.Code != "gala" || cfg.MaxReelItems != 8 {
		t.Errorf("Expected embedded fields gala/8, got %s/%d", cfg.Code, cfg.MaxReelItems)
	}
	if cfg.Sponsor != "Acme" {
		t.Errorf("Expected Sponsor 'Acme', got '%s'", cfg.Sponsor)
	}
}

func TestReelConfig_Normalize(t *testing.T) {
	cfg := &ReelConfig{Code: "office", MaxReelItems: 10}
	out := cfg.Normalize()
	if out["animationDurationMs"] != int64(1000) {
		t.Errorf("Expected animationDurationMs 1000, got %v", out["animationDurationMs"])
	}

	def := (&ReelConfig{}).Normalize()
	if def["maxReelItems"] != 30 {
		t.Errorf("Expected default maxReelItems 30, got %v", def["maxReelItems"])
	}
}
