package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/auth"
	"github.com/Digital-Creators-Team/lucky-draw-module/config"
	"github.com/Digital-Creators-Team/lucky-draw-module/game"
	"github.com/Digital-Creators-Team/lucky-draw-module/logging"
	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "luckydraw",
		Short: "Lucky draw reel server",
		Long: `Lucky draw hosts weighted prize reels behind an HTTP API.

Example:
  luckydraw serve --config configs/config.yaml
  luckydraw simulate --reels configs/reels --code lobby --draws 100000
  luckydraw spin --reels configs/reels --code lobby --names alice,bob
  luckydraw token --secret changeme --operator host-1`,
		Version:      version,
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().StringP("config", "c", "", "Config file (default: configs/config-{ENV}.yaml)")
	serveCmd.Flags().IntP("port", "p", 0, "Override server.port")
	serveCmd.Flags().String("reels", "", "Override reels.config_path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compare configured odds with observed draw frequencies",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().String("reels", "configs/reels", "Reel definition file or directory")
	simulateCmd.Flags().String("code", "", "Reel code (default: first reel)")
	simulateCmd.Flags().IntP("draws", "n", 100000, "Number of draws")
	simulateCmd.Flags().Uint64("seed", 1, "Seed of the draw source")
	simulateCmd.Flags().Int32("places", 4, "Decimal places in the report")

	spinCmd := &cobra.Command{
		Use:   "spin",
		Short: "Run one headless spin and print the result",
		RunE:  runSpin,
	}
	spinCmd.Flags().String("reels", "configs/reels", "Reel definition file or directory")
	spinCmd.Flags().String("code", "", "Reel code (default: first reel)")
	spinCmd.Flags().StringSlice("names", nil, "Candidate names (comma-separated)")
	spinCmd.Flags().Float64("time-scale", 1, "Animation speed factor, 0.01 runs 100x faster")
	spinCmd.Flags().Uint64("seed", 0, "Seed of the draw source (0: random)")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the mutating reel routes",
		RunE:  runToken,
	}
	tokenCmd.Flags().String("secret", "", "JWT secret (default: jwt.secret from --config)")
	tokenCmd.Flags().StringP("config", "c", "", "Config file to read jwt settings from")
	tokenCmd.Flags().String("operator", "", "Operator id (required)")
	tokenCmd.Flags().String("name", "", "Operator display name")
	tokenCmd.Flags().Duration("expiration", 0, "Token lifetime (default: jwt.expiration)")
	_ = tokenCmd.MarkFlagRequired("operator")

	rootCmd.AddCommand(serveCmd, simulateCmd, spinCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadByEnv("configs")
	}
	return config.Load(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	port, _ := cmd.Flags().GetInt("port")
	reels, _ := cmd.Flags().GetString("reels")

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if reels != "" {
		cfg.Reels.ConfigPath = reels
	}

	svc, cleanup, err := initService(cfg)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer cleanup()

	return svc.App.Run()
}

// pickReel loads the reels at path and returns the one named code, or the
// first one when code is empty.
func pickReel(path, code string) (*game.ReelConfig, error) {
	cfgs, err := game.LoadReelConfigs(path)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return cfgs[0], nil
	}
	cfg, ok := lo.Find(cfgs, func(c *game.ReelConfig) bool { return c.Code == code })
	if !ok {
		return nil, fmt.Errorf("reel %q not found in %s, available: %s", code, path,
			strings.Join(lo.Map(cfgs, func(c *game.ReelConfig, _ int) string { return c.Code }), ", "))
	}
	return cfg, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("reels")
	code, _ := cmd.Flags().GetString("code")
	draws, _ := cmd.Flags().GetInt("draws")
	seed, _ := cmd.Flags().GetUint64("seed")
	places, _ := cmd.Flags().GetInt32("places")

	if draws <= 0 {
		return fmt.Errorf("draws must be positive, got %d", draws)
	}
	rc, err := pickReel(path, code)
	if err != nil {
		return err
	}

	tally := prize.Simulate(rc.Prizes, prize.NewSeededDraw(seed), draws)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "reel %s: %d draws, seed %d\n\n", rc.Code, draws, seed)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "prize\tweight\texpected\tobserved\tdelta\t")
	for _, odd := range prize.Odds(rc.Prizes, places) {
		observed := tally.Share(odd.Name, places)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			odd.Name, odd.Weight, odd.Chance.StringFixed(places), observed.StringFixed(places),
			observed.Sub(odd.Chance).StringFixed(places))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if tally.Misses > 0 {
		fmt.Fprintf(out, "\n%d draws selected no prize\n", tally.Misses)
	}
	return nil
}

func runSpin(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("reels")
	code, _ := cmd.Flags().GetString("code")
	names, _ := cmd.Flags().GetStringSlice("names")
	timeScale, _ := cmd.Flags().GetFloat64("time-scale")
	seed, _ := cmd.Flags().GetUint64("seed")

	rc, err := pickReel(path, code)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: "info", Format: "console", Output: "stderr"})
	opts := game.BuildOptions{
		Logger:    logger,
		Reporter:  reel.LogReporter{Logger: logger},
		TimeScale: timeScale,
	}
	if seed != 0 {
		opts.Draw = prize.NewSeededDraw(seed)
	}
	registry := game.NewRegistry(opts)
	entry, err := registry.Add(rc)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		entry.Reel.SetNames(names)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := entry.Reel.SpinResult(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		reel.Result
		ReelCode string   `json:"reel_code"`
		Children []string `json:"children"`
	}{res, rc.Code, entry.Broadcast.Children()})
}

func runToken(cmd *cobra.Command, args []string) error {
	secret, _ := cmd.Flags().GetString("secret")
	path, _ := cmd.Flags().GetString("config")
	operator, _ := cmd.Flags().GetString("operator")
	name, _ := cmd.Flags().GetString("name")
	expiration, _ := cmd.Flags().GetDuration("expiration")

	if secret == "" || expiration == 0 {
		cfg := config.Default()
		if path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if secret == "" {
			secret = cfg.JWT.Secret
		}
		if expiration == 0 {
			expiration = cfg.JWT.Expiration
		}
	}
	if secret == "" {
		return fmt.Errorf("no jwt secret: pass --secret or a --config with jwt.secret")
	}

	token, err := auth.GenerateToken(secret, operator, name, expiration)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
