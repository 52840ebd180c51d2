package game

import (
	"fmt"

	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
)

// ReelConfig is the file form of one reel.
type ReelConfig struct {
	Code          string     `mapstructure:"code" json:"code"`
	Name          string     `mapstructure:"name" json:"name"`
	ReelContainer string     `mapstructure:"reel_container" json:"reelContainer"`
	MaxReelItems  int        `mapstructure:"max_reel_items" json:"maxReelItems"`
	RemoveWinner  *bool      `mapstructure:"remove_winner" json:"removeWinner"`
	ItemHeight    float64    `mapstructure:"item_height" json:"itemHeight"`
	Prizes        prize.Pool `mapstructure:"prizes" json:"prizes"`
	Names         []string   `mapstructure:"names" json:"names"`
}

// ConfigNormalizer exposes normalized config for responses.
type ConfigNormalizer interface {
	Normalize() map[string]interface{}
}

// Normalize converts the config to a response-friendly map.
func (c *ReelConfig) Normalize() map[string]interface{} {
	maxItems := c.MaxReelItems
	if maxItems == 0 {
		maxItems = reel.DefaultMaxReelItems
	}
	return map[string]interface{}{
		"code":                c.Code,
		"name":                c.Name,
		"reelContainer":       c.ReelContainer,
		"maxReelItems":        maxItems,
		"animationDurationMs": reel.AnimationDuration(maxItems).Milliseconds(),
		"fillerLength":        prize.FillerLength,
		"prizes":              c.Prizes,
	}
}

// Validate checks the fields needed before a reel can be built.
func (c *ReelConfig) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("reel code is required")
	}
	return c.ToReel(reel.Callbacks{}).Validate()
}

// ToReel converts the file form into a reel.Config.
func (c *ReelConfig) ToReel(callbacks reel.Callbacks) reel.Config {
	return reel.Config{
		Code:            c.Code,
		SurfaceSelector: c.ReelContainer,
		Prizes:          c.Prizes,
		MaxReelItems:    c.MaxReelItems,
		RemoveWinner:    c.RemoveWinner,
		Names:           c.Names,
		Callbacks:       callbacks,
	}
}
