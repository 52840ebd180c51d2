package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/errors"
	"github.com/Digital-Creators-Team/lucky-draw-module/game"
	"github.com/Digital-Creators-Team/lucky-draw-module/logging"
	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	entryKey          = "reel_entry"
	defaultOddsPlaces = 4
	maxOddsPlaces     = 12
)

// ReelHandler serves the reel API.
type ReelHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewReelHandler creates a reel handler.
func NewReelHandler(app *App) *ReelHandler {
	return &ReelHandler{
		app:    app,
		logger: logging.WithComponent(app.logger, "reel_handler"),
	}
}

// NamesRequest replaces the candidate list.
type NamesRequest struct {
	Names []string `json:"names" binding:"required"`
}

// RemoveWinnerRequest sets the remove-winner flag.
type RemoveWinnerRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// SpinResponse is a finished spin.
type SpinResponse struct {
	reel.Result
	ReelCode   string `json:"reel_code"`
	DurationMs int64  `json:"duration_ms"`
}

// StateResponse describes a reel between or during spins.
type StateResponse struct {
	ReelCode   string       `json:"reel_code"`
	State      reel.State   `json:"state"`
	Spinning   bool         `json:"spinning"`
	NameCount  int          `json:"name_count"`
	LastResult *reel.Result `json:"last_result,omitempty"`
}

// ReelSummary is one entry of the reel list.
type ReelSummary struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	NameCount int    `json:"name_count"`
	Spinning  bool   `json:"spinning"`
}

// ResolveReel loads the reel named by :code or answers 404.
func (h *ReelHandler) ResolveReel(c *gin.Context) {
	code := c.Param("code")
	entry, ok := h.app.registry.Get(code)
	if !ok {
		HandleAppError(c, errors.New(errors.ErrReelNotFound, "reel not found").WithDebug("code %q", code))
		return
	}
	c.Set(entryKey, entry)

	logger := logging.WithReelCode(*zerolog.Ctx(c.Request.Context()), code)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
	c.Next()
}

func entryFrom(c *gin.Context) *game.Entry {
	return c.MustGet(entryKey).(*game.Entry)
}

// List returns every hosted reel.
func (h *ReelHandler) List(c *gin.Context) {
	reels := h.app.registry.Reels()
	OK(c, lo.Map(reels, func(r *reel.Reel, _ int) ReelSummary {
		s := ReelSummary{Code: r.Code(), NameCount: len(r.Names()), Spinning: r.Spinning()}
		if e, ok := h.app.registry.Get(r.Code()); ok {
			s.Name = e.Config.Name
		}
		return s
	}))
}

// GetConfig returns the normalized reel configuration.
func (h *ReelHandler) GetConfig(c *gin.Context) {
	entry := entryFrom(c)
	cfg := entry.Config.Normalize()
	cfg["removeWinner"] = entry.Reel.ShouldRemoveWinnerFromNameList()
	cfg["itemHeight"] = entry.Broadcast.ItemHeight()
	OK(c, cfg)
}

// GetOdds returns the chance of each prize. ?places= sets the rounding.
func (h *ReelHandler) GetOdds(c *gin.Context) {
	places := defaultOddsPlaces
	if raw := c.Query("places"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 0 || p > maxOddsPlaces {
			ErrorWithMessage(c, http.StatusBadRequest, "places must be an integer between 0 and 12")
			return
		}
		places = p
	}

	pool := entryFrom(c).Reel.Store().Prizes()
	OK(c, gin.H{
		"total_weight": pool.TotalWeight(),
		"odds":         prize.Odds(pool, int32(places)),
	})
}

// GetNames returns the candidate list.
func (h *ReelHandler) GetNames(c *gin.Context) {
	names := entryFrom(c).Reel.Names()
	OK(c, gin.H{"names": names, "count": len(names)})
}

// PutNames replaces the candidate list. Blank entries are dropped.
func (h *ReelHandler) PutNames(c *gin.Context) {
	var req NamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err)
		return
	}

	names := lo.Compact(lo.Map(req.Names, func(n string, _ int) string {
		return strings.TrimSpace(n)
	}))

	entry := entryFrom(c)
	entry.Reel.SetNamesContext(c.Request.Context(), names)
	h.logger.Info().
		Str("reel_code", entry.Reel.Code()).
		Int("count", len(names)).
		Msg("Name list replaced")
	OK(c, gin.H{"names": entry.Reel.Names(), "count": len(names)})
}

// GetRemoveWinner returns the remove-winner flag.
func (h *ReelHandler) GetRemoveWinner(c *gin.Context) {
	OK(c, gin.H{"value": entryFrom(c).Reel.ShouldRemoveWinnerFromNameList()})
}

// PutRemoveWinner sets the remove-winner flag.
func (h *ReelHandler) PutRemoveWinner(c *gin.Context) {
	var req RemoveWinnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err)
		return
	}
	entry := entryFrom(c)
	entry.Reel.SetShouldRemoveWinnerFromNameList(*req.Value)
	OK(c, gin.H{"value": entry.Reel.ShouldRemoveWinnerFromNameList()})
}

// Spin runs one spin and answers once the winner is revealed. A spin that
// is already running yields 409. The write deadline is pushed back by the
// length of the animation.
func (h *ReelHandler) Spin(c *gin.Context) {
	entry := entryFrom(c)
	if timeout := h.app.config.Server.WriteTimeout; timeout > 0 {
		n := entry.Reel.Store().MaxReelItems()
		deadline := time.Now().Add(timeout + reel.AnimationDuration(n) + reel.GracePeriod)
		if err := setWriteDeadline(c, deadline); err != nil {
			h.logger.Warn().Err(err).Str("reel_code", entry.Reel.Code()).Msg("Failed to extend write deadline")
		}
	}

	res, err := entry.Reel.SpinResult(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}

	OK(c, SpinResponse{
		Result:     res,
		ReelCode:   entry.Reel.Code(),
		DurationMs: res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond).Milliseconds(),
	})
}

// GetState returns the current phase and the last result.
func (h *ReelHandler) GetState(c *gin.Context) {
	r := entryFrom(c).Reel
	OK(c, StateResponse{
		ReelCode:   r.Code(),
		State:      r.State(),
		Spinning:   r.Spinning(),
		NameCount:  len(r.Names()),
		LastResult: r.LastResult(),
	})
}
