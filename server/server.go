package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/auth"
	"github.com/Digital-Creators-Team/lucky-draw-module/config"
	"github.com/Digital-Creators-Team/lucky-draw-module/game"
	"github.com/Digital-Creators-Team/lucky-draw-module/middleware"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// App hosts the reels of a Registry behind an HTTP API.
type App struct {
	engine         *gin.Engine
	config         *config.Config
	logger         zerolog.Logger
	registry       *game.Registry
	httpServer     *http.Server
	onShutdown     []func()
	reelHandler    *ReelHandler
	streamHandler  *StreamHandler
	nameFeedCancel context.CancelFunc
}

// Options holds server configuration options
type Options struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *game.Registry
}

// NameUpdate replaces the name list of one reel from an external feed.
type NameUpdate struct {
	ReelCode   string
	Names      []string
	OperatorID string
}

// New creates the application. Routes are added by the Register* methods.
func New(opts Options) *App {
	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := opts.Registry
	if registry == nil {
		registry = game.NewRegistry(game.BuildOptions{Logger: opts.Logger})
	}

	app := &App{
		engine:   gin.New(),
		config:   opts.Config,
		logger:   opts.Logger,
		registry: registry,
	}
	app.reelHandler = NewReelHandler(app)
	app.streamHandler = NewStreamHandler(app)
	return app
}

// UseCommonMiddlewares adds common middlewares to the application
func (a *App) UseCommonMiddlewares() {
	// Recovery middleware (must be first)
	a.engine.Use(middleware.Recovery(a.logger))
	a.engine.Use(middleware.TraceID())
	a.engine.Use(middleware.Logging(a.logger))

	if a.config.Server.EnableCORS {
		a.engine.Use(middleware.CORS())
	}
}

// RegisterHealthCheck adds health check endpoints
func (a *App) RegisterHealthCheck() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/api/health", a.healthCheck)
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now(),
		"environment": a.config.Environment,
		"reels":       a.registry.Codes(),
	})
}

// RegisterReelRoutes registers the reel API.
//
// Routes registered:
//   - GET  /api/reels                       -> ReelHandler.List
//   - GET  /api/reels/{code}/config         -> ReelHandler.GetConfig
//   - GET  /api/reels/{code}/odds           -> ReelHandler.GetOdds
//   - GET  /api/reels/{code}/names          -> ReelHandler.GetNames
//   - PUT  /api/reels/{code}/names          -> ReelHandler.PutNames (auth)
//   - GET  /api/reels/{code}/remove-winner  -> ReelHandler.GetRemoveWinner
//   - PUT  /api/reels/{code}/remove-winner  -> ReelHandler.PutRemoveWinner (auth)
//   - POST /api/reels/{code}/spin           -> ReelHandler.Spin (auth)
//   - GET  /api/reels/{code}/state          -> ReelHandler.GetState
//   - GET  /api/reels/{code}/stream         -> StreamHandler.StreamWebSocket
//   - GET  /api/reels/{code}/stream/sse     -> StreamHandler.StreamSSE
//
// Mutating routes require a JWT when jwt.secret is set.
func (a *App) RegisterReelRoutes() {
	reels := a.engine.Group("/api/reels")
	reels.GET("", a.reelHandler.List)

	byCode := reels.Group("/:code", a.reelHandler.ResolveReel)
	{
		byCode.GET("/config", a.reelHandler.GetConfig)
		byCode.GET("/odds", a.reelHandler.GetOdds)
		byCode.GET("/names", a.reelHandler.GetNames)
		byCode.GET("/remove-winner", a.reelHandler.GetRemoveWinner)
		byCode.GET("/state", a.reelHandler.GetState)
		byCode.GET("/stream", a.streamHandler.StreamWebSocket)
		byCode.GET("/stream/sse", a.streamHandler.StreamSSE)

		mutating := byCode.Group("")
		if a.config.JWT.Secret != "" {
			mutating.Use(auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
		} else {
			a.logger.Warn().Msg("jwt.secret not set, mutating reel routes are unauthenticated")
		}
		mutating.PUT("/names", a.reelHandler.PutNames)
		mutating.PUT("/remove-winner", a.reelHandler.PutRemoveWinner)
		mutating.POST("/spin", a.reelHandler.Spin)
	}

	a.logger.Info().
		Strs("reels", a.registry.Codes()).
		Msg("Reel routes registered: /api/reels")
}

// AttachNameFeed applies name list updates from feed (e.g. the Kafka
// command consumer). Pass nil to detach.
func (a *App) AttachNameFeed(feed <-chan NameUpdate) {
	if a.nameFeedCancel != nil {
		a.nameFeedCancel()
		a.nameFeedCancel = nil
	}
	if feed == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.nameFeedCancel = cancel
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-feed:
				if !ok {
					return
				}
				a.applyNameUpdate(ctx, upd)
			}
		}
	}()
}

func (a *App) applyNameUpdate(ctx context.Context, upd NameUpdate) {
	entry, ok := a.registry.Get(upd.ReelCode)
	if !ok {
		a.logger.Warn().Str("reel_code", upd.ReelCode).Msg("Name update for unknown reel")
		return
	}
	if upd.OperatorID != "" {
		ctx = reel.WithOperator(ctx, reel.NewOperator(upd.OperatorID, ""))
	}
	entry.Reel.SetNamesContext(ctx, upd.Names)
	a.logger.Info().
		Str("reel_code", upd.ReelCode).
		Int("count", len(upd.Names)).
		Msg("Name list replaced from feed")
}

type responseControllerKey struct{}

// Handler returns the engine as served by Run. Handlers behind it can move
// the write deadline of their connection.
func (a *App) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), responseControllerKey{}, http.NewResponseController(w))
		a.engine.ServeHTTP(w, r.WithContext(ctx))
	})
}

// setWriteDeadline moves the write deadline of c's connection. The zero time
// removes it.
func setWriteDeadline(c *gin.Context, deadline time.Time) error {
	rc, ok := c.Request.Context().Value(responseControllerKey{}).(*http.ResponseController)
	if !ok {
		rc = http.NewResponseController(c.Writer)
	}
	return rc.SetWriteDeadline(deadline)
}

// Router returns the Gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// Registry returns the hosted reels.
func (a *App) Registry() *game.Registry {
	return a.registry
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *App) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.Handler(),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunWithContext(ctx)
}

// RunWithContext starts the HTTP server and shuts it down when ctx is done.
func (a *App) RunWithContext(ctx context.Context) error {
	a.httpServer = a.newHTTPServer()

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Strs("reels", a.registry.Codes()).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.AttachNameFeed(nil)

	// Let in-flight HTTP spins finish before the providers go away.
	err := a.httpServer.Shutdown(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
	}

	for _, fn := range a.onShutdown {
		fn()
	}

	a.logger.Info().Msg("Server shutdown complete")
	return err
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}
