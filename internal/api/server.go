// Package api wires the gin router: resource handlers per §6, CORS and
// security-header middleware, and session-cookie authentication. Grounded
// in api/v1/server.go's NewServer + setupRoutes + handler construction
// pattern, generalized from fantasy-esports resources to this domain's
// regions/players/tournaments/merges/rankings/sessions.
package api

import (
	"net/http"

	"bracketrank/internal/alias"
	"bracketrank/internal/auth"
	"bracketrank/internal/config"
	"bracketrank/internal/live"
	"bracketrank/internal/merge"
	"bracketrank/internal/metrics"
	"bracketrank/internal/pending"
	"bracketrank/internal/players"
	"bracketrank/internal/ranking"
	"bracketrank/internal/store"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	router *gin.Engine
	store  store.Store
	config *config.Config
	live   *live.Manager
}

func NewServer(s store.Store, cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(securityHeaders())
	router.Use(corsFromPattern(cfg))

	srv := &Server{router: router, store: s, config: cfg, live: live.NewManager()}
	srv.live.Start()
	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	playersSvc := players.New(s.store)
	aliasSvc := alias.New(playersSvc)
	mergeSvc := merge.New(s.store)
	pendingSvc := pending.New(s.store, playersSvc, aliasSvc)
	rankingSvc := ranking.New(s.store)
	authSvc := auth.New(s.store, s.config.PBKDF2Iterations)

	regionH := NewRegionHandler(s.store)
	playerH := NewPlayerHandler(playersSvc)
	tournamentH := NewTournamentHandler(s.store, pendingSvc, s.live)
	pendingH := NewPendingTournamentHandler(pendingSvc, s.live)
	mergeH := NewMergeHandler(s.store, mergeSvc, s.live)
	rankingH := NewRankingHandler(rankingSvc, s.config, s.live)
	matchH := NewMatchHandler(s.store)
	sessionH := NewSessionHandler(authSvc, s.config)
	liveH := NewLiveHandler(s.live)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "bracketrank"})
	})
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.router.GET("/regions", regionH.List)

	s.router.PUT("/users/session", sessionH.Login)
	s.router.DELETE("/users/session", sessionH.Logout)
	s.router.GET("/users/session", sessionH.Whoami)

	region := s.router.Group("/:region")
	region.GET("/players", playerH.List)
	region.GET("/players/:id", playerH.Get)
	region.GET("/tournaments", tournamentH.List)
	region.GET("/tournaments/:id", tournamentH.Get)
	region.GET("/rankings", rankingH.Get)
	region.GET("/matches/:playerId", matchH.List)
	region.GET("/merges", mergeH.List)
	region.GET("/live", liveH.Subscribe)

	adminOnly := s.router.Group("/:region")
	adminOnly.Use(requireSession(authSvc, s.config.SessionCookieName), requireRegionAdmin())
	adminOnly.PUT("/players/:id", playerH.Update)
	adminOnly.POST("/tournaments", tournamentH.Create)
	adminOnly.PUT("/tournaments/:id", tournamentH.Update)
	adminOnly.DELETE("/tournaments/:id", tournamentH.Delete)
	adminOnly.PUT("/pending_tournaments/:id", pendingH.SetAliasMappings)
	adminOnly.POST("/tournaments/:id/finalize", tournamentH.Finalize)
	adminOnly.POST("/rankings", rankingH.Generate)
	adminOnly.PUT("/merges", mergeH.Create)
	adminOnly.DELETE("/merges/:id", mergeH.Undo)
}

// Start runs the HTTP server on addr. Matches the CLI contract in §6: the
// caller is expected to os.Exit non-zero on a returned error.
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
