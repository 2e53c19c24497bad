// Package server is the composition root of the planner desk.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-tours/internal/api"
	"github.com/joeblew999/plat-tours/internal/api/ui"
	"github.com/joeblew999/plat-tours/internal/db"
	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/humastar"
	"github.com/joeblew999/plat-tours/internal/metrics"
	"github.com/joeblew999/plat-tours/internal/planner"
	"github.com/joeblew999/plat-tours/internal/service"
	"github.com/joeblew999/plat-tours/internal/templates"
)

const version = "0.1.0"

// Config holds the server configuration.
type Config struct {
	Host            string
	Port            string
	PlannerURL      string
	PlannerTimeout  time.Duration
	DataDir         string
	WebDir          string // Path to web/ directory for the page and templates
	Journal         bool
	DefaultDuration time.Duration
	Logger          zerolog.Logger

	// Planner replaces the HTTP planner client, for tests.
	Planner editor.Planner
}

// Server is the planner desk HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	log      zerolog.Logger
	metrics  *metrics.Metrics
	db       *sql.DB
	journal  *db.Journal
	bus      *service.EventBus
	ctl      *editor.Controller
	renderer *templates.Renderer
}

// New creates a desk server. A journal that cannot be opened is logged and
// skipped; the desk works without it.
func New(cfg Config) *Server {
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 5 * time.Minute
	}
	log := cfg.Logger.With().Str("component", "server").Logger()
	m := metrics.New()

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-tours API", version)
	humaConfig.Info.Description = "Planner desk: interactive editing of courier tours against a remote planning service."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}

	s := &Server{
		config:  cfg,
		mux:     mux,
		log:     log,
		metrics: m,
		bus:     service.NewEventBus(),
	}
	var links humastar.Links
	humaConfig.Transformers = append(humaConfig.Transformers, humastar.LinkTransformer(func() humastar.Links { return links }))
	s.humaAPI = humago.New(mux, humaConfig)

	if cfg.Journal {
		s.openJournal()
	}

	p := cfg.Planner
	if p == nil {
		p = planner.New(cfg.PlannerURL,
			planner.WithHTTPClient(&http.Client{Timeout: cfg.PlannerTimeout}),
			planner.WithLogger(cfg.Logger.With().Str("component", "planner").Logger()),
			planner.WithObserver(m),
		)
	}

	ctlCfg := editor.Config{
		Planner:         p,
		Logger:          cfg.Logger,
		Bus:             s.bus,
		Paths:           service.NewPathStore(cfg.DataDir),
		Metrics:         m,
		DefaultDuration: cfg.DefaultDuration,
	}
	if s.journal != nil {
		ctlCfg.Journal = s.journal
	}
	s.ctl = editor.New(ctlCfg)

	// Initialize template renderer for the Datastar handlers
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			s.renderer = r
			log.Info().Str("dir", fragmentsDir).Msg("loaded fragment templates")
		} else {
			log.Warn().Err(err).Str("dir", fragmentsDir).Msg("fragment templates unavailable")
		}
	}

	s.routes()
	links = api.Links(s.humaAPI)
	s.handler = s.middlewares(mux)
	return s
}

func (s *Server) openJournal() {
	conn, err := db.Open(db.Config{DataDir: s.config.DataDir, DBName: "journal"})
	if err != nil {
		s.log.Warn().Err(err).Msg("journal disabled")
		return
	}
	j, err := db.NewJournal(context.Background(), conn)
	if err != nil {
		conn.Close()
		s.log.Warn().Err(err).Msg("journal disabled")
		return
	}
	s.db = conn
	s.journal = j
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Controller returns the editing session.
func (s *Server) Controller() *editor.Controller {
	return s.ctl
}

// Start loads the planner state. A failure is shown in the notification
// channel and returned; the desk keeps serving so the operator can retry.
func (s *Server) Start(ctx context.Context) error {
	return s.ctl.Refresh(ctx)
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.ctl, s.config.PlannerURL, version))
	huma.AutoRegister(s.humaAPI, api.NewInfoHandler(version, s.config.DataDir, s.config.PlannerURL, s.journal != nil))
	var journal api.JournalReader
	if s.journal != nil {
		journal = s.journal
	}
	huma.AutoRegister(s.humaAPI, api.NewJournalHandler(journal))

	// Register desk SSE routes using Huma + Datastar SDK
	if s.renderer != nil {
		huma.AutoRegister(s.humaAPI, ui.NewEventHandler(s.ctl, s.bus, s.renderer))
		huma.AutoRegister(s.humaAPI, ui.NewActionHandler(s.ctl, s.renderer))
	}

	s.mux.Handle("/metrics", s.metrics.Handler())

	// Static files and the desk page
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	s.mux.HandleFunc("/desk", s.handleDesk)
	s.mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/desk", http.StatusFound)
	})
}

func (s *Server) handleDesk(w http.ResponseWriter, r *http.Request) {
	if s.config.WebDir == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.config.WebDir, "templates", "desk.html"))
}
