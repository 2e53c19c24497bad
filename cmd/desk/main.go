package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-tours/internal/server"
)

// Options defines all CLI flags and env vars for the desk server.
// Flags: --host, --port, --planner-url, --planner-timeout, --data-dir, --web-dir, --log-level, --journal
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_PLANNER_URL, ...
type Options struct {
	Host           string `doc:"Host to bind to" default:"0.0.0.0"`
	Port           int    `doc:"Port to listen on" short:"p" default:"8087"`
	PlannerURL     string `doc:"Base URL of the planning service" default:"http://localhost:8080"`
	PlannerTimeout int    `doc:"Timeout for one planner call in seconds" default:"60"`
	DataDir        string `doc:"Directory for the journal and remembered paths" default:".data"`
	WebDir         string `doc:"Path to web/ directory" default:"web"`
	LogLevel       string `doc:"trace, debug, info, warn, error" default:"info"`
	Journal        bool   `doc:"Record edit attempts in DuckDB" default:"true"`
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:           opts.Host,
		Port:           fmt.Sprintf("%d", opts.Port),
		PlannerURL:     opts.PlannerURL,
		PlannerTimeout: time.Duration(opts.PlannerTimeout) * time.Second,
		DataDir:        opts.DataDir,
		WebDir:         opts.WebDir,
		Journal:        opts.Journal,
		Logger:         server.NewLogger(opts.LogLevel, nil),
	})
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := server.NewLogger(opts.LogLevel, nil)
		var httpServer *http.Server

		hooks.OnStart(func() {
			srv := newServer(opts)
			defer srv.Close()

			if err := srv.Start(context.Background()); err != nil {
				log.Warn().Err(err).Str("planner", opts.PlannerURL).Msg("initial load failed")
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			httpServer = &http.Server{Addr: addr, Handler: srv}

			log.Info().
				Str("addr", addr).
				Str("planner", opts.PlannerURL).
				Str("data", opts.DataDir).
				Msg("desk listening; page at /desk, docs at /docs, OpenAPI at /openapi.json")

			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			if httpServer == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(ctx)
		})
	})

	cli.Root().Use = "desk"
	cli.Root().Short = "Planner desk for interactive courier tour editing"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.Journal = false
			srv := newServer(opts)
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Run()
}
