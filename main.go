// Command micromouse runs the micromouse trial server.
//
// Commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server, reusing a running API server or starting
//     an internal one
//  3. "run" plays one trial headless and prints the result
//
// Global flags control host/port, the maze and session directories and debug
// logging. Every flag can also be set through its environment variable, and a
// .env file in the working directory is loaded first. The server command can
// publish itself through an ngrok tunnel.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/micromouse/api"
	"github.com/wricardo/micromouse/game/config"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
	"github.com/wricardo/micromouse/game/session"
	"github.com/wricardo/micromouse/transport/mcp"
	"github.com/wricardo/micromouse/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Micromouse Trial Server"
)

var logger = log15.New("module", "main")

// appConfig is the resolved set of global flags
type appConfig struct {
	Host        string
	Port        int
	ConfigDir   string
	SessionsDir string
	SessionTTL  time.Duration
	Debug       bool
}

func (c appConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func configFromCommand(cmd *cli.Command) appConfig {
	return appConfig{
		Host:        cmd.String("host"),
		Port:        cmd.Int("port"),
		ConfigDir:   cmd.String("config-dir"),
		SessionsDir: cmd.String("sessions-dir"),
		SessionTTL:  cmd.Duration("session-ttl"),
		Debug:       cmd.Bool("debug"),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "micromouse",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing maze files", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for persisted sessions", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "evict sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", Sources: cli.EnvVars("DEBUG")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runHTTPServer(ctx, configFromCommand(cmd), ngrokSettings{})
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
					&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tunnel := ngrokSettings{
						Enabled:   cmd.Bool("ngrok"),
						AuthToken: cmd.String("ngrok-auth"),
						Domain:    cmd.String("ngrok-domain"),
					}
					return runHTTPServer(ctx, configFromCommand(cmd), tunnel)
				},
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server backed by the REST API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, configFromCommand(cmd))
				},
			},
			{
				Name:  "run",
				Usage: "play one trial headless and print the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "maze", Usage: "maze config ID (defaults to the default maze)"},
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every turn"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := configFromCommand(cmd)
					return runTrial(cmd.Root().Writer, cfg.ConfigDir, cmd.String("maze"), cmd.Bool("verbose"))
				},
			},
		},
	}
}

func main() {
	loadDotEnv()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Crit("exiting", "err", err)
		os.Exit(1)
	}
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("error loading .env file", "err", err)
		}
		return
	}
	logger.Info("loaded environment variables from .env file")
}

func setupLogging(debug bool) {
	level := log15.LvlInfo
	if debug {
		level = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(level, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
}

// services bundles what the commands share
type services struct {
	trials      service.TrialService
	sessions    *session.Manager
	persistence *session.FilePersistence
}

// initializeServices wires the config manager, session persistence and the
// trial service, and loads persisted sessions
func initializeServices(cfg appConfig) (*services, error) {
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(cfg.SessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", "err", err)
	}

	return &services{
		trials:      service.NewTrialService(sessionManager, configManager),
		sessions:    sessionManager,
		persistence: persistence,
	}, nil
}

// start launches the background maintenance loops for the lifetime of ctx
func (s *services) start(ctx context.Context, ttl time.Duration) {
	s.sessions.StartCleanup(ctx, time.Hour, ttl)
	go filesystemSyncRoutine(ctx, s.sessions, s.persistence, 5*time.Second)
}

// filesystemSyncRoutine drops sessions from memory once their file is gone
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncWithFilesystem(manager, persistence)
		}
	}
}

func syncWithFilesystem(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Info("pruned session from memory", "session", sess.ID, "reason", "file deleted")
		}
	}
	return pruned
}

// newMCPHandler serves single JSON-RPC messages for the MCP proxy over HTTP
func newMCPHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

type ngrokSettings struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp endpoint until
// the process is signaled
func runHTTPServer(ctx context.Context, cfg appConfig, tunnel ngrokSettings) error {
	svc, err := initializeServices(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc.start(ctx, cfg.SessionTTL)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := cfg.addr()
	mcpClient := mcp.NewClient("http://" + addr)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(svc.trials, hub))
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server listening", "addr", addr,
			"api", "http://"+addr+"/api",
			"ws", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if tunnel.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, tunnel, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
	}
	if err := svc.sessions.SaveAllSessions(); err != nil {
		logger.Error("failed to save sessions on shutdown", "err", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

func runNgrokTunnel(ctx context.Context, settings ngrokSettings, handler http.Handler) {
	if settings.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var endpoint ngrokConfig.Tunnel
	if settings.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
		logger.Info("using custom ngrok domain", "domain", settings.Domain)
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "err", err)
		return
	}
	url := tun.URL()
	logger.Info("ngrok tunnel established", "url", url,
		"api", url+"/api", "ws", url+"/ws?session=<session_id>", "mcp", url+"/mcp")

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "err", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", "err", err)
	}
	logger.Info("ngrok tunnel closed")
}

// runStdioMCP serves MCP over stdio. It reuses an API server already
// listening on the configured address, or starts an internal one on a
// random loopback port.
func runStdioMCP(ctx context.Context, cfg appConfig) error {
	externalURL := "http://" + cfg.addr()
	logger.Info("checking for external API server", "url", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Info("external API server found, using it for MCP", "url", externalURL)
	} else {
		logger.Info("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(cfg)
		if err != nil {
			return err
		}
		svc.start(ctx, cfg.SessionTTL)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc.trials, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "err", err)
			}
		}()
		defer httpServer.Close()
		defer svc.sessions.SaveAllSessions()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("internal HTTP server started", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runTrial plays a whole trial on one maze without any server
func runTrial(w io.Writer, configDir, mazeID string, verbose bool) error {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	mazeConfig := configManager.GetDefault()
	if mazeID != "" {
		if mazeConfig, err = configManager.LoadConfig(mazeID); err != nil {
			return err
		}
	}

	trial, err := engine.NewEngine(mazeConfig)
	if err != nil {
		return err
	}

	for !trial.IsFinished() {
		results, err := trial.Run(0)
		if err != nil {
			return err
		}
		if verbose {
			for _, r := range results {
				e := r.Entry
				fmt.Fprintf(w, "run %d turn %3d: sensors %v -> %s, %s -> %s\n",
					e.Run, e.Turn, e.Sensors, e.Decision, e.From.Position, e.To.Position)
			}
		}
	}

	state := trial.GetState()
	fmt.Fprintf(w, "maze %s (%dx%d): %s\n", mazeConfig.Name, state.Dim, state.Dim, state.Status)
	fmt.Fprintf(w, "run 0: %d turns\n", state.RunTurns[0])
	fmt.Fprintf(w, "run 1: %d turns\n", state.RunTurns[1])
	fmt.Fprintf(w, "score %.3f\n", state.Score)
	if route, ok := trial.GetPolicy(); ok {
		fmt.Fprintf(w, "route: %d moves\n", len(route))
	}
	if state.Message != "" {
		fmt.Fprintf(w, "%s\n", state.Message)
	}
	for _, line := range trial.RenderKnownMap() {
		fmt.Fprintln(w, line)
	}
	return nil
}
