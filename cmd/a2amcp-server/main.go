// A2AMCP server
// MCP over stdio for AI agents working the same project in parallel;
// shared state lives in Redis so agents survive server restarts.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitmind/a2amcp/internal/config"
	"github.com/splitmind/a2amcp/internal/coord"
	"github.com/splitmind/a2amcp/internal/store"
	redisstore "github.com/splitmind/a2amcp/internal/store/redis"
	"github.com/splitmind/a2amcp/internal/tools/a2a"
)

// Version is set by -ldflags at build time.
var Version = "dev"

func main() {
	// Handle CLI subcommands before starting the MCP server.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "status":
			runStatusCommand()
			return
		case "watch":
			runWatchCommand()
			return
		case "--version", "-v", "version":
			fmt.Println("a2amcp-server " + Version)
			return
		}
	}

	// Load config
	tmpLogger := log.New(os.Stderr, "[a2amcp] ", log.LstdFlags|log.Lshortfile)
	cfg := loadConfig(tmpLogger)

	// Set up logging
	logger := setupLogger(cfg.LogPath())
	logger.Println("Starting A2AMCP server...")
	logger.Printf("Log file: %s", cfg.LogPath())
	logger.Printf("Redis: %s", cfg.RedisURL)

	st, err := redisstore.Connect(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		logger.Fatalf("Redis connect: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	err = st.Ping(pingCtx)
	pingCancel()
	if err != nil {
		logger.Fatalf("Redis ping %s: %v", cfg.RedisURL, err)
	}

	svc := coord.NewService(st, cfg, logger)

	// Build the MCPServer
	hooks := &server.Hooks{}
	hooks.AddAfterCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest, result *mcp.CallToolResult) {
		// Log tool calls
		if message != nil {
			logger.Printf("Calling tool: %s", message.Params.Name)
		}
	})

	mcpServer := server.NewMCPServer(
		"a2amcp",
		Version,
		server.WithInstructions(a2a.InstructionsText()),
		server.WithToolHandlerMiddleware(a2a.Middleware(svc, logger)),
		server.WithHooks(hooks),
	)
	a2a.Register(mcpServer, svc, logger)

	// Ignore SIGHUP so the server keeps running when daemonized (nohup, launchd, etc.)
	signal.Ignore(syscall.SIGHUP)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Start the reaper to clean up agents whose heartbeats expired
	reaper := coord.NewReaper(svc, coord.WithReaperInterval(cfg.ReaperTick()))
	go reaper.Start(ctx)

	// Optional health endpoint for orchestrators that probe over HTTP
	healthShutdown := func() {}
	if cfg.HealthAddr != "" {
		healthShutdown = startHealthServer(cfg.HealthAddr, st, logger)
	}

	// Run stdio server in foreground (agents connect here)
	logger.Println("Stdio ready")
	stdioSrv := server.NewStdioServer(mcpServer)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Printf("Stdio server stopped: %v", err)
	}

	// Client disconnected -- shut everything down
	cancel()
	healthShutdown()
	reaper.Stop()

	if err := st.Close(); err != nil {
		logger.Printf("Warning: close store: %v", err)
	}
	logger.Println("Server stopped")
}

// startHealthServer serves the JSON health endpoint in the background and
// returns a shutdown function. Uses net.Listen to support port 0
// (auto-assign) for running multiple instances.
func startHealthServer(addr string, st store.Store, logger *log.Logger) func() {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatalf("Health listen: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		redisState := "connected"
		pingCtx, pingCancel := context.WithTimeout(r.Context(), 2*time.Second)
		if err := st.Ping(pingCtx); err != nil {
			redisState = "error"
		}
		pingCancel()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"a2amcp","redis":%q}`, redisState)
	})

	logger.Printf("Health endpoint on http://%s/health", ln.Addr())
	httpServer := &http.Server{Handler: mux}
	go func() {
		if err := httpServer.Serve(ln); err != http.ErrServerClosed {
			logger.Fatalf("Health server error: %v", err)
		}
	}()

	return func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Health shutdown error: %v", err)
		}
	}
}

// setupLogger creates a logger that writes to a log file and optionally stderr.
// When stderr is a terminal (interactive use), logs go to both stderr and the file.
// When stderr is redirected (daemon mode via nohup), logs go only to the file
// to avoid duplicate lines since nohup already redirects stderr to the log file.
// Stdout is never written to: it belongs to the MCP stdio transport.
func setupLogger(logFilePath string) *log.Logger {
	var writers []io.Writer

	stderrIsTerminal := false
	if info, err := os.Stderr.Stat(); err == nil {
		stderrIsTerminal = (info.Mode() & os.ModeCharDevice) != 0
	}

	hasLogFile := false
	lower := strings.ToLower(logFilePath)
	if lower != "none" && lower != "off" && logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err == nil {
			f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writers = append(writers, f)
				hasLogFile = true
			} else {
				fmt.Fprintf(os.Stderr, "[a2amcp] Warning: cannot open log file %s: %v\n", logFilePath, err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "[a2amcp] Warning: cannot create log dir %s: %v\n", filepath.Dir(logFilePath), err)
		}
	}

	// Add stderr if it's a terminal, or if there's no log file (always need at least one output).
	if stderrIsTerminal || !hasLogFile {
		writers = append(writers, os.Stderr)
	}

	return log.New(io.MultiWriter(writers...), "[a2amcp] ", log.LstdFlags|log.Lshortfile)
}

// loadConfig loads configuration from A2AMCP_CONFIG or defaults.
func loadConfig(logger *log.Logger) *config.Config {
	cfg, err := config.Load(os.Getenv("A2AMCP_CONFIG"))
	if err != nil {
		logger.Printf("Warning: %v, using defaults", err)
		cfg, _ = config.Load("") // pathless load cannot fail
	}
	return cfg
}

// runStatusCommand implements "a2amcp-server status [project]".
func runStatusCommand() {
	logger := log.New(os.Stderr, "", 0)
	cfg := loadConfig(logger)

	st, err := redisstore.Connect(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		fatal(fmt.Errorf("redis at %s: %w", cfg.RedisURL, err))
	}

	svc := coord.NewService(st, cfg, logger)

	var projects []string
	if len(os.Args) > 2 {
		projects = []string{os.Args[2]}
	} else {
		projects, err = svc.Projects(ctx)
		if err != nil {
			fatal(err)
		}
	}
	if len(projects) == 0 {
		fmt.Println("no active projects")
		return
	}

	for _, project := range projects {
		agents, err := svc.ListAgents(ctx, project)
		if err != nil {
			fatal(err)
		}
		locks, err := svc.LockedFiles(ctx, project)
		if err != nil {
			fatal(err)
		}
		interfaces, err := svc.ListInterfaces(ctx, project)
		if err != nil {
			fatal(err)
		}
		completed, err := svc.CompletedTasks(ctx, project)
		if err != nil {
			fatal(err)
		}

		fmt.Printf("%s: agents=%d locks=%d interfaces=%d completed=%d\n",
			project, len(agents), len(locks), len(interfaces), len(completed))
		names := make([]string, 0, len(agents))
		for name := range agents {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			a := agents[name]
			fmt.Printf("  %s  task=%s branch=%s status=%s\n", name, a.TaskID, a.Branch, a.Status)
		}
		for _, lf := range locks {
			fmt.Printf("  lock %s held by %s since %s\n", lf.FilePath, lf.Session, lf.LockedAt.Format(time.RFC3339))
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
