package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"market-card/internal/config"
	"market-card/internal/mcpserver"
	"market-card/internal/render"
	"market-card/internal/service"
	"market-card/pkg/logging"
	"market-card/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	setupLoggingFunc     = logging.Setup
	initTracerFunc       = tracing.InitTracer
	newMarketServiceFunc = service.NewMarketServiceFromConfig
	newRendererFunc      = render.New
	runStdioFunc         = func(ctx context.Context, server *mcp.Server) error {
		return server.Run(ctx, &mcp.StdioTransport{})
	}
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify      = signal.Notify
)

func main() {
	if err := loadEnvFunc(); err != nil {
		log.Println("No .env file loaded")
	}
	cfg := loadConfigFunc()
	defer setupLoggingFunc(cfg.LogFile).Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName+"-mcp")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	marketService := newMarketServiceFunc(tracer, cfg)
	renderer, err := newRendererFunc("/assets", cfg.CardScale)
	if err != nil {
		log.Fatalf("failed to initialize card renderer: %v", err)
	}
	server := mcpserver.New(tracer, marketService, renderer, time.Duration(cfg.MCPRequestTimeoutSecs)*time.Second)

	if err := run(ctx, cfg, server); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	log.Println("MCP server exited")
}

func run(ctx context.Context, cfg *config.Config, server *mcp.Server) error {
	if cfg.MCPTransport != "http" {
		log.Println("MCP server running on stdio")
		err := runStdioFunc(ctx, server)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	addr := net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort))
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.BearerAuth(cfg.MCPAuthToken, mcpserver.HTTPHandler(server)))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("MCP streamable HTTP listening on http://%s/mcp", addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return shutdownHTTPServerFunc(srv, shutdownCtx)
}
