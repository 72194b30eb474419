package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-card/internal/bot"
	"market-card/internal/cache"
	"market-card/internal/config"
	"market-card/internal/handler"
	"market-card/internal/mcpserver"
	"market-card/internal/render"
	"market-card/internal/service"
	"market-card/pkg/logging"
	"market-card/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	tele "gopkg.in/telebot.v3"

	_ "market-card/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	setupLoggingFunc       = logging.Setup
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newMarketServiceFunc   = service.NewMarketServiceFromConfig
	newRendererFunc        = render.New
	startTelegramBotFunc   = bot.StartTelegramBot
	stopTelegramBotFunc    = func(b *tele.Bot) { b.Stop() }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Market Card API
// @version         1.0
// @description     Daily crypto market overview card: HTML, PNG and JSON renditions.

// @host      localhost:3000
// @BasePath  /
func main() {
	if err := loadEnvFunc(); err != nil {
		log.Println("No .env file loaded")
	}

	cfg := loadConfigFunc()
	logCloser := setupLoggingFunc(cfg.LogFile)
	defer func() {
		if err := logCloser.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Redis only backs the bot cooldown; without it the bot is unthrottled.
	var cooldown *cache.Cooldown
	redisClient, err := initRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: %v, bot cooldown disabled", err)
	}
	if redisClient != nil {
		defer closeQuietly(redisClient)
		cooldown = cache.NewCooldown(tracer, redisClient, time.Duration(cfg.BotCooldownSecs)*time.Second)
	}

	marketService := newMarketServiceFunc(tracer, cfg)
	renderer, err := newRendererFunc("/assets", cfg.CardScale)
	if err != nil {
		log.Fatalf("failed to initialize card renderer: %v", err)
	}

	// Start Telegram bot
	tgBot, err := startTelegramBotFunc(cfg.TelegramBotToken, bot.NewMarketBot(tracer, marketService, renderer, cooldown))
	if err != nil {
		log.Printf("Telegram bot disabled: %v", err)
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, marketService, renderer, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))

	h.RegisterRoutes(r)
	r.Static("/assets", cfg.AssetsDir)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.MCPHTTPEnabled {
		mcpServer := mcpserver.New(tracer, marketService, renderer, time.Duration(cfg.MCPRequestTimeoutSecs)*time.Second)
		r.Any("/mcp", handler.APIKeyAuth(cfg.APIKey), gin.WrapH(mcpserver.HTTPHandler(mcpServer)))
		log.Println("MCP streamable HTTP endpoint mounted at /mcp")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Printf("HTTP on :%d  •  Preview: %s/preview", cfg.Port, cfg.BaseURL)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	if tgBot != nil {
		stopTelegramBotFunc(tgBot)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("close: %v", err)
	}
}
