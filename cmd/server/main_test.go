package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"market-card/internal/bot"
	"market-card/internal/config"
	"market-card/internal/domain"
	"market-card/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var router *gin.Engine
	restore := stubServerDeps(t, &router)
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}

	if router == nil {
		t.Fatal("router was not created")
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("unexpected health response: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/mcp", nil)
	router.ServeHTTP(w, req)
	if w.Code == http.StatusNotFound {
		t.Fatalf("expected /mcp to be mounted")
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func stubServerDeps(t *testing.T, router **gin.Engine) func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origSetupLogging := setupLoggingFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewService := newMarketServiceFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return errors.New("no .env") }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			Port:                  3000,
			BaseURL:               "http://localhost:3000",
			CardScale:             1,
			AssetsDir:             t.TempDir(),
			MCPHTTPEnabled:        true,
			MCPRequestTimeoutSecs: 1,
		}
	}
	setupLoggingFunc = func(string) io.Closer { return nopCloser{} }
	initRedisFunc = func(context.Context, string) (*redis.Client, error) { return nil, nil }
	initTracerFunc = func(ctx context.Context, name string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newMarketServiceFunc = func(tracer trace.Tracer, cfg *config.Config) *service.MarketService {
		return service.NewMarketService(tracer, stubMarketData{}, stubSentiment{}, nil, []string{"BTC"})
	}
	startTelegramBotFunc = func(string, *bot.MarketBot) (*tele.Bot, error) { return nil, nil }
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine {
		*router = gin.New()
		return *router
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		setupLoggingFunc = origSetupLogging
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newMarketServiceFunc = origNewService
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubMarketData struct{}

func (stubMarketData) FetchGlobalMetrics(ctx context.Context) (domain.GlobalMetrics, error) {
	return domain.GlobalMetrics{TotalMarketCap: 1e12, BTCDominance: 55, ETHDominance: 12}, nil
}

func (stubMarketData) FetchQuotes(ctx context.Context, symbols []string) ([]domain.Coin, error) {
	return []domain.Coin{{Symbol: "BTC", Name: "Bitcoin", Price: 1}}, nil
}

type stubSentiment struct{}

func (stubSentiment) FetchIndex(ctx context.Context) int { return 50 }
