package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"market-card/internal/config"
	"market-card/internal/service"
	"market-card/internal/tui"
	"market-card/pkg/logging"
	"market-card/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	setupLoggingFunc     = logging.Setup
	initTracerFunc       = tracing.InitTracer
	newMarketServiceFunc = service.NewMarketServiceFromConfig
	newWishServerFunc    = wish.NewServer
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	if err := loadEnvFunc(); err != nil {
		log.Println("No .env file loaded")
	}
	cfg := loadConfigFunc()
	defer setupLoggingFunc(cfg.LogFile).Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName+"-ssh")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	marketService := newMarketServiceFunc(tracer, cfg)

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		authOption(cfg.SSHAuthorizedKeys),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewModel(marketService)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

// authOption restricts logins to an authorized_keys file when one is
// configured; otherwise any public key is accepted and its fingerprint logged.
func authOption(authorizedKeysPath string) ssh.Option {
	if authorizedKeysPath != "" {
		return wish.WithAuthorizedKeys(authorizedKeysPath)
	}
	return wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
		log.Printf("SSH session: user=%s fingerprint=%s", ctx.User(), gossh.FingerprintSHA256(key))
		return true
	})
}
