// @title        ordenes-pos terminal API
// @version      1.0
// @description  Local API of a restaurant POS terminal: menu, basket, order list.
// @BasePath     /
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
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/ordenes-pos/internal/config"
	"github.com/MikeMC777/ordenes-pos/internal/fakeapi"
	"github.com/MikeMC777/ordenes-pos/internal/menu"
	"github.com/MikeMC777/ordenes-pos/internal/order"
	"github.com/MikeMC777/ordenes-pos/internal/push"
	"github.com/MikeMC777/ordenes-pos/internal/terminal"
)

var rootCmd = &cobra.Command{
	Use:   "pos-terminal",
	Short: "Restaurant POS terminal core",
	Long:  `pos-terminal keeps a basket and a live order list in sync with the order service and exposes them over a local HTTP API.`,
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the terminal and its local API (default)",
	RunE:  runServe,
}

var fakeBackendCmd = &cobra.Command{
	Use:   "fake-backend",
	Short: "Serve an in-memory order service for local development",
	RunE:  runFakeBackend,
}

func init() {
	fakeBackendCmd.Flags().Bool("demo", true, "seed a demo menu and tables")
	rootCmd.AddCommand(serveCmd, fakeBackendCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal order.Journal
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		j := order.NewPGJournal(pool)
		if err := j.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("journal schema: %w", err)
		}
		journal = j
		log.Printf("[journal] change journal enabled")
	}

	notes := terminal.NewLogNotifier()
	api := order.NewClient(cfg.APIBaseURL, order.StaticToken(cfg.AccessToken))
	term := terminal.New(api, terminal.Options{
		PageSize:             cfg.PageSize,
		SubmitGuard:          cfg.SubmitGuard,
		RefetchAfterMutation: cfg.RefetchAfterMutation,
		Notifier:             notes,
		Journal:              journal,
	})

	hs := health.NewServer()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		_ = term.Run(ctx)
		hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}()

	go warmUp(ctx, term, cfg.PageSize)

	if src := pushSource(cfg); src != nil {
		go func() {
			err := push.Run(ctx, src, term.HandleEvent, 2*time.Second)
			if errors.Is(err, order.ErrUnauthorized) {
				notes.SessionExpired()
			}
		}()
	}

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", cfg.GRPCAddr, err)
	}
	go func() {
		log.Printf("pos-terminal gRPC health on %s", cfg.GRPCAddr)
		if err := gs.Serve(lis); err != nil {
			log.Printf("[grpc] serve: %v", err)
		}
	}()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: newRouter(term, notes)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		gs.GracefulStop()
	}()

	log.Printf("pos-terminal listening on %s (order service %s)", cfg.HTTPAddr, cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-loopDone
	return nil
}

// warmUp loads what the order screen needs. Failures were already reported
// to the notifier.
func warmUp(ctx context.Context, term *terminal.Terminal, pageSize int) {
	if _, err := term.RefreshMenu(ctx); err != nil {
		log.Printf("[terminal] warm-up menu: %v", err)
	}
	if _, err := term.RefreshTables(ctx); err != nil {
		log.Printf("[terminal] warm-up tables: %v", err)
	}
	if _, err := term.ResetAndLoadFirstPage(ctx, pageSize); err != nil {
		log.Printf("[terminal] warm-up orders: %v", err)
	}
}

func pushSource(cfg config.Config) push.Source {
	switch cfg.PushMode {
	case config.PushWS:
		return push.NewWebSocketSource(cfg.PushWSURL, order.StaticToken(cfg.AccessToken))
	case config.PushAMQP:
		return push.NewAMQPSource(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	}
	return nil
}

func runFakeBackend(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	fake := fakeapi.New(cfg.AccessToken)
	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		seedDemo(fake)
	}
	log.Printf("fake order service listening on %s", cfg.FakeAddr)
	return http.ListenAndServe(cfg.FakeAddr, fake.Router())
}

func seedDemo(fake *fakeapi.Server) {
	fake.SeedMenu(
		menu.MenuItem{ID: 1, Name: "Pho bo", Price: decimal.RequireFromString("65000"), IsAvailable: true},
		menu.MenuItem{ID: 2, Name: "Bun cha", Price: decimal.RequireFromString("55000"), IsAvailable: true},
		menu.MenuItem{ID: 3, Name: "Banh mi", Price: decimal.RequireFromString("30000"), IsAvailable: true},
		menu.MenuItem{ID: 7, Name: "Iced tea", Price: decimal.RequireFromString("10000"), IsAvailable: true},
		menu.MenuItem{ID: 9, Name: "Egg coffee", Price: decimal.RequireFromString("45000"), IsAvailable: false},
	)
	for id := 1; id <= 8; id++ {
		fake.SeedTables(menu.Table{ID: id, IsAvailable: true})
	}
}
