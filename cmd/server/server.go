package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/chimera-protocol/internal/config"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/handlers/chimera/v1alpha1"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
	"github.com/KirkDiggler/chimera-protocol/internal/services/session"
)

var (
	grpcPort    int
	maxSessions int
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the Chimera Protocol gRPC server hosting game sessions.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides CHIMERA_GRPC_PORT)")
	serverCmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "Maximum concurrent sessions, 0 for unlimited")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if grpcPort > 0 {
		cfg.GRPCPort = grpcPort
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := buildDependencies(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	manager, err := session.NewManager(&session.Config{
		Maps:        deps.maps,
		Templates:   deps.templates,
		DM:          deps.dm,
		PlayerAI:    deps.player,
		Images:      deps.images,
		Prompts:     deps.prompts,
		Store:       deps.store,
		Clock:       deps.clock,
		IDGen:       idgen.NewUUID("session"),
		AutoPilot:   cfg.AutoPilot,
		AITimeout:   cfg.AITimeout,
		MaxSessions: maxSessions,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create session manager")
	}

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{SessionService: manager})
	if err != nil {
		return errors.Wrap(err, "failed to create session handler")
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	rpcLogger := interceptorLogger(logger)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(rpcLogger),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(rpcLogger),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	v1alpha1.RegisterSessionServiceServer(srv, handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("gRPC server starting", "port", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down gRPC server")
		healthServer.Shutdown()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			logger.Info("Server stopped gracefully")
		}

		manager.Shutdown(shutdownCtx)
		return nil
	case err := <-errChan:
		manager.Shutdown(context.Background())
		return err
	}
}

// interceptorLogger adapts slog to the grpc middleware logger
func interceptorLogger(l *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(level), msg, fields...)
	})
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
