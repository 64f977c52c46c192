// grpc — служебный gRPC-сервер auth-сервиса. Публичный API работает по HTTP;
// здесь живут только health-check (grpc.health.v1) и reflection для local/dev.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName — имя сервиса в health-статусах.
const ServiceName = "gamehub.auth"

// Options — параметры служебного сервера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Reflection включает gRPC reflection (только local/dev).
	Reflection bool
	// Metrics включает интерсепторы go-grpc-prometheus.
	Metrics bool
}

// Server — gRPC-сервер с health-сервисом.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// New собирает сервер. Начальный статус — NOT_SERVING до вызова SetServing(true).
func New(opts Options) *Server {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}

	unary := []grpc.UnaryServerInterceptor{
		Recover(lg),
		UnaryLogging(lg),
		WithTimeout(opts.Timeout),
	}
	stream := []grpc.StreamServerInterceptor{
		RecoverStream(lg),
	}

	if opts.Metrics {
		grpc_prometheus.EnableHandlingTimeHistogram()
		unary = append(unary, grpc_prometheus.UnaryServerInterceptor)
		stream = append(stream, grpc_prometheus.StreamServerInterceptor)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}

	if opts.Metrics {
		grpc_prometheus.Register(srv)
	}

	s := &Server{srv: srv, health: hs, log: lg}
	s.SetServing(false)

	return s
}

// SetServing переключает статус общего ("") и именованного сервиса.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Serve обслуживает lis до остановки. Остановка через Stop не считается ошибкой.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc_listen_start", slog.String("addr", lis.Addr().String()))

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}

// Stop переводит health в NOT_SERVING и делает GracefulStop; по истечении ctx — Stop.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("grpc_stopped")
	case <-ctx.Done():
		s.log.Warn("grpc_force_stop")
		s.srv.Stop()
	}
}
