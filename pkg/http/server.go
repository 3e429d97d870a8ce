package http

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	http_router "github.com/lintang-b-s/Tollwise/pkg/http/router"
	"github.com/lintang-b-s/Tollwise/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Tollwise/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API, the websocket server and its proxy in the background. Wait returns their error.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	comparisonService controllers.ComparisonService,
	tollService controllers.TollService,

) (*Server, error) {
	config := http_server.Config{
		Port:          viper.GetInt("API_PORT"),
		WebsocketPort: viper.GetInt("WEBSOCKET_PORT"),
		ProxyPort:     viper.GetInt("PROXY_PORT"),
		Timeout:       viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(log)

	g, gctx := errgroup.WithContext(ctx)
	s.g = g

	g.Go(func() error {
		return server.Run(
			gctx, config, log,
			useRateLimit, comparisonService, tollService,
		)
	})

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}

// GracefulShutdown blocks until SIGINT or SIGTERM and returns the signal.
func GracefulShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}
