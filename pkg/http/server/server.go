package http_server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

const timeoutBody = `{"error":{"code":"Service Unavailable","message":"request timed out"}}`

type Config struct {
	Port          int
	WebsocketPort int
	ProxyPort     int
	Timeout       time.Duration
}

// New builds the *http.Server for the API port, or the websocket port when websocket is set.
// Handler timeouts come from the HTTP_SERVER_* keys; writes get the request timeout on top.
func New(ctx context.Context, handler http.Handler, config Config, websocket bool) *http.Server {
	port := config.Port
	if websocket {
		port = config.WebsocketPort
	}

	if config.Timeout > 0 {
		handler = http.TimeoutHandler(handler, config.Timeout, timeoutBody)
	}

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},

		ReadTimeout:       viper.GetDuration("HTTP_SERVER_READ_TIMEOUT"),
		WriteTimeout:      config.Timeout + viper.GetDuration("HTTP_SERVER_WRITE_TIMEOUT"),
		IdleTimeout:       viper.GetDuration("HTTP_SERVER_IDLE_TIMEOUT"),
		ReadHeaderTimeout: viper.GetDuration("HTTP_SERVER_READ_HEADER_TIMEOUT"),
	}
}
