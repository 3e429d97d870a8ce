package router

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/lintang-b-s/Tollwise/pkg/concurrent"
	"github.com/lintang-b-s/Tollwise/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/Tollwise/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/Tollwise/pkg/http/server"
	"github.com/mailru/easygo/netpoll"
	"github.com/spf13/viper"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "net/http/pprof"
)

type API struct {
	log    *zap.Logger
	hub    *controllers.Hub
	poller netpoll.Poller
	pool   *concurrent.Pool
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

func newCorsHandler() *cors.Cors {
	return cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})
}

func (api *API) middlewares(useRateLimit bool) alice.Chain {
	mwChain := []alice.Constructor{newCorsHandler().Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Labels}
	if useRateLimit {
		mwChain = append(mwChain, Limit)
	}
	return alice.New(mwChain...)
}

// Handler wires the REST routes, swagger and pprof behind the middleware chain.
func (api *API) Handler(useRateLimit bool, comparisonService controllers.ComparisonService,
	tollService controllers.TollService) http.Handler {
	router := httprouter.New()

	router.GET("/doc/*any", swaggerHandler)

	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	group := router_helper.NewRouteGroup(router, "/api")

	tollwiseRoutes := controllers.New(comparisonService, tollService, api.log)

	tollwiseRoutes.Routes(group)

	return api.middlewares(useRateLimit).Then(router)
}

//	@title			Tollwise API
//	@version		1.0
//	@description	Toll-aware route comparison: is the toll road worth it at your hourly wage?

//	@contact.name	Lintang Birda Saputra
//	@contact.url	_
//	@contact.email	lintang.birda.saputra@mail.ugm.ac.id

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	log *zap.Logger,

	useRateLimit bool,
	comparisonService controllers.ComparisonService,
	tollService controllers.TollService,
) error {
	log.Info("Run httprouter API")

	var (
		errChan      chan error = make(chan error, 1)
		errProxyChan chan error = make(chan error, 1)
		wsServer     *http.Server
	)

	go func() {
		api.handleWebsocket(ctx, config, comparisonService, errChan)
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", api.upstream("compare routes websocket", "tcp", "localhost"+":"+strconv.Itoa(config.WebsocketPort)))

	wsServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", config.ProxyPort),
		Handler: mux,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},

		ReadTimeout:       viper.GetDuration("HTTP_SERVER_READ_TIMEOUT"),
		WriteTimeout:      config.Timeout + viper.GetDuration("HTTP_SERVER_WRITE_TIMEOUT"),
		IdleTimeout:       viper.GetDuration("HTTP_SERVER_IDLE_TIMEOUT"),
		ReadHeaderTimeout: viper.GetDuration("HTTP_SERVER_READ_HEADER_TIMEOUT"),
	}

	go func() {
		api.log.Info(fmt.Sprintf("WebSocket proxy running on port %d", config.ProxyPort))
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errProxyChan <- err
		}
	}()

	srv := http_server.New(ctx, api.Handler(useRateLimit, comparisonService, tollService), config, false)
	log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		log.Error("Websocket error, shutting down server", zap.Error(err))
		_ = srv.Shutdown(context.Background())
		_ = wsServer.Shutdown(context.Background())
		return err
	case err := <-errProxyChan:
		log.Error("Websocket proxy error, shutting down server", zap.Error(err))
		_ = srv.Shutdown(context.Background())
		_ = wsServer.Shutdown(context.Background())
		return err
	case err := <-serverErr:
		log.Info("HTTP server stopped", zap.Error(err))
		_ = wsServer.Shutdown(context.Background())
		return err

	case <-ctx.Done():
		log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		_ = wsServer.Shutdown(context.Background())
		return ctx.Err()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
