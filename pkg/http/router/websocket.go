package router

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gobwas/ws"
	"github.com/lintang-b-s/Tollwise/pkg/concurrent"
	"github.com/lintang-b-s/Tollwise/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Tollwise/pkg/http/server"
	"github.com/mailru/easygo/netpoll"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultWebsocketWorkers = 16
	defaultWebsocketQueue   = 64
)

func (api *API) handleWebsocket(ctx context.Context, config http_server.Config,
	comparisonService controllers.ComparisonService, errChan chan error,
) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", config.WebsocketPort))
	if err != nil {
		errChan <- err
		return
	}
	api.log.Info(fmt.Sprintf("compare routes websocket API run on port %d", config.WebsocketPort))

	acceptDesc, err := netpoll.HandleListener(ln, netpoll.EventRead|netpoll.EventOneShot)
	if err != nil {
		ln.Close()
		errChan <- err
		return
	}

	api.poller, err = netpoll.New(nil)
	if err != nil {
		ln.Close()
		errChan <- err
		return
	}

	workers := viper.GetInt("WEBSOCKET_WORKERS")
	if workers <= 0 {
		workers = defaultWebsocketWorkers
	}
	api.pool = concurrent.NewPool(workers, defaultWebsocketQueue)

	api.hub = controllers.NewHub(api.pool, comparisonService, api.log)

	api.pool.Spawn(workers / 2)
	// accept is a channel to signal about next incoming connection Accept()
	// results.
	accept := make(chan error, 1)

	api.poller.Start(acceptDesc, func(ev netpoll.Event) {
		// the listener fd sits in the epoll interest list; each readiness event accepts one connection.
		defer api.poller.Resume(acceptDesc)
		err := api.pool.ScheduleTimeout(time.Millisecond, func() {
			conn, err := ln.Accept()
			if err != nil {
				accept <- err
				return
			}

			accept <- nil
			api.handle(ctx, conn)
		})
		if err == nil {
			err = <-accept
		}
		if err != nil {
			var ne net.Error
			switch {
			case errors.Is(err, concurrent.ErrPoolClosed), errors.Is(err, net.ErrClosed):
				return
			case errors.Is(err, concurrent.ErrScheduleTimeout), errors.As(err, &ne) && ne.Timeout():
				// the pool is saturated: cool down before accepting again
				delay := 5 * time.Millisecond
				api.log.Sugar().Infof("accept error: %v; retrying in %s", err, delay)
				time.Sleep(delay)
			default:
				api.log.Error("accept error", zap.Error(err))
			}
		}
	})

	<-ctx.Done()

	ln.Close()

	api.hub.RemoveAllUser()
	api.poller.Stop(acceptDesc)

	api.pool.Close()

	api.log.Info("websocket server stopped")
}

/*
handle upgrades conn and registers it with the poller, so an idle connection costs a file descriptor
instead of a parked goroutine, ref: https://sergey.kamardin.org/articles/million-websocket-and-go/

the linux programming interface chapter 63:
the epoll API allows a process to monitor multiple
file descriptors to see if I/O is possible on any of them.
*/
func (api *API) handle(ctx context.Context, conn net.Conn) {
	br := bufio.NewReader(conn)

	rw := struct {
		io.Reader
		io.Writer
	}{br, conn}

	hs, err := ws.Upgrade(rw)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("connection", nameConn(conn)))
		conn.Close()
		return
	}

	api.log.Info("established websocket connection", zap.String("connection", nameConn(conn)),
		zap.String("protocol", hs.Protocol))

	user := api.hub.Register(ctx, conn)

	desc, err := netpoll.HandleRead(conn)
	if err != nil {
		api.log.Error("register websocket connection", zap.Error(err))
		api.hub.Remove(user)
		return
	}

	api.poller.Start(desc, func(ev netpoll.Event) {
		if ev&(netpoll.EventReadHup|netpoll.EventHup) != 0 {
			// the peer closed its end of the connection
			api.log.Info("user disconnected from websocket server", zap.String("connection", nameConn(conn)))

			api.poller.Stop(desc)
			api.hub.Remove(user)
			return
		}

		// compare routes on a pooled goroutine and send the result back to the user
		err := api.hub.Schedule(user, func(err error) {
			api.poller.Stop(desc)
			api.hub.Remove(user)
		})
		if err != nil {
			api.poller.Stop(desc)
			api.hub.Remove(user)
		}
	})
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
