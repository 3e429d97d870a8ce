package router

import (
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const upstreamDialTimeout = 3 * time.Second

// upstream hands the raw connection of a /ws request to the websocket server at addr and then pipes
// bytes both ways until either side closes.
func (api *API) upstream(name, network, addr string) func(w http.ResponseWriter, r *http.Request) {

	return func(w http.ResponseWriter, r *http.Request) {

		peer, err := net.DialTimeout(network, addr, upstreamDialTimeout)
		if err != nil {
			api.log.Error("dial upstream error", zap.String("upstream", name), zap.Error(err))
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if err := r.Write(peer); err != nil {
			api.log.Error("write request to upstream error", zap.String("upstream", name), zap.Error(err))
			peer.Close()
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		hj, ok := w.(http.Hijacker)
		if !ok {
			peer.Close()
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack() // get tcp socket
		if err != nil {
			peer.Close()
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// the server deadlines no longer apply once the socket is ours
		_ = conn.SetDeadline(time.Time{})

		go func() {
			defer peer.Close()
			defer conn.Close()
			io.Copy(peer, conn)
		}()
		go func() {
			defer peer.Close()
			defer conn.Close()
			io.Copy(conn, peer)
		}()
	}
}
