package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Tollwise/pkg/concurrent"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"go.uber.org/zap"
)

// wsCompareRequest is one websocket text frame. Missing wage and has_pass take the HTTP defaults.
type wsCompareRequest struct {
	OriginLat      float64   `json:"origin_lat"`
	OriginLon      float64   `json:"origin_lon"`
	DestinationLat float64   `json:"destination_lat"`
	DestinationLon float64   `json:"destination_lon"`
	Wage           *float64  `json:"wage"`
	HasPass        *bool     `json:"has_pass"`
	DepartAt       time.Time `json:"depart_at"`
}

func (r wsCompareRequest) toCompareRoutesRequest() compareRoutesRequest {
	req := compareRoutesRequest{
		OriginLat:      r.OriginLat,
		OriginLon:      r.OriginLon,
		DestinationLat: r.DestinationLat,
		DestinationLon: r.DestinationLon,
		Wage:           DefaultHourlyWage,
		HasPass:        r.HasPass,
		DepartAt:       r.DepartAt,
	}
	if r.Wage != nil {
		req.Wage = *r.Wage
	}
	return req
}

type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	// ctx lives until the user leaves the hub; in-flight comparisons run under it.
	ctx    context.Context
	cancel context.CancelFunc

	id  uint
	hub *Hub
}

func (u *User) Context() context.Context {
	return u.ctx
}

func (u *User) readRequest() (*wsCompareRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	req := &wsCompareRequest{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

// CompareRoutes answers one compare request frame. Invalid requests and comparison failures are
// written back as error envelopes; only connection errors are returned.
func (u *User) CompareRoutes(ctx context.Context) error {
	req, err := u.readRequest()
	if err != nil {
		u.conn.Close()
		return err
	}

	if req == nil {
		return nil
	}

	request := req.toCompareRoutesRequest()
	if err := validateStruct(request); err != nil {
		return u.writeError(http.StatusBadRequest, err.Error())
	}

	outcome, err := u.hub.comparisonService.CompareRoutes(ctx, request.toEngineRequest())
	if err != nil {
		return u.writeError(wsStatus(err), err.Error())
	}

	return u.write(envelope{"data": NewCompareRoutesResponse(outcome, request.Wage)})
}

func wsStatus(err error) int {
	switch util.ErrorCode(err) {
	case util.ErrBadParamInput:
		return http.StatusBadRequest
	case util.ErrNotFound:
		return http.StatusNotFound
	case util.ErrBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (u *User) writeError(status int, message string) error {
	return u.write(envelope{"error": map[string]string{
		"code":    http.StatusText(status),
		"message": message,
	}})
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

type Hub struct {
	mu                sync.RWMutex
	seq               uint
	us                []*User
	ns                map[uint]*User
	comparisonService ComparisonService
	log               *zap.Logger

	pool *concurrent.Pool
}

func NewHub(pool *concurrent.Pool, comparisonService ComparisonService, log *zap.Logger) *Hub {
	return &Hub{
		pool:              pool,
		ns:                make(map[uint]*User),
		us:                make([]*User, 0),
		comparisonService: comparisonService,
		log:               log,
	}
}

// Register adds conn to the hub. The user's context is derived from ctx and cancelled by Remove.
func (h *Hub) Register(ctx context.Context, conn net.Conn) *User {
	userCtx, cancel := context.WithCancel(ctx)
	user := &User{
		hub:    h,
		conn:   conn,
		ctx:    userCtx,
		cancel: cancel,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(user)
}

// removeLocked drops user from the hub, cancels its comparisons and closes its connection. us stays
// sorted by id.
func (h *Hub) removeLocked(user *User) {
	if _, ok := h.ns[user.id]; !ok {
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	user.cancel()
	user.conn.Close()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.us)
}

func (h *Hub) RemoveAllUser() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, user := range append([]*User(nil), h.us...) {
		h.removeLocked(user)
	}
}

// Schedule answers the next frame from user on the hub's goroutine pool, under the user's context.
// onError runs on the pool goroutine when the connection broke.
func (h *Hub) Schedule(user *User, onError func(error)) error {
	return h.pool.Schedule(func() {
		if err := user.CompareRoutes(user.ctx); err != nil {
			h.log.Info("websocket connection dropped", zap.Uint("user", user.id), zap.Error(err))
			onError(err)
		}
	})
}
