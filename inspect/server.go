// Package inspect serves a debug view of an arbor world over HTTP: the scene graph as
// JSON or as a spew dump, and the collision events as a websocket stream.
package inspect

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/akmonengine/arbor"
	"github.com/davecgh/go-spew/spew"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// EventMessage is what websocket clients receive for every world event.
type EventMessage struct {
	Type           string     `json:"type"`
	Step           uint64     `json:"step"`
	Screencast     string     `json:"screencast,omitempty"`
	Source         string     `json:"source,omitempty"`
	SourceCollider string     `json:"source_collider,omitempty"`
	Target         string     `json:"target,omitempty"`
	TargetCollider string     `json:"target_collider,omitempty"`
	Point          [3]float64 `json:"point"`
	Distance       float64    `json:"distance"`
}

type Stats struct {
	Step      uint64 `json:"step"`
	Nodes     int    `json:"nodes"`
	Events    uint64 `json:"events"`
	Clients   int    `json:"clients"`
	Dropped   uint64 `json:"dropped"`
	Snapshots uint64 `json:"snapshots"`
}

// Inspector publishes a world to HTTP clients. Snapshots and events are produced on the
// goroutine stepping the world; handlers only read the published copies.
type Inspector struct {
	world  *arbor.World
	log    *logrus.Entry
	every  int
	hub    *hub
	router *mux.Router

	upgrader  websocket.Upgrader
	accessLog *io.PipeWriter

	mu        sync.RWMutex
	snapshot  Snapshot
	snapshots uint64
	events    uint64

	updateSub arbor.SubscriptionID
	server    *http.Server
	closed    bool
}

// New attaches an inspector to w, publishing a snapshot every
// w.Config().Inspector.SnapshotEvery steps.
func New(w *arbor.World) *Inspector {
	log := w.Logger().WithField("component", "inspect")

	i := &Inspector{
		world: w,
		log:   log,
		every: w.Config().Inspector.SnapshotEvery,
		hub:   newHub(log),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		accessLog: log.WriterLevel(logrus.DebugLevel),
	}

	i.router = mux.NewRouter()
	i.router.HandleFunc("/snapshot", i.handleSnapshot).Methods(http.MethodGet)
	i.router.HandleFunc("/nodes/{id}", i.handleNode).Methods(http.MethodGet)
	i.router.HandleFunc("/dump", i.handleDump).Methods(http.MethodGet)
	i.router.HandleFunc("/stats", i.handleStats).Methods(http.MethodGet)
	i.router.HandleFunc("/events", i.handleEvents)

	i.Refresh()
	if i.every > 0 {
		i.updateSub = w.OnUpdate(i.onUpdate)
	}
	w.Events.SubscribeAll(i.onEvent)

	return i
}

// Refresh publishes a snapshot right away. It must run on the goroutine stepping the world.
func (i *Inspector) Refresh() {
	s := Take(i.world)

	i.mu.Lock()
	i.snapshot = s
	i.snapshots++
	i.mu.Unlock()
}

// Snapshot returns the last published snapshot.
func (i *Inspector) Snapshot() Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.snapshot
}

func (i *Inspector) onUpdate(float64) {
	// the step counter is incremented after the update subscribers
	if (i.world.Steps()+1)%uint64(i.every) == 0 {
		i.Refresh()
	}
}

func (i *Inspector) onEvent(event arbor.Event) {
	if i.closed {
		return
	}

	msg := eventMessage(event, i.world.Steps())
	data, err := json.Marshal(msg)
	if err != nil {
		i.log.WithError(err).Warn("inspect: cannot encode event")
		return
	}

	i.mu.Lock()
	i.events++
	i.mu.Unlock()
	i.hub.broadcast(data)
}

func eventMessage(event arbor.Event, step uint64) EventMessage {
	msg := EventMessage{Type: event.Type().String(), Step: step}

	var info arbor.CollisionInfo
	switch e := event.(type) {
	case arbor.IntersectionBeginEvent:
		info = e.Info
	case arbor.IntersectionStayEvent:
		info = e.Info
	case arbor.IntersectionEndEvent:
		info = e.Info
	case arbor.RaycastHitEvent:
		info = e.Info
	case arbor.ScreencastHitEvent:
		info = e.Info
		msg.Screencast = e.Event.String()
	}

	msg.Point = vec3(info.Point)
	msg.Distance = finite(info.Distance)
	if info.Source != nil {
		msg.Source = info.Source.Node().Name()
		msg.SourceCollider = info.Source.Name()
	}
	if info.Target != nil {
		msg.Target = info.Target.Node().Name()
		msg.TargetCollider = info.Target.Name()
	}

	return msg
}

// Handler returns the routes wrapped with panic recovery and access logging.
func (i *Inspector) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(i.log), handlers.PrintRecoveryStack(false))

	return handlers.LoggingHandler(i.accessLog, recovery(i.router))
}

// ListenAndServe serves on the configured address until Shutdown.
func (i *Inspector) ListenAndServe() error {
	l, err := net.Listen("tcp", i.world.Config().Inspector.Addr)
	if err != nil {
		return errors.Wrapf(err, "Failed to listen on %q", i.world.Config().Inspector.Addr)
	}

	return i.Serve(l)
}

func (i *Inspector) Serve(l net.Listener) error {
	i.mu.Lock()
	i.server = &http.Server{Handler: i.Handler()}
	server := i.server
	i.mu.Unlock()

	i.log.WithField("addr", l.Addr().String()).Info("inspect: serving")
	if err := server.Serve(l); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "inspect server failed")
	}

	return nil
}

// Shutdown stops the HTTP server and disconnects websocket clients.
func (i *Inspector) Shutdown(ctx context.Context) error {
	i.hub.close()

	i.mu.RLock()
	server := i.server
	i.mu.RUnlock()
	if server == nil {
		return nil
	}

	return errors.Wrap(server.Shutdown(ctx), "inspect shutdown failed")
}

// Close detaches the inspector from the world. It must run on the goroutine stepping the world.
func (i *Inspector) Close() {
	if i.closed {
		return
	}
	i.closed = true
	if i.updateSub != 0 {
		i.world.RemoveUpdate(i.updateSub)
	}
	i.hub.close()
	i.accessLog.Close()
}

func (i *Inspector) stats() Stats {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return Stats{
		Step:      i.snapshot.Step,
		Nodes:     i.snapshot.Count(),
		Events:    i.events,
		Clients:   i.hub.len(),
		Dropped:   i.hub.droppedCount(),
		Snapshots: i.snapshots,
	}
}
