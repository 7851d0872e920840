package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

func writeJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "Failed to marshal"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(res)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (i *Inspector) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJson(w, i.Snapshot())
}

func (i *Inspector) handleNode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	node, ok := i.Snapshot().Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("node %q not found", id))
		return
	}

	writeJson(w, node)
}

func (i *Inspector) handleDump(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	spewConfig.Fdump(w, i.Snapshot())
}

func (i *Inspector) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJson(w, i.stats())
}

// handleEvents upgrades to a websocket streaming EventMessage values. The first message
// is the Stats at connection time.
func (i *Inspector) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		i.log.WithError(err).Debug("inspect: ws upgrade failed")
		return
	}

	stats := i.stats()
	stats.Clients++
	hello, err := json.Marshal(stats)
	if err != nil {
		conn.Close()
		return
	}
	i.hub.register(conn, hello)
}
