// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams executed operations to websocket clients so
// the dashboard can refresh without polling.
package subscriptions

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/dominant-strategies/go-quai-stake/api/utils"
	"github.com/dominant-strategies/go-quai-stake/log"
	"github.com/dominant-strategies/go-quai-stake/staking"
)

const pingInterval = 30 * time.Second

var logger = log.WithContext("pkg", "api/subscriptions")

// Subscriptions serves the live operation feed.
type Subscriptions struct {
	svc      *staking.Service
	upgrader websocket.Upgrader
}

func New(svc *staking.Service) *Subscriptions {
	return &Subscriptions{
		svc: svc,
		upgrader: websocket.Upgrader{
			// the REST layer already answers cross-origin; the feed follows
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Subscriptions) handleSubscribeOps(w http.ResponseWriter, req *http.Request) error {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return utils.BadRequest(err)
	}
	defer conn.Close()

	feed, cancel := s.svc.Subscribe()
	defer cancel()

	// drain client frames so close messages are processed
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-req.Context().Done():
			return nil
		case <-closed:
			return nil
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case event, ok := <-feed:
			if !ok {
				// dropped for falling behind
				logger.Debug("subscriber dropped", "remote", req.RemoteAddr)
				return nil
			}
			if err := conn.WriteJSON(event); err != nil {
				return nil
			}
		}
	}
}

// Mount attaches the subscription routes under pathPrefix.
func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/ops").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeOps))
}
