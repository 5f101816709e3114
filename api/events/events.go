// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events serves the executed-operation history.
package events

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/api/utils"
	"github.com/dominant-strategies/go-quai-stake/eventdb"
)

// Events queries the operation history db.
type Events struct {
	db *eventdb.EventDB
}

func New(db *eventdb.EventDB) *Events {
	return &Events{db: db}
}

func (e *Events) handleQuery(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if req.Body != nil && req.ContentLength != 0 {
		if err := utils.ParseJSON(req.Body, &filter); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
	}
	found, err := e.db.Query(&filter)
	if err != nil {
		return err
	}
	// an empty result is [] on the wire, not null
	if found == nil {
		found = []*eventdb.Event{}
	}
	return utils.WriteJSON(w, found)
}

// Mount attaches the event routes under pathPrefix.
func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(e.handleQuery))
}
