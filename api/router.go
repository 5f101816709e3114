// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the REST surface the dashboard consumes.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/dominant-strategies/go-quai-stake/api/events"
	"github.com/dominant-strategies/go-quai-stake/api/pools"
	"github.com/dominant-strategies/go-quai-stake/api/subscriptions"
	"github.com/dominant-strategies/go-quai-stake/metrics"
	"github.com/dominant-strategies/go-quai-stake/staking"
)

var metricRequestDuration = metrics.LazyLoadHistogram("api_request_duration_ms", metrics.BucketHTTPReqs)

// New returns the api handler with all routes mounted.
func New(svc *staking.Service, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	pools.NewNative(svc).Mount(router, "/staking/native")
	pools.NewLP(svc).Mount(router, "/staking/lp")
	events.New(svc.Events()).Mount(router, "/events")
	subscriptions.New(svc).Mount(router, "/subscriptions")

	handler := measure(router)
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(handler)
}

func measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, req)
		metricRequestDuration().Observe(time.Since(started).Milliseconds())
	})
}
