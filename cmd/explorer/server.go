// Command explorer is a small read-only HTTP surface over the ABCI
// application's query routes: each endpoint decodes a path parameter,
// calls the matching path registered in query/, and serves the result as
// JSON. It never builds a transaction and never touches the write path.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/synnergy-chain/framework/baseapp"
	"github.com/synnergy-chain/framework/query"
)

// Server exposes a running Application's query surface over HTTP.
type Server struct {
	app        *baseapp.BaseApp
	router     chi.Router
	httpServer *http.Server
}

// NewServer builds the router and HTTP server bound to addr, answering
// from app's committed state.
func NewServer(addr string, app *baseapp.BaseApp) *Server {
	s := &Server{app: app}
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/api/account/{address}", s.handleAccount)
	r.Get("/api/balance/{address}/{denom}", s.handleBalance)
	r.Get("/api/balances/{address}", s.handleAllBalances)
	r.Get("/api/supply/{denom}", s.handleSupply)
	r.Get("/api/validators/bonded", s.handleBondedValidators)
	r.Get("/api/upgrade/plan", s.handleUpgradePlan)
	s.router = r
	s.httpServer = &http.Server{Addr: addr, Handler: r}
	return s
}

func (s *Server) Start() error { return s.httpServer.ListenAndServe() }

func (s *Server) respond(w http.ResponseWriter, resp baseapp.ResponseQuery) {
	w.Header().Set("Content-Type", "application/json")
	if resp.Code != 0 {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(resp.Log))
		return
	}
	_, _ = w.Write(resp.Value)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	s.respond(w, s.app.Query(query.PathAccount, []byte(addr), 0))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	denom := chi.URLParam(r, "denom")
	req := []byte(`{"address":"` + addr + `","denom":"` + denom + `"}`)
	s.respond(w, s.app.Query(query.PathBalance, req, 0))
}

func (s *Server) handleAllBalances(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	s.respond(w, s.app.Query(query.PathAllBalances, []byte(addr), 0))
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	denom := chi.URLParam(r, "denom")
	s.respond(w, s.app.Query(query.PathSupply, []byte(denom), 0))
}

func (s *Server) handleBondedValidators(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.app.Query(query.PathBondedValidators, nil, 0))
}

func (s *Server) handleUpgradePlan(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.app.Query(query.PathUpgradePlan, nil, 0))
}
