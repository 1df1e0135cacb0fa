// Package server provides the HTTP conversion service: parse NN token
// sequences into prettyprinted ThingTalk, serialize them back, and save
// conversions as examples for later inspection.
//
//	POST /nn/parse      - parse a sequence + entity bag into ThingTalk
//	POST /nn/serialize  - reserialize a sequence with fresh placeholders
//	GET  /info          - version info
//	POST /examples      - save a conversion
//	GET  /examples      - list saved conversions
//	GET  /examples/{id} - get one saved conversion
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/thingtalk/server/dao"
	"github.com/dekarrin/thingtalk/server/dao/sqlite"
)

// Server is the conversion server. Create one with New and start it with
// ServeForever.
type Server struct {
	router chi.Router
	db     dao.Store
}

// New creates a Server backed by an example database in the given storage
// directory.
func New(storageDir string) (*Server, error) {
	db, err := sqlite.NewDatastore(storageDir)
	if err != nil {
		return nil, err
	}

	s := &Server{db: db}

	r := chi.NewRouter()
	r.Post("/nn/parse", Endpoint(s.epParse))
	r.Post("/nn/serialize", Endpoint(s.epSerialize))
	r.Get("/info", Endpoint(s.epInfo))
	r.Post("/examples", Endpoint(s.epCreateExample))
	r.Get("/examples", Endpoint(s.epListExamples))
	r.Get("/examples/{id}", Endpoint(s.epGetExample))
	s.router = r

	return s, nil
}

// ServeForever listens on the given address and serves requests until the
// listener fails.
func (s *Server) ServeForever(addr string) error {
	defer s.db.Close()
	return http.ListenAndServe(addr, s.router)
}

// Handler returns the underlying HTTP handler, for mounting the server
// inside another mux or for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without serving.
func (s *Server) Close() error {
	return s.db.Close()
}
