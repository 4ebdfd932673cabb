package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/metrics"
	"github.com/thrasher-corp/gct-pairs/log"
)

var errNoListenAddress = errors.New("server requires a listen address")

// Launcher queues and starts a new run, returning its task identifier
type Launcher func() (uuid.UUID, error)

// Route is a single handled path of the status server
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// Server reports task status and metrics over HTTP
type Server struct {
	tasks  *TaskManager
	launch Launcher
	srv    *http.Server
}

// NewServer builds the status server. A nil launcher leaves runs read only
func NewServer(listenAddress string, tasks *TaskManager, launch Launcher) (*Server, error) {
	if listenAddress == "" {
		return nil, errNoListenAddress
	}
	if tasks == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	s := &Server{tasks: tasks, launch: launch}
	s.srv = &http.Server{
		Addr:              listenAddress,
		Handler:           s.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// RESTLogger logs the requests internally
func RESTLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		log.Debugf(common.Server, "%s\t%s\t%s\t%s", r.Method, r.RequestURI, name, time.Since(start))
	})
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	routes := []Route{
		{"ListRuns", http.MethodGet, "/runs", s.listRuns},
		{"GetRun", http.MethodGet, "/runs/{id}", s.getRun},
		{"Metrics", http.MethodGet, "/metrics", metrics.Handler().ServeHTTP},
	}
	if s.launch != nil {
		routes = append(routes, Route{"StartRun", http.MethodPost, "/runs", s.startRun})
	}
	for _, route := range routes {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(RESTLogger(route.HandlerFunc, route.Name))
	}
	return router
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe blocks until the server is shut down
func (s *Server) ListenAndServe() error {
	log.Infof(common.Server, "Status server listening on http://%s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// RESTfulJSONResponse outputs a JSON response of the response interface
func RESTfulJSONResponse(w http.ResponseWriter, status int, response any) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}

// RESTfulError replies with the error and logs when even that fails
func RESTfulError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if jsonErr := RESTfulJSONResponse(w, status, map[string]string{"error": err.Error()}); jsonErr != nil {
		log.Errorf(common.Server, "RESTful %s %s: server failed to send JSON response. Error %s", r.Method, r.RequestURI, jsonErr)
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.tasks.List()
	if err != nil {
		RESTfulError(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := RESTfulJSONResponse(w, http.StatusOK, runs); err != nil {
		log.Errorf(common.Server, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		RESTfulError(w, r, http.StatusBadRequest, err)
		return
	}
	sum, err := s.tasks.GetSummary(id)
	if errors.Is(err, errTaskNotFound) {
		RESTfulError(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		RESTfulError(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := RESTfulJSONResponse(w, http.StatusOK, sum); err != nil {
		log.Errorf(common.Server, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	id, err := s.launch()
	if err != nil {
		RESTfulError(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := RESTfulJSONResponse(w, http.StatusAccepted, map[string]string{"id": id.String()}); err != nil {
		log.Errorf(common.Server, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}
