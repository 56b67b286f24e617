/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package srv serves the export and time range drivers over HTTP.
package srv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/multierr"

	"jinr.ru/greenlab/go-thw/pkg/batch"
	"jinr.ru/greenlab/go-thw/pkg/catalog"
	"jinr.ru/greenlab/go-thw/pkg/config"
	"jinr.ru/greenlab/go-thw/pkg/export"
	"jinr.ru/greenlab/go-thw/pkg/log"
	"jinr.ru/greenlab/go-thw/pkg/timerange"
)

const (
	ApiPrefix       = "/api"
	shutdownTimeout = 5 * time.Second
)

type ConvertRequest struct {
	// Path is a .DAT file or a directory of them on the server
	Path     string `json:"path"`
	Settings string `json:"settings,omitempty"`
	OutDir   string `json:"out_dir,omitempty"`
	Force    bool   `json:"force,omitempty"`
}

// FileError is a per-file failure that did not stop the batch.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type ConvertResponse struct {
	Results []export.Result `json:"results"`
	Failed  []FileError     `json:"failed,omitempty"`
}

type RangeResponse struct {
	Ranges []timerange.Range `json:"ranges"`
	Failed []FileError       `json:"failed,omitempty"`
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	catalog *catalog.Catalog
	// drivers run one at a time
	mu sync.Mutex
}

// NewApiServer returns a server. cat may be nil.
func NewApiServer(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.ApiConfig.Address, cfg.ApiConfig.Port)
	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		catalog: cat,
	}
	s.configureRouter()
	return s, nil
}

// Handler returns the router wrapped with access logging and panic recovery.
func (s *ApiServer) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))
	return handlers.LoggingHandler(log.Writer(), recovery(s.Router))
}

// Run serves until the server context is done.
func (s *ApiServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.ApiConfig.Address, s.Config.ApiConfig.Port)
	log.Info("Starting API server: address: %s", addr)
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    addr,
	}
	go func() {
		<-s.Context.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("Error while shutting down API server: %v", err)
		}
	}()
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix(ApiPrefix).Subrouter()
	subRouter.HandleFunc("/range", s.handleRange()).Methods("GET").Queries("path", "{path}")
	subRouter.HandleFunc("/convert", s.handleConvert()).Methods("POST")
	subRouter.HandleFunc("/catalog", s.handleCatalog()).Methods("GET")
}

func (s *ApiServer) handleRange() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		settingsPath := r.URL.Query().Get("settings")
		log.Debug("Handling range request: path: %s settings: %s", path, settingsPath)

		opts, err := timerange.NewOptions(s.Config)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if settingsPath != "" {
			opts.SettingsPath = settingsPath
		}
		files, err := batch.Discover([]string{path}, s.Config.Extension)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		viewer := timerange.NewViewer(opts, s.catalog)
		resp := &RangeResponse{Ranges: []timerange.Range{}}
		summary, err := batch.Runner{}.Run(r.Context(), files, func(ctx context.Context, path string) error {
			rng, err := viewer.View(ctx, path)
			if err != nil {
				return err
			}
			resp.Ranges = append(resp.Ranges, rng)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Failed = fileErrors(summary)
		writeJSON(w, resp)
	}
}

func (s *ApiServer) handleConvert() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convertReq := &ConvertRequest{}
		if err := json.NewDecoder(r.Body).Decode(convertReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling convert request: path: %s settings: %s", convertReq.Path, convertReq.Settings)

		opts, err := export.NewOptions(s.Config)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if convertReq.Settings != "" {
			opts.SettingsPath = convertReq.Settings
		}
		opts.OutDir = convertReq.OutDir
		opts.Force = convertReq.Force
		files, err := batch.Discover([]string{convertReq.Path}, s.Config.Extension)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		converter := export.NewConverter(opts)
		resp := &ConvertResponse{Results: []export.Result{}}
		summary, err := batch.Runner{}.Run(r.Context(), files, func(ctx context.Context, path string) error {
			result, err := converter.Convert(ctx, path)
			if err != nil {
				return err
			}
			resp.Results = append(resp.Results, result)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Failed = fileErrors(summary)
		writeJSON(w, resp)
	}
}

func (s *ApiServer) handleCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling catalog request")
		entries := []catalog.Entry{}
		if s.catalog != nil {
			listed, err := s.catalog.List()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			entries = append(entries, listed...)
		}
		writeJSON(w, entries)
	}
}

func fileErrors(summary batch.Summary) []FileError {
	errs := multierr.Errors(summary.Err())
	var failed []FileError
	for i, path := range summary.Failed {
		fe := FileError{Path: path}
		if i < len(errs) {
			fe.Error = errs[i].Error()
		}
		failed = append(failed, fe)
	}
	return failed
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while writing response: %v", err)
	}
}
