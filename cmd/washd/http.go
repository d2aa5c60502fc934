package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/schemawash/schemawash/cleaners"
	"github.com/schemawash/schemawash/filter"
	"github.com/schemawash/schemawash/tools"
)

// cleaned is the wire shape of a single-record cleaning result.
type cleaned struct {
	// Kept is false when the spec's filters rejected the record,
	// in which case Record is nil.
	Kept   bool                   `json:"kept"`
	Record map[string]interface{} `json:"record,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// clean runs one record through the spec's filters and rules.
func (s *Service) clean(ctx context.Context, record map[string]interface{}) *cleaned {
	if !filter.Keep(record, s.spec.Filters) {
		return &cleaned{}
	}
	if _, err := s.spec.Clean(ctx, record); err != nil {
		return &cleaned{Kept: true, Error: err.Error()}
	}
	return &cleaned{Kept: true, Record: record}
}

// HTTP serves the single-record cleaning API, the websocket, and the
// spec's documentation.  Blocks.
func (s *Service) HTTP(ctx context.Context, addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/clean", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST a record", http.StatusMethodNotAllowed)
			return
		}
		var record map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result := s.clean(r.Context(), record)

		w.Header().Set("Content-Type", "application/json")
		if result.Error != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/doc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tools.RenderSpecPage(s.spec, w, nil); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/analysis", func(w http.ResponseWriter, r *http.Request) {
		a, err := tools.Analyze(s.spec, cleaners.Standard())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err = json.NewEncoder(w).Encode(a); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/ws", s.WebSocket(ctx))

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	fmt.Printf("washd listening on %s\n", addr)
	return server.ListenAndServe()
}
