// Command mockclassifier serves the model service HTTP contract from the bundled
// heuristic, for local development and demos without the real model.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"exodash/adapters/classifier"
	"exodash/domain/candidate"
	"exodash/internal/analytics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	latency := flag.Duration("latency", 0, "artificial delay added to every prediction")
	flag.Parse()

	log.Printf("[MockClassifier] Listening on %s (latency %v)", *addr, *latency)
	if err := http.ListenAndServe(*addr, newRouter(*latency)); err != nil {
		log.Fatalf("[MockClassifier] Server failed: %v", err)
	}
}

func newRouter(latency time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/predict", func(w http.ResponseWriter, req *http.Request) {
		var record candidate.Record
		if err := json.NewDecoder(req.Body).Decode(&record); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid record: " + err.Error()})
			return
		}
		time.Sleep(latency)
		writeJSON(w, http.StatusOK, wire(classifier.Heuristic(record)))
	})

	r.Post("/predict/batch", func(w http.ResponseWriter, req *http.Request) {
		var records []candidate.Record
		if err := json.NewDecoder(req.Body).Decode(&records); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch: " + err.Error()})
			return
		}
		time.Sleep(latency)
		out := make([]map[string]interface{}, len(records))
		for i, record := range records {
			out[i] = wire(classifier.Heuristic(record))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"results": out})
	})

	r.Get("/model/analytics", func(w http.ResponseWriter, req *http.Request) {
		a := analytics.Fallback()
		a.Fallback = false
		a.FallbackVersion = ""
		a.ModelInfo["served_by"] = "mockclassifier"
		writeJSON(w, http.StatusOK, a)
	})

	return r
}

func wire(v candidate.Verdict) map[string]interface{} {
	return map[string]interface{}{
		"is_exoplanet": v.IsPositive,
		"confidence":   v.Confidence,
		"details":      v.Explanation,
		"model_type":   v.ModelLabel,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[MockClassifier] Failed to encode response: %v", err)
	}
}
