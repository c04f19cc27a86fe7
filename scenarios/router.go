package scenarios

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/results"
)

// NewRouter serves the sample catalog over HTTP.
func NewRouter(catalog Catalog) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /Index", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, p := range catalog.Sorted() {
			fmt.Fprintf(w, "%d %s\n", p.ID, p.Name)
		}
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		p, ok := catalog[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(results.ValueOf(p).JSONString()))
	})
	mux.HandleFunc("POST /Cart", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if _, err := strconv.Atoi(id); err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "cart", Value: id})
		http.Redirect(w, r, "/cart", http.StatusFound)
	})
	mux.HandleFunc("GET /Legacy", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/Index", http.StatusMovedPermanently)
	})
	return mux
}
