package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// GET api/Productos (response 200 OK)
// GET api/Productos/{id} (response 200 OK, 400 Bad request, 404 Not found)

type CatalogHandler struct {
	catalog Catalog
}

func RegisterCatalog(mux *http.ServeMux, catalog Catalog) {
	h := CatalogHandler{catalog}
	mux.HandleFunc("GET /api/Productos", h.GetProducts)
	mux.HandleFunc("GET /api/Productos/{id}", h.GetProduct)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	ps := h.catalog.List()
	if err := writeJSON(w, ps); err != nil {
		log.Error("failed to write response body", "err", err)
		return
	}

	log.Debug("served", "nProducts", len(ps))
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProduct"
	log := slog.With("op", op)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		log.Warn("failed to parse id", "err", err)
		return
	}

	p, ok := h.catalog.Get(id)
	if !ok {
		http.NotFound(w, r)
		log.Debug("not found", "id", id)
		return
	}

	if err := writeJSON(w, p); err != nil {
		log.Error("failed to write response body", "err", err)
		return
	}

	log.Debug("served", "id", id)
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(v)
}
