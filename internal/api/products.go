package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/go-chi/chi/v5"

	"github.com/FabricioIaronka/store-manager/domain"
)

type productRequest struct {
	Name        string  `json:"name"`
	Qnt         int64   `json:"qnt"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (req *productRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Qnt < 0 {
		return "qnt must not be negative"
	}
	if req.Price <= 0 {
		return "price must be positive"
	}
	return ""
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)

	builder := squirrel.Select("id", "name", "qnt", "price", "description", "category").
		From("products").
		Where(squirrel.Eq{"store_id": storeID}).
		OrderBy("name")
	if query := strings.TrimSpace(r.URL.Query().Get("query")); query != "" {
		builder = builder.Where(squirrel.Like{"name": "%" + query + "%"})
	}
	sql, args, err := builder.ToSql()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build product query")
		return
	}

	products := []domain.Product{}
	if err := h.db.Select(&products, sql, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.db.Exec(`INSERT INTO products (store_id, name, qnt, price, description, category) VALUES (?, ?, ?, ?, ?, ?)`,
		storeID, req.Name, req.Qnt, req.Price, req.Description, req.Category)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, domain.Product{
		ID: id, Name: req.Name, Qnt: req.Qnt, Price: req.Price,
		Description: req.Description, Category: req.Category,
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.db.Exec(`UPDATE products SET name = ?, qnt = ?, price = ?, description = ?, category = ? WHERE id = ? AND store_id = ?`,
		req.Name, req.Qnt, req.Price, req.Description, req.Category, id, storeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	res, err := h.db.Exec(`DELETE FROM products WHERE id = ? AND store_id = ?`, id, storeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
