package api

import (
	"net/http"
	"strings"

	"github.com/FabricioIaronka/store-manager/domain"
)

type storeRequest struct {
	Name    string `json:"name"`
	CNPJ    string `json:"cnpj"`
	Address string `json:"address"`
}

// createStore registers a new store and a membership row for the
// signed-in user in one transaction.
func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.CNPJ) == "" {
		respondError(w, http.StatusBadRequest, "name and cnpj are required")
		return
	}

	userID := r.Context().Value(ctxUserID).(int64)

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start store creation")
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO stores (name, cnpj, address) VALUES (?, ?, ?)`, req.Name, req.CNPJ, req.Address)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create store")
		return
	}
	storeID, _ := res.LastInsertId()

	if _, err := tx.Exec(`INSERT INTO store_users (store_id, user_id) VALUES (?, ?)`, storeID, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to register store membership")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to complete store creation")
		return
	}

	respondJSON(w, http.StatusCreated, domain.Store{
		ID:      storeID,
		Name:    req.Name,
		CNPJ:    req.CNPJ,
		Address: req.Address,
	})
}
