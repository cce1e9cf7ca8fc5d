package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/FabricioIaronka/store-manager/domain"
)

type clientRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Number  string `json:"number"`
	Email   string `json:"email"`
	CPF     string `json:"cpf"`
}

func (req *clientRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(req.CPF) == "" {
		return "cpf is required"
	}
	return ""
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)

	clients := []domain.Client{}
	if err := h.db.Select(&clients, `SELECT id, name, surname, number, email, cpf FROM clients WHERE store_id = ? ORDER BY name`, storeID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.db.Exec(`INSERT INTO clients (store_id, name, surname, number, email, cpf) VALUES (?, ?, ?, ?, ?, ?)`,
		storeID, req.Name, req.Surname, req.Number, req.Email, req.CPF)
	if err != nil {
		respondError(w, http.StatusConflict, "a client with this cpf already exists")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, domain.Client{
		ID: id, Name: req.Name, Surname: req.Surname,
		Number: req.Number, Email: req.Email, CPF: req.CPF,
	})
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.db.Exec(`UPDATE clients SET name = ?, surname = ?, number = ?, email = ?, cpf = ? WHERE id = ? AND store_id = ?`,
		req.Name, req.Surname, req.Number, req.Email, req.CPF, id, storeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update client")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	res, err := h.db.Exec(`DELETE FROM clients WHERE id = ? AND store_id = ?`, id, storeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete client")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// clientByCPF resolves a customer by the unique tax identifier used
// during sale composition.
func (h *Handler) clientByCPF(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)
	cpf := chi.URLParam(r, "cpf")

	var client domain.Client
	err := h.db.Get(&client, `SELECT id, name, surname, number, email, cpf FROM clients WHERE store_id = ? AND cpf = ?`, storeID, cpf)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "no client found with this cpf")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to look up client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}
