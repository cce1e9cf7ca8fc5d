package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/FabricioIaronka/store-manager/domain"
)

// createSale validates every item against current stock, captures unit
// prices server-side and writes the sale, its items and the stock
// decrements in one transaction. The client never sends prices.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)
	userID := r.Context().Value(ctxUserID).(int64)

	var req domain.SaleCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	if !req.PaymentType.Valid() {
		respondError(w, http.StatusBadRequest, "invalid payment_type")
		return
	}

	if req.ClientID != nil {
		var count int
		if err := h.db.Get(&count, `SELECT COUNT(*) FROM clients WHERE id = ? AND store_id = ?`, *req.ClientID, storeID); err != nil || count == 0 {
			respondError(w, http.StatusBadRequest, "unknown client for this store")
			return
		}
	}

	type productSnapshot struct {
		ID    int64   `db:"id"`
		Name  string  `db:"name"`
		Qnt   int64   `db:"qnt"`
		Price float64 `db:"price"`
	}

	snapshots := make(map[int64]productSnapshot)
	var total float64

	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "product_id and quantity are required for each item")
			return
		}
		if _, dup := snapshots[item.ProductID]; dup {
			respondError(w, http.StatusBadRequest, "duplicate product in sale items")
			return
		}
		var snap productSnapshot
		err := h.db.Get(&snap, `SELECT id, name, qnt, price FROM products WHERE id = ? AND store_id = ?`, item.ProductID, storeID)
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusBadRequest, "product not found for one or more items")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to fetch product")
			return
		}
		if snap.Qnt < item.Quantity {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("insufficient stock for %q: %d available", snap.Name, snap.Qnt))
			return
		}
		snapshots[item.ProductID] = snap
		total += float64(item.Quantity) * snap.Price
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start sale")
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO sales (store_id, user_id, client_id, payment_type, total_value) VALUES (?, ?, ?, ?, ?)`,
		storeID, userID, req.ClientID, req.PaymentType, total)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale")
		return
	}
	saleID, _ := res.LastInsertId()

	for _, item := range req.Items {
		snap := snapshots[item.ProductID]
		if _, err := tx.Exec(`UPDATE products SET qnt = qnt - ? WHERE id = ?`, item.Quantity, snap.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update stock")
			return
		}
		if _, err := tx.Exec(`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
			saleID, item.ProductID, item.Quantity, snap.Price); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to save sale items")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":          saleID,
		"total_value": total,
	})
}

// listSales returns the store's sales newest first, optionally bounded
// by start_date/end_date (YYYY-MM-DD), with items fanned out per sale.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	storeID := r.Context().Value(ctxStoreID).(int64)

	builder := squirrel.Select("id", "user_id", "client_id", "payment_type", "total_value", "created_at").
		From("sales").
		Where(squirrel.Eq{"store_id": storeID}).
		OrderBy("created_at DESC", "id DESC")

	if start := strings.TrimSpace(r.URL.Query().Get("start_date")); start != "" {
		if _, err := time.Parse("2006-01-02", start); err != nil {
			respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
			return
		}
		builder = builder.Where(squirrel.GtOrEq{"DATE(created_at)": start})
	}
	if end := strings.TrimSpace(r.URL.Query().Get("end_date")); end != "" {
		if _, err := time.Parse("2006-01-02", end); err != nil {
			respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
			return
		}
		builder = builder.Where(squirrel.LtOrEq{"DATE(created_at)": end})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build sales query")
		return
	}

	sales := []domain.Sale{}
	if err := h.db.Select(&sales, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list sales")
		return
	}
	if len(sales) == 0 {
		respondJSON(w, http.StatusOK, sales)
		return
	}

	ids := make([]int64, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}

	itemsQuery, itemsArgs, err := sqlx.In(`SELECT sale_id, product_id, quantity, unit_price FROM sale_items WHERE sale_id IN (?)`, ids)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to prepare sale items query")
		return
	}
	itemsQuery = h.db.Rebind(itemsQuery)

	var items []domain.SaleItem
	if err := h.db.Select(&items, itemsQuery, itemsArgs...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}
	itemsBySale := make(map[int64][]domain.SaleItem)
	for _, item := range items {
		itemsBySale[item.SaleID] = append(itemsBySale[item.SaleID], item)
	}
	for i := range sales {
		sales[i].Items = itemsBySale[sales[i].ID]
	}

	respondJSON(w, http.StatusOK, sales)
}
