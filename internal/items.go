package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"inventory-api/internal/models"

	"github.com/go-chi/chi/v5"
)

const itemColumns = "id, name, description, price, quantity, created_at"

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (models.Item, error) {
	var it models.Item
	var desc sql.NullString
	if err := row.Scan(&it.ID, &it.Name, &desc, &it.Price, &it.Quantity, &it.CreatedAt); err != nil {
		return it, err
	}
	if desc.Valid {
		it.Description = &desc.String
	}
	return it, nil
}

// decodeItemInput parses and validates the create/update payload.
func decodeItemInput(r *http.Request) (*models.ItemInput, string) {
	var in models.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, "invalid JSON"
	}
	if in.Name == "" || in.Price == nil || in.Quantity == nil {
		return nil, "name, price and quantity are required"
	}
	return &in, ""
}

func (s *Server) fetchItem(r *http.Request, id int64) (models.Item, error) {
	return scanItem(s.DB.QueryRowContext(r.Context(),
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id))
}

// listItems returns every item, ordered by id for a stable response.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(),
		"SELECT "+itemColumns+" FROM items ORDER BY id")
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// searchItems matches q as a case-insensitive substring of name or
// description.
func (s *Server) searchItems(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "query parameter q is required")
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"
	rows, err := s.DB.QueryContext(r.Context(),
		"SELECT "+itemColumns+` FROM items
		 WHERE LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?
		 ORDER BY id`, pattern, pattern)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	in, msg := decodeItemInput(r)
	if in == nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", msg)
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		"INSERT INTO items (name, description, price, quantity) VALUES (?, ?, ?, ?)",
		in.Name, in.Description, *in.Price, *in.Quantity)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	// Read the row back so the response carries the storage-assigned
	// id and created_at.
	it, err := s.fetchItem(r, id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, it)
}

// updateItem replaces every mutable field unconditionally; there are no
// partial-update semantics.
func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid item id")
		return
	}

	in, msg := decodeItemInput(r)
	if in == nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", msg)
		return
	}

	var out models.Item
	err = WithTx(r.Context(), s.DB, func(tx *sql.Tx) error {
		// RowsAffected is 0 for no-op updates on MySQL, so existence is
		// checked with a read instead.
		var existing int64
		if err := tx.QueryRowContext(r.Context(),
			"SELECT id FROM items WHERE id = ?", id).Scan(&existing); err != nil {
			return err
		}
		if _, err := tx.ExecContext(r.Context(),
			"UPDATE items SET name = ?, description = ?, price = ?, quantity = ? WHERE id = ?",
			in.Name, in.Description, *in.Price, *in.Quantity, id); err != nil {
			return err
		}
		var scanErr error
		out, scanErr = scanItem(tx.QueryRowContext(r.Context(),
			"SELECT "+itemColumns+" FROM items WHERE id = ?", id))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid item id")
		return
	}

	res, err := s.DB.ExecContext(r.Context(), "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
}
