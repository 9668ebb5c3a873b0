package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"inventory-api/internal/auth"
	"inventory-api/pkg/importer"

	"github.com/google/uuid"
)

// ImportsHandler handles spreadsheet bulk-import uploads.
type ImportsHandler struct {
	DB       *sql.DB
	MaxBytes int64
}

func NewImportsHandler(db *sql.DB) *ImportsHandler {
	return &ImportsHandler{
		DB:       db,
		MaxBytes: 20 << 20, // 20 MB
	}
}

// UploadExcel accepts a multipart spreadsheet upload and imports its rows in
// a single transaction. The filename extension is checked before any decode
// is attempted.
func (h *ImportsHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeError(w, http.StatusBadRequest, "INVALID_CONTENT_TYPE", "content-type must be multipart/form-data")
		return
	}

	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "file is required: "+err.Error())
		return
	}
	defer file.Close()

	if !isSpreadsheet(header.Filename) {
		writeError(w, http.StatusBadRequest, "INVALID_FILE_FORMAT", "Invalid file format. Please upload an Excel file.")
		return
	}

	importID := uuid.New().String()
	uid := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		uid = claims.UID
	}

	count, err := importer.Import(r.Context(), h.DB, file)
	if err != nil {
		var missing *importer.MissingColumnsError
		if errors.As(err, &missing) {
			writeError(w, http.StatusBadRequest, "MISSING_COLUMNS", missing.Error())
			return
		}
		slog.Error("bulk import failed", "import_id", importID, "uid", uid, "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "IMPORT_FAILED", "Error processing file: "+err.Error())
		return
	}

	slog.Info("bulk import complete", "import_id", importID, "uid", uid, "file", header.Filename, "rows", count)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Successfully uploaded %d items", count),
	})
}

// isSpreadsheet checks the filename extension. Content is not sniffed; a
// mislabeled file fails later at decode time.
func isSpreadsheet(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls")
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes a structured error payload
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, auth.ErrorResponse{Error: message, Code: code})
}
