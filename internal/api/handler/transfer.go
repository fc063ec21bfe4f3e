package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mcoot/scorepad/internal/api/response"
	"github.com/mcoot/scorepad/internal/services/transfer"
)

// maxImportBytes bounds the size of an uploaded backup document
const maxImportBytes = 32 << 20

// TransferHandler handles export and import endpoints
type TransferHandler struct {
	transfer *transfer.Service
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(service *transfer.Service) *TransferHandler {
	return &TransferHandler{transfer: service}
}

// Export handles GET /api/v1/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.transfer.Export(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	data, err := doc.Encode()
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", transfer.FileName(doc.Exported)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/v1/import. The body is a backup document and
// nothing is replaced unless confirm=true is given.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, NewInvalidRequestError("Backup file is too large"))
			return
		}
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	plan, err := h.transfer.Import(r.Context(), data, func(transfer.Plan) bool { return confirmed })
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ImportResultFromPlan(plan))
}
