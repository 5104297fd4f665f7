package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/przhevallsky/transferboss/internal/api/middlew"
	"github.com/przhevallsky/transferboss/internal/models"
	"github.com/przhevallsky/transferboss/internal/service"
	"github.com/przhevallsky/transferboss/pkg/response"
)

const IdempotencyKeyHeader = "X-Idempotency-Key"

type TransferHandler struct {
	service service.Transfers
}

func NewTransferHandler(service service.Transfers) *TransferHandler {
	return &TransferHandler{
		service: service,
	}
}

type cancelTransferRequest struct {
	Reason string `json:"reason"`
}

// CreateTransfer godoc
// @Summary      Создать перевод
// @Description  Создает перевод по котировке. Повтор с тем же ключом возвращает исходный перевод
// @Tags         transfers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key header string true "Ключ идемпотентности (UUID)"
// @Param        request body models.CreateTransferRequest true "Данные перевода"
// @Success      201 {object} models.TransferView
// @Success      200 {object} models.TransferView
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      422 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /transfers [post]
func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	const op = "handler.CreateTransfer"
	log := middlew.GetLogger(r.Context())
	senderID := middlew.GetSenderID(r.Context())

	keyStr := r.Header.Get(IdempotencyKeyHeader)
	key, err := uuid.Parse(keyStr)
	if err != nil {
		log.Warn("invalid idempotency key", slog.String("op", op), slog.String("key", keyStr))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_request", IdempotencyKeyHeader+" header must be a UUID")
		return
	}

	defer r.Body.Close()

	var req models.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	transfer, isNew, err := h.service.CreateTransfer(r.Context(), req.ToCommand(key, senderID))
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	view, err := h.describe(r, transfer)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	response.WriteJSONSuccess(w, log, status, view)
}

// GetTransfer godoc
// @Summary      Получить перевод
// @Tags         transfers
// @Security     BearerAuth
// @Produce      json
// @Param        transferID path string true "ID перевода"
// @Success      200 {object} models.TransferView
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /transfers/{transferID} [get]
func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	const op = "handler.GetTransfer"
	log := middlew.GetLogger(r.Context())

	id, ok := transferIDParam(w, r, log, op)
	if !ok {
		return
	}

	view, err := h.service.GetTransfer(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	if view.SenderID != middlew.GetSenderID(r.Context()) {
		log.Warn("transfer belongs to another sender", slog.String("op", op), slog.String("id", id.String()))
		response.WriteJSONError(w, log, http.StatusNotFound, "not_found", "Transfer not found")
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, view)
}

// ListTransfers godoc
// @Summary      Список переводов
// @Description  Переводы отправителя от новых к старым, постранично по курсору
// @Tags         transfers
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Размер страницы (1-100)"
// @Param        cursor query string false "Курсор следующей страницы"
// @Success      200 {object} models.TransferListResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Router       /transfers [get]
func (h *TransferHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	const op = "handler.ListTransfers"
	log := middlew.GetLogger(r.Context())

	limit := service.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn("invalid limit", slog.String("op", op), slog.String("limit", raw))
			response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_request", "limit must be an integer")
			return
		}
		limit = n
	}

	page, err := h.service.ListTransfers(r.Context(), middlew.GetSenderID(r.Context()), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	views, err := h.service.DescribeTransfers(r.Context(), page.Items)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, models.TransferListResponse{
		Items: views,
		Pagination: models.Pagination{
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
		},
	})
}

// CancelTransfer godoc
// @Summary      Отменить перевод
// @Description  Отмена возможна только до отправки партнеру
// @Tags         transfers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        transferID path string true "ID перевода"
// @Param        request body handlers.cancelTransferRequest false "Причина отмены"
// @Success      200 {object} models.TransferView
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Router       /transfers/{transferID}/cancel [post]
func (h *TransferHandler) CancelTransfer(w http.ResponseWriter, r *http.Request) {
	const op = "handler.CancelTransfer"
	log := middlew.GetLogger(r.Context())

	id, ok := transferIDParam(w, r, log, op)
	if !ok {
		return
	}

	defer r.Body.Close()

	var req cancelTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	transfer, err := h.service.CancelTransfer(r.Context(), middlew.GetSenderID(r.Context()), id, req.Reason)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	view, err := h.describe(r, transfer)
	if err != nil {
		writeServiceError(w, log, op, err)
		return
	}

	response.WriteJSONSuccess(w, log, http.StatusOK, view)
}

func (h *TransferHandler) describe(r *http.Request, t *models.Transfer) (*models.TransferView, error) {
	views, err := h.service.DescribeTransfers(r.Context(), []*models.Transfer{t})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func transferIDParam(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "transferID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Warn("invalid UUID", slog.String("op", op), slog.String("uuid", idStr))
		response.WriteJSONError(w, log, http.StatusBadRequest, "invalid_request", "Invalid transfer ID format")
		return uuid.Nil, false
	}
	return id, true
}
