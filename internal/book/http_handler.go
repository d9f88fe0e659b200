package book

import (
	"errors"
	"net/http"
	"strconv"

	"bookstore/internal/httpx"

	"go.uber.org/zap"
)

const (
	msgRoot             = "Bookstore API application"
	msgListFailed       = "All books not retrieved"
	msgCreateMissing    = "Kindly send all required fields title, author, publicationYear"
	msgCreateFutureYear = "The publication year is not in the past"
	msgCreateFailed     = "Failed to add new book to collection"
	msgSearchMissing    = "Please provide a search query"
	msgStatsFailed      = "Statistics Not Found"
	msgUpdateMissing    = "Kindly send all required fields, id, title, author, publicationYear"
	msgUpdated          = "Book updated successfully"
	msgUpdateFailed     = "Could not update as asked"
	msgNotFound         = "Book not found"
	msgDeleted          = "Book deleted successfully"
	msgDeleteFailed     = "The book with the given id does not exist"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{service: service, logger: logger}
}

// RegisterRoutes mounts the book routes and the root banner on mux.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("GET /books/search", h.Search)
	mux.HandleFunc("GET /books/stats", h.Stats)
	mux.HandleFunc("GET /books/{id}", h.Get)
	mux.HandleFunc("PUT /books/{id}", h.Update)
	mux.HandleFunc("DELETE /books/{id}", h.Delete)
}

// Root handles GET /
func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	httpx.Text(w, http.StatusOK, msgRoot)
}

// @Summary List books
// @Tags books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} ListResult
// @Failure 500 {object} httpx.MessageResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := atoiOr(query.Get("page"), DefaultPage)
	limit := atoiOr(query.Get("limit"), DefaultLimit)

	res, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list books", zap.Error(err))
		httpx.Message(w, http.StatusInternalServerError, msgListFailed)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Param book body Input true "Book fields"
// @Success 201 {object} Book
// @Failure 400 {object} httpx.MessageResponse
// @Failure 500 {object} httpx.MessageResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Message(w, http.StatusBadRequest, msgCreateMissing)
		return
	}

	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			httpx.Message(w, http.StatusBadRequest, msgCreateMissing)
		case errors.Is(err, ErrFutureYear):
			// Clients rely on a 500 here, not a 400.
			httpx.Message(w, http.StatusInternalServerError, msgCreateFutureYear)
		default:
			h.logger.Error("create book", zap.Error(err))
			httpx.Message(w, http.StatusInternalServerError, msgCreateFailed)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

// @Summary Search books by title or author
// @Tags books
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {array} Book
// @Failure 400 {object} httpx.MessageResponse
// @Router /books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, ErrMissingQuery) {
			httpx.Message(w, http.StatusBadRequest, msgSearchMissing)
			return
		}
		h.logger.Error("search books", zap.Error(err))
		httpx.Message(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// @Summary Collection statistics
// @Tags books
// @Produce json
// @Success 200 {object} Stats
// @Router /books/stats [get]
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("book stats", zap.Error(err))
		httpx.Message(w, http.StatusInternalServerError, msgStatsFailed)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// Get handles GET /books/{id}. A missing book is a 200 with a null body.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get book", zap.Error(err))
		httpx.Message(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Update handles PUT /books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Message(w, http.StatusBadRequest, msgUpdateMissing)
		return
	}

	err := h.service.Update(r.Context(), r.PathValue("id"), in)
	switch {
	case err == nil:
		httpx.Message(w, http.StatusOK, msgUpdated)
	case errors.Is(err, ErrMissingFields):
		httpx.Message(w, http.StatusBadRequest, msgUpdateMissing)
	case errors.Is(err, ErrNotFound):
		httpx.Message(w, http.StatusNotFound, msgNotFound)
	default:
		h.logger.Error("update book", zap.Error(err))
		httpx.Message(w, http.StatusInternalServerError, msgUpdateFailed)
	}
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		httpx.Message(w, http.StatusOK, msgDeleted)
	case errors.Is(err, ErrNotFound):
		httpx.Message(w, http.StatusNotFound, msgNotFound)
	default:
		h.logger.Error("delete book", zap.Error(err))
		httpx.Message(w, http.StatusInternalServerError, msgDeleteFailed)
	}
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
