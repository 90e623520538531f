package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"gutendex/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	binder  *httpx.Binder
	log     *slog.Logger
}

func NewHTTPHandler(service *Service, binder *httpx.Binder, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, binder: binder, log: log}
}

// ListResponse is the catalog listing envelope.
type ListResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Book  `json:"results"`
}

// List handles GET /books
// @Summary List catalog books
// @Description Filtered, deduplicated, paginated listing of eligible books
// @Tags books
// @Produce json
// @Param sort query string false "ascending | descending (default: popularity)"
// @Param author_year_end query int false "Keep books with an author born or dead on or before this year"
// @Param author_year_start query int false "Keep books with an author born or dead on or after this year"
// @Param copyright query string false "Comma-separated subset of true,false,null to keep"
// @Param ids query string false "Comma-separated external ids"
// @Param languages query string false "Comma-separated language codes"
// @Param mime_type query string false "MIME type prefix"
// @Param search query string false "Words matched against author names and titles"
// @Param topic query string false "Matched against bookshelves and subjects"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Skip count" default(0)
// @Success 200 {object} ListResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	var params ListParams
	if err := h.binder.BindQuery(r, &params); err != nil {
		httpx.WriteBindError(w, r, err)
		return
	}

	page := params.Page()
	result, err := h.service.List(r.Context(), params.Filter(), page)
	if err != nil {
		h.log.Error("list books", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONInternalError(w, r)
		return
	}

	next, previous := pageLinks(r, page, result.Count)
	results := result.Books
	if results == nil {
		results = []Book{}
	}
	httpx.JSON(w, http.StatusOK, ListResponse{
		Count:    result.Count,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}

// Get handles GET /books/{id}
// @Summary Get a book by external id
// @Tags books
// @Produce json
// @Param id path int true "External book id"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input",
			[]httpx.ErrorDetail{{Field: "id", Message: "id must be a valid int"}})
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		h.log.Error("get book", "error", err, "book_id", id, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONInternalError(w, r)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}
