package handler

import (
	"net/http"
	"strconv"
	"time"

	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GET /transactions（台帳の読み取り）
type TransactionHandler struct {
	uc *usecase.LedgerUsecase
}

// DI
func NewTransactionHandler(uc *usecase.LedgerUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

func (h *TransactionHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	e.GET("/transactions", h.list, authMW)
}

func (h *TransactionHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	var productID *int64
	if v := c.QueryParam("product_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
		}
		productID = &x
	}

	// from/to は日付（YYYY-MM-DD）。fromはその日の0時、toはその日の終わりに丸める
	var from *time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		from = &t
	}

	var to *time.Time
	if v := c.QueryParam("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	out, err := h.uc.ListTransactions(c.Request().Context(), usecase.ListTransactionsInput{
		Page:            page,
		Limit:           limit,
		ProductID:       productID,
		TransactionType: c.QueryParam("type"),
		From:            from,
		To:              to,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
