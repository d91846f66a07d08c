package usecase

import (
	"context"
	"net/http"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

// GET /transactionsの入力DTO
type ListTransactionsInput struct {
	Page  int
	Limit int

	ProductID       *int64
	TransactionType string // "" / "sold" / "restocked"
	From            *time.Time
	To              *time.Time
}

type TransactionListOutput struct {
	Transactions []model.StockLog `json:"transactions"`
	Total        int64            `json:"total"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	TotalPages   int              `json:"total_pages"`
	HasPrev      bool             `json:"has_prev"`
	HasNext      bool             `json:"has_next"`
}

// LedgerUsecaseは台帳の読み取り専用の口。書き込みはStockUsecaseだけ。
type LedgerUsecase struct {
	logRepo repo.StockLogRepository
}

// DI
func NewLedgerUsecase(logRepo repo.StockLogRepository) *LedgerUsecase {
	return &LedgerUsecase{logRepo: logRepo}
}

// コミット順（created_at, id 昇順）でページを返す。
func (u *LedgerUsecase) ListTransactions(ctx context.Context, in ListTransactionsInput) (TransactionListOutput, error) {
	if in.Page < 1 {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.ProductID != nil && *in.ProductID <= 0 {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	var kind *model.TransactionType
	switch in.TransactionType {
	case "":
	case string(model.TransactionSold), string(model.TransactionRestocked):
		t := model.TransactionType(in.TransactionType)
		kind = &t
	default:
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid transaction type")
	}

	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	logs, total, err := u.logRepo.List(ctx, repo.StockLogQuery{
		Page:            in.Page,
		Limit:           in.Limit,
		ProductID:       in.ProductID,
		TransactionType: kind,
		CreatedFrom:     in.From,
		CreatedTo:       in.To,
	})
	if err != nil {
		return TransactionListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	totalPages := int((total + int64(in.Limit) - 1) / int64(in.Limit))

	return TransactionListOutput{
		Transactions: logs,
		Total:        total,
		Page:         in.Page,
		Limit:        in.Limit,
		TotalPages:   totalPages,
		HasPrev:      in.Page > 1,
		HasNext:      in.Page < totalPages,
	}, nil
}
