package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// HTTPErrorのステータスとメッセージを確認する共通ヘルパー
func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	assert.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
		assert.Contains(t, he.Message, msg)
	}
}

type StockLogRepoMock struct{ mock.Mock }

func (m *StockLogRepoMock) Create(ctx context.Context, log model.StockLog) (model.StockLog, error) {
	panic("not used in LedgerUsecase tests")
}

func (m *StockLogRepoMock) List(ctx context.Context, q repo.StockLogQuery) ([]model.StockLog, int64, error) {
	args := m.Called(ctx, q)
	logs, _ := args.Get(0).([]model.StockLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

// =====================
// 入力チェック
// =====================

func TestLedgerUsecase_ListTransactions_InvalidPage(t *testing.T) {
	uc := usecase.NewLedgerUsecase(new(StockLogRepoMock))

	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 0, Limit: 20})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid page")
}

func TestLedgerUsecase_ListTransactions_InvalidLimit(t *testing.T) {
	uc := usecase.NewLedgerUsecase(new(StockLogRepoMock))

	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 1, Limit: 0})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid limit")

	_, err = uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 1, Limit: 101})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid limit")
}

func TestLedgerUsecase_ListTransactions_InvalidProductID(t *testing.T) {
	uc := usecase.NewLedgerUsecase(new(StockLogRepoMock))

	pid := int64(0)
	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 1, Limit: 20, ProductID: &pid})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid product_id")
}

func TestLedgerUsecase_ListTransactions_InvalidType(t *testing.T) {
	uc := usecase.NewLedgerUsecase(new(StockLogRepoMock))

	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		Page: 1, Limit: 20, TransactionType: "returned",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid transaction type")
}

func TestLedgerUsecase_ListTransactions_FromAfterTo(t *testing.T) {
	uc := usecase.NewLedgerUsecase(new(StockLogRepoMock))

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		Page: 1, Limit: 20, From: &from, To: &to,
	})
	assertHTTPError(t, err, http.StatusBadRequest, "from must be <= to")
}

// =====================
// ページング
// =====================

func TestLedgerUsecase_ListTransactions_PaginationMetadata(t *testing.T) {
	logRepo := new(StockLogRepoMock)
	uc := usecase.NewLedgerUsecase(logRepo)

	logs := []model.StockLog{
		{ID: 21, ProductID: 1, TransactionType: model.TransactionSold, Quantity: 1},
		{ID: 22, ProductID: 1, TransactionType: model.TransactionRestocked, Quantity: 10},
	}
	logRepo.On("List", mock.Anything, repo.StockLogQuery{Page: 2, Limit: 20}).
		Return(logs, int64(45), nil)

	out, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 2, Limit: 20})
	assert.NoError(t, err)

	//total=45, limit=20 → 3ページ。2ページ目は前後どちらもある
	assert.Equal(t, int64(45), out.Total)
	assert.Equal(t, 3, out.TotalPages)
	assert.True(t, out.HasPrev)
	assert.True(t, out.HasNext)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 20, out.Limit)
	assert.Len(t, out.Transactions, 2)

	logRepo.AssertExpectations(t)
}

func TestLedgerUsecase_ListTransactions_LastPage(t *testing.T) {
	logRepo := new(StockLogRepoMock)
	uc := usecase.NewLedgerUsecase(logRepo)

	logRepo.On("List", mock.Anything, repo.StockLogQuery{Page: 3, Limit: 20}).
		Return([]model.StockLog{{ID: 41}}, int64(41), nil)

	out, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 3, Limit: 20})
	assert.NoError(t, err)

	assert.Equal(t, 3, out.TotalPages)
	assert.True(t, out.HasPrev)
	assert.False(t, out.HasNext)
}

func TestLedgerUsecase_ListTransactions_Empty(t *testing.T) {
	logRepo := new(StockLogRepoMock)
	uc := usecase.NewLedgerUsecase(logRepo)

	logRepo.On("List", mock.Anything, repo.StockLogQuery{Page: 1, Limit: 20}).
		Return([]model.StockLog{}, int64(0), nil)

	out, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 1, Limit: 20})
	assert.NoError(t, err)

	assert.Equal(t, 0, out.TotalPages)
	assert.False(t, out.HasPrev)
	assert.False(t, out.HasNext)
	assert.Empty(t, out.Transactions)
}

// =====================
// 絞り込みの受け渡し
// =====================

func TestLedgerUsecase_ListTransactions_PassesFilters(t *testing.T) {
	logRepo := new(StockLogRepoMock)
	uc := usecase.NewLedgerUsecase(logRepo)

	pid := int64(7)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	logRepo.On("List", mock.Anything, mock.MatchedBy(func(q repo.StockLogQuery) bool {
		return q.Page == 1 && q.Limit == 50 &&
			q.ProductID != nil && *q.ProductID == 7 &&
			q.TransactionType != nil && *q.TransactionType == model.TransactionSold &&
			q.CreatedFrom != nil && q.CreatedFrom.Equal(from) &&
			q.CreatedTo != nil && q.CreatedTo.Equal(to)
	})).Return([]model.StockLog{}, int64(0), nil)

	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		Page:            1,
		Limit:           50,
		ProductID:       &pid,
		TransactionType: "sold",
		From:            &from,
		To:              &to,
	})
	assert.NoError(t, err)

	logRepo.AssertExpectations(t)
}

func TestLedgerUsecase_ListTransactions_DBError(t *testing.T) {
	logRepo := new(StockLogRepoMock)
	uc := usecase.NewLedgerUsecase(logRepo)

	logRepo.On("List", mock.Anything, mock.Anything).
		Return([]model.StockLog(nil), int64(0), errors.New("db down"))

	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{Page: 1, Limit: 20})
	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
}
