package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// 在庫調整のエラー。handlerがHTTPステータスに変換する。
var (
	ErrInvalidProductID  = errors.New("invalid product id")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidReference  = errors.New("reference too long")
	ErrProductNotFound   = errors.New("product not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")

	//リトライを使い切った。部分的な書き込みは残っていない
	ErrAdjustConflict = errors.New("stock adjustment did not complete")
)

const (
	maxAdjustAttempts = 3
	adjustRetryWait   = 20 * time.Millisecond
	maxReferenceLen   = 255
)

type StockAdjustOutput struct {
	Product model.Product  `json:"product"`
	Entry   model.StockLog `json:"entry"`
}

// StockUsecaseは在庫数を書く唯一の経路。
// 「数量の変更」と「台帳への追記」を1トランザクションで確定させる。
type StockUsecase struct {
	tx     repo.TransactionManager
	cache  repo.ProductCache        // nilなら無効
	events repo.StockEventPublisher // nilなら無効
	logger *zap.Logger
}

// DI。loggerは必須（シングルトンにはしない）。
func NewStockUsecase(
	tx repo.TransactionManager,
	cache repo.ProductCache,
	events repo.StockEventPublisher,
	logger *zap.Logger,
) *StockUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockUsecase{
		tx:     tx,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// Restockは在庫を増やし、同じトランザクションでrestockedの台帳エントリを残す。
// 同じ引数で2回呼べば2回分増える（重複排除は呼び出し側の責務）。
func (u *StockUsecase) Restock(ctx context.Context, actorID int64, productID int64, qty int64, reference string) (StockAdjustOutput, error) {
	ref := strings.TrimSpace(reference)
	if err := validateAdjustInput(productID, qty, ref); err != nil {
		return StockAdjustOutput{}, err
	}

	return u.adjust(ctx, adjustment{
		productID: productID,
		actorID:   actorID,
		qty:       qty,
		kind:      model.TransactionRestocked,
		reference: ref,
	})
}

// Purchaseは在庫を減らし、soldの台帳エントリを残す。
// 現在庫のチェックはロック取得後、同一トランザクション内で行う。
func (u *StockUsecase) Purchase(ctx context.Context, actorID int64, productID int64, qty int64) (StockAdjustOutput, error) {
	if err := validateAdjustInput(productID, qty, ""); err != nil {
		return StockAdjustOutput{}, err
	}

	return u.adjust(ctx, adjustment{
		productID: productID,
		actorID:   actorID,
		qty:       qty,
		kind:      model.TransactionSold,
	})
}

func validateAdjustInput(productID int64, qty int64, reference string) error {
	if productID <= 0 {
		return ErrInvalidProductID
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if len(reference) > maxReferenceLen {
		return ErrInvalidReference
	}
	return nil
}

type adjustment struct {
	productID int64
	actorID   int64
	qty       int64
	kind      model.TransactionType
	reference string
}

// ロック競合・直列化失敗のときだけ、ロックの読みから全体をやり直す。
// 回数は有限（livelock防止）。業務エラーはリトライしない。
func (u *StockUsecase) adjust(ctx context.Context, a adjustment) (StockAdjustOutput, error) {
	var out StockAdjustOutput
	var err error

	for attempt := 1; ; attempt++ {
		out, err = u.tryAdjust(ctx, a)
		if err == nil {
			break
		}
		if !isRetryableTxError(err) {
			return StockAdjustOutput{}, err
		}
		if attempt >= maxAdjustAttempts {
			u.logger.Error("stock adjustment retries exhausted",
				zap.Int64("product_id", a.productID),
				zap.String("transaction_type", string(a.kind)),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return StockAdjustOutput{}, ErrAdjustConflict
		}

		u.logger.Warn("stock adjustment conflict, retrying",
			zap.Int64("product_id", a.productID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return StockAdjustOutput{}, ctx.Err()
		case <-time.After(adjustRetryWait * time.Duration(attempt)):
		}
	}

	//ここから下はコミット後。失敗しても調整は確定済みなのでログだけ残す
	if u.cache != nil {
		if err := u.cache.Delete(ctx, a.productID); err != nil {
			u.logger.Warn("product cache invalidation failed",
				zap.Int64("product_id", a.productID), zap.Error(err))
		}
	}
	if u.events != nil {
		ev := model.StockEvent{
			ProductID:       out.Product.ID,
			ActorID:         a.actorID,
			TransactionType: a.kind,
			Quantity:        a.qty,
			QuantityAfter:   out.Product.Quantity,
			OccurredAt:      out.Entry.CreatedAt,
		}
		if err := u.events.PublishStockChanged(ctx, ev); err != nil {
			u.logger.Warn("stock event publish failed",
				zap.Int64("product_id", a.productID), zap.Error(err))
		}
	}

	u.logger.Info("stock adjusted",
		zap.Int64("product_id", out.Product.ID),
		zap.Int64("actor_id", a.actorID),
		zap.String("transaction_type", string(a.kind)),
		zap.Int64("quantity", a.qty),
		zap.Int64("quantity_after", out.Product.Quantity),
	)

	return out, nil
}

// 1回分の調整。read-check-write-appendをすべて同一トランザクションで行う。
// 事前条件エラーは書き込み前に返すので、ロールバックすべきものは何も無い。
func (u *StockUsecase) tryAdjust(ctx context.Context, a adjustment) (StockAdjustOutput, error) {
	var out StockAdjustOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//行ロック付きで読む。存在確認もこの読みで行う
		//（チェックと更新の間に別トランザクションが入り込む隙を作らない）
		p, err := r.Products().FindByIDForUpdate(ctx, a.productID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		switch a.kind {
		case model.TransactionSold:
			if p.Quantity == 0 {
				return ErrOutOfStock
			}
			if p.Quantity < a.qty {
				return ErrInsufficientStock
			}
			ok, err := r.Products().DecreaseQuantityIfEnough(ctx, a.productID, a.qty)
			if err != nil {
				return err
			}
			if !ok {
				//ロック下では起きないはずの条件。起きたら事前条件エラー扱い
				return ErrInsufficientStock
			}
			p.Quantity -= a.qty

		case model.TransactionRestocked:
			if err := r.Products().IncreaseQuantity(ctx, a.productID, a.qty); err != nil {
				return err
			}
			p.Quantity += a.qty
		}

		entry, err := r.StockLogs().Create(ctx, model.StockLog{
			ProductID:       a.productID,
			ActorID:         a.actorID,
			TransactionType: a.kind,
			Quantity:        a.qty,
			Reference:       a.reference,
			CreatedAt:       time.Now(),
		})
		if err != nil {
			return err
		}

		out = StockAdjustOutput{Product: p, Entry: entry}
		return nil
	})
	if err != nil {
		return StockAdjustOutput{}, err
	}
	return out, nil
}

// PostgreSQLの直列化失敗（40001）とデッドロック（40P01）は再試行できる。
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
