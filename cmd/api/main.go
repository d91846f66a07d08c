package main

import (
	"strconv"
	"time"

	"inventory/internal/config"
	"inventory/internal/domain/model"
	"inventory/internal/handler"
	"inventory/internal/infra/cache"
	"inventory/internal/infra/db"
	"inventory/internal/infra/messaging"
	infraRepo "inventory/internal/infra/repository"
	"inventory/internal/middleware"
	repo "inventory/internal/repository"
	"inventory/internal/server"
	"inventory/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.StockLog{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	stockLogRepo := infraRepo.NewStockLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//商品キャッシュ（REDIS_ADDRがあるときだけ）
	var productCache repo.ProductCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		productCache = cache.NewProductRedisCache(rdb, 5*time.Minute)
		logger.Info("product cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	//在庫イベント配信（RABBITMQ_URLがあるときだけ）
	var stockEvents repo.StockEventPublisher
	if cfg.RabbitMQURL != "" {
		conn, ch, err := messaging.SetupConn(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, stock events disabled", zap.Error(err))
		} else {
			defer conn.Close()
			stockEvents = messaging.NewStockRabbitPublisher(ch)
			logger.Info("stock event publisher enabled")
		}
	}

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.AccessTokenTTL) * time.Minute,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, hasher, verifier, issuer, clock)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, productCache)
	stockUC := usecase.NewStockUsecase(txManager, productCache, stockEvents, logger)
	ledgerUC := usecase.NewLedgerUsecase(stockLogRepo)

	//Server起動
	e := server.New(logger)
	authMW := middleware.AuthJWT(cfg)

	handler.NewAuthHandler(authUC).RegisterRoutes(e)
	handler.NewCategoryHandler(categoryUC).RegisterRoutes(e, authMW)
	handler.NewProductHandler(productUC).RegisterRoutes(e, authMW)
	handler.NewStockHandler(stockUC).RegisterRoutes(e, authMW)
	handler.NewTransactionHandler(ledgerUC).RegisterRoutes(e, authMW)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	logger.Info("server starting", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
