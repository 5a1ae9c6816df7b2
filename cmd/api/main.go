package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/auth"
	"github.com/essentials-shop/storefront/internal/cart"
	"github.com/essentials-shop/storefront/internal/catalog"
	"github.com/essentials-shop/storefront/internal/checkout"
	"github.com/essentials-shop/storefront/internal/config"
	"github.com/essentials-shop/storefront/internal/httpx"
	kafkax "github.com/essentials-shop/storefront/internal/kafka"
	"github.com/essentials-shop/storefront/internal/notify"
	"github.com/essentials-shop/storefront/internal/orders"
	"github.com/essentials-shop/storefront/internal/postgres"
	"github.com/essentials-shop/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg.AppEnv)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderConfirmed, 1024)
	prod.Start(ctx)

	// Services
	catalogReader := &catalog.Reader{DB: db}
	cartSvc := &cart.Service{
		Store:   &orders.CartRepo{DB: db},
		Catalog: catalogReader,
	}
	checkoutSvc := &checkout.Service{
		Store:       &orders.CheckoutRepo{DB: db},
		Dispatcher:  &notify.KafkaDispatcher{Producer: prod, Service: cfg.ServiceName},
		OrdersInbox: cfg.OrdersInbox,
		Log:         logger,
	}
	authSvc := &auth.Service{Users: &auth.UserRepo{DB: db}}
	tokens := &auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	smtpSender := &notify.SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
	}

	// Router & handlers
	router := httpx.NewRouter(logger, tokens.Middleware)
	(&httpx.AuthHandler{Auth: authSvc, Tokens: tokens, Log: logger}).Register(router)
	(&httpx.CatalogHandler{Catalog: catalogReader, Log: logger}).Register(router)
	(&httpx.CartHandler{Cart: cartSvc, Redis: rdb, Log: logger}).Register(router)
	(&httpx.CheckoutHandler{Checkout: checkoutSvc, Redis: rdb, Log: logger}).Register(router)
	(&httpx.ContactHandler{Inbox: cfg.OrdersInbox, Sender: smtpSender, Log: logger}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		l, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return l
}
