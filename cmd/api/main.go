package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"restaurant-orders/internal/catalog"
	"restaurant-orders/internal/config"
	"restaurant-orders/internal/db"
	"restaurant-orders/internal/httpserver"
	"restaurant-orders/internal/notify"
	cartrepo "restaurant-orders/internal/repository/cart"
	customerrepo "restaurant-orders/internal/repository/customer"
	orderrepo "restaurant-orders/internal/repository/order"
	cartsvc "restaurant-orders/internal/service/cart"
	checkoutsvc "restaurant-orders/internal/service/checkout"
	ordersvc "restaurant-orders/internal/service/order"
	sessionsvc "restaurant-orders/internal/service/session"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	publisher, closePublisher, err := buildPublisher(cfg)
	if err != nil {
		logger.Fatalf("init event publisher: %v", err)
	}
	defer closePublisher()

	notifier := notify.NewNotifier(publisher, logger, cfg.PublishTimeout)
	defer notifier.Close()

	catalogGateway := catalog.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(logger)
	orderRepo := orderrepo.NewPostgres(dbpool, customerRepo, logger)

	sessionService := sessionsvc.New()
	cartService := cartsvc.New(cartRepo, catalogGateway, sessionService, logger)
	checkoutService := checkoutsvc.New(cartRepo, orderRepo, catalogGateway, notifier, logger)
	orderService := ordersvc.New(orderRepo, notifier, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		OrderSvc:    orderService,
		Sessions:    sessionService,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func buildPublisher(cfg config.Config) (notify.Publisher, func(), error) {
	switch cfg.EventBroker {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return notify.NewRedisPublisher(client), func() { _ = client.Close() }, nil
	case "kafka":
		writer := &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
			Balancer: &kafka.LeastBytes{},
		}
		pub := notify.NewKafkaPublisher(writer)
		return pub, func() { _ = pub.Close() }, nil
	default:
		return nil, nil, errors.New("unknown EVENT_BROKER " + cfg.EventBroker)
	}
}
