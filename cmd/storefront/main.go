package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/diprojose/nimvu-store/internal/domain"
	"github.com/diprojose/nimvu-store/internal/gateway"
	"github.com/diprojose/nimvu-store/internal/httpapi"
	"github.com/diprojose/nimvu-store/internal/orders"
	"github.com/diprojose/nimvu-store/internal/orders/publisher"
	"github.com/diprojose/nimvu-store/internal/orders/repository"
	"github.com/diprojose/nimvu-store/internal/signature"
	"github.com/diprojose/nimvu-store/internal/storage"
)

type Config struct {
	HTTPPort        string
	StateDir        string
	RedisAddr       string
	KafkaBrokers    []string
	IntegritySecret string
	PublicKey       string
	RedirectURL     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DB repository.Credentials
}

func loadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StateDir:        getEnv("STATE_DIR", "./state"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    brokers,
		IntegritySecret: os.Getenv("WOMPI_INTEGRITY_SECRET"),
		PublicKey:       os.Getenv("WOMPI_PUBLIC_KEY"),
		RedirectURL:     getEnv("PAYMENT_REDIRECT_URL", "http://localhost:8080/order"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DB: repository.Credentials{
			Host:              getEnv("ORDERS_DB_HOST", "localhost"),
			Port:              getEnvInt("ORDERS_DB_PORT", 5432),
			User:              getEnv("ORDERS_DB_USER", "postgres"),
			Password:          getEnv("ORDERS_DB_PASSWORD", "postgres"),
			DBName:            getEnv("ORDERS_DB_NAME", "storefront"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "./migrations"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// localSignatures serves signatures in-process; the secret never crosses a
// network boundary this way.
type localSignatures struct {
	signer *signature.Signer
}

func (l localSignatures) FetchSignature(_ context.Context, descriptor domain.PaymentDescriptor) (string, error) {
	return l.signer.Sign(descriptor)
}

func main() {
	cfg := loadConfig()

	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to orders database: %v", err)
	}
	defer repo.Close()
	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ordersService := orders.NewService(repo)

	signer := signature.NewSigner(cfg.IntegritySecret)
	signatureHandler := signature.NewHandler(signer)

	storeFactory := fileStoreFactory(cfg.StateDir)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		storeFactory = func(sessionID string) (storage.Store, error) {
			return storage.NewRedisStore(redisClient, sessionID), nil
		}
	}

	var ordersClient orders.Client = ordersService
	if url := os.Getenv("ORDERS_API_URL"); url != "" {
		ordersClient = orders.NewHTTPClient(url, cfg.RequestTimeout)
	}

	var signatures gateway.SignatureClient = localSignatures{signer: signer}
	if url := os.Getenv("SIGNATURE_API_URL"); url != "" {
		signatures = gateway.NewHTTPSignatureClient(url, cfg.RequestTimeout)
	}

	sessions := httpapi.NewSessionManager(
		storeFactory,
		signatures,
		nil, // the widget runs in the browser, never server-side
		ordersClient,
		cfg.PublicKey,
		cfg.RedirectURL,
	)

	cartHandler := httpapi.NewCartHandler(sessions)
	checkoutHandler := httpapi.NewCheckoutHandler(sessions)
	ordersHandler := httpapi.NewOrdersHandler(ordersService)
	confirmationHandler := httpapi.NewConfirmationHandler(sessions)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(httpapi.SessionMiddleware)
	r.Use(httpapi.IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{line_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{line_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Post("/checkout", checkoutHandler.StartCheckout)
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordersHandler.CreateOrder)
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
	})
	r.Post("/api/wompi/signature", signatureHandler.Sign)
	r.Get("/order", confirmationHandler.Confirm)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
		defer poller.Close()
		go poller.Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func fileStoreFactory(baseDir string) httpapi.StoreFactory {
	return func(sessionID string) (storage.Store, error) {
		return storage.NewFileStore(filepath.Join(baseDir, sessionID))
	}
}
