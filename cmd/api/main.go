package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/inventory-analytics/internal/application"
	"github.com/bryanwahyu/inventory-analytics/internal/application/reports"
	"github.com/bryanwahyu/inventory-analytics/internal/config"
	aiclient "github.com/bryanwahyu/inventory-analytics/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/inventory-analytics/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/inventory-analytics/internal/infra/db/postgres"
	"github.com/bryanwahyu/inventory-analytics/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/inventory-analytics/internal/infra/storage"
	"github.com/bryanwahyu/inventory-analytics/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB sesuai driver
	var db *sql.DB
	svc := &reports.Service{
		Clock:     application.SystemClock{},
		ChurnDays: cfg.Analytics.ChurnDays,
	}
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		svc.Bills = postgresp.NewBillRepository(db)
		svc.Products = postgresp.NewProductRepository(db)
		svc.Suppliers = postgresp.NewSupplierRepository(db)
		svc.Demand = postgresp.NewDemandRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		svc.Bills = mysqlp.NewBillRepository(db)
		svc.Products = mysqlp.NewProductRepository(db)
		svc.Suppliers = mysqlp.NewSupplierRepository(db)
		svc.Demand = mysqlp.NewDemandRepository(db)
	}
	defer db.Close()

	refDate, err := cfg.ReferenceDate()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	svc.ReferenceDate = refDate

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	// init minio (opsional)
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Artifacts = store
		checkers["storage"] = &middleware.StorageHealthChecker{Ping: store.Ping}
	}

	// init AI client (opsional)
	if cfg.AI.APIKey != "" {
		svc.AI = aiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	}

	handler := httpserver.NewRouter(svc, checkers)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // model training happens in-request
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
