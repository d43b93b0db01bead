package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "busgo/internal/config"
	intdb "busgo/internal/db"
	"busgo/internal/events"
	router "busgo/internal/http"
	"busgo/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	conn := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := intdb.Migrate(migrateCtx, conn); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}
	cancelMigrate()

	intconfig.InitCache(env.StatsCacheTTL)

	rdb, err := intconfig.ConnectRedis(env)
	if err != nil {
		log.Printf("warning: redis unavailable, idempotency keys disabled: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher events.Publisher = events.LogPublisher{}
	if len(env.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(events.KafkaConfig{Brokers: env.KafkaBrokers, Topic: env.KafkaTopic})
		log.Printf("Publishing booking events to kafka topic %s", kp.Topic())
		publisher = kp
	}
	defer publisher.Close()

	r := router.NewRouter(env, router.Deps{
		Auth:      services.AuthService{DB: conn, Secret: []byte(env.JWTSecret), TTL: env.JWTTTL},
		Publisher: publisher,
		Redis:     rdb,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly.")
}
