package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/deepsafe/safetext-go/internal/api"
	"github.com/deepsafe/safetext-go/internal/config"
	"github.com/deepsafe/safetext-go/internal/jobs"
	"github.com/deepsafe/safetext-go/internal/library"
	"github.com/deepsafe/safetext-go/internal/persistence"
	"github.com/deepsafe/safetext-go/internal/service"
	"github.com/deepsafe/safetext-go/internal/wordlist"
)

const serviceName = "safetext"

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("[daemon] failed to load configuration: %v", err)
	}

	switch cfg.System.LogLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}

	var wlOpts []wordlist.Option
	if cfg.Screen.WordlistDir != "" {
		wlOpts = append(wlOpts, wordlist.WithDir(cfg.Screen.WordlistDir))
	}
	words, err := wordlist.NewStore(wlOpts...)
	if err != nil {
		log.Fatalf("[daemon] failed to load word lists: %v", err)
	}
	if lang := cfg.Screen.Language; lang != "" && !words.Supported(lang) {
		log.Fatalf("[daemon] SAFETEXT_LANGUAGE %q has no word list", lang)
	}

	db, err := persistence.NewSQLiteStore(cfg.System.DBPath)
	if err != nil {
		log.Fatalf("[daemon] failed to open database %s: %v", cfg.System.DBPath, err)
	}
	defer db.Close()

	queue := jobs.NewQueue(cfg.Screen.WorkerCount, db)
	scanner := library.NewScanner(cfg.Screen.MediaDirs, cfg.Screen.OutputSuffix)
	screener := service.NewScreener(words, service.ScreenerConfig{
		Language:      cfg.Screen.Language,
		SampleCues:    cfg.Screen.SampleCues,
		WriteCensored: cfg.Screen.WriteCensored,
		OutputSuffix:  cfg.Screen.OutputSuffix,
	})
	svc := service.NewRunnableScreenService(cfg.Screen.CronExpr, scanner, queue, screener, db)

	var kafkaWriter *kafka.Writer
	if cfg.Kafka.Addr != "" && cfg.Kafka.Topic != "" {
		kafkaWriter = &kafka.Writer{
			Addr:  kafka.TCP(cfg.Kafka.Addr),
			Topic: cfg.Kafka.Topic,
		}
		if err := createTopic(kafkaWriter.Addr.String(), kafkaWriter.Topic); err != nil {
			log.Warnf("[daemon] failed to create Kafka topic: %v", err)
		}
		defer kafkaWriter.Close()
	} else {
		log.Warn("[daemon] kafka was not configured, access logs will not be sent to Kafka")
	}

	httpAPI, err := api.New(serviceName, words, kafkaWriter,
		api.WithReports(db),
		api.WithQueue(queue),
		api.WithSchedule(cfg.Screen.CronExpr, svc.LastScan),
	)
	if err != nil {
		log.Fatalf("[daemon] failed to create API: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduleDone := make(chan struct{})
	go func() {
		defer close(scheduleDone)
		if err := svc.Schedule(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("[daemon] screening schedule stopped: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: httpAPI.Router(),
	}
	go func() {
		log.Infof("[daemon] HTTP API listening on %v", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[daemon] HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("[daemon] shutting down")

	cancel()
	<-scheduleDone

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[daemon] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[daemon] HTTP server shut down gracefully")
	}
}

func createTopic(broker, topic string) error {
	conn, err := kafka.DialContext(context.Background(), "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
