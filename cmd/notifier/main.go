package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-hr-backend/config"
	"go-hr-backend/pkg/logger"
	"go-hr-backend/pkg/mailer"
	"go-hr-backend/pkg/queue"

	"github.com/wneessen/go-mail"
)

// logSender stands in for SMTP in development
type logSender struct{}

func (logSender) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	for _, m := range messages {
		logger.Log.Info("Email (not sent, SMTP not configured)", "subject", m.GetGenHeader(mail.HeaderSubject))
	}
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	if cfg.RabbitMQ.DSN == "" {
		logger.Log.Error("RABBITMQ_DSN is required for the notifier")
		os.Exit(1)
	}

	smtp := mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.MailFrom,
		UseSSL:   cfg.SMTP.UseSSL,
	}
	var sender mailer.Sender = logSender{}
	if smtp.IsConfigured() {
		client, err := mailer.NewClient(smtp)
		if err != nil {
			logger.Log.Error("Failed to create SMTP client", "error", err)
			os.Exit(1)
		}
		sender = client
	} else {
		logger.Log.Warn("SMTP not configured, emails are only logged")
	}
	m := mailer.New(sender, cfg.MailFrom)

	conn, err := queue.Dial(cfg.RabbitMQ.DSN, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Log.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch := conn.Channel()
	if err := ch.Qos(10, 0, false); err != nil {
		logger.Log.Error("Failed to set prefetch", "error", err)
		os.Exit(1)
	}
	deliveries, err := ch.Consume(cfg.RabbitMQ.Queue, "hr-notifier", false, false, false, false, nil)
	if err != nil {
		logger.Log.Error("Failed to start consuming", "queue", cfg.RabbitMQ.Queue, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("Notifier consuming", "queue", cfg.RabbitMQ.Queue)
	queue.Consume(ctx, deliveries, m.Handle)
	logger.Log.Info("Notifier exiting")
}
