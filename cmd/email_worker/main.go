package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/config"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
	"github.com/oksasatya/campus-resource-tracker/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			handle(ctx, logger, mg, msg)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// handle renders and sends one job. Undecodable or unrenderable jobs are
// dropped; delivery failures are requeued.
func handle(ctx context.Context, logger *logrus.Logger, mg *mailer.Mailgun, msg amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		logger.WithError(err).Warn("bad message")
		_ = msg.Nack(false, false)
		return
	}
	entry := logger.WithFields(logrus.Fields{"template": job.Template, "message_id": msg.MessageId})

	m, err := job.Render()
	if err != nil {
		if errors.Is(err, mailer.ErrEmptyJob) {
			entry.Warn("empty job dropped")
		} else {
			entry.WithError(err).Error("render failed")
		}
		_ = msg.Nack(false, false)
		return
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := mg.Send(c, m); err != nil {
		entry.WithError(err).Warn("send failed; requeueing")
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
	entry.Info("email sent")
}
