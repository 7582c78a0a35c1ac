package rabbit

import (
	"context"
	"time"

	"github.com/polarclim/analysis_launcher/log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultRetryDelay = 5 * time.Second

// ReconnectorRabbitMQ dials the broker and hands a channel to setup and
// run, redialing after retryDelay whenever any step fails. It returns
// nil once run finishes cleanly or ctx ends.
func ReconnectorRabbitMQ(ctx context.Context, url, queueName string, retryDelay time.Duration, setup, run func(ch *amqp.Channel) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			log.Logger.WithError(err).Error("Failed to connect to RabbitMQ instance")
			if !retryWait(ctx, retryDelay) {
				return nil
			}
			continue
		}

		ch, err := conn.Channel()
		if err != nil {
			log.Logger.WithError(err).Error("Failed to open channel")
			conn.Close()
			if !retryWait(ctx, retryDelay) {
				return nil
			}
			continue
		}

		if err := setup(ch); err != nil {
			log.Logger.WithError(err).Error("Setup failed")
			ch.Close()
			conn.Close()
			if !retryWait(ctx, retryDelay) {
				return nil
			}
			continue
		}

		log.Logger.Infof("Successfully connected to RabbitMQ queue='%s', ready to run", queueName)
		err = run(ch)

		ch.Close()
		conn.Close()

		if err != nil {
			log.Logger.Warnf("Queue='%s' connection attempt failed: %v, reconnecting...", queueName, err)
			if !retryWait(ctx, retryDelay) {
				return nil
			}
			continue
		}

		return nil
	}
}

// retryWait blocks for the retry delay, returning false when ctx ended
// first.
func retryWait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
