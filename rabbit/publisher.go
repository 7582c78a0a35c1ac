package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

const eventsQueue = "analysis.events"

// PublishStreamingEvents forwards launch events from the channel to the
// events queue until ctx is done or the channel closes.
func PublishStreamingEvents(
	ctx context.Context,
	url string,
	events <-chan types.StreamingJobEvent,
) error {
	return ReconnectorRabbitMQ(ctx, url, eventsQueue, defaultRetryDelay,
		func(ch *amqp.Channel) error {
			_, err := ch.QueueDeclare(eventsQueue, true, false, false, false, nil)
			return err
		},
		func(ch *amqp.Channel) error {
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						log.Logger.Info("Events channel closed. Exiting publisher.")
						return nil
					}

					body, err := json.Marshal(ev)
					if err != nil {
						log.Logger.WithError(err).Error("Failed to marshal streaming event")
						continue
					}

					err = ch.PublishWithContext(ctx,
						"",          // default exchange
						eventsQueue, // routing key
						false,       // mandatory
						false,       // immediate
						amqp.Publishing{
							ContentType: "application/json",
							Body:        body,
						})
					if err != nil {
						return fmt.Errorf("failed to publish event: %w", err)
					}

				case <-ctx.Done():
					return nil
				}
			}
		})
}
