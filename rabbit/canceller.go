package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

const cancelExchange = "analysis.cancel"

func StartJobCanceller(
	ctx context.Context,
	url string,
	cancellations chan<- types.CancelJobRequest,
) error {
	return ReconnectorRabbitMQ(
		ctx,
		url,
		cancelExchange,
		defaultRetryDelay,
		func(ch *amqp.Channel) error {
			return ch.ExchangeDeclare(
				cancelExchange,
				"fanout",
				true,
				false,
				false,
				false,
				nil,
			)
		},
		func(ch *amqp.Channel) error {
			q, err := ch.QueueDeclare(
				"",
				false,
				true,
				true,
				false,
				nil,
			)
			if err != nil {
				return err
			}

			if err := ch.QueueBind(
				q.Name,
				"",
				cancelExchange,
				false,
				nil,
			); err != nil {
				return err
			}

			messages, err := ch.Consume(
				q.Name,
				"",
				true,
				false,
				false,
				false,
				nil,
			)
			if err != nil {
				return err
			}

			log.Logger.Infof("Listening for cancellations on exchange: %s", cancelExchange)
			for {
				select {
				case d, ok := <-messages:
					if !ok {
						return fmt.Errorf("cancellation channel closed")
					}

					var cancelReq types.CancelJobRequest
					if err := json.Unmarshal(d.Body, &cancelReq); err != nil {
						log.Logger.WithError(err).
							Error("Failed to unmarshal cancellation message")
						continue
					}
					cancellations <- cancelReq
					log.Logger.Trace("Received job cancellation broadcast")

				case <-ctx.Done():
					close(cancellations)
					return nil
				}
			}
		},
	)
}
