package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/mapper"
	"github.com/polarclim/analysis_launcher/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

const jobsQueue = "analysis.jobs"

func StartJobConsumer(
	ctx context.Context,
	url string,
	profiles map[string]types.DirectiveSet,
	jobs chan<- types.AnalysisJob,
) error {
	return ReconnectorRabbitMQ(ctx, url, jobsQueue, defaultRetryDelay,
		func(ch *amqp.Channel) error {
			_, err := ch.QueueDeclare(jobsQueue, true, false, false, false, nil)
			return err
		},
		func(ch *amqp.Channel) error {
			if err := ch.Qos(1, 0, false); err != nil {
				return err
			}

			msgs, err := ch.Consume(jobsQueue, "", false, false, false, false, nil)
			if err != nil {
				return err
			}

			for {
				select {
				case d, ok := <-msgs:
					if !ok {
						return fmt.Errorf("message channel closed")
					}

					processDelivery(d, profiles, jobs)
					if err := d.Ack(false); err != nil {
						log.Logger.WithError(err).Error("Failed to ack message")
					}

				case <-ctx.Done():
					close(jobs)
					return nil
				}
			}
		})
}

// Helper function to handle parsing and blocking send
func processDelivery(d amqp.Delivery, profiles map[string]types.DirectiveSet, jobs chan<- types.AnalysisJob) {
	if d.Body == nil {
		return
	}

	var req types.SubmitRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		log.Logger.WithError(err).Error("Failed to unmarshal MQ message")
		return
	}

	job, err := mapper.ConvertToAnalysisJob(&req, profiles)
	if err != nil {
		log.Logger.WithError(err).Error("Failed to convert SubmitRequest to AnalysisJob")
		return
	}

	jobs <- *job
}
