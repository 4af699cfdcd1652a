package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"accounts/internal/domain/constants"
	"accounts/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// googlePubSubMailer enqueues messages on a Pub/Sub topic for the mail worker.
type googlePubSubMailer struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubMailer creates a Pub/Sub backed mailer after checking that the topic exists.
func NewGooglePubSubMailer(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.Mailer, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	mailer, err := newGooglePubSubMailer(ctx, client, projectID, topicID, logger)
	if err != nil {
		client.Close()

		return nil, err
	}

	return mailer, nil
}

func newGooglePubSubMailer(ctx context.Context, client *pubsub.Client, projectID, topicID string, logger *slog.Logger) (*googlePubSubMailer, error) {
	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicPath,
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	logger.Info("Google Pub/Sub mailer initialized",
		slog.String("project_id", projectID),
		slog.String("topic_id", topicID),
	)

	return &googlePubSubMailer{
		client:    client,
		publisher: client.Publisher(topicID),
		logger:    logger,
	}, nil
}

// Send publishes the message and waits for the server acknowledgement.
func (p *googlePubSubMailer) Send(ctx context.Context, msg *service.MailMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WithStack(err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: messageAttributes(msg),
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to publish mail message")
	}

	p.logger.InfoContext(ctx, "[GooglePubSub] Mail message published",
		slog.String("purpose", msg.Purpose),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close releases Pub/Sub client resources
func (p *googlePubSubMailer) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return errors.WithStack(p.client.Close())
	}

	return nil
}

// messageAttributes carries tracing and routing metadata outside the payload.
func messageAttributes(msg *service.MailMessage) map[string]string {
	attributes := map[string]string{}
	if msg.Purpose != "" {
		attributes[constants.AttrPurpose] = msg.Purpose
	}
	if msg.RequestID != "" {
		attributes[constants.AttrRequestID] = msg.RequestID
	}

	return attributes
}
