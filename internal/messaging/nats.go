// Package messaging carries booking events over NATS Streaming.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/stan.go"
	"github.com/sirupsen/logrus"
)

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
	Subject   string
}

type NATSClient struct {
	conn    stan.Conn
	subject string
	log     *logrus.Logger
}

func NewNATSClient(cfg Config, log *logrus.Logger) (*NATSClient, error) {
	conn, err := stan.Connect(cfg.ClusterID, cfg.ClientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	log.WithFields(logrus.Fields{"url": cfg.URL, "cluster": cfg.ClusterID, "client": cfg.ClientID}).Info("connected to NATS Streaming")
	return &NATSClient{conn: conn, subject: cfg.Subject, log: log}, nil
}

// Send publishes payload on the configured subject. stan has no message keys,
// so key is only used for logging.
func (nc *NATSClient) Send(_ context.Context, key string, payload []byte) error {
	if err := nc.conn.Publish(nc.subject, payload); err != nil {
		return fmt.Errorf("failed to publish %s to subject %s: %w", key, nc.subject, err)
	}
	return nil
}

// Consume subscribes to the subject in a durable queue group and blocks until
// ctx is done. Messages are acknowledged only after handler succeeds.
func (nc *NATSClient) Consume(ctx context.Context, queue string, handler func(context.Context, []byte) error) error {
	sub, err := nc.conn.QueueSubscribe(nc.subject, queue, func(msg *stan.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			nc.log.WithError(err).WithField("sequence", msg.Sequence).Warn("booking event rejected")
			return
		}
		_ = msg.Ack()
	},
		stan.DurableName(nc.subject+"-"+queue+"-durable"),
		stan.SetManualAckMode(),
		stan.AckWait(30*time.Second),
		stan.MaxInflight(1),
	)
	if err != nil {
		return fmt.Errorf("failed to queue subscribe to subject %s: %w", nc.subject, err)
	}
	defer func() { _ = sub.Close() }()

	<-ctx.Done()
	return nil
}

func (nc *NATSClient) Close() error {
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
