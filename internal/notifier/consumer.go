package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"gameswap-api/internal/cache"
	"gameswap-api/internal/event"
	"gameswap-api/internal/model"
	"gameswap-api/internal/repository"

	"github.com/segmentio/kafka-go"
)

// Consumer subscribes to user-events and offer-events under a consumer
// group and dispatches notification emails. Delivery is at-least-once:
// nothing in here may crash the loop, and every failure is logged and
// left behind. The delivery log filters redelivered messages so a group
// never emails twice for the same log entry.
type Consumer struct {
	reader     *kafka.Reader
	users      repository.UserRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	mailer     Mailer
	deliveries repository.DeliveryLogRepository
}

// Config holds consumer group settings.
type Config struct {
	Brokers []string
	GroupID string
}

// Deps holds the consumer's collaborators. Cache and Deliveries are
// optional; Users and Mailer are required.
type Deps struct {
	Users      repository.UserRepository
	Cache      cache.Cache
	CacheTTL   time.Duration
	Mailer     Mailer
	Deliveries repository.DeliveryLogRepository
}

// New creates a consumer joined to the given group. StartOffset is the
// log tail: first startup sees new events only, no historical replay.
func New(cfg Config, deps Deps) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: []string{event.TopicUserEvents, event.TopicOfferEvents},
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})

	c := newDispatcher(deps)
	c.reader = reader
	return c
}

// newDispatcher builds a consumer without a reader, for feeding messages
// directly through HandleMessage.
func newDispatcher(deps Deps) *Consumer {
	ttl := deps.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Consumer{
		users:      deps.Users,
		cache:      deps.Cache,
		cacheTTL:   ttl,
		mailer:     deps.Mailer,
		deliveries: deps.Deliveries,
	}
}

// Run processes messages until ctx is cancelled or the reader closes.
func (c *Consumer) Run(ctx context.Context) error {
	log.Printf("[Notifier] Consuming %v", []string{event.TopicUserEvents, event.TopicOfferEvents})
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			log.Printf("[Notifier] Read error: %v", err)
			continue
		}
		c.HandleMessage(ctx, msg.Topic, msg.Partition, msg.Offset, msg.Value)
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// HandleMessage dispatches one event. Unknown topics and event types are
// ignored; a user lookup miss skips that email; any processing error is
// logged and the message is considered handled.
func (c *Consumer) HandleMessage(ctx context.Context, topic string, partition int, offset int64, value []byte) {
	var evt model.Event
	if err := json.Unmarshal(value, &evt); err != nil {
		log.Printf("[Notifier] Skipping malformed message at %s/%d@%d: %v", topic, partition, offset, err)
		return
	}

	switch topic {
	case event.TopicUserEvents:
		if evt.EventType != model.EventPasswordChanged {
			return
		}
		user := c.lookupUser(ctx, evt.UserID)
		if user == nil {
			return
		}
		c.send(ctx, topic, partition, offset, user.Email,
			passwordChangedSubject, fmt.Sprintf(passwordChangedBody, user.Username))

	case event.TopicOfferEvents:
		tmpl, ok := offerTemplates[evt.EventType]
		if !ok {
			return
		}
		if initiator := c.lookupUser(ctx, evt.InitiatingUserID); initiator != nil {
			c.send(ctx, topic, partition, offset, initiator.Email,
				tmpl.initiatorSubject, fmt.Sprintf(tmpl.initiatorBody, initiator.Username))
		}
		if target := c.lookupUser(ctx, evt.TargetUserID); target != nil {
			c.send(ctx, topic, partition, offset, target.Email,
				tmpl.targetSubject, fmt.Sprintf(tmpl.targetBody, target.Username))
		}
	}
}

// lookupUser resolves a user id to its summary, through the cache when
// one is configured. A deleted user or a store error resolves to nil.
func (c *Consumer) lookupUser(ctx context.Context, id string) *model.UserSummary {
	if id == "" {
		return nil
	}

	fetch := func() ([]byte, error) {
		user, err := c.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return json.Marshal(user.Summary())
	}

	var data []byte
	var err error
	if c.cache != nil {
		data, err = c.cache.GetOrSet(ctx, "user:"+id, c.cacheTTL, fetch)
	} else {
		data, err = fetch()
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("[Notifier] User lookup %s failed: %v", id, err)
		}
		return nil
	}

	var summary model.UserSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		log.Printf("[Notifier] Corrupt cache entry for user %s: %v", id, err)
		return nil
	}
	return &summary
}

// send records the delivery, then mails. A delivery already in the log
// means this message was redelivered; the email is skipped.
func (c *Consumer) send(ctx context.Context, topic string, partition int, offset int64, to, subject, body string) {
	if c.deliveries != nil {
		fresh, err := c.deliveries.MarkSent(ctx, topic, partition, offset, to, subject)
		if err != nil {
			log.Printf("[Notifier] Delivery log error for %s: %v", to, err)
		} else if !fresh {
			log.Printf("[Notifier] Skipping duplicate delivery to %s (%s/%d@%d)", to, topic, partition, offset)
			return
		}
	}

	if err := c.mailer.Send(ctx, to, subject, body); err != nil {
		log.Printf("[Notifier] %v", err)
		return
	}
	log.Printf("[Notifier] Sent %q to %s", subject, to)
}
