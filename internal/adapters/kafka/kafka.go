package kafka

import (
	"encoding/json"
	"strconv"

	"skab-service/internal/events"
	"skab-service/pkg/logger"

	"github.com/IBM/sarama"
)

func InitKafkaProducer(brokers []string, topic string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "skab-service"
	config.Producer.MaxMessageBytes = 1000000
	config.Producer.Flush.MaxMessages = 1000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return producer, nil
}

// EventPublisher mirrors domain events onto a kafka topic for downstream
// consumers (analytics, moderation). Publishing is best-effort: a broker
// error is logged, never surfaced to the mutation that triggered it.
type EventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewEventPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic, log: log}
}

// Start subscribes the publisher to the bus.
func (p *EventPublisher) Start(bus *events.Bus) {
	bus.Subscribe(p.handleEvent,
		events.TypeRequestSent,
		events.TypeRequestAccepted,
		events.TypeFriendshipRemoved,
		events.TypeUserBlocked,
		events.TypeUserUnblocked,
		events.TypeMessageCreated,
		events.TypeMessageDeleted,
		events.TypeNotification,
	)
}

type record struct {
	Type  string      `json:"type"`
	Event interface{} `json:"event"`
}

func (p *EventPublisher) handleEvent(e events.Event) {
	payload, err := json.Marshal(record{Type: string(e.EventType()), Event: e})
	if err != nil {
		p.log.Error("Failed to encode event for kafka", "type", string(e.EventType()), "error", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(partitionKey(e)),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		p.log.Error("Failed to publish event to kafka", "type", string(e.EventType()), "error", err)
	}
}

// partitionKey keeps events about the same subject on one partition so
// consumers see them in order.
func partitionKey(e events.Event) string {
	switch ev := e.(type) {
	case events.RequestSent:
		return strconv.FormatUint(uint64(ev.Request.ToID), 10)
	case events.RequestAccepted:
		return strconv.FormatUint(uint64(ev.Request.FromID), 10)
	case events.FriendshipRemoved:
		return strconv.FormatUint(uint64(ev.UserID), 10)
	case events.UserBlocked:
		return strconv.FormatUint(uint64(ev.BlockerID), 10)
	case events.UserUnblocked:
		return strconv.FormatUint(uint64(ev.BlockerID), 10)
	case events.MessageCreated:
		return ev.Message.ConversationKey
	case events.MessageDeleted:
		return ev.ConversationKey
	case events.NotificationCreated:
		return strconv.FormatUint(uint64(ev.Notification.OwnerID), 10)
	}
	return string(e.EventType())
}
