package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

const publishTopic = "storefront.page.publish"

var _ PublishEventQueue = (*KafkaQueue)(nil)

// KafkaQueue is the broker-backed alternative to the redis queue for
// deployments that already run kafka. Selected via QUEUE_BACKEND=kafka.
type KafkaQueue struct {
	producer *kafka.Producer
	brokers  string
	groupID  string
}

func NewKafkaQueue(brokers, groupID string) (*KafkaQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	return &KafkaQueue{
		producer: producer,
		brokers:  brokers,
		groupID:  groupID,
	}, nil
}

func (q *KafkaQueue) Publish(ctx context.Context, event *PublishEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := publishTopic
	delivery := make(chan kafka.Event, 1)
	err = q.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.PageID),
		Value:          data,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		if msg, ok := e.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
			return msg.TopicPartition.Error
		}
	}

	return nil
}

func (q *KafkaQueue) Subscribe(ctx context.Context) (<-chan *PublishEvent, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": q.brokers,
		"group.id":          q.groupID,
		"auto.offset.reset": "latest",
	})
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(publishTopic, nil); err != nil {
		consumer.Close()
		return nil, err
	}

	events := make(chan *PublishEvent)
	go func() {
		defer close(events)
		defer consumer.Close()

		for {
			if ctx.Err() != nil {
				return
			}

			msg, err := consumer.ReadMessage(time.Second)
			if err != nil {
				if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				logrus.Errorf("kafka consume failed: %v", err)
				continue
			}

			event := &PublishEvent{}
			if err := json.Unmarshal(msg.Value, event); err != nil {
				logrus.Errorf("malformed publish event: %v", err)
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (q *KafkaQueue) Close() {
	q.producer.Close()
}
