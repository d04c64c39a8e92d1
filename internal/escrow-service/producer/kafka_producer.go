package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"
)

// KafkaPublisher publica eventos de ciclo de vida de apostas no Kafka.
// A chave da mensagem é o betId, preservando a ordem por aposta na partição.
type KafkaPublisher struct {
	Writer *kafka.Writer
	Topic  string
}

func NewKafkaPublisher(w *kafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

func (p *KafkaPublisher) PublishBetLifecycle(ctx context.Context, e events.BetLifecycle) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.BetID, 10)),
		Value: b,
	})
}
