package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	config "github.com/Keoroanthony/farmmarket/configs"
	"github.com/Keoroanthony/farmmarket/internal/models"
)

const EventOrderPlaced = "order.placed"

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderEvent struct {
	Event           string             `json:"event"`
	OrderID         uint               `json:"order_id"`
	UserID          uint               `json:"user_id"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Status          models.OrderStatus `json:"status"`
	ShippingAddress string             `json:"shipping_address"`
	CreatedAt       time.Time          `json:"created_at"`
	Items           []OrderEventItem   `json:"items"`
}

type OrderEventItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	SellerID  *uint           `json:"seller_id"`
}

// EventPublisher emits an order.placed event keyed by order id, so every
// event of one order lands on the same partition.
type EventPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.OrderTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewEventPublisher(w MessageWriter) *EventPublisher {
	return &EventPublisher{writer: w}
}

func (p *EventPublisher) Name() string { return "kafka" }

func (p *EventPublisher) Notify(ctx context.Context, _ models.User, order models.Order) error {
	evt := OrderEvent{
		Event:           EventOrderPlaced,
		OrderID:         order.ID,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt,
		Items:           make([]OrderEventItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		evt.Items = append(evt.Items, OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			SellerID:  item.SellerID,
		})
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(order.ID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(EventOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %d: %w", order.ID, err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
