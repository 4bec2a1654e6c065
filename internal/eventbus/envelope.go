package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope - конверт события автоматизации. Payload хранит JSON конкретного
// типа события, Version - версию его схемы.
type Envelope struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"ts"`
	Source        string            `json:"source"` // capacitor, replanting, productivity, toolswap
	EventType     string            `json:"type"`
	Version       int               `json:"version"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Priority      int               `json:"priority,omitempty"` // >= PriorityHigh не отбрасывается при переполнении
	Payload       []byte            `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Filter отбирает события по типу и источнику; пустой список - любое значение.
type Filter struct {
	Types   []string
	Sources []string
}

// Match проверяет, проходит ли событие фильтр
func (f Filter) Match(ev *Envelope) bool {
	return contains(f.Types, ev.EventType) && contains(f.Sources, ev.Source)
}

func contains(list []string, v string) bool {
	if len(list) == 0 {
		return true
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// PriorityHigh - порог приоритета, при котором публикация ждёт места в буфере
const PriorityHigh = 5

// Типы событий автоматизации
const (
	EventCapacitorActivated = "CapacitorActivated"
	EventCapacitorBatch     = "CapacitorBatch"
	EventReplanted          = "Replanted"
	EventToolSwapped        = "ToolSwapped"
	EventActivityReport     = "ActivityReport"
)

// PayloadVersion - версия JSON-схемы полезной нагрузки
const PayloadVersion = 1

// NewEnvelope создаёт конверт с новым UUID и JSON-полезной нагрузкой
func NewEnvelope(eventType, source string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   PayloadVersion,
		Payload:   data,
	}, nil
}

// DecodePayload разбирает JSON-полезную нагрузку конверта
func (e *Envelope) DecodePayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return nil
}
