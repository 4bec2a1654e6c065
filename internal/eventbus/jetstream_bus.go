package eventbus

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
)

// SubjectPrefix - префикс subject'ов событий автоматизации
const SubjectPrefix = "addons"

// Subject возвращает subject NATS для типа события
func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// JetStreamBus реализует EventBus поверх NATS JetStream.
type JetStreamBus struct {
	nc        *nats.Conn
	js        nats.JetStreamContext
	stream    string
	codec     *codec
	published uint64
	consumed  uint64
	dropped   uint64
}

// NewJetStreamBus подключается к кластеру NATS и гарантирует наличие стрима.
// url: nats://127.0.0.1:4222, stream: "ADDONS_EVENTS".
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = "ADDONS_EVENTS"
	}

	nc, err := nats.Connect(url, nats.Name("minecraft-addons"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Drain()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if _, err = js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      stream,
			Subjects:  []string{SubjectPrefix + ".*"},
			Retention: nats.LimitsPolicy,
			MaxAge:    retention,
			Storage:   nats.FileStorage,
		})
		if err != nil {
			nc.Drain()
			return nil, fmt.Errorf("add stream: %w", err)
		}
	}

	c, err := newCodec()
	if err != nil {
		nc.Drain()
		return nil, err
	}

	return &JetStreamBus{nc: nc, js: js, stream: stream, codec: c}, nil
}

// Publish сериализует Envelope в JSON+zstd и публикует в subject addons.<type>.
// ID конверта используется как Nats-Msg-Id для дедупликации.
// Без дедлайна в ctx ожидание подтверждения ограничено PublishTimeout.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := jb.codec.Encode(ev)
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}

	ctx, cancel := withPublishDeadline(ctx)
	defer cancel()

	msg := nats.NewMsg(Subject(ev.EventType))
	msg.Data = data
	msg.Header.Set(HeaderEncoding, "zstd")

	opts := []nats.PubOpt{nats.Context(ctx)}
	if ev.ID != "" {
		opts = append(opts, nats.MsgId(ev.ID))
	}
	if _, err = jb.js.PublishMsg(msg, opts...); err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe создаёт эфемерный consumer на новые события (как in-memory шина);
// историю читает Replay.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := SubjectPrefix + ".*"
	if len(f.Types) == 1 {
		subj = Subject(f.Types[0])
	}

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		ev, err := jb.codec.Decode(msg.Data, msg.Header.Get(HeaderEncoding) == "zstd")
		if err != nil {
			logging.Warn("[EventBus] не удалось разобрать сообщение %s: %v", msg.Subject, err)
			atomic.AddUint64(&jb.dropped, 1)
			_ = msg.Term()
			return
		}
		if f.Match(ev) {
			h(ctx, ev)
			atomic.AddUint64(&jb.consumed, 1)
		}
		_ = msg.Ack()
	}, nats.ManualAck(), nats.DeliverNew(), nats.AckWait(30*time.Second))
	if err != nil {
		return nil, err
	}

	return &jetSub{natSub}, nil
}

// Replay читает историю стрима начиная с since и продолжает получать новые события.
// Использует эфемерный ordered consumer: ничего не подтверждает и не оставляет durable.
func (jb *JetStreamBus) Replay(ctx context.Context, f Filter, since time.Time, h Handler) (Subscription, error) {
	subj := SubjectPrefix + ".*"
	if len(f.Types) == 1 {
		subj = Subject(f.Types[0])
	}

	opts := []nats.SubOpt{nats.OrderedConsumer()}
	if since.IsZero() {
		opts = append(opts, nats.DeliverAll())
	} else {
		opts = append(opts, nats.StartTime(since))
	}

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		ev, err := jb.codec.Decode(msg.Data, msg.Header.Get(HeaderEncoding) == "zstd")
		if err != nil {
			logging.Warn("[EventBus] не удалось разобрать сообщение %s: %v", msg.Subject, err)
			atomic.AddUint64(&jb.dropped, 1)
			return
		}
		if f.Match(ev) {
			h(ctx, ev)
			atomic.AddUint64(&jb.consumed, 1)
		}
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", subj, err)
	}
	return &jetSub{natSub}, nil
}

// StreamState возвращает количество сообщений и байт в стриме
func (jb *JetStreamBus) StreamState() (msgs, bytes uint64, err error) {
	info, err := jb.js.StreamInfo(jb.stream)
	if err != nil {
		return 0, 0, fmt.Errorf("stream info: %w", err)
	}
	return info.State.Msgs, info.State.Bytes, nil
}

// jetSub обёртка вокруг *nats.Subscription чтобы удовлетворить наш интерфейс.
type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}

// Metrics возвращает текущие метрики.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
		InFlight:  0, // jetstream keeps its own queue
	}
}

// Close дренирует соединение NATS
func (jb *JetStreamBus) Close() error {
	defer jb.codec.Close()
	return jb.nc.Drain()
}
