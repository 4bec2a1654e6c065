package eventbus

import (
	"context"
	"time"
)

// PublishTimeout ограничивает публикацию, если у ctx нет своего дедлайна.
// Публикации идут из потока тиков, ожидание подтверждения не должно его держать.
var PublishTimeout = 5 * time.Second

// PublishEvent упаковывает полезную нагрузку в конверт и публикует её в pub.
// nil pub - публиковать некуда, это не ошибка.
func PublishEvent(ctx context.Context, pub Publisher, eventType, source string, payload any) error {
	if pub == nil {
		return nil
	}
	ev, err := NewEnvelope(eventType, source, payload)
	if err != nil {
		return err
	}
	ctx, cancel := withPublishDeadline(ctx)
	defer cancel()
	return pub.Publish(ctx, ev)
}

func withPublishDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, PublishTimeout)
}
