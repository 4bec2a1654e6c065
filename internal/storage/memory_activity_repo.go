package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryActivityRepo реализует ActivityRepo в памяти.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemoryActivityRepo struct {
	mu   sync.RWMutex
	data map[string]ActivityRecord
}

// NewMemoryActivityRepo создает новый репозиторий активности в памяти.
func NewMemoryActivityRepo() *MemoryActivityRepo {
	return &MemoryActivityRepo{
		data: make(map[string]ActivityRecord),
	}
}

// Save сохраняет запись игрока в памяти.
func (r *MemoryActivityRepo) Save(ctx context.Context, actorID string, rec ActivityRecord) error {
	if actorID == "" {
		return fmt.Errorf("недействительный actorID: %q", actorID)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[actorID] = rec
	return nil
}

// Load загружает запись игрока из памяти.
func (r *MemoryActivityRepo) Load(ctx context.Context, actorID string) (ActivityRecord, bool, error) {
	select {
	case <-ctx.Done():
		return ActivityRecord{}, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.data[actorID]
	return rec, exists, nil
}

// Delete удаляет запись игрока.
func (r *MemoryActivityRepo) Delete(ctx context.Context, actorID string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, actorID)
	return nil
}

// BatchSave сохраняет записи нескольких игроков в памяти.
func (r *MemoryActivityRepo) BatchSave(ctx context.Context, records map[string]ActivityRecord) error {
	if len(records) == 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for actorID := range records {
		if actorID == "" {
			return fmt.Errorf("недействительный actorID в batch: %q", actorID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for actorID, rec := range records {
		r.data[actorID] = rec
	}
	return nil
}

// Count возвращает количество записей (для отладки).
func (r *MemoryActivityRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
