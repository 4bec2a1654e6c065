package storage

import (
	"context"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
)

// ActivityRecord - счётчики активности игрока за сессию
type ActivityRecord struct {
	LastLocation vec.Vec3Float `json:"last_location"`
	Distance     float64       `json:"distance"`
	Broken       int64         `json:"broken"`
	Placed       int64         `json:"placed"`
}

// ActivityRepo определяет интерфейс хранения счётчиков активности.
// Записи привязаны к ID игрока и живут не дольше процесса (или TTL в Redis).
type ActivityRepo interface {
	// Load возвращает запись; false - игрок ещё не встречался
	Load(ctx context.Context, actorID string) (ActivityRecord, bool, error)
	Save(ctx context.Context, actorID string, rec ActivityRecord) error
	Delete(ctx context.Context, actorID string) error
	// BatchSave сохраняет записи нескольких игроков (после замера расстояний)
	BatchSave(ctx context.Context, records map[string]ActivityRecord) error
}
