package productivity

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/i18n"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/scheduler"
	"github.com/tsugumi-sys/minecraft-addons/internal/storage"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
)

// Интервалы по умолчанию (в тиках, 20 тиков = 1 с)
const (
	DefaultSampleTicks = 20
	DefaultReportTicks = 300 * 20
)

// ActorSource перечисляет игроков, находящихся в мире
type ActorSource interface {
	All() []actor.Actor
}

// IntervalScheduler запускает задачу периодически
type IntervalScheduler interface {
	RunInterval(interval int, task scheduler.Task) scheduler.Handle
}

// Options настраивает Tracker
type Options struct {
	SampleTicks int
	ReportTicks int
	Translator  *i18n.Translator
	Logger      *logging.Logger
	Metrics     *Metrics
	Publisher   eventbus.Publisher
}

// Tracker считает активность игроков за сессию: пройденное расстояние,
// сломанные и установленные блоки.
type Tracker struct {
	repo      storage.ActivityRepo
	actors    ActorSource
	sample    int
	report    int
	tr        *i18n.Translator
	log       *logging.Logger
	metrics   *Metrics
	publisher eventbus.Publisher
}

// Report - полезная нагрузка события ActivityReport
type Report struct {
	ActorID  string  `json:"actor_id"`
	Distance float64 `json:"distance"`
	Broken   int64   `json:"broken"`
	Placed   int64   `json:"placed"`
}

// NewTracker создаёт трекер поверх хранилища счётчиков
func NewTracker(repo storage.ActivityRepo, actors ActorSource, opts Options) *Tracker {
	if opts.SampleTicks <= 0 {
		opts.SampleTicks = DefaultSampleTicks
	}
	if opts.ReportTicks <= 0 {
		opts.ReportTicks = DefaultReportTicks
	}
	if opts.Translator == nil {
		opts.Translator = i18n.New("")
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetProductivityLogger()
	}
	return &Tracker{
		repo:      repo,
		actors:    actors,
		sample:    opts.SampleTicks,
		report:    opts.ReportTicks,
		tr:        opts.Translator,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
	}
}

// Start регистрирует замер расстояний и отчёты в планировщике
func (t *Tracker) Start(sched IntervalScheduler) {
	sched.RunInterval(t.sample, scheduler.TaskFunc(func() { t.Sample(context.Background()) }))
	sched.RunInterval(t.report, scheduler.TaskFunc(func() { t.Report(context.Background()) }))
	t.log.Info("📊 Productivity tracker started (sample=%d ticks, report=%d ticks)", t.sample, t.report)
}

// OnBreak увеличивает счётчик сломанных блоков
func (t *Tracker) OnBreak(ctx context.Context, ev world.BlockBreakEvent) {
	t.bump(ctx, ev.Actor, func(rec *storage.ActivityRecord) { rec.Broken++ })
}

// OnPlace увеличивает счётчик установленных блоков
func (t *Tracker) OnPlace(ctx context.Context, ev world.BlockPlaceEvent) {
	t.bump(ctx, ev.Actor, func(rec *storage.ActivityRecord) { rec.Placed++ })
}

func (t *Tracker) bump(ctx context.Context, a actor.Actor, apply func(*storage.ActivityRecord)) {
	if a == nil {
		return
	}
	rec, found, err := t.repo.Load(ctx, a.ID())
	if err != nil {
		t.log.Warn("Failed to load activity for %s: %v", a.ID(), err)
		return
	}
	if !found {
		rec = storage.ActivityRecord{LastLocation: a.Location()}
	}
	apply(&rec)
	if err := t.repo.Save(ctx, a.ID(), rec); err != nil {
		t.log.Warn("Failed to save activity for %s: %v", a.ID(), err)
	}
}

// Sample добавляет каждому игроку расстояние от прошлого замера.
// Игрок, встреченный впервые, получает запись с текущей позицией.
func (t *Tracker) Sample(ctx context.Context) {
	actors := t.actors.All()
	if len(actors) == 0 {
		return
	}

	batch := make(map[string]storage.ActivityRecord, len(actors))
	for _, a := range actors {
		current := a.Location()
		rec, found, err := t.repo.Load(ctx, a.ID())
		if err != nil {
			t.log.Warn("Failed to load activity for %s: %v", a.ID(), err)
			continue
		}
		if !found {
			batch[a.ID()] = storage.ActivityRecord{LastLocation: current}
			continue
		}
		step := current.DistanceTo(rec.LastLocation)
		rec.Distance += step
		rec.LastLocation = current
		batch[a.ID()] = rec
		t.metrics.observeDistance(step)
	}

	if err := t.repo.BatchSave(ctx, batch); err != nil {
		t.log.Warn("Failed to save activity batch: %v", err)
	}
	t.metrics.setTracked(len(batch))
}

// Report отправляет статистику сессии всем игрокам, у которых есть запись
func (t *Tracker) Report(ctx context.Context) {
	for _, a := range t.actors.All() {
		rec, found, err := t.repo.Load(ctx, a.ID())
		if err != nil {
			t.log.Warn("Failed to load activity for %s: %v", a.ID(), err)
			continue
		}
		if !found {
			continue
		}

		for _, line := range t.FormatReport(rec) {
			if err := a.SendMessage(line); err != nil {
				t.log.Warn("Failed to send message to %s: %v", a.ID(), err)
			}
		}
		t.metrics.observeReport()

		payload := Report{ActorID: a.ID(), Distance: roundDistance(rec.Distance), Broken: rec.Broken, Placed: rec.Placed}
		if err := eventbus.PublishEvent(ctx, t.publisher, eventbus.EventActivityReport, "productivity", payload); err != nil {
			t.log.Warn("Не удалось опубликовать отчёт: %v", err)
		}
	}
}

// FormatReport возвращает четыре строки отчёта на языке трекера
func (t *Tracker) FormatReport(rec storage.ActivityRecord) []string {
	return []string{
		fmt.Sprintf("=== %s ===", t.tr.Text(i18n.KeySessionStats)),
		fmt.Sprintf("§f%s: %s %s", t.tr.Text(i18n.KeyDistance), formatDistance(rec.Distance), t.tr.Text(i18n.KeyBlocks)),
		fmt.Sprintf("§f%s: %d", t.tr.Text(i18n.KeyBlocksBroken), rec.Broken),
		fmt.Sprintf("§f%s: %d", t.tr.Text(i18n.KeyBlocksPlaced), rec.Placed),
	}
}

// Stats возвращает текущие счётчики игрока
func (t *Tracker) Stats(ctx context.Context, actorID string) (storage.ActivityRecord, bool, error) {
	return t.repo.Load(ctx, actorID)
}

func roundDistance(d float64) float64 {
	return math.Round(d*100) / 100
}

// formatDistance печатает расстояние с точностью до сотых без лишних нулей (12.5, а не 12.50)
func formatDistance(d float64) string {
	return strconv.FormatFloat(roundDistance(d), 'f', -1, 64)
}
