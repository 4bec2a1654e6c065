package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/capacitor"
	"github.com/tsugumi-sys/minecraft-addons/internal/config"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/i18n"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/productivity"
	"github.com/tsugumi-sys/minecraft-addons/internal/replanting"
	"github.com/tsugumi-sys/minecraft-addons/internal/scheduler"
	"github.com/tsugumi-sys/minecraft-addons/internal/storage"
	"github.com/tsugumi-sys/minecraft-addons/internal/toolswap"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// DefaultQueueSize - ёмкость очереди внешних команд
const DefaultQueueSize = 1024

// Grid - сетка с загрузкой чанков (SparseGrid, BadgerGrid)
type Grid interface {
	world.Grid
	LoadChunk(coords vec.Vec2) error
}

// Options собирает зависимости хоста
type Options struct {
	Config    *config.Config // nil - config.Default()
	Grid      Grid
	Activity  storage.ActivityRepo // nil - хранилище в памяти
	Rules     []*capacitor.Rule    // nil - правила из Config.Capacitor
	Publisher eventbus.Publisher
	// Registerer для метрик компонентов; nil - метрики отключены
	Registerer prometheus.Registerer
	Logger     *logging.Logger
	QueueSize  int
}

// Status - снимок состояния хоста для API
type Status struct {
	Tick       uint64 `json:"tick"`
	Pending    int    `json:"pending_tasks"`
	Actors     int    `json:"actors"`
	QueueDepth int    `json:"queue_depth"`
	TickRate   int    `json:"tick_rate"`
}

type request struct {
	ctx   context.Context
	cmd   Command
	reply chan error
}

// Host владеет сеткой, планировщиком и всеми автоматизациями.
// Всё состояние мира меняется только в потоке тиков (Run/Step).
type Host struct {
	cfg        *config.Config
	grid       Grid
	dispatcher *world.Dispatcher
	sched      *scheduler.Scheduler
	actors     *actor.Registry

	engine    *capacitor.Engine
	tracker   *productivity.Tracker
	replanter *replanting.Replanter
	swapper   *toolswap.Swapper

	queue   chan request
	log     *logging.Logger
	metrics *hostMetrics
}

// New собирает хост и подписывает автоматизации на события мира
func New(opts Options) (*Host, error) {
	if opts.Grid == nil {
		return nil, errors.New("grid is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetServerLogger()
	}
	if opts.Activity == nil {
		opts.Activity = storage.NewMemoryActivityRepo()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	rules := opts.Rules
	if rules == nil {
		var err error
		rules, err = capacitor.LoadRules(cfg.Capacitor.RulesFile, cfg.Capacitor.MaxBlocks)
		if err != nil {
			return nil, fmt.Errorf("load capacitor rules: %w", err)
		}
	}

	var (
		capMetrics     *capacitor.Metrics
		prodMetrics    *productivity.Metrics
		replantMetrics *replanting.Metrics
		swapMetrics    *toolswap.Metrics
		metrics        *hostMetrics
	)
	if opts.Registerer != nil {
		capMetrics = capacitor.NewMetrics(opts.Registerer)
		prodMetrics = productivity.NewMetrics(opts.Registerer)
		replantMetrics = replanting.NewMetrics(opts.Registerer)
		swapMetrics = toolswap.NewMetrics(opts.Registerer)
		metrics = newHostMetrics(opts.Registerer)
	}

	tr := i18n.New(cfg.Language)
	sched := scheduler.New(nil)
	actors := actor.NewRegistry()

	h := &Host{
		cfg:        cfg,
		grid:       opts.Grid,
		dispatcher: world.NewDispatcher(opts.Grid),
		sched:      sched,
		actors:     actors,
		engine: capacitor.NewEngine(opts.Grid, sched, capacitor.Options{
			Rules:      rules,
			DelayTicks: cfg.Capacitor.DelayTicks,
			StackSize:  cfg.Capacitor.StackSize,
			Metrics:    capMetrics,
			Publisher:  opts.Publisher,
		}),
		tracker: productivity.NewTracker(opts.Activity, actors, productivity.Options{
			SampleTicks: cfg.Server.SecondsToTicks(cfg.Productivity.SampleEvery),
			ReportTicks: cfg.Server.SecondsToTicks(cfg.Productivity.ReportEvery),
			Translator:  tr,
			Metrics:     prodMetrics,
			Publisher:   opts.Publisher,
		}),
		replanter: replanting.NewReplanter(opts.Grid, sched, replanting.Options{
			DelayTicks: cfg.Replanting.DelayTicks,
			Translator: tr,
			Metrics:    replantMetrics,
			Publisher:  opts.Publisher,
		}),
		swapper: toolswap.NewSwapper(sched, nil, swapMetrics, opts.Publisher),
		queue:   make(chan request, opts.QueueSize),
		log:     opts.Logger,
		metrics: metrics,
	}

	h.dispatcher.OnBeforeBreak(func(ctx context.Context, ev world.BlockBreakEvent) {
		h.engine.HandleBreak(ctx, ev)
	})
	h.dispatcher.OnAfterBreak(h.replanter.OnBreak)
	h.dispatcher.OnAfterBreak(h.tracker.OnBreak)
	h.dispatcher.OnAfterPlace(h.tracker.OnPlace)
	h.dispatcher.OnBeforeItemUse(h.swapper.OnItemUse)
	h.tracker.Start(sched)

	h.log.Info("🧩 Host ready: %d capacitor rules, language=%s", len(rules), tr.Lang())
	return h, nil
}

// Run крутит цикл тиков с частотой server.tick_rate до отмены ctx
func (h *Host) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(h.cfg.Server.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.log.Info("⏱️ Tick loop started (%d TPS)", h.cfg.Server.TickRate)
	for {
		select {
		case <-ctx.Done():
			h.log.Info("⏹️ Tick loop stopped at tick %d", h.sched.CurrentTick())
			return ctx.Err()
		case <-ticker.C:
			h.Step()
		}
	}
}

// Step выполняет один ход: применяет накопленные команды, затем задачи планировщика
func (h *Host) Step() int {
	start := time.Now()
	h.drain()
	ran := h.sched.Tick()
	h.metrics.observeTick(time.Since(start), len(h.queue))
	return ran
}

// drain применяет только команды, уже стоящие в очереди на начало хода
func (h *Host) drain() int {
	n := len(h.queue)
	for i := 0; i < n; i++ {
		req := <-h.queue
		err := h.Apply(req.ctx, req.cmd)
		req.reply <- err
	}
	return n
}

// Submit ставит команду в очередь и ждёт её применения в потоке тиков
func (h *Host) Submit(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	req := request{
		ctx:   context.WithoutCancel(ctx),
		cmd:   cmd,
		reply: make(chan error, 1),
	}

	select {
	case h.queue <- req:
	default:
		return ErrQueueFull
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply применяет команду немедленно. Вызывать только из потока тиков.
func (h *Host) Apply(ctx context.Context, cmd Command) (err error) {
	if err := cmd.Validate(); err != nil {
		return err
	}
	defer func() { h.metrics.observeCommand(cmd.Type, err) }()

	switch cmd.Type {
	case CommandJoin:
		h.join(cmd)
		return nil
	case CommandLeave:
		h.actors.Remove(cmd.ActorID)
		h.log.Info("👋 %s left", cmd.ActorID)
		return nil
	case CommandLoadChunk:
		return h.grid.LoadChunk(cmd.Pos.ToChunkCoords())
	case CommandSetCell:
		return h.grid.SetCell(cmd.Pos, world.Cell{Material: block.MaterialID(cmd.Material), State: cmd.State})
	}

	p, err := h.player(cmd.ActorID)
	if err != nil {
		return err
	}

	switch cmd.Type {
	case CommandMove:
		p.MoveTo(cmd.Location)
	case CommandSneak:
		p.SetSneaking(cmd.Sneaking)
	case CommandSelect:
		return p.SelectSlot(cmd.Slot)
	case CommandGive:
		return h.give(p, cmd)
	case CommandBreak:
		return h.dispatcher.Dispatch(ctx, world.BlockBreakEvent{Actor: p, Pos: cmd.Pos})
	case CommandPlace:
		cell := world.Cell{Material: block.MaterialID(cmd.Material), State: cmd.State}
		return h.dispatcher.Dispatch(ctx, world.BlockPlaceEvent{Actor: p, Pos: cmd.Pos, Cell: cell})
	case CommandUse:
		return h.use(ctx, p)
	}
	return nil
}

func (h *Host) join(cmd Command) {
	name := cmd.Name
	if name == "" {
		name = cmd.ActorID
	}
	p := actor.NewPlayer(cmd.ActorID, name)
	p.MoveTo(cmd.Location)
	p.SetMessageSink(func(actorID, text string) error {
		h.log.Info("💬 %s ← %s", actorID, text)
		return nil
	})
	h.actors.Add(p)
	h.log.Info("🙋 %s (%s) joined at %.1f,%.1f,%.1f", name, cmd.ActorID, cmd.Location.X, cmd.Location.Y, cmd.Location.Z)
}

func (h *Host) give(p *actor.Player, cmd Command) error {
	amount := cmd.Amount
	if amount <= 0 {
		amount = 1
	}
	inv, err := p.Inventory()
	if err != nil {
		return err
	}
	_, err = inv.AddItem(actor.ItemStack{
		Type:          block.MaterialID(cmd.Material),
		Amount:        amount,
		Damage:        cmd.Damage,
		MaxDurability: cmd.MaxDurability,
	})
	return err
}

// use доставляет событие использования предмета в руке и изнашивает его.
// Инструмент, достигший предела прочности, исчезает.
func (h *Host) use(ctx context.Context, p *actor.Player) error {
	held, ok, err := actor.HeldItem(p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: nothing in main hand", ErrInvalidCommand)
	}
	if err := h.dispatcher.Dispatch(ctx, world.ItemUseEvent{Actor: p, Item: held}); err != nil {
		return err
	}
	if !held.HasDurability() {
		return nil
	}

	inv, err := p.Inventory()
	if err != nil {
		return err
	}
	held.Damage++
	if held.Damage >= held.MaxDurability {
		return inv.ClearItem(p.SelectedSlot())
	}
	return inv.SetItem(p.SelectedSlot(), held)
}

func (h *Host) player(id string) (*actor.Player, error) {
	a, ok := h.actors.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	p, ok := a.(*actor.Player)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a player", ErrUnknownActor, id)
	}
	return p, nil
}

// Status возвращает снимок состояния; безопасно вызывать из любого потока
func (h *Host) Status() Status {
	return Status{
		Tick:       h.sched.CurrentTick(),
		Pending:    h.sched.Pending(),
		Actors:     len(h.actors.All()),
		QueueDepth: len(h.queue),
		TickRate:   h.cfg.Server.TickRate,
	}
}

// Activity возвращает счётчики активности игрока
func (h *Host) Activity(ctx context.Context, actorID string) (storage.ActivityRecord, bool, error) {
	return h.tracker.Stats(ctx, actorID)
}

// Messages возвращает сообщения, отправленные игроку
func (h *Host) Messages(actorID string) ([]string, error) {
	p, err := h.player(actorID)
	if err != nil {
		return nil, err
	}
	return p.Messages(), nil
}

// Grid возвращает сетку хоста
func (h *Host) Grid() Grid { return h.grid }
