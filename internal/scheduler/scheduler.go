// Package scheduler откладывает работу на будущие тики сервера.
// Все задачи выполняются в потоке тиков, по одной, в порядке (тик, очередь постановки).
package scheduler

import (
	"container/heap"
	"sync"

	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
)

// Task - единица отложенной работы
type Task interface {
	Run()
}

// TaskFunc адаптирует функцию к Task
type TaskFunc func()

// Run выполняет функцию
func (f TaskFunc) Run() { f() }

// Handle позволяет отменить запланированную задачу
type Handle struct {
	entry *entry
}

// Cancel снимает задачу, если она ещё не выполнена. Возвращает false, если отменять нечего.
func (h Handle) Cancel() bool {
	if h.entry == nil || h.entry.cancelled || h.entry.done {
		return false
	}
	h.entry.cancelled = true
	return true
}

type entry struct {
	task      Task
	due       uint64
	seq       uint64
	interval  uint64
	cancelled bool
	done      bool
}

// taskQueue - min-heap по (due, seq)
type taskQueue []*entry

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}
func (q taskQueue) Swap(i, j int)  { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x any)    { *q = append(*q, x.(*entry)) }
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler - очередь отложенных задач, продвигаемая вызовами Tick
type Scheduler struct {
	mu    sync.Mutex
	tick  uint64
	seq   uint64
	queue taskQueue
	log   *logging.Logger
}

// New создаёт планировщик на тике 0
func New(log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.GetComponentLogger("scheduler")
	}
	return &Scheduler{log: log}
}

// CurrentTick возвращает номер последнего выполненного тика
func (s *Scheduler) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Pending возвращает количество задач в очереди
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.queue {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// ScheduleAfter ставит задачу на тик current+delay. Задержка меньше 1 считается равной 1:
// задача никогда не выполняется в текущем ходе.
func (s *Scheduler) ScheduleAfter(delay int, task Task) Handle {
	if delay < 1 {
		delay = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.push(task, s.tick+uint64(delay), 0)
}

// RunInterval выполняет задачу каждые interval тиков, начиная с current+interval
func (s *Scheduler) RunInterval(interval int, task Task) Handle {
	if interval < 1 {
		interval = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.push(task, s.tick+uint64(interval), uint64(interval))
}

func (s *Scheduler) push(task Task, due, interval uint64) Handle {
	s.seq++
	e := &entry{task: task, due: due, seq: s.seq, interval: interval}
	heap.Push(&s.queue, e)
	return Handle{entry: e}
}

// Tick продвигает время на один тик и выполняет все созревшие задачи.
// Задачи, поставленные во время выполнения, попадают не раньше следующего тика.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	s.tick++
	now := s.tick
	var ready []*entry
	for s.queue.Len() > 0 && s.queue[0].due <= now {
		e := heap.Pop(&s.queue).(*entry)
		if e.cancelled {
			continue
		}
		ready = append(ready, e)
	}
	s.mu.Unlock()

	ran := 0
	for _, e := range ready {
		if e.cancelled {
			continue
		}
		s.run(e)
		ran++
		if e.interval > 0 && !e.cancelled {
			s.mu.Lock()
			e.due = now + e.interval
			s.seq++
			e.seq = s.seq
			heap.Push(&s.queue, e)
			s.mu.Unlock()
		} else {
			e.done = true
		}
	}
	return ran
}

func (s *Scheduler) run(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scheduled task panicked at tick %d: %v", e.due, r)
		}
	}()
	e.task.Run()
}
