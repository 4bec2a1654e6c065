package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
)

const (
	defaultNATSURL = "nats://127.0.0.1:4222"
	timeFormat     = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		natsURL    = flag.String("url", defaultNATSURL, "NATS server URL")
		stream     = flag.String("stream", "ADDONS_EVENTS", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		sources    = flag.String("sources", "", "Sources filter (comma-separated)")
		since      = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m, 1d)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
		idle       = flag.Duration("idle", 2*time.Second, "Stop after this long without events (ignored with -follow)")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, 0)
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	start, err := parseSinceTime(*since, time.Now())
	if err != nil {
		log.Fatalf("❌ Invalid -since: %v", err)
	}

	opts := &TailOptions{
		Filter: eventbus.Filter{
			Types:   parseStringList(*eventTypes),
			Sources: parseStringList(*sources),
		},
		Since:  start,
		Limit:  *limit,
		Follow: *follow,
		Idle:   *idle,
	}

	switch *command {
	case "tail":
		if err := tailEvents(bus, opts); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "stats":
		if err := showStats(bus, opts); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

type TailOptions struct {
	Filter eventbus.Filter
	Since  time.Time
	Limit  int
	Follow bool
	Idle   time.Duration
}

// collect читает события, пока не достигнут лимит, не прошло idle без событий
// (если не follow) или не пришёл сигнал завершения
func collect(bus *eventbus.JetStreamBus, opts *TailOptions, each func(*eventbus.Envelope)) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		mu      sync.Mutex
		count   int
		stopped bool
		done    = make(chan struct{})
		once    sync.Once
		seen    = make(chan struct{}, 1)
	)

	// finish останавливает обработку: колбэки после него ничего не делают
	finish := func() int {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		return count
	}

	sub, err := bus.Replay(ctx, opts.Filter, opts.Since, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		if stopped || (count >= opts.Limit && !opts.Follow) {
			return
		}
		each(ev)
		count++
		select {
		case seen <- struct{}{}:
		default:
		}
		if count >= opts.Limit && !opts.Follow {
			once.Do(func() { close(done) })
		}
	})
	if err != nil {
		return 0, err
	}
	defer sub.Unsubscribe()

	timer := time.NewTimer(opts.Idle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return finish(), nil
		case <-done:
			return finish(), nil
		case <-seen:
			timer.Reset(opts.Idle)
		case <-timer.C:
			if !opts.Follow {
				return finish(), nil
			}
			timer.Reset(opts.Idle)
		}
	}
}

// tailEvents выводит события в реальном времени
func tailEvents(bus *eventbus.JetStreamBus, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing events since %s (limit: %d, follow: %v)\n", opts.Since.UTC().Format(timeFormat), opts.Limit, opts.Follow)

	count, err := collect(bus, opts, printEvent)
	if err != nil {
		return err
	}
	fmt.Printf("\n📊 Total events: %d\n", count)
	return nil
}

// showStats выводит статистику событий по типам и источникам
func showStats(bus *eventbus.JetStreamBus, opts *TailOptions) error {
	fmt.Println("📊 Event statistics")

	msgs, size, err := bus.StreamState()
	if err != nil {
		return err
	}
	fmt.Printf("   Stream: %d messages, %d bytes\n", msgs, size)

	byType := make(map[string]int)
	bySource := make(map[string]int)
	opts.Follow = false
	total, err := collect(bus, opts, func(ev *eventbus.Envelope) {
		byType[ev.EventType]++
		bySource[ev.Source]++
	})
	if err != nil {
		return err
	}

	fmt.Printf("   Since %s: %d events\n", opts.Since.UTC().Format(timeFormat), total)
	printCounts("By type", byType)
	printCounts("By source", bySource)
	return nil
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", title)
	for _, k := range keys {
		fmt.Printf("   %-24s %d\n", k, counts[k])
	}
}

func printEvent(ev *eventbus.Envelope) {
	fmt.Printf("[%s] %-20s %-14s %s\n",
		ev.Timestamp.UTC().Format(timeFormat),
		ev.EventType,
		ev.Source,
		strings.TrimSpace(string(ev.Payload)),
	)
}

// parseSinceTime поддерживает суффикс d (дни) поверх time.ParseDuration
func parseSinceTime(since string, now time.Time) (time.Time, error) {
	if since == "" || since == "all" {
		return time.Time{}, nil
	}
	if strings.HasSuffix(since, "d") {
		var days int
		if _, err := fmt.Sscanf(since, "%dd", &days); err != nil {
			return time.Time{}, err
		}
		return now.Add(-time.Duration(days) * 24 * time.Hour), nil
	}
	d, err := time.ParseDuration(since)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
