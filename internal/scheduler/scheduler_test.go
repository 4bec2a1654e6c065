package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleAfter_NeverSameTick(t *testing.T) {
	s := New(nil)
	ran := false
	s.ScheduleAfter(0, TaskFunc(func() { ran = true }))

	assert.False(t, ran, "Задача не выполняется в момент постановки")
	assert.Equal(t, 1, s.Pending())

	assert.Equal(t, 1, s.Tick())
	assert.True(t, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduleAfter_Order(t *testing.T) {
	s := New(nil)
	var order []string
	s.ScheduleAfter(2, TaskFunc(func() { order = append(order, "late") }))
	s.ScheduleAfter(1, TaskFunc(func() { order = append(order, "a") }))
	s.ScheduleAfter(1, TaskFunc(func() { order = append(order, "b") }))

	s.Tick()
	assert.Equal(t, []string{"a", "b"}, order, "Задачи одного тика выполняются в порядке постановки")
	s.Tick()
	assert.Equal(t, []string{"a", "b", "late"}, order)
	assert.Equal(t, uint64(2), s.CurrentTick())
}

func TestScheduleAfter_NestedGoesToNextTick(t *testing.T) {
	s := New(nil)
	inner := false
	s.ScheduleAfter(1, TaskFunc(func() {
		s.ScheduleAfter(1, TaskFunc(func() { inner = true }))
	}))

	s.Tick()
	assert.False(t, inner)
	s.Tick()
	assert.True(t, inner)
}

func TestCancelAndPanic(t *testing.T) {
	s := New(nil)
	ran := false
	h := s.ScheduleAfter(1, TaskFunc(func() { ran = true }))
	s.ScheduleAfter(1, TaskFunc(func() { panic("boom") }))

	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel(), "Повторная отмена ничего не делает")

	assert.NotPanics(t, func() { s.Tick() })
	assert.False(t, ran)
	assert.False(t, Handle{}.Cancel())
}

func TestRunInterval(t *testing.T) {
	s := New(nil)
	count := 0
	h := s.RunInterval(2, TaskFunc(func() { count++ }))

	for i := 0; i < 6; i++ {
		s.Tick()
	}
	assert.Equal(t, 3, count)

	h.Cancel()
	s.Tick()
	s.Tick()
	assert.Equal(t, 3, count)
}
