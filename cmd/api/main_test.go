package main

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/platform/logger"
)

func TestShutdownDrainsBusBeforeClosingClients(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())

	var mu sync.Mutex
	var order []string
	record := func(step string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, step)
	}

	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(context.Context, events.Event) error {
		time.Sleep(20 * time.Millisecond)
		record("handler")
		return nil
	}))
	bus.Publish(context.Background(), events.LeadStatusChanged{})

	shutdown(bus, func() { record("scheduler") }, nil, func() { record("locker") })

	want := []string{"handler", "scheduler", "locker"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("shutdown order = %v, want %v", order, want)
	}
}
