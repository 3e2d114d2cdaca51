package notify

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var fired int32
	for i := 0; i < 10; i++ {
		d.Trigger("orders", func() { atomic.AddInt32(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("Expected 1 callback for a burst, got %d", got)
	}
}

func TestDebouncer_SeparateKeys(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var fired int32
	d.Trigger("orders", func() { atomic.AddInt32(&fired, 1) })
	d.Trigger("service_items", func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Errorf("Expected one callback per key, got %d", got)
	}
}

func TestDebouncer_FiresAgainAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var fired int32
	d.Trigger("orders", func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(60 * time.Millisecond)
	d.Trigger("orders", func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Errorf("Expected 2 callbacks across separate bursts, got %d", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var fired int32
	d.Trigger("orders", func() { atomic.AddInt32(&fired, 1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("Expected no callback after Stop, got %d", got)
	}
}
