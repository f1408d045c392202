package events

import (
	"testing"
	"time"
)

func TestSubscribeReceivesPublishedEvent(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	bus.Publish(Event{Kind: KindTaskCompleted, ProjectID: "p1", TaskID: "t1"})

	select {
	case evt := <-ch:
		if evt.Kind != KindTaskCompleted || evt.TaskID != "t1" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event to be delivered")
	}
}

func TestMultipleSubscribersEachReceiveEvent(t *testing.T) {
	bus := NewBus()
	ch1, unsub1 := bus.Subscribe(4)
	defer unsub1()
	ch2, unsub2 := bus.Subscribe(4)
	defer unsub2()

	bus.Publish(Event{Kind: KindPhaseCompleted, ProjectID: "p1"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Kind != KindPhaseCompleted {
				t.Fatalf("unexpected event: %+v", evt)
			}
		case <-time.After(time.Second):
			t.Fatal("expected all subscribers to receive the event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	unsubscribe()

	_, ok := <-ch
	if ok {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestPublishDropsEventForFullSubscriberBuffer(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(Event{Kind: KindTaskCompleted, TaskID: "t1"})
	bus.Publish(Event{Kind: KindTaskCompleted, TaskID: "t2"})

	evt := <-ch
	if evt.TaskID != "t1" {
		t.Fatalf("expected first buffered event to survive, got %+v", evt)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected no second event once buffer was full, got %+v", extra)
	default:
	}
}
