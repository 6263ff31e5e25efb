package message_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fxsml/unioncase/message"
)

func TestMessage_New(t *testing.T) {
	t.Parallel()

	msg := message.New("payload", nil)
	if msg.Data != "payload" {
		t.Errorf("Data = %q, want payload", msg.Data)
	}
	if msg.Attributes == nil {
		t.Fatal("Attributes should be initialized")
	}
	if msg.Ack() {
		t.Error("Ack on message without acking should return false")
	}
	if msg.Nack(errors.New("x")) {
		t.Error("Nack on message without acking should return false")
	}
}

func TestMessage_AckIdempotency(t *testing.T) {
	t.Parallel()

	var ackCount int
	msg := message.NewWithAcking(42, nil, func() { ackCount++ }, func(error) {})

	if !msg.Ack() {
		t.Error("Expected first Ack to return true")
	}
	if !msg.Ack() {
		t.Error("Expected second Ack to return true (idempotent)")
	}
	if ackCount != 1 {
		t.Errorf("Expected ack function to be called exactly once, got %d", ackCount)
	}
	if msg.Nack(errors.New("late")) {
		t.Error("Expected Nack after Ack to return false")
	}
}

func TestMessage_NackPassesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("decode failed")
	var got error
	msg := message.NewWithAcking("x", nil, func() {}, func(err error) { got = err })

	if !msg.Nack(wantErr) {
		t.Error("Expected Nack to return true")
	}
	if !errors.Is(got, wantErr) {
		t.Errorf("nack received %v, want %v", got, wantErr)
	}
	if msg.Ack() {
		t.Error("Expected Ack after Nack to return false")
	}
}

func TestMessage_NewWithAckingRequiresBothCallbacks(t *testing.T) {
	t.Parallel()

	msg := message.NewWithAcking("x", nil, func() {}, nil)
	if msg.Ack() {
		t.Error("message with a nil nack callback should not be ackable")
	}
}

func TestMessage_ConcurrentAck(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var ackCount int
	msg := message.NewWithAcking(1, nil, func() {
		mu.Lock()
		ackCount++
		mu.Unlock()
	}, func(error) {})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg.Ack()
		}()
	}
	wg.Wait()

	if ackCount != 1 {
		t.Errorf("ack called %d times, want 1", ackCount)
	}
}

func TestAttributes(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	attrs := message.Attributes{
		message.AttrID:      "id-1",
		message.AttrSource:  "/fizzbuzz",
		message.AttrSubject: "",
		message.AttrTime:    at.Format(time.RFC3339Nano),
	}

	if id, ok := attrs.ID(); !ok || id != "id-1" {
		t.Errorf("ID() = %q, %v", id, ok)
	}
	if src, ok := attrs.Source(); !ok || src != "/fizzbuzz" {
		t.Errorf("Source() = %q, %v", src, ok)
	}
	if _, ok := attrs.Subject(); ok {
		t.Error("empty subject should report not set")
	}
	if _, ok := attrs.Type(); ok {
		t.Error("missing type should report not set")
	}
	if got, ok := attrs.Time(); !ok || !got.Equal(at) {
		t.Errorf("Time() = %v, %v, want %v", got, ok, at)
	}

	attrs[message.AttrTime] = at
	if got, ok := attrs.Time(); !ok || !got.Equal(at) {
		t.Errorf("Time() from time.Time = %v, %v", got, ok)
	}
	attrs[message.AttrTime] = "yesterday"
	if _, ok := attrs.Time(); ok {
		t.Error("unparseable time should report not set")
	}
}
