package storage

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	transcript := []byte("Customer: price too high")
	key := "logs/" + Timestamp() + ".txt"

	if err := store.Put(context.Background(), key, "text/plain; charset=utf-8", transcript); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	obj, ok := store.Get(key)
	if !ok {
		t.Fatalf("object %s not found", key)
	}
	if !bytes.Equal(obj.Data, transcript) {
		t.Fatalf("round-trip mismatch: %q", obj.Data)
	}
	if obj.ContentType != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", obj.ContentType)
	}
}

func TestMemoryStorePutCopiesData(t *testing.T) {
	store := NewMemoryStore()

	data := []byte("original")
	if err := store.Put(context.Background(), "k", "text/plain", data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	data[0] = 'X'

	obj, _ := store.Get("k")
	if string(obj.Data) != "original" {
		t.Fatalf("stored data aliases caller buffer: %q", obj.Data)
	}
}

func TestTimestampFormat(t *testing.T) {
	ts := Timestamp()
	parsed, err := time.Parse(TimestampLayout, ts)
	if err != nil {
		t.Fatalf("timestamp %q does not match layout: %v", ts, err)
	}
	if time.Since(parsed) > time.Hour || time.Since(parsed) < -time.Hour {
		t.Fatalf("timestamp %q not near current time", ts)
	}
}
