package irc

import (
	"sync"
	"testing"
)

func TestFIFOOrder(t *testing.T) {
	q := newFIFO[int]()
	if _, ok := q.pop(); ok {
		t.Fatalf("pop on empty queue returned ok")
	}
	for i := 0; i < 5; i++ {
		q.push(i)
	}
	if q.size() != 5 {
		t.Errorf("size() = %d, want 5", q.size())
	}
	for i := 0; i < 5; i++ {
		v, ok := q.pop()
		if !ok || v != i {
			t.Errorf("pop() = %d,%v; want %d,true", v, ok, i)
		}
	}
	if q.size() != 0 {
		t.Errorf("size() = %d after drain, want 0", q.size())
	}
}

func TestFIFOPrepend(t *testing.T) {
	q := newFIFO[string]()
	q.push("queued")
	q.prepend("first", "second")

	want := []string{"first", "second", "queued"}
	for i, w := range want {
		v, ok := q.pop()
		if !ok || v != w {
			t.Errorf("pop %d = %q,%v; want %q,true", i, v, ok, w)
		}
	}
}

func TestFIFOConcurrentProducers(t *testing.T) {
	q := newFIFO[int]()
	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(i)
			}
		}()
	}
	wg.Wait()

	got := 0
	for {
		if _, ok := q.pop(); !ok {
			break
		}
		got++
	}
	if got != producers*perProducer {
		t.Errorf("drained %d entries, want %d", got, producers*perProducer)
	}
}
