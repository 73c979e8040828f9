package utils

import (
	"testing"

	"digit-observer/src/models"
)

// -----------------------------------------------------------------------------

func tick(epoch int64, price float64, digit int) models.MTick {
	return models.MTick{Epoch: epoch, Price: price, Digit: digit}
}

// -----------------------------------------------------------------------------

func TestRingBufferAppendAndGetAll(t *testing.T) {
	rb := NewRingBuffer(5)

	for i := 0; i < 3; i++ {
		rb.Append(tick(int64(i), float64(i)+0.5, i))
	}

	if rb.Size() != 3 {
		t.Errorf("size = %d, want 3", rb.Size())
	}
	if rb.IsFull() {
		t.Error("buffer should not be full")
	}

	all := rb.GetAll()
	if len(all) != 3 {
		t.Fatalf("got %d items, want 3", len(all))
	}
	for i, item := range all {
		if item.Epoch != int64(i) || item.Digit != i {
			t.Errorf("item %d = %+v, want epoch %d digit %d", i, item, i, i)
		}
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.Append(tick(int64(i), float64(i), i))
	}

	if !rb.IsFull() {
		t.Error("buffer should be full after overfilling")
	}
	if rb.Size() != 3 {
		t.Errorf("size = %d, want capacity 3", rb.Size())
	}

	// Oldest entries dropped: only epochs 2, 3, 4 remain, in order
	all := rb.GetAll()
	wantEpochs := []int64{2, 3, 4}
	for i, item := range all {
		if item.Epoch != wantEpochs[i] {
			t.Errorf("item %d epoch = %d, want %d", i, item.Epoch, wantEpochs[i])
		}
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferGetLatest(t *testing.T) {
	rb := NewRingBuffer(10)
	for i := 0; i < 6; i++ {
		rb.Append(tick(int64(i), float64(i), i))
	}

	latest := rb.GetLatest(2)
	if len(latest) != 2 {
		t.Fatalf("got %d items, want 2", len(latest))
	}
	if latest[0].Epoch != 4 || latest[1].Epoch != 5 {
		t.Errorf("latest epochs = [%d, %d], want [4, 5]", latest[0].Epoch, latest[1].Epoch)
	}

	// Asking for more than stored returns everything
	if got := rb.GetLatest(100); len(got) != 6 {
		t.Errorf("got %d items, want 6", len(got))
	}

	if got := rb.GetLatest(0); len(got) != 0 {
		t.Errorf("got %d items for n=0, want 0", len(got))
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferResize(t *testing.T) {
	rb := NewRingBuffer(6)
	for i := 0; i < 6; i++ {
		rb.Append(tick(int64(i), float64(i), i))
	}

	rb.Resize(3)

	if rb.Capacity() != 3 {
		t.Errorf("capacity = %d, want 3", rb.Capacity())
	}
	if rb.Size() != 3 {
		t.Errorf("size = %d, want 3", rb.Size())
	}

	// Latest entries survive a shrink
	all := rb.GetAll()
	wantEpochs := []int64{3, 4, 5}
	for i, item := range all {
		if item.Epoch != wantEpochs[i] {
			t.Errorf("item %d epoch = %d, want %d", i, item.Epoch, wantEpochs[i])
		}
	}

	// Appending after resize keeps working
	rb.Append(tick(6, 6.0, 6))
	latest := rb.GetLatest(1)
	if latest[0].Epoch != 6 {
		t.Errorf("latest epoch = %d, want 6", latest[0].Epoch)
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Append(tick(1, 1.0, 1))
	rb.Clear()

	if rb.Size() != 0 {
		t.Errorf("size after clear = %d, want 0", rb.Size())
	}
	if len(rb.GetAll()) != 0 {
		t.Error("GetAll should be empty after clear")
	}
}

// -----------------------------------------------------------------------------

func TestMemoryManagerRestoresSymbol(t *testing.T) {
	mm := NewMemoryManager(512, 100)

	mm.AddDataPoint("R_50", models.MTick{Symbol: "R_50", Epoch: 10, Price: 1.2345, Digit: 5})
	mm.AddDataPoint("R_50", models.MTick{Symbol: "R_50", Epoch: 11, Price: 1.2346, Digit: 6})

	history := mm.GetHistory("R_50")
	if len(history) != 2 {
		t.Fatalf("got %d ticks, want 2", len(history))
	}
	for _, h := range history {
		if h.Symbol != "R_50" {
			t.Errorf("symbol = %q, want R_50", h.Symbol)
		}
	}

	latest, ok := mm.GetLatest("R_50")
	if !ok {
		t.Fatal("GetLatest returned no data")
	}
	if latest.Epoch != 11 || latest.Symbol != "R_50" {
		t.Errorf("latest = %+v, want epoch 11 symbol R_50", latest)
	}

	if _, ok := mm.GetLatest("R_99"); ok {
		t.Error("GetLatest for unknown symbol should report no data")
	}
	if len(mm.GetHistory("R_99")) != 0 {
		t.Error("GetHistory for unknown symbol should be empty")
	}
}
