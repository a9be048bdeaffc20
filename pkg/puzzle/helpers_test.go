package puzzle

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mapStore is a plain map store without compare-and-swap.
type mapStore struct {
	mu     sync.Mutex
	values map[string]string
	marks  int
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string]string)}
}

func (s *mapStore) Set(_ context.Context, id, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = value
	return nil
}

func (s *mapStore) Get(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[id]
	return v, ok, nil
}

func (s *mapStore) MarkVerified(_ context.Context, id, sentinel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks++
	s.values[id] = sentinel
	return nil
}

func (s *mapStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, id)
	return nil
}

func (s *mapStore) value(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[id]
	return v, ok
}

// swapStore adds compare-and-swap and counts successful swaps.
type swapStore struct {
	*mapStore
	swaps atomic.Int32
}

func newSwapStore() *swapStore {
	return &swapStore{mapStore: newMapStore()}
}

func (s *swapStore) CompareAndSwap(_ context.Context, id, old, new string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.values[id]; !ok || cur != old {
		return false, nil
	}
	s.values[id] = new
	s.swaps.Add(1)
	return true, nil
}

// testImage draws a gradient so every piece position has distinct content.
func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 180, A: 255})
		}
	}
	return img
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

// fixedOffset makes the random draw land on offset.
func fixedOffset(offset int) func(int) int {
	return func(int) int { return offset - MinOffset }
}
