package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/irah1999/cloud-flair/internal/stream"
)

// fakeProvider hands out sequential live inputs and records every call.
type fakeProvider struct {
	mu sync.Mutex

	createCalls int
	createDelay time.Duration
	createFn    func(params stream.LiveInputParams) (*stream.LiveInput, error)
	names       []string

	recordings []stream.Recording
	listErr    error
	listCalls  int

	disableErr error
	disabled   []string
	deleted    []string
}

func (f *fakeProvider) CreateLiveInput(ctx context.Context, params stream.LiveInputParams) (*stream.LiveInput, error) {
	f.mu.Lock()
	f.createCalls++
	n := f.createCalls
	f.names = append(f.names, params.Name)
	fn := f.createFn
	delay := f.createDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fn != nil {
		return fn(params)
	}
	uid := fmt.Sprintf("cf%d", n)
	return &stream.LiveInput{
		UID:         uid,
		PublishURL:  "https://pub/" + uid,
		PlaybackURL: "https://play/" + uid,
	}, nil
}

func (f *fakeProvider) ListRecordings(ctx context.Context, liveInputID string) ([]stream.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]stream.Recording(nil), f.recordings...), nil
}

func (f *fakeProvider) SetLiveInputEnabled(ctx context.Context, liveInputID string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !enabled {
		f.disabled = append(f.disabled, liveInputID)
	}
	return f.disableErr
}

func (f *fakeProvider) DeleteLiveInput(ctx context.Context, liveInputID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, liveInputID)
	return nil
}

func (f *fakeProvider) GetProviderName() string { return "fake" }

func (f *fakeProvider) creates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

func (f *fakeProvider) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}
