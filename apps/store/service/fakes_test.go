package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go-grocery/pkg/search"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []CartEvent
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	ev := body.(CartEvent)
	if ev.Type != key {
		return errors.New("routing key does not match event type")
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.mu.Unlock()
	return nil
}

type stubSearcher struct {
	ids   []uint
	total int64
	err   error
	calls int
}

func (s *stubSearcher) SearchIDs(context.Context, string, int, int) ([]uint, int64, error) {
	s.calls++
	return s.ids, s.total, s.err
}

type memIndex struct {
	ensured bool
	docs    []search.ProductDoc
	batches int
}

func (m *memIndex) EnsureIndex(context.Context) error {
	m.ensured = true
	return nil
}

func (m *memIndex) IndexAll(_ context.Context, docs []search.ProductDoc) error {
	m.batches++
	m.docs = append(m.docs, docs...)
	return nil
}
