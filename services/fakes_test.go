package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDocuments возвращает заранее заданные документы, отфильтрованные по запросу
type fakeDocuments struct {
	mu      sync.Mutex
	docs    []Document
	err     error
	queries []Query
	// block, если задан, держит запрос до закрытия канала
	block chan struct{}
}

func (f *fakeDocuments) Query(ctx context.Context, q Query) ([]Document, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	out := make([]Document, 0, len(f.docs))
	for _, d := range f.docs {
		exp, ok := d.Fields[FieldExpiration].(time.Time)
		if ok && exp.After(q.After) {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeBlobs разрешает ссылки в "https://cdn.test/<ref>"
type fakeBlobs struct {
	mu     sync.Mutex
	fail   map[string]bool
	delay  map[string]time.Duration
	calls  int
	active int
	peak   int
}

func (f *fakeBlobs) ResolveURL(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	delay := f.delay[ref]
	fail := f.fail[ref]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if fail {
		return "", errors.New("object does not exist")
	}
	return "https://cdn.test/" + ref, nil
}

func doc(id, name string, qty int, daysLeft float64, imageRef string) Document {
	fields := map[string]any{
		FieldName:       name,
		FieldQuantity:   qty,
		FieldExpiration: testNow.Add(time.Duration(daysLeft * float64(24*time.Hour))),
	}
	if imageRef != "" {
		fields[FieldImageRef] = imageRef
	}
	return Document{ID: id, Fields: fields}
}

func newTestView(docs DocumentQuerier, blobs BlobResolver, opts ...InventoryViewOption) *InventoryView {
	base := []InventoryViewOption{
		WithClock(func() time.Time { return testNow }),
		WithLogger(discardLogger()),
	}
	return NewInventoryView(docs, blobs, append(base, opts...)...)
}

func names(items []InventoryItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
