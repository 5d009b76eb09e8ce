package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"foodbank-backend/models"

	"golang.org/x/sync/errgroup"
)

// ViewState состояние списка инвентаря
type ViewState string

const (
	StateIdle    ViewState = "idle"
	StateLoading ViewState = "loading"
	StateReady   ViewState = "ready"
	StateError   ViewState = "error"
)

// ErrStaleFetch возвращается загрузкой, результаты которой вытеснены более новой
var ErrStaleFetch = errors.New("inventory fetch superseded by a newer one")

const defaultResolveConcurrency = 8

// InventoryItem элемент списка с разрешенной ссылкой на изображение
type InventoryItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Quantity    int       `json:"quantity"`
	Expiration  time.Time `json:"expiration"`
	ImageRef    string    `json:"image_ref"`
	ImageURL    string    `json:"image_url"`
	Barcode     string    `json:"barcode,omitempty"`
}

// BlobResolver превращает ссылку на хранилище в URL для загрузки
type BlobResolver interface {
	ResolveURL(ctx context.Context, ref string) (string, error)
}

// Snapshot то, что получает слой представления
type Snapshot struct {
	State      ViewState       `json:"state"`
	Error      string          `json:"error,omitempty"`
	Query      string          `json:"query"`
	Bucket     Bucket          `json:"bucket"`
	Generation uint64          `json:"generation"`
	Items      []InventoryItem `json:"items"`
}

// InventoryViewOption настраивает InventoryView
type InventoryViewOption func(*InventoryView)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) InventoryViewOption {
	return func(v *InventoryView) { v.now = now }
}

// WithLogger задает логгер
func WithLogger(log *slog.Logger) InventoryViewOption {
	return func(v *InventoryView) { v.log = log }
}

// WithMetrics задает метрики
func WithMetrics(m *Metrics) InventoryViewOption {
	return func(v *InventoryView) { v.metrics = m }
}

// WithResolveConcurrency ограничивает число одновременных разрешений изображений
func WithResolveConcurrency(n int) InventoryViewOption {
	return func(v *InventoryView) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// InventoryView модель представления списка инвентаря: загружает непросроченные
// записи, разрешает изображения и применяет фильтры по имени и сроку годности.
type InventoryView struct {
	docs        DocumentQuerier
	blobs       BlobResolver
	log         *slog.Logger
	metrics     *Metrics
	now         func() time.Time
	concurrency int

	mu         sync.RWMutex
	generation uint64
	state      ViewState
	err        error
	fetched    bool
	base       []InventoryItem
	items      []InventoryItem
	query      string
	bucket     Bucket
}

// NewInventoryView создает модель представления в состоянии idle
func NewInventoryView(docs DocumentQuerier, blobs BlobResolver, opts ...InventoryViewOption) *InventoryView {
	v := &InventoryView{
		docs:        docs,
		blobs:       blobs,
		log:         slog.Default(),
		now:         time.Now,
		concurrency: defaultResolveConcurrency,
		state:       StateIdle,
		bucket:      BucketAll,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Fetch загружает список заново. Если во время загрузки была запущена другая,
// результат не применяется и возвращается ErrStaleFetch.
// Успешная загрузка сбрасывает фильтры.
func (v *InventoryView) Fetch(ctx context.Context) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.state = StateLoading
	v.err = nil
	v.mu.Unlock()

	start := time.Now()
	items, err := v.load(ctx, v.now())
	v.metrics.observeFetch(time.Since(start), err)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		v.log.Debug("discarding stale inventory fetch", "generation", gen, "current", v.generation)
		return ErrStaleFetch
	}
	if err != nil {
		v.state = StateError
		v.err = err
		v.fetched = false
		v.base = nil
		v.items = nil
		return err
	}

	v.base = items
	v.items = items
	v.query = ""
	v.bucket = BucketAll
	v.fetched = true
	v.state = StateReady
	return nil
}

// Search применяет фильтр по имени (вместе с текущим диапазоном)
func (v *InventoryView) Search(query string) []InventoryItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
	return v.applyLocked()
}

// SelectBucket применяет фильтр по сроку годности (вместе с текущим поиском)
func (v *InventoryView) SelectBucket(b Bucket) []InventoryItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bucket = b
	return v.applyLocked()
}

// ClearFilters возвращает полный список последней загрузки
func (v *InventoryView) ClearFilters() []InventoryItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = ""
	v.bucket = BucketAll
	return v.applyLocked()
}

// Items текущий отфильтрованный список
func (v *InventoryView) Items() []InventoryItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneItems(v.items)
}

// State текущее состояние
func (v *InventoryView) State() ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Snapshot копия состояния для слоя представления
func (v *InventoryView) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := Snapshot{
		State:      v.state,
		Query:      v.query,
		Bucket:     v.bucket,
		Generation: v.generation,
		Items:      cloneItems(v.items),
	}
	if v.err != nil {
		s.Error = v.err.Error()
	}
	if s.Items == nil {
		s.Items = []InventoryItem{}
	}
	return s
}

// applyLocked фильтрует данные последней успешной загрузки и возвращает
// модель в ready. Во время загрузки и после ошибки состояние не меняется.
func (v *InventoryView) applyLocked() []InventoryItem {
	if v.fetched && v.state != StateLoading {
		v.state = StateReady
	}
	v.items = FilterByName(FilterByBucket(v.base, v.bucket, v.now()), v.query)
	return cloneItems(v.items)
}

func (v *InventoryView) load(ctx context.Context, now time.Time) ([]InventoryItem, error) {
	docs, err := v.docs.Query(ctx, Query{
		Collection: models.InventoryCollection,
		Field:      FieldExpiration,
		After:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	candidates := make([]InventoryItem, 0, len(docs))
	for _, doc := range docs {
		item := decodeInventoryItem(doc)
		if item.ImageRef == "" {
			v.log.Debug("skipping inventory item without image", "item_id", item.ID)
			v.metrics.itemDropped("no_image")
			continue
		}
		if item.Expiration.IsZero() || !item.Expiration.After(now) {
			v.log.Debug("skipping inventory item outside expiration window", "item_id", item.ID)
			v.metrics.itemDropped("expired")
			continue
		}
		candidates = append(candidates, item)
	}

	// Каждая горутина пишет только в свой индекс, порядок запроса сохраняется.
	resolved := make([]bool, len(candidates))
	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i := range candidates {
		g.Go(func() error {
			url, err := v.blobs.ResolveURL(ctx, candidates[i].ImageRef)
			if err != nil {
				// Отмена обрабатывается после Wait, это не ошибка элемента
				if ctx.Err() != nil {
					return nil
				}
				v.log.Warn("image resolution failed, dropping item",
					"item_id", candidates[i].ID, "image_ref", candidates[i].ImageRef, "err", err)
				v.metrics.resolveFailed()
				return nil
			}
			candidates[i].ImageURL = url
			resolved[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]InventoryItem, 0, len(candidates))
	for i, item := range candidates {
		if resolved[i] {
			items = append(items, item)
		}
	}
	return items, nil
}

// FilterByName оставляет элементы, имя которых содержит query без учета регистра
func FilterByName(items []InventoryItem, query string) []InventoryItem {
	if query == "" {
		return cloneItems(items)
	}
	needle := strings.ToLower(query)
	out := make([]InventoryItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			out = append(out, item)
		}
	}
	return out
}

// FilterByBucket оставляет элементы, срок годности которых попадает в диапазон
func FilterByBucket(items []InventoryItem, b Bucket, now time.Time) []InventoryItem {
	if b == BucketAll || b == "" {
		return cloneItems(items)
	}
	out := make([]InventoryItem, 0, len(items))
	for _, item := range items {
		if b.ContainsDays(DaysUntil(item.Expiration, now)) {
			out = append(out, item)
		}
	}
	return out
}

func cloneItems(items []InventoryItem) []InventoryItem {
	if items == nil {
		return nil
	}
	out := make([]InventoryItem, len(items))
	copy(out, items)
	return out
}

func decodeInventoryItem(doc Document) InventoryItem {
	item := InventoryItem{ID: doc.ID}
	item.Name, _ = doc.Fields[FieldName].(string)
	item.Description, _ = doc.Fields[FieldDescription].(string)
	item.ImageRef, _ = doc.Fields[FieldImageRef].(string)
	item.Barcode, _ = doc.Fields[FieldBarcode].(string)

	switch q := doc.Fields[FieldQuantity].(type) {
	case int:
		item.Quantity = q
	case int64:
		item.Quantity = int(q)
	case float64:
		item.Quantity = int(q)
	}

	switch e := doc.Fields[FieldExpiration].(type) {
	case time.Time:
		item.Expiration = e
	case *time.Time:
		if e != nil {
			item.Expiration = *e
		}
	}
	return item
}
