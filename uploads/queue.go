// Package uploads runs the admin upload workflow: a batch of files is queued,
// each item is stored and then recorded in the catalog, and every state
// change is published to subscribers.
package uploads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/models"
	"github.com/basit/fileshare-catalog/repositories"
	"github.com/basit/fileshare-catalog/storage"
)

const (
	msgStoreFailed  = "Failed to upload file to storage"
	msgRecordFailed = "Failed to save file record"
	msgReadFailed   = "Failed to read uploaded file"
	msgCancelled    = "Upload cancelled"

	jobBuffer = 256
)

// Request is a batch submission.
type Request struct {
	UploadedBy *uuid.UUID
	CategoryID *uuid.UUID
	Files      []Submission
}

type entry struct {
	item       Item
	source     Source
	uploadedBy *uuid.UUID
	categoryID *uuid.UUID
}

type batch struct {
	total     int
	remaining int
	failed    int
}

type Queue struct {
	files   repositories.FileRepository
	storage storage.ObjectStorage
	logger  logging.Logger
	workers int

	mu      sync.Mutex
	order   []uuid.UUID
	entries map[uuid.UUID]*entry
	batches map[uuid.UUID]*batch
	closed  bool
	onBatch func(Summary)

	// stopped is closed once Run's context is done; inflight counts Submit
	// calls that got past the closed check.
	stopped  chan struct{}
	inflight sync.WaitGroup

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int

	jobs chan uuid.UUID
}

func NewQueue(files repositories.FileRepository, store storage.ObjectStorage, logger logging.Logger, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		files:   files,
		storage: store,
		logger:  logger,
		workers: workers,
		entries: make(map[uuid.UUID]*entry),
		batches: make(map[uuid.UUID]*batch),
		subs:    make(map[int]chan Event),
		jobs:    make(chan uuid.UUID, jobBuffer),
		stopped: make(chan struct{}),
	}
}

// OnBatchComplete registers fn to be called once every item of a batch is
// terminal. It must be set before Run.
func (q *Queue) OnBatchComplete(fn func(Summary)) {
	q.mu.Lock()
	q.onBatch = fn
	q.mu.Unlock()
}

// Run processes queued items until ctx is cancelled. Items still waiting when
// it returns are marked as failed. Run must be called at most once.
func (q *Queue) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-q.jobs:
					if ctx.Err() != nil {
						q.cancel(ctx, id)
						continue
					}
					q.process(ctx, id)
				}
			}
		}()
	}

	<-ctx.Done()
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	close(q.stopped)

	wg.Wait()
	q.inflight.Wait()

	for {
		select {
		case id := <-q.jobs:
			q.cancel(ctx, id)
		default:
			return
		}
	}
}

// Submit enqueues a batch and returns the snapshot of its items, all pending.
func (q *Queue) Submit(ctx context.Context, req Request) ([]Item, error) {
	if len(req.Files) == 0 {
		return nil, common.NewUserError(common.ErrValidation, "Please select at least one file", nil)
	}

	batchID := uuid.New()
	now := time.Now()
	items := make([]Item, 0, len(req.Files))

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, common.NewUserError(common.ErrInvalidState, "Upload queue is not running", nil)
	}
	for _, f := range req.Files {
		e := &entry{
			item: Item{
				ID:          uuid.New(),
				BatchID:     batchID,
				Name:        f.Name,
				Size:        f.Size,
				ContentType: f.ContentType,
				Status:      StatusPending,
				CreatedAt:   now,
			},
			source:     f.Source,
			uploadedBy: req.UploadedBy,
			categoryID: req.CategoryID,
		}
		q.entries[e.item.ID] = e
		q.order = append(q.order, e.item.ID)
		items = append(items, e.item)
	}
	q.batches[batchID] = &batch{total: len(items), remaining: len(items)}
	q.inflight.Add(1)
	q.mu.Unlock()
	defer q.inflight.Done()

	q.logger.Info(ctx, "upload batch queued", "batch_id", batchID, "files", len(items))

	for i := range items {
		ev := items[i]
		q.publish(Event{Type: EventItem, Item: &ev})
	}
	for i := range items {
		select {
		case q.jobs <- items[i].ID:
		case <-ctx.Done():
			return q.cancelRest(ctx, items, i), nil
		case <-q.stopped:
			return q.cancelRest(ctx, items, i), nil
		}
	}
	return items, nil
}

func (q *Queue) cancelRest(ctx context.Context, items []Item, from int) []Item {
	for _, rest := range items[from:] {
		q.cancel(ctx, rest.ID)
	}
	return q.snapshot(items)
}

// Items returns the visible queue in submission order.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.entries[id].item)
	}
	return out
}

func (q *Queue) snapshot(items []Item) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if e, ok := q.entries[it.ID]; ok {
			out = append(out, e.item)
		}
	}
	return out
}

// Dismiss removes a terminal item from the visible queue.
func (q *Queue) Dismiss(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[id]
	if !ok {
		return common.NewUserError(common.ErrNotFound, "Upload not found", nil)
	}
	if !e.item.Status.Terminal() {
		return common.NewUserError(common.ErrInvalidState, "Only finished uploads can be dismissed", nil)
	}
	q.remove(id)
	return nil
}

// ClearCompleted drops every complete item and returns how many were removed.
func (q *Queue) ClearCompleted() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ids []uuid.UUID
	for _, id := range q.order {
		if q.entries[id].item.Status == StatusComplete {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		q.remove(id)
	}
	return len(ids)
}

// Subscribe returns a channel of queue events and a func that stops the
// subscription. Events are dropped for subscribers that fall behind.
func (q *Queue) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	q.subMu.Lock()
	id := q.nextID
	q.nextID++
	q.subs[id] = ch
	q.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.subMu.Lock()
			delete(q.subs, id)
			q.subMu.Unlock()
			close(ch)
		})
	}
}

// remove must be called with q.mu held.
func (q *Queue) remove(id uuid.UUID) {
	delete(q.entries, id)
	for i, oid := range q.order {
		if oid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func (q *Queue) publish(ev Event) {
	q.subMu.Lock()
	defer q.subMu.Unlock()
	for _, ch := range q.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// update applies fn to the item under the lock, publishes the result and
// returns the entry with a snapshot of the updated item.
func (q *Queue) update(id uuid.UUID, fn func(*Item)) (*entry, Item, bool) {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok {
		q.mu.Unlock()
		return nil, Item{}, false
	}
	fn(&e.item)
	snapshot := e.item
	q.mu.Unlock()

	ev := snapshot
	q.publish(Event{Type: EventItem, Item: &ev})
	return e, snapshot, true
}

func (q *Queue) process(ctx context.Context, id uuid.UUID) {
	e, it, ok := q.update(id, func(it *Item) {
		it.Status = StatusUploading
		it.Progress = 0
	})
	if !ok {
		return
	}
	log := q.logger.With("item_id", it.ID, "batch_id", it.BatchID, "name", it.Name)

	defer func() {
		if e.source == nil {
			return
		}
		if err := e.source.Release(); err != nil {
			log.Warn(ctx, "error releasing upload source", "error", err)
		}
	}()

	if e.source == nil {
		q.fail(ctx, id, msgReadFailed)
		return
	}
	body, err := e.source.Open()
	if err != nil {
		log.Error(ctx, "error opening upload source", "error", err)
		q.fail(ctx, id, msgReadFailed)
		return
	}
	defer body.Close()

	name := StorageName(it.Name)
	path := StoragePath(name)

	reader := &progressReader{r: body, total: it.Size, report: func(pct int) {
		q.update(id, func(cur *Item) { cur.Progress = pct })
	}}
	if err := q.storage.Put(ctx, path, reader, it.Size, it.ContentType, it.Name); err != nil {
		log.Error(ctx, "error uploading to storage", "path", path, "error", err)
		q.fail(ctx, id, msgStoreFailed)
		return
	}

	file := &models.File{
		ID:           uuid.New(),
		Name:         name,
		OriginalName: it.Name,
		Size:         it.Size,
		StoragePath:  path,
		DownloadSlug: shortuuid.New(),
		UploadedBy:   e.uploadedBy,
		CategoryID:   e.categoryID,
		CreatedAt:    time.Now(),
	}
	if it.ContentType != "" {
		ct := it.ContentType
		file.MimeType = &ct
	}

	if err := q.files.Create(ctx, file); err != nil {
		log.Error(ctx, "error saving file record", "path", path, "error", err)
		if rmErr := q.storage.Remove(ctx, []string{path}); rmErr != nil {
			log.Warn(ctx, "error removing stored object after failed insert", "path", path, "error", rmErr)
		}
		q.fail(ctx, id, msgRecordFailed)
		return
	}

	q.update(id, func(it *Item) {
		it.Status = StatusComplete
		it.Progress = 100
		it.FileID = &file.ID
	})
	log.Info(ctx, "upload complete", "file_id", file.ID, "path", path, "size", it.Size)
	q.finish(ctx, it.BatchID, false)
}

func (q *Queue) fail(ctx context.Context, id uuid.UUID, msg string) {
	_, it, ok := q.update(id, func(it *Item) {
		it.Status = StatusError
		it.Error = msg
	})
	if !ok {
		return
	}
	q.finish(ctx, it.BatchID, true)
}

// cancel fails an item that never reached a worker and drops its source.
func (q *Queue) cancel(ctx context.Context, id uuid.UUID) {
	e, snap, ok := q.update(id, func(it *Item) {
		it.Status = StatusError
		it.Error = msgCancelled
	})
	if !ok {
		return
	}
	if e.source != nil {
		if err := e.source.Release(); err != nil {
			q.logger.Warn(ctx, "error releasing upload source", "item_id", id, "error", err)
		}
	}
	q.finish(ctx, snap.BatchID, true)
}

func (q *Queue) finish(ctx context.Context, batchID uuid.UUID, failed bool) {
	q.mu.Lock()
	b, ok := q.batches[batchID]
	if !ok {
		q.mu.Unlock()
		return
	}
	b.remaining--
	if failed {
		b.failed++
	}
	if b.remaining > 0 {
		q.mu.Unlock()
		return
	}
	delete(q.batches, batchID)
	onBatch := q.onBatch
	q.mu.Unlock()

	summary := Summary{BatchID: batchID, Total: b.total, Completed: b.total - b.failed, Failed: b.failed}
	q.logger.Info(ctx, "upload batch finished",
		"batch_id", batchID, "completed", summary.Completed, "failed", summary.Failed)

	q.publish(Event{Type: EventBatchComplete, Batch: &summary})
	if onBatch != nil {
		onBatch(summary)
	}
}
