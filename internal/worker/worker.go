package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gallery/internal/assets"
	"gallery/internal/imagelock"
)

// MaxAttempts bounds how often one image's thumbnail is retried before the
// worker gives up and leaves it to the janitor.
const MaxAttempts = 3

// ThumbnailRefresher rebuilds the thumbnail of one image.
type ThumbnailRefresher interface {
	RefreshThumbnail(ctx context.Context, imageID int64) error
}

// Worker retries thumbnail renders that failed during a request, off the
// request path.
type Worker struct {
	refresher ThumbnailRefresher
	locks     *imagelock.Locker
	interval  time.Duration

	mu       sync.Mutex
	pending  []int64
	queued   map[int64]bool
	retry    []int64
	attempts map[int64]int

	trigger chan struct{} // Channel to wake up the worker immediately
	wg      sync.WaitGroup
}

// NewWorker creates a new background worker.
func NewWorker(refresher ThumbnailRefresher, locks *imagelock.Locker) *Worker {
	return &Worker{
		refresher: refresher,
		locks:     locks,
		interval:  2 * time.Second,
		queued:    make(map[int64]bool),
		attempts:  make(map[int64]int),
		trigger:   make(chan struct{}, 1),
	}
}

// Start runs the background worker loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	log.Println("Worker: started thumbnail repair queue")

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// failed renders are retried on the ticker, not in a tight loop
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("Worker: context cancelled, stopping loop")
				return
			case <-ticker.C:
				w.requeueRetries()
				w.processBatch(ctx)
			case <-w.trigger:
				w.processBatch(ctx)
			}
		}
	}()
}

// Stop waits for the worker loop to exit. Cancel the Start context first.
func (w *Worker) Stop() {
	log.Println("Worker: waiting for active jobs to finish...")
	w.wg.Wait()
	log.Println("Worker: stopped")
}

// Enqueue schedules a thumbnail rebuild for imageID and wakes the worker.
// Duplicate ids are collapsed.
func (w *Worker) Enqueue(imageID int64) {
	w.mu.Lock()
	if !w.queued[imageID] {
		w.queued[imageID] = true
		w.pending = append(w.pending, imageID)
	}
	w.mu.Unlock()
	w.TriggerSignal()
}

// TriggerSignal wakes up the worker to process pending jobs immediately.
func (w *Worker) TriggerSignal() {
	select {
	case w.trigger <- struct{}{}:
	default:
		// already triggered
	}
}

// Pending returns the number of queued and retrying ids.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) + len(w.retry)
}

func (w *Worker) requeueRetries() {
	w.mu.Lock()
	w.pending = append(w.pending, w.retry...)
	w.retry = nil
	w.mu.Unlock()
}

// processBatch processes jobs until the queue is empty.
func (w *Worker) processBatch(ctx context.Context) {
	for ctx.Err() == nil {
		if !w.processNextJob(ctx) {
			return
		}
	}
}

func (w *Worker) next() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return 0, false
	}
	id := w.pending[0]
	w.pending = w.pending[1:]
	return id, true
}

func (w *Worker) processNextJob(ctx context.Context) bool {
	id, ok := w.next()
	if !ok {
		return false
	}

	unlock := w.locks.Lock(id)
	err := w.refresher.RefreshThumbnail(ctx, id)
	unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case err == nil:
		log.Printf("Worker: rebuilt thumbnail for image %d", id)
	case errors.Is(err, assets.ErrImageNotFound):
		log.Printf("Worker: image %d is gone, dropping thumbnail job", id)
	default:
		w.attempts[id]++
		if w.attempts[id] < MaxAttempts {
			log.Printf("Worker: thumbnail for image %d failed (attempt %d): %v", id, w.attempts[id], err)
			w.retry = append(w.retry, id)
			return true
		}
		log.Printf("Worker: giving up on thumbnail for image %d after %d attempts: %v", id, w.attempts[id], err)
	}
	delete(w.queued, id)
	delete(w.attempts, id)
	return true
}
