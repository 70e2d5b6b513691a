package flowfield

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum cell count to use the worker pool.
// Below this, single-threaded is faster due to dispatch overhead.
const parallelThreshold = 4096

// rowChunk is a contiguous range of grid rows for one worker.
type rowChunk struct {
	y0, y1 int
	fn     func(worker, y0, y1 int)
}

// queryScratch holds per-worker reusable buffers for index queries.
type queryScratch struct {
	neighbors []Vec2
}

// workerPool executes row-partitioned grid passes. Workers are
// persistent: launched on the first parallel pass and stopped by
// Field.Close.
type workerPool struct {
	numWorkers int
	scratches  []queryScratch

	workChan chan rowChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool(rows int) *workerPool {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > rows {
		numWorkers = rows
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	scratches := make([]queryScratch, numWorkers)
	for i := range scratches {
		scratches[i].neighbors = make([]Vec2, 0, 64)
	}
	return &workerPool{
		numWorkers: numWorkers,
		scratches:  scratches,
	}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing row chunks until stopped.
// A worker handles one chunk at a time, so its scratch buffers are
// never shared.
func (p *workerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(id, chunk.y0, chunk.y1)
			p.doneChan <- struct{}{}
		}
	}
}

// runRows executes fn over all grid rows, split across the worker pool
// when the grid is large enough. Chunks are disjoint row ranges, so
// passes write without locking; results must not depend on the
// partitioning.
func (f *Field) runRows(fn func(worker, y0, y1 int)) {
	if f.width*f.height < parallelThreshold {
		fn(0, 0, f.height)
		return
	}

	if !f.pool.running {
		f.pool.start()
	}

	numWorkers := f.pool.numWorkers
	chunkSize := (f.height + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		y0 := w * chunkSize
		y1 := y0 + chunkSize
		if y1 > f.height {
			y1 = f.height
		}
		if y0 >= y1 {
			continue
		}

		f.pool.workChan <- rowChunk{y0: y0, y1: y1, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-f.pool.doneChan
	}
}
