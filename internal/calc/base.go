// Package calc holds the row-parallel numeric kernels applied to recordings.
package calc

import (
	"runtime"
	"sync"
)

// PipeLine fans row jobs out to a fixed number of workers
type PipeLine struct {
	numWorkers int
}

// Init returns a compute PipeLine. workers <= 0 uses one worker per CPU.
func Init(workers int) *PipeLine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &PipeLine{numWorkers: workers}
}

// Workers returns the number of workers per stage
func (p *PipeLine) Workers() int {
	return p.numWorkers
}

// run calls job once for every row in [0, rows) and waits for all of them
func (p *PipeLine) run(rows int, job func(index int)) {
	order := make(chan int, p.numWorkers)
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < p.numWorkers; i++ {
		go func() {
			for index := range order {
				job(index)
				wg.Done()
			}
		}()
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)
}

type statistic struct {
	avg  float64
	norm float64 // root of the centered sum of squares
}
