package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnavickas/buddyalloc/allocator"
)

var (
	flagBenchWorkers int
	flagBenchOps     int
	flagBenchSeed    int64
)

// benchCmd runs a concurrent allocate/free workload against a single
// allocator.Synchronized arena, reporting throughput and the number of
// failed allocations.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a concurrent allocate/free workload against one arena",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := allocator.New(flagMinOrder, flagMaxOrder,
			allocator.WithDebug(flagDebug),
			allocator.WithLogger(newLogger()),
		)
		if err != nil {
			return err
		}
		sa := allocator.NewSynchronized(a)

		result := runStressTest(sa, flagBenchWorkers, flagBenchOps, flagBenchSeed)

		fmt.Fprintf(os.Stdout, "workers=%d ops/worker=%d elapsed=%s\n", flagBenchWorkers, flagBenchOps, result.elapsed)
		fmt.Fprintf(os.Stdout, "allocations=%d allocFailures=%d frees=%d throughput=%.0f ops/s\n",
			result.allocations, result.allocFailures, result.frees, result.throughput())
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchWorkers, "workers", 4, "number of concurrent worker goroutines")
	benchCmd.Flags().IntVar(&flagBenchOps, "ops", 1000, "allocate/free operations performed by each worker")
	benchCmd.Flags().Int64Var(&flagBenchSeed, "seed", 1, "random seed for the size/free distribution")
	rootCmd.AddCommand(benchCmd)
}

// stressResult collects counters gathered across every worker plus the
// wall-clock elapsed time.
type stressResult struct {
	allocations  uint64
	allocFailures uint64
	frees        uint64
	elapsed      time.Duration
}

func (r stressResult) throughput() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.allocations+r.frees) / r.elapsed.Seconds()
}

// runStressTest runs the given number of concurrent workers, each
// repeatedly allocating a randomly sized block and immediately freeing
// a fraction of its outstanding blocks, so the arena churns instead of
// monotonically filling up.
func runStressTest(sa *allocator.Synchronized, workers, opsPerWorker int, seed int64) stressResult {
	var result stressResult
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(workerID)))
			outstanding := make([]uint64, 0, opsPerWorker)

			minSize := int64(1) << uint(sa.MinOrder())
			maxSize := int64(1) << uint(sa.MinOrder()+2)

			for i := 0; i < opsPerWorker; i++ {
				size := minSize + rng.Int63n(maxSize-minSize+1)
				addr, err := sa.Allocate(size)
				if err != nil {
					atomic.AddUint64(&result.allocFailures, 1)
					continue
				}
				atomic.AddUint64(&result.allocations, 1)
				outstanding = append(outstanding, addr)

				if len(outstanding) > 0 && rng.Intn(2) == 0 {
					idx := rng.Intn(len(outstanding))
					if err := sa.Free(outstanding[idx]); err == nil {
						atomic.AddUint64(&result.frees, 1)
					}
					outstanding[idx] = outstanding[len(outstanding)-1]
					outstanding = outstanding[:len(outstanding)-1]
				}
			}

			for _, addr := range outstanding {
				if err := sa.Free(addr); err == nil {
					atomic.AddUint64(&result.frees, 1)
				}
			}
		}(w)
	}
	wg.Wait()

	result.elapsed = time.Since(start)
	return result
}
