// Command bench measures the latency of model operations against a store.
//
//	bench -t view_fanout -n 200 -c 4 -u 50
//	bench --hosts 127.0.0.1 -k playtogether -t create_event -n 20 -c 3
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/cqldao"
	"github.com/Slm0nB/play-together-api-sub000/sqldao"
)

var (
	hosts      []string
	keyspace   string
	cqlVersion int
	sqlitePath string
	test       string
	numTimes   int
	numWorkers int
	numUsers   int
	plot       bool
)

var rootCmd = &cobra.Command{
	Use:          "bench",
	Short:        "Measure the latency of model operations",
	SilenceUsage: true,
	RunE:         runBench,
}

func init() {
	rootCmd.Flags().StringSliceVar(&hosts, "hosts", nil, "Cassandra hosts, sqlite is used when unset")
	rootCmd.Flags().StringVarP(&keyspace, "keyspace", "k", "playtogether_bench", "Cassandra keyspace")
	rootCmd.Flags().IntVar(&cqlVersion, "cql-version", 4, "CQL version")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite file, in memory when unset")
	rootCmd.Flags().StringVarP(&test, "test", "t", "", "Test name ("+strings.Join(testNames(), ", ")+")")
	rootCmd.Flags().IntVarP(&numTimes, "times", "n", 1, "Times test will be executed")
	rootCmd.Flags().IntVarP(&numWorkers, "concurrency", "c", 1, "Number of concurrent workers")
	rootCmd.Flags().IntVarP(&numUsers, "users", "u", 10, "Number of users taking part")
	rootCmd.Flags().BoolVar(&plot, "plot", true, "Print a latency histogram")
}

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, args []string) error {

	t, ok := availableTests[test]
	if !ok {
		return fmt.Errorf("test %q doesn't exist", test)
	}

	if cqlVersion < 2 || cqlVersion > 4 {
		return fmt.Errorf("CQL version must be between 2 and 4")
	}

	if numUsers < 2 {
		return fmt.Errorf("at least 2 users are required")
	}

	ctx := context.Background()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	env, err := newBenchEnv(ctx, store, numUsers)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := t.setup(ctx, env); err != nil {
		return err
	}

	global, samples := executeTest(ctx, env, t.run, numTimes, numWorkers, cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "Global: %v | %v\n", "---", global)

	if plot && len(samples) > 0 {
		return printHistogram(cmd.OutOrStdout(), samples)
	}
	return nil
}

func openStore(ctx context.Context) (api.Store, error) {

	if len(hosts) > 0 {
		session := cqldao.NewSession(keyspace, cqlVersion, hosts...)
		if err := session.Connect(); err != nil {
			return nil, err
		}
		if err := cqldao.CreateSchema(ctx, session); err != nil {
			return nil, err
		}
		return cqldao.NewStore(session), nil
	}

	if sqlitePath != "" {
		return sqldao.Open(ctx, sqlitePath)
	}
	return sqldao.OpenMemory(ctx)
}

// executeTest splits numTimes runs between numWorkers and returns the
// aggregated stats and every successful sample.
func executeTest(ctx context.Context, env *benchEnv, t testHandler, numTimes int, numWorkers int,
	out io.Writer) (executionStats, []time.Duration) {

	var wg sync.WaitGroup
	var mu sync.Mutex
	var samples []time.Duration

	statsSlice := make([]executionStats, numWorkers)
	work := splitWork(numTimes, numWorkers)

	startTime := time.Now()
	offset := 0

	for i := 0; i < numWorkers; i++ {

		wg.Add(1)

		go func(workerID int, first int, size int) {
			defer wg.Done()
			stats, durations := executeTestInWorker(ctx, env, t, first, size)
			statsSlice[workerID] = stats
			mu.Lock()
			samples = append(samples, durations...)
			fmt.Fprintf(out, "Worker: %3v | %v\n", workerID, stats)
			mu.Unlock()
		}(i, offset, work[i])

		offset += work[i]
	}

	wg.Wait()

	return computeGlobalStats(statsSlice, time.Since(startTime)), samples
}

// splitWork distributes total runs so that no two workers differ by more
// than one run.
func splitWork(total int, workers int) []int {
	work := make([]int, workers)
	for i := 0; i < workers; i++ {
		available := workers - i
		size := total / available
		if total%available > 0 {
			size++
		}
		work[i] = size
		total -= size
	}
	return work
}

func printHistogram(out io.Writer, samples []time.Duration) error {
	data := make([]float64, 0, len(samples))
	spread := false
	for _, d := range samples {
		data = append(data, float64(d.Microseconds()))
		spread = spread || data[len(data)-1] != data[0]
	}
	fmt.Fprintln(out, "\nLatency (µs)")
	if !spread {
		_, err := fmt.Fprintf(out, "%v samples of %v\n", len(data), data[0])
		return err
	}
	hist := histogram.Hist(10, data)
	return histogram.Fprint(out, hist, histogram.Linear(40))
}
