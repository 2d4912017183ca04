package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/lib/containers"
	"github.com/ValentinKolb/tKV/lib/encoding"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cli")

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for tKV servers",
		Long:    "Runs a set of parallel benchmarks against the shard. All keys are written below a random prefix and removed afterwards.",
		Args:    cobra.NoArgs,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__perf/"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

// perfTest is a single benchmark. Every operation gets one of the prepared keys.
type perfTest struct {
	name    string
	prepare bool // write every key before the timer starts
	op      func(key []byte) error
}

// perfResult is the outcome of a perfTest
type perfResult struct {
	name    string
	result  testing.BenchmarkResult
	latency gometrics.Timer
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines per CPU used by the benchmarks"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	// a fresh namespace per run, so runs never see each other's keys
	perfKeyPrefix = fmt.Sprintf("__perf/%s/", uuid.New())

	return nil
}

func runPerf(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Performance testing tool for tKV servers")

	// Print configuration
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, util.GetClientConfig().String())
	fmt.Fprintf(out, "Threads: %d\n", perfNumThreads)
	fmt.Fprintf(out, "Key Prefix: %s\n", perfKeyPrefix)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "starting tests...")

	smallValue := []byte("test")
	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	scanStart := []byte(perfKeyPrefix + "scan-")
	scanEnd := append(slices.Clone(scanStart), 0xff)

	var mixedCounter atomic.Uint64

	tests := []perfTest{
		{
			name: "set",
			op:   func(key []byte) error { return rpcStore.Set(key, smallValue) },
		},
		{
			name: "set-large",
			op:   func(key []byte) error { return rpcStore.Set(key, largeValue) },
		},
		{
			name:    "get",
			prepare: true,
			op: func(key []byte) error {
				_, _, err := rpcStore.Get(key)
				return err
			},
		},
		{
			name: "get-missing",
			op: func(key []byte) error {
				_, _, err := rpcStore.Get(key)
				return err
			},
		},
		{
			name:    "delete",
			prepare: true,
			op:      rpcStore.Delete,
		},
		{
			name:    "scan",
			prepare: true,
			op: func(_ []byte) error {
				for _, err := range rpcStore.Pairs(scanStart, scanEnd) {
					if err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			name: "item-update",
			op: func(key []byte) error {
				counter := containers.NewItemAt(key, encoding.LittleEndian[uint64]()).Access(rpcStore)
				return counter.Update(func(old uint64, _ bool) uint64 { return old + 1 })
			},
		},
		{
			name:    "mixed",
			prepare: true,
			op: func(key []byte) error {
				var err error
				switch mixedCounter.Add(1) % 3 {
				case 0:
					err = rpcStore.Set(key, smallValue)
				case 1:
					_, _, err = rpcStore.Get(key)
				case 2:
					err = rpcStore.Delete(key)
				}
				return err
			},
		},
	}

	registry := gometrics.NewRegistry()
	var results []perfResult

	for _, test := range tests {
		if shouldSkip(test.name) {
			fmt.Fprintf(out, "%-20sskipped\n", test.name)
			continue
		}
		res := runPerfTest(test, registry)
		results = append(results, res)
		printResult(cmd, res)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Fprintf(out, "\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Fprintln(out, "Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runPerfTest benchmarks test and records the latency of every operation
func runPerfTest(test perfTest, registry gometrics.Registry) perfResult {
	latency := gometrics.GetOrRegisterTimer(test.name, registry)
	keys := getKeys(test.name)

	result := testing.Benchmark(func(b *testing.B) {
		if test.prepare {
			for _, k := range keys {
				if err := rpcStore.Set(k, []byte("test")); err != nil {
					Logger.Warningf("(%s) - error setting key: %v", test.name, err)
				}
			}
		}

		b.Cleanup(func() {
			for _, k := range keys {
				if err := rpcStore.Delete(k); err != nil {
					Logger.Warningf("(%s) - error deleting key: %v", test.name, err)
				}
			}
		})

		b.SetParallelism(perfNumThreads)

		var next atomic.Uint64
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				key := keys[next.Add(1)%uint64(len(keys))]
				start := time.Now()
				if err := test.op(key); err != nil {
					Logger.Warningf("(%s) - operation failed: %v", test.name, err)
				}
				latency.UpdateSince(start)
			}
		})
	})

	return perfResult{name: test.name, result: result, latency: latency}
}

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// getKeys creates the test keys of one benchmark
func getKeys(test string) [][]byte {
	keys := make([][]byte, perfKeySpread)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("%s%s-%d", perfKeyPrefix, test, i))
	}
	return keys
}

// opsPerSec converts the benchmark result, zero if nothing ran
func opsPerSec(result testing.BenchmarkResult) (nsPerOp, ops float64) {
	if result.NsPerOp() == 0 {
		return 0, 0
	}
	nsPerOp = max(float64(result.NsPerOp()), 1) // prevent division by zero
	return nsPerOp, 1e9 / nsPerOp
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(cmd *cobra.Command, res perfResult) {
	nsPerOp, ops := opsPerSec(res.result)
	p := res.latency.Snapshot().Percentiles([]float64{0.5, 0.99})

	fmt.Fprintf(cmd.OutOrStdout(), "%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\n",
		res.name, nsPerOp, time.Duration(nsPerOp), ops, time.Duration(p[0]), time.Duration(p[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P99Ns",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint", "PageSize",
		"ShardID", "Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, res := range results {
		nsPerOp, ops := opsPerSec(res.result)
		p := res.latency.Snapshot().Percentiles([]float64{0.5, 0.99})

		row := []string{
			res.name,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", ops),
			fmt.Sprintf("%.0f", p[0]),
			fmt.Sprintf("%.0f", p[1]),
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			strconv.Itoa(config.PageSize),
			strconv.FormatUint(util.GetShardID(), 10),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", res.name, err)
		}
	}

	return nil
}
