package db

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/cmd/util"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for database servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfCollection = "__perf"
	perfNumThreads = 10
	perfDocSpread  = 100
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. add,search)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "docs"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different documents to use for the tests"))
	key = "collection"
	perfTestCmd.Flags().String(key, "__perf", util.WrapString("Name of the scratch collection used for the benchmark"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfDocSpread = viper.GetInt("docs")
	perfCollection = viper.GetString("collection")
	if skip := viper.GetString("skip"); skip != "" {
		perfSkip = strings.Split(skip, ",")
	}

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	fmt.Println("Performance testing tool for database servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	cfg := util.GetClientConfig()
	fmt.Println(cfg.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Documents: %d\n", perfDocSpread)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	// cleanup removes every benchmark document from the scratch collection
	cleanup := func(test string) {
		_, err := dbClient.Execute(ctx, query.NewDelete(perfCollection, nil))
		if err != nil {
			log.Printf("(%s) - error cleaning up: %v\n", test, err)
		}
	}

	addResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("add") {
			return
		}

		b.Cleanup(func() { cleanup("add") })

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				_, err := dbClient.Execute(ctx, query.NewAdd(perfCollection, perfDoc(counter)))
				if err != nil {
					log.Printf("(add) - error adding document: %v\n", err)
				}
				counter++
			}
		})
	})

	results["add"] = addResult
	printResult("add", addResult)

	// seed documents for the read benchmarks
	if !shouldSkip("search") || !shouldSkip("count") {
		docs := make([]map[string]any, 0, perfDocSpread)
		for i := 0; i < perfDocSpread; i++ {
			docs = append(docs, perfDoc(i))
		}
		if _, err := dbClient.Execute(ctx, query.NewAdd(perfCollection, docs...)); err != nil {
			return fmt.Errorf("failed to seed benchmark documents: %v", err)
		}
	}

	searchResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("search") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				cause := query.NewCompare("idx", query.OpEq, counter%perfDocSpread)
				_, err := dbClient.Execute(ctx, query.NewSearch(perfCollection, cause))
				if err != nil {
					log.Printf("(search) - error searching: %v\n", err)
				}
				counter++
			}
		})
	})

	results["search"] = searchResult
	printResult("search", searchResult)

	countResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("count") {
			return
		}

		b.Cleanup(func() { cleanup("count") })

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, err := dbClient.Execute(ctx, query.NewCount(perfCollection, nil))
				if err != nil {
					log.Printf("(count) - error counting: %v\n", err)
				}
			}
		})
	})

	results["count"] = countResult
	printResult("count", countResult)

	mixedResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mixed") {
			return
		}

		b.Cleanup(func() { cleanup("mixed") })

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				var err error
				cause := query.NewCompare("idx", query.OpEq, counter%perfDocSpread)
				switch counter % 4 {
				case 0: // add
					_, err = dbClient.Execute(ctx, query.NewAdd(perfCollection, perfDoc(counter)))
				case 1: // search
					_, err = dbClient.Execute(ctx, query.NewSearch(perfCollection, cause))
				case 2: // update
					_, err = dbClient.Execute(ctx, query.NewUpdate(perfCollection, cause, map[string]any{"touched": true}))
				case 3: // delete
					_, err = dbClient.Execute(ctx, query.NewDeleteOne(perfCollection, cause))
				}

				if err != nil {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
				}
				counter++
			}
		})
	})

	results["mixed"] = mixedResult
	printResult("mixed", mixedResult)

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// perfDoc builds a benchmark document with a spread index field
func perfDoc(i int) map[string]any {
	return map[string]any{
		"idx":  i % perfDocSpread,
		"name": fmt.Sprintf("perf-%d", i%perfDocSpread),
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoint", "TimeoutSec", "RetryCount", "Threads", "Docs Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	cfg := util.GetClientConfig()

	// Write test results
	for test, result := range results {
		var (
			nsPerOp   float64
			opsPerSec float64
			skipped   string
		)
		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			strconv.FormatFloat(nsPerOp, 'f', 0, 64),
			time.Duration(nsPerOp).String(),
			strconv.FormatFloat(opsPerSec, 'f', 0, 64),
			skipped,
			cfg.Endpoint,
			strconv.Itoa(cfg.TimeoutSecond),
			strconv.Itoa(cfg.RetryCount),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfDocSpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %v", err)
		}
	}

	return nil
}
