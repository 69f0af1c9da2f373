package meta

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/metasync/cmd/util"
	"github.com/ValentinKolb/metasync/lib/metastore"
	"github.com/ValentinKolb/metasync/lib/metasync"
	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/ValentinKolb/metasync/lib/session"
	"github.com/google/uuid"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"sync"
	"time"
)

var (
	benchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Stages a burst of updates for generated users and reports flush behaviour",
		PreRunE: processBenchConfig,
		RunE:    runBench,
	}
	benchUsers      = 10
	benchUpdates    = 1000
	benchFields     = 5
	benchInterval   = 50 * time.Millisecond
	benchPrometheus = false
)

func init() {
	// add flags
	key := "users"
	benchCmd.Flags().Int(key, 10, util.WrapString("Number of generated users, each one stages from its own goroutine"))
	key = "updates"
	benchCmd.Flags().Int(key, 1000, util.WrapString("Number of updates staged per user"))
	key = "fields"
	benchCmd.Flags().Int(key, 5, util.WrapString("Number of distinct fields per user the updates rotate through"))
	key = "interval"
	benchCmd.Flags().Duration(key, 50*time.Millisecond, util.WrapString("Throttle interval of the writer"))
	key = "prometheus"
	benchCmd.Flags().Bool(key, false, util.WrapString("Print the writer metrics in Prometheus text format"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	benchUsers = max(viper.GetInt("users"), 1)
	benchUpdates = max(viper.GetInt("updates"), 1)
	benchFields = max(viper.GetInt("fields"), 1)
	benchInterval = viper.GetDuration("interval")
	benchPrometheus = viper.GetBool("prometheus")
	return nil
}

// timedStore measures every write that reaches the store
type timedStore struct {
	metastore.IMetaStore
	timer gometrics.Timer
}

func (t *timedStore) SetItem(ctx context.Context, key string, rec record.Record) error {
	start := time.Now()
	defer t.timer.UpdateSince(start)
	return t.IMetaStore.SetItem(ctx, key, rec)
}

func runBench(cmd *cobra.Command, _ []string) error {
	fmt.Println("Flush benchmark for metasync")
	fmt.Printf("\nusers: %d, updates per user: %d, fields: %d, interval: %s, store: %s (%s)\n\n",
		benchUsers, benchUpdates, benchFields, benchInterval, viper.GetString("store"), viper.GetString("codec"))

	stageMeter := gometrics.NewMeter()
	defer stageMeter.Stop()
	writeTimer := gometrics.NewTimer()
	defer writeTimer.Stop()

	w := metasync.NewWriter(
		&timedStore{IMetaStore: metaStore, timer: writeTimer},
		metasync.WithInterval(benchInterval),
	)

	// every generated user gets its own organization
	scopes := make([]string, benchUsers)
	for i := range scopes {
		scopes[i] = session.ScopeKey(uuid.NewString(), uuid.NewString())
	}

	start := time.Now()
	var wg sync.WaitGroup
	for _, scope := range scopes {
		wg.Add(1)
		go func(scope string) {
			defer wg.Done()
			for i := 0; i < benchUpdates; i++ {
				w.Stage(scope, fmt.Sprintf("field%d", i%benchFields), i)
				stageMeter.Mark(1)
			}
		}(scope)
	}
	wg.Wait()
	staged := time.Since(start)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	if err := w.Close(ctx); err != nil {
		return err
	}
	total := time.Since(start)

	// verify that the last staged value of every field arrived
	lost := 0
	for _, scope := range scopes {
		rec, _, err := metaStore.GetItem(ctx, scope)
		if err != nil {
			return err
		}
		for f := 0; f < benchFields && f < benchUpdates; f++ {
			last := benchUpdates - 1 - (benchUpdates-1-f)%benchFields
			got, err := record.Decode[int](rec[fmt.Sprintf("field%d", f)])
			if err != nil || got != last {
				lost++
			}
		}
	}

	stats := w.Stats()
	meter := stageMeter.Snapshot()
	timer := writeTimer.Snapshot()
	ps := timer.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-20s%d in %s (%.0f ops/sec)\n", "staged", meter.Count(), staged, meter.RateMean())
	fmt.Printf("%-20s%d (%d retries)\n", "flush passes", stats.Passes, stats.Retries)
	fmt.Printf("%-20s%d\n", "records written", stats.RecordsWritten)
	fmt.Printf("%-20smean %s, p50 %s, p99 %s, max %s\n", "write latency",
		time.Duration(timer.Mean()), time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(timer.Max()))
	fmt.Printf("%-20s%d\n", "errors", stats.ReadErrors+stats.WriteErrors)
	fmt.Printf("%-20s%d\n", "lost fields", lost)
	fmt.Printf("%-20s%s\n", "total", total)

	if benchPrometheus {
		fmt.Println()
		w.WritePrometheus(os.Stdout)
	}

	if lost > 0 {
		return fmt.Errorf("%d fields did not reach the store", lost)
	}
	return nil
}
