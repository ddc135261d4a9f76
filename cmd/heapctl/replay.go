package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	replayCheck    bool
	replayHeapFile string
	replayLimit    int
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Run the heap checker after every operation")
	cmd.Flags().StringVar(&replayHeapFile, "heap-file", "", "Replay into a file-backed heap at this path")
	cmd.Flags().IntVar(&replayLimit, "limit", heap.DefaultMemLimit, "Maximum heap size in bytes")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay allocation traces against a fresh heap",
		Long: `The replay command runs each trace file against a fresh heap and
checks every result: payload alignment, bounds, overlap with live blocks,
and that payload contents survive until the block is freed or reallocated.

Each trace gets its own heap. With --heap-file the heap lives in that file
and is flushed to disk after the trace; with several traces the file holds
the heap of the last one.

Example:
  heapctl replay traces/short1-bal.rep
  heapctl replay traces/*.rep --check
  heapctl replay amptjp-bal.rep --heap-file amptjp.heap --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

type replayOutcome struct {
	path string
	res  trace.Result
	err  error
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	outcomes := make([]replayOutcome, 0, len(args))
	failed := 0
	for _, path := range args {
		printVerbose("Replaying %s\n", path)
		res, err := replayFile(ctx, path)
		if err != nil {
			failed++
		}
		outcomes = append(outcomes, replayOutcome{path: path, res: res, err: err})
	}

	if jsonOut {
		if err := printReplayJSON(outcomes); err != nil {
			return err
		}
	} else {
		printReplayText(outcomes)
	}

	if failed > 0 {
		return errors.Newf("%d of %d trace(s) failed", failed, len(args))
	}
	return nil
}

func replayFile(ctx context.Context, path string) (trace.Result, error) {
	tr, err := trace.ParseFile(path)
	if err != nil {
		return trace.Result{}, err
	}

	logger := newLogger()
	topts := &trace.Options{CheckHeap: replayCheck, Logger: logger}

	if replayHeapFile == "" {
		a, err := alloc.New(heap.NewMem(replayLimit), &alloc.Options{Logger: logger})
		if err != nil {
			return trace.Result{}, err
		}
		return trace.Replay(ctx, a, tr, topts)
	}

	f, err := heap.Create(replayHeapFile, replayLimit)
	if err != nil {
		return trace.Result{}, err
	}
	defer f.Close()

	dt := dirty.NewTracker(f)
	a, err := alloc.New(f, &alloc.Options{Logger: logger, Tracker: dt})
	if err != nil {
		return trace.Result{}, err
	}
	res, err := trace.Replay(ctx, a, tr, topts)
	if err != nil {
		return res, err
	}
	if err := dt.Flush(ctx, dirty.FlushAuto); err != nil {
		return res, errors.Wrap(err, "flush heap file")
	}
	return res, nil
}

func printReplayText(outcomes []replayOutcome) {
	printInfo("%-32s %8s %10s %10s %7s\n", "TRACE", "OPS", "PEAK", "HEAP", "UTIL")
	total, ok := 0.0, 0
	for _, o := range outcomes {
		if o.err != nil {
			printInfo("%-32s FAILED: %v\n", o.path, o.err)
			continue
		}
		printInfo("%-32s %8d %10d %10d %6.1f%%\n", o.path, o.res.Ops, o.res.PeakPayload, o.res.HeapSize, 100*o.res.Utilization)
		total += o.res.Utilization
		ok++
	}
	if ok > 0 {
		printInfo("average utilization: %.1f%% over %d trace(s)\n", 100*total/float64(ok), ok)
	}
}

func printReplayJSON(outcomes []replayOutcome) error {
	return printJSON(func(obj *jwriter.ObjectState) {
		arr := obj.Name("Traces").Array()
		total, ok := 0.0, 0
		for _, o := range outcomes {
			t := arr.Object()
			t.Name("Trace").String(o.path)
			t.Name("OK").Bool(o.err == nil)
			if o.err != nil {
				t.Name("Error").String(o.err.Error())
			} else {
				total += o.res.Utilization
				ok++
			}
			t.Name("Ops").Int(o.res.Ops)
			t.Name("Allocs").Int(o.res.Allocs)
			t.Name("Reallocs").Int(o.res.Reallocs)
			t.Name("Frees").Int(o.res.Frees)
			t.Name("PeakPayload").Int(o.res.PeakPayload)
			t.Name("HeapSize").Int(o.res.HeapSize)
			t.Name("Utilization").Float64(o.res.Utilization)
			t.End()
		}
		arr.End()
		if ok > 0 {
			obj.Name("AverageUtilization").Float64(total / float64(ok))
		}
	})
}
