package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/printer"
)

var (
	dumpFreeList  bool
	dumpNoBlocks  bool
	dumpNoSummary bool
	dumpLimit     int
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpFreeList, "free-list", false, "Also list the free list in traversal order")
	cmd.Flags().BoolVar(&dumpNoBlocks, "no-blocks", false, "Omit the block map")
	cmd.Flags().BoolVar(&dumpNoSummary, "no-summary", false, "Omit the summary")
	cmd.Flags().IntVar(&dumpLimit, "limit", heap.DefaultMemLimit, "Maximum heap size in bytes")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <heapfile>",
		Short: "Print the block map of a heap file",
		Long: `The dump command prints every block of a heap file in address order
with its size and state, optionally followed by the free list.

Example:
  heapctl dump run.heap
  heapctl dump run.heap --free-list
  heapctl dump run.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	path := args[0]
	printVerbose("Dumping heap: %s\n", path)

	f, err := heap.Open(path, dumpLimit)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	opts.ShowFreeList = dumpFreeList
	opts.ShowBlocks = !dumpNoBlocks
	opts.ShowSummary = !dumpNoSummary

	return printer.New(f.Bytes(), os.Stdout, opts).PrintHeap()
}
