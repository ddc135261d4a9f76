package main

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/heap/walker"
)

var checkLimit int

func init() {
	cmd := newCheckCmd()
	cmd.Flags().IntVar(&checkLimit, "limit", heap.DefaultMemLimit, "Maximum heap size in bytes")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <heapfile>",
		Short: "Verify the invariants of a heap file",
		Long: `The check command attaches to a heap file and verifies every heap
invariant: sentinel tags, header/footer agreement, block sizes and alignment,
coalescing, and free-list consistency. It exits non-zero on the first
violation.

Example:
  heapctl check run.heap
  heapctl check run.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	path := args[0]
	printVerbose("Checking heap: %s\n", path)

	f, err := heap.Open(path, checkLimit)
	if err != nil {
		return err
	}
	defer f.Close()

	_, attachErr := alloc.Attach(f, &alloc.Options{Logger: newLogger()})
	var verr *verify.ValidationError
	errors.As(attachErr, &verr)

	var summary walker.Summary
	if attachErr == nil {
		summary, _ = walker.Summarize(f.Bytes())
	}

	if jsonOut {
		if err := printJSON(func(obj *jwriter.ObjectState) {
			obj.Name("File").String(path)
			obj.Name("Valid").Bool(attachErr == nil)
			if verr != nil {
				obj.Name("Type").String(verr.Type)
				obj.Name("Offset").Int(verr.Offset)
				obj.Name("Message").String(verr.Message)
			} else if attachErr != nil {
				obj.Name("Message").String(attachErr.Error())
			}
			obj.Name("HeapBytes").Int(len(f.Bytes()))
			if attachErr == nil {
				obj.Name("Blocks").Int(summary.BlockCount)
				obj.Name("FreeBlocks").Int(summary.FreeCount)
			}
		}); err != nil {
			return err
		}
	} else if attachErr == nil {
		printInfo("%s: OK (%d bytes, %d blocks, %d free)\n", path, len(f.Bytes()), summary.BlockCount, summary.FreeCount)
	} else if verr != nil {
		printInfo("%s: INVALID\n  %s at offset 0x%X: %s\n", path, verr.Type, verr.Offset, verr.Message)
	}

	if attachErr != nil {
		return errors.Wrapf(attachErr, "%s", path)
	}
	return nil
}
