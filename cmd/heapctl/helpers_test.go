package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

const shortTrace = `20000
2
6
1
a 0 100
a 1 3000
r 0 5000
f 1
a 1 64
f 0
`

// writeTrace writes a trace file into a temp dir and returns its path.
func writeTrace(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rep")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// writeHeap creates a heap file holding a few live and freed blocks.
func writeHeap(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.heap")
	f, err := heap.Create(path, 0)
	require.NoError(t, err)

	a, err := alloc.New(f, nil)
	require.NoError(t, err)
	p, err := a.Malloc(100)
	require.NoError(t, err)
	_, err = a.Malloc(200)
	require.NoError(t, err)
	require.NoError(t, a.Free(p))

	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())
	return path
}

// resetFlags restores global flags after a test.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		verbose, quiet, jsonOut = false, false, false
		replayCheck, replayHeapFile, replayLimit = false, "", heap.DefaultMemLimit
		checkLimit = heap.DefaultMemLimit
		dumpFreeList, dumpNoBlocks, dumpNoSummary, dumpLimit = false, false, false, heap.DefaultMemLimit
	})
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON and returns it decoded.
func assertJSON(t *testing.T, output string) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
	return result
}
