package directory

import (
	"fmt"
	"io"
	"sync/atomic"
)

type statOp int

const (
	opAdd statOp = iota
	opGet
	opModify
	opDelete
	opMove
	opSearch
	opCompare
	opCount
)

var statOpNames = [opCount]string{
	opAdd:     "add",
	opGet:     "get",
	opModify:  "modify",
	opDelete:  "delete",
	opMove:    "move",
	opSearch:  "search",
	opCompare: "compare",
}

// OperationStats counts directory operations and their failures. Counters
// are atomic, so snapshots are cheap and never block operations.
type OperationStats struct {
	calls  [opCount]atomic.Int64
	errors [opCount]atomic.Int64
}

func (s *OperationStats) record(op statOp, failed bool) {
	s.calls[op].Add(1)
	if failed {
		s.errors[op].Add(1)
	}
}

// StatsSnapshot is a point-in-time view of operation counters.
type StatsSnapshot struct {
	// Calls counts invocations per operation name.
	Calls map[string]int64
	// Errors counts failed invocations per operation name.
	Errors map[string]int64
}

// Stats returns a snapshot of call and error counters, keyed by operation
// name (add, get, modify, delete, move, search, compare).
func (d *Directory) Stats() StatsSnapshot {
	snap := StatsSnapshot{
		Calls:  make(map[string]int64, opCount),
		Errors: make(map[string]int64, opCount),
	}
	for op := statOp(0); op < opCount; op++ {
		snap.Calls[statOpNames[op]] = d.stats.calls[op].Load()
		snap.Errors[statOpNames[op]] = d.stats.errors[op].Load()
	}
	return snap
}

// WritePrometheus writes the directory's metrics in Prometheus text
// exposition format: per-operation call and error counters plus gauges for
// the entry, schema and virtual-config populations.
func (d *Directory) WritePrometheus(w io.Writer) error {
	if _, err := fmt.Fprint(w,
		"# HELP directory_operations_total Total directory operations by type.\n",
		"# TYPE directory_operations_total counter\n"); err != nil {
		return err
	}
	for op := statOp(0); op < opCount; op++ {
		if _, err := fmt.Fprintf(w, "directory_operations_total{operation=%q} %d\n",
			statOpNames[op], d.stats.calls[op].Load()); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w,
		"# HELP directory_operation_errors_total Failed directory operations by type.\n",
		"# TYPE directory_operation_errors_total counter\n"); err != nil {
		return err
	}
	for op := statOp(0); op < opCount; op++ {
		if _, err := fmt.Fprintf(w, "directory_operation_errors_total{operation=%q} %d\n",
			statOpNames[op], d.stats.errors[op].Load()); err != nil {
			return err
		}
	}

	d.mu.RLock()
	entries, schemas, virtual := len(d.entries), len(d.schemas), len(d.virtual)
	d.mu.RUnlock()

	_, err := fmt.Fprintf(w,
		"# HELP directory_entries Current number of stored entries.\n"+
			"# TYPE directory_entries gauge\n"+
			"directory_entries %d\n"+
			"# HELP directory_schemas Current number of registered schemas.\n"+
			"# TYPE directory_schemas gauge\n"+
			"directory_schemas %d\n"+
			"# HELP directory_virtual_configs Current number of virtual directory configs.\n"+
			"# TYPE directory_virtual_configs gauge\n"+
			"directory_virtual_configs %d\n",
		entries, schemas, virtual)
	return err
}
