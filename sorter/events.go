package sorter

// Sink receives progress and status notifications from a run. Calls may come
// from any worker goroutine; implementations must be safe for concurrent use
// and must not block, or they will stall the pool.
//
// Progress events are monotonic in the processed count but carry no ordering
// with respect to item indices: under more than one worker, item N's events
// may arrive after item N+1's.
type Sink interface {
	// ProgressPercent reports overall progress in [0, 100]. The 100 value is
	// only ever emitted on normal completion, never on a cancelled run.
	ProgressPercent(pct int)
	// ProgressCount reports processed versus total items.
	ProgressCount(done, total int)
	// StatusText reports a human-readable status line.
	StatusText(msg string)
	// Preview announces an item just before its classification begins. Only
	// emitted when preview mode is enabled.
	Preview(path string)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) ProgressPercent(int)    {}
func (NopSink) ProgressCount(int, int) {}
func (NopSink) StatusText(string)      {}
func (NopSink) Preview(string)         {}
