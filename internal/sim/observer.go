package sim

// Frame is what one platform frame produced: the ticks it ran, the
// resulting snapshot and the fire notifications drained from the engine.
type Frame struct {
	Mode     string      `json:"mode"`
	Ticks    int         `json:"ticks"`
	Snapshot Snapshot    `json:"snapshot"`
	Stats    Stats       `json:"stats"`
	Fired    []FireEvent `json:"fired,omitempty"`
}

// FrameObserver consumes frames outside the simulation (metrics, spectators).
type FrameObserver interface {
	ObserveFrame(f Frame)
}

// ObserverFunc adapts a function to FrameObserver.
type ObserverFunc func(f Frame)

// ObserveFrame calls fn(f).
func (fn ObserverFunc) ObserveFrame(f Frame) { fn(f) }
