package model

// ChannelStatus is a read-only snapshot of one channel, assembled from
// the shared duty register for operator-facing reporting.
type ChannelStatus struct {
	// Unique identifier of the channel
	ID string `json:"id"`
	// Currently requested duty value
	Duty uint16 `json:"duty"`
	// Fully-ON duty value of the channel
	Period uint16 `json:"period"`
	// Lowest flicker-free duty value of the channel
	MinFlickerFree uint16 `json:"min_flicker_free"`
	// Waveform strategy of the channel
	Waveform WaveformType `json:"waveform"`
	// Number of refresh cycles started by the engine
	CompletedCycles uint32 `json:"completed_cycles"`
}

// WorkerStatus is a read-only snapshot of the whole worker.
type WorkerStatus struct {
	// Version of the worker program
	Version string `json:"version"`
	// Humanized time since the worker started
	Started string `json:"started"`
	// Tick frequency of the synthesis engine in Hz
	TickFrequency int `json:"tick_frequency"`
	// Number of ticks whose handler overran the tick period
	DeadlineMisses uint64 `json:"deadline_misses"`
	// Snapshot of all channels
	Channels []ChannelStatus `json:"channels"`
}
