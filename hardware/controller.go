package hardware

// Controller drives the four wheels through the closed-loop motor board.
// Speeds are signed controller units ordered fl, rl, rr, fr.
type Controller interface {
	Open() error
	Close() error
	Reset() error
	Apply(speeds [4]int) error
	FullStop() error
}

// TagDetector is the optional vision pipeline. When the camera is absent the
// surrounding breaker degrades to its no-camera variant and nothing here is
// called.
type TagDetector interface {
	Start(deviceID int) error
	Stop() error
	// TagID reports the identity of the tag currently in front, or the
	// detector's configured default when none is visible.
	TagID() int
}
