package hardware

// Bench stand-ins. The CLI links these when no real driver is attached, so
// graph construction and dry runs work on a desk without the robot.

// NullController accepts every motor command and does nothing.
type NullController struct{}

func (NullController) Open() error               { return nil }
func (NullController) Close() error              { return nil }
func (NullController) Reset() error              { return nil }
func (NullController) Apply(speeds [4]int) error { return nil }
func (NullController) FullStop() error           { return nil }

// NullBoard reports quiet mid-scale sensors: every ADC channel idles at the
// given level, digital channels read pulled-up idle, the MPU reads a level
// chassis at a fixed heading.
type NullBoard struct {
	ADCLevel float64
	ADCCount int
	IOCount  int
}

func (b NullBoard) pack(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (b NullBoard) ADCAll() []float64   { return b.pack(b.ADCCount, b.ADCLevel) }
func (b NullBoard) IOAll() []float64    { return b.pack(b.IOCount, 1) }
func (b NullBoard) IOLevels() []float64 { return b.pack(b.IOCount, 1) }
func (b NullBoard) IOModes() []float64  { return b.pack(b.IOCount, 0) }
func (b NullBoard) Attitude() []float64 { return []float64{0, 0, 17.5} }
func (b NullBoard) Gyro() []float64     { return []float64{0.02, -0.01, 0.03} }
func (b NullBoard) Acc() []float64      { return []float64{0, 0, 9.8} }

// NullTagDetector always reports the given tag.
type NullTagDetector struct {
	Tag int
}

func (NullTagDetector) Start(deviceID int) error { return nil }
func (NullTagDetector) Stop() error              { return nil }
func (d NullTagDetector) TagID() int             { return d.Tag }
