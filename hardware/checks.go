package hardware

import "log/slog"

// Connectivity checks report readiness but never abort graph construction;
// a failed check is logged and surfaced to the CLI, and an absent camera
// simply degrades the surrounding behavior.

// CheckMotor verifies the motor communication channel with a reset.
func CheckMotor(c Controller) bool {
	slog.Info("checking motor communication channel")
	if err := c.Reset(); err != nil {
		slog.Error("motor communication channel is not ready", "error", err)
		return false
	}
	slog.Info("motor communication channel is ready")
	return true
}

// CheckADC verifies the analog channels return at least one live reading.
func CheckADC(b Board) bool {
	slog.Info("checking ADC channels")
	pack := b.ADCAll()
	for _, v := range pack {
		if v != 0 {
			slog.Info("ADC channels are ready")
			return true
		}
	}
	slog.Error("ADC channels are not ready", "channels", len(pack))
	return false
}

// CheckIO verifies the digital channels read back as pulled-up idle.
func CheckIO(b Board) bool {
	slog.Info("checking IO channels")
	pack := b.IOAll()
	if len(pack) == 0 {
		slog.Error("IO channels are not ready")
		return false
	}
	for _, v := range pack {
		if v != 0 && v != 1 {
			slog.Error("IO channel out of band", "value", v)
			return false
		}
	}
	slog.Info("IO channels are ready")
	return true
}

// CheckMPU verifies attitude, gyro and accelerometer all produce data.
func CheckMPU(b Board) bool {
	slog.Info("checking MPU")
	for _, pack := range [][]float64{b.Attitude(), b.Gyro(), b.Acc()} {
		live := false
		for _, v := range pack {
			if v != 0 {
				live = true
				break
			}
		}
		if !live {
			slog.Error("MPU is not ready")
			return false
		}
	}
	slog.Info("MPU is ready")
	return true
}

// CheckPower estimates supply voltage from the last ADC channel and requires
// at least 7V, below which the motors brown out mid-salvo.
func CheckPower(b Board) bool {
	slog.Info("checking power supply")
	pack := b.ADCAll()
	if len(pack) == 0 {
		slog.Error("power supply reading unavailable")
		return false
	}
	voltage := pack[len(pack)-1] * 3.3 * 4.0 / 4096
	if voltage > 7.0 {
		slog.Info("power supply is ready", "voltage", voltage)
		return true
	}
	slog.Error("power supply is not ready", "voltage", voltage)
	return false
}

// CheckCamera verifies the tag detector opens its device.
func CheckCamera(t TagDetector, deviceID int) bool {
	slog.Info("checking camera device")
	if err := t.Start(deviceID); err != nil {
		slog.Error("camera is not ready", "error", err)
		return false
	}
	slog.Info("camera is ready")
	return true
}
