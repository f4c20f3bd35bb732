package screentone

import "math"

// clamp255 clamps v to the byte channel domain [0,255].
func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// clampByte clamps and rounds v to a uint8 channel value.
func clampByte(v float64) uint8 {
	return uint8(math.Round(clamp255(v)))
}

// luma computes the Rec.601 luminance of an RGB triple, clamped to [0,255].
func luma(r, g, b float64) float64 {
	return clamp255(0.299*r + 0.587*g + 0.114*b)
}

// contrastFactor computes the standard contrast correction factor for a
// contrast amount c in [-255,255]:
//
//	f = 259(c+255) / (255(259-c))
func contrastFactor(c float64) float64 {
	return (259 * (c + 255)) / (255 * (259 - c))
}

// applyContrast remaps a channel value around the mid point and clamps:
// v' = f(v-128)+128.
func applyContrast(v, f float64) float64 {
	return clamp255(f*(v-128) + 128)
}

// lerpChannel linearly interpolates between two channel values.
func lerpChannel(a, b uint8, t float64) float64 {
	return float64(a) + (float64(b)-float64(a))*t
}

// indexedLevels derives the per-channel level count for an indexed palette
// of the given total color count: levels = floor(count^(1/3)), floored at 2
// so degenerate counts still quantize instead of failing.
func indexedLevels(count int) int {
	levels := int(math.Floor(math.Cbrt(float64(count))))
	if levels < 2 {
		levels = 2
	}
	return levels
}

// snapToStep snaps a channel value to the nearest multiple of step.
func snapToStep(v, step float64) float64 {
	if step <= 0 {
		return clamp255(v)
	}
	return clamp255(math.Round(v/step) * step)
}

// fullRangeStep is the quantization step for grade mode in full-range RGB:
// 32 representable levels per channel.
const fullRangeStep = 8.0
