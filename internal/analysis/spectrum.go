// Package analysis extracts frequency content from recorded discharge
// waveforms.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/launchlab/coilsim/internal/launch"
)

// FFT computes the discrete Fourier transform by radix-2 decimation. The
// input length must be a power of two; callers pad with PadPow2.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}
	if n%2 != 0 {
		panic("analysis: fft length must be a power of two")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PadPow2 zero-pads data up to the next power-of-two length.
func PadPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// PowerSpectrum returns the magnitude of the positive-frequency half of the
// transform, after zero-padding.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(PadPow2(data))
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// RingingFrequency returns the dominant frequency in Hz of a uniformly
// sampled waveform, skipping the DC bin. For an underdamped stage discharge
// this recovers the damped resonance omega_d / 2 pi.
func RingingFrequency(data []float64, dt float64) (float64, error) {
	if dt <= 0 {
		return 0, fmt.Errorf("%w: sample interval must be positive, got %g", launch.ErrConfig, dt)
	}
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: need at least 4 samples, got %d", launch.ErrConfig, len(data))
	}

	ps := PowerSpectrum(data)
	n := 2 * len(ps) // padded length

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}

	return float64(maxIdx) / (float64(n) * dt), nil
}
