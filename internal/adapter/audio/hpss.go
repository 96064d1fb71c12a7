package audio

import (
	"math/cmplx"
	"slices"
)

// Параметры гармонико-перкуссионного разделения
const (
	HPSSFrameSize   = 2048
	HPSSHopSize     = 512
	HPSSKernelSize  = 31
	hpssMaskPower   = 2
	hpssMaskEpsilon = 1e-30
)

// Harmonic выделяет гармоническую составляющую сигнала.
// Медианный фильтр по времени усиливает стационарные тоны, по частоте
// усиливает импульсы; гармоническая часть получается мягкой маской H^p / (H^p + P^p).
func Harmonic(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}

	spec := STFT(x, HPSSFrameSize, HPSSHopSize)
	mag := magnitude(spec)
	harm := medianAlongTime(mag, HPSSKernelSize)
	perc := medianAlongFreq(mag, HPSSKernelSize)

	for f, frame := range spec.Frames {
		for k := range frame {
			frame[k] *= complex(softMask(harm[f][k], perc[f][k]), 0)
		}
	}

	return ISTFT(spec)
}

// Residual возвращает x - part поотсчётно
func Residual(x, part []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i]
		if i < len(part) {
			out[i] -= part[i]
		}
	}
	return out
}

func softMask(h, p float64) float64 {
	hp := pow(h, hpssMaskPower)
	pp := pow(p, hpssMaskPower)
	if hp+pp < hpssMaskEpsilon {
		return 0
	}
	return hp / (hp + pp)
}

func pow(v float64, n int) float64 {
	r := 1.0
	for range n {
		r *= v
	}
	return r
}

func magnitude(spec *Spectrogram) [][]float64 {
	bins := spec.Bins()
	mag := make([][]float64, len(spec.Frames))
	for f, frame := range spec.Frames {
		mag[f] = make([]float64, bins)
		for k, c := range frame[:bins] {
			mag[f][k] = cmplx.Abs(c)
		}
	}
	return mag
}

// medianAlongTime фильтрует каждый частотный бин по соседним кадрам
func medianAlongTime(mag [][]float64, kernel int) [][]float64 {
	frames := len(mag)
	if frames == 0 {
		return nil
	}
	bins := len(mag[0])
	out := allocLike(mag)
	window := make([]float64, kernel)
	half := kernel / 2
	for k := range bins {
		for f := range frames {
			for j := range kernel {
				window[j] = mag[edgeReflect(f+j-half, frames)][k]
			}
			out[f][k] = median(window)
		}
	}
	return out
}

// medianAlongFreq фильтрует каждый кадр по соседним частотным бинам
func medianAlongFreq(mag [][]float64, kernel int) [][]float64 {
	out := allocLike(mag)
	window := make([]float64, kernel)
	half := kernel / 2
	for f, frame := range mag {
		bins := len(frame)
		for k := range bins {
			for j := range kernel {
				window[j] = frame[edgeReflect(k+j-half, bins)]
			}
			out[f][k] = median(window)
		}
	}
	return out
}

func allocLike(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = make([]float64, len(m[i]))
	}
	return out
}

// median сортирует window на месте
func median(window []float64) float64 {
	slices.Sort(window)
	return window[len(window)/2]
}

// edgeReflect отражение с повтором крайнего отсчёта: (c b a | a b c | c b a)
func edgeReflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i - 1
	}
	return i
}
