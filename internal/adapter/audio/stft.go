package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrogram кадры кратковременного преобразования Фурье
type Spectrogram struct {
	Frames [][]complex128 // [кадр][частотный бин]
	NFFT   int
	Hop    int
	Length int // длина исходного сигнала
}

// Bins количество частотных бинов в кадре
func (s *Spectrogram) Bins() int {
	return s.NFFT/2 + 1
}

// STFT вычисляет спектрограмму с окном Ханна и центрированием кадров
// (сигнал дополняется отражением на nFFT/2 с каждой стороны)
func STFT(x []float64, nFFT, hop int) *Spectrogram {
	pad := nFFT / 2
	padded := reflectPad(x, pad)
	frames := 1 + (len(padded)-nFFT)/hop
	window := hann(nFFT)

	fft := fourier.NewFFT(nFFT)
	buf := make([]float64, nFFT)
	spec := &Spectrogram{
		Frames: make([][]complex128, frames),
		NFFT:   nFFT,
		Hop:    hop,
		Length: len(x),
	}
	for f := range frames {
		start := f * hop
		for i := range nFFT {
			buf[i] = padded[start+i] * window[i]
		}
		spec.Frames[f] = fft.Coefficients(nil, buf)
	}
	return spec
}

// ISTFT восстанавливает сигнал взвешенным сложением перекрывающихся кадров
func ISTFT(spec *Spectrogram) []float64 {
	nFFT, hop := spec.NFFT, spec.Hop
	window := hann(nFFT)
	total := nFFT + hop*(len(spec.Frames)-1)
	out := make([]float64, total)
	norm := make([]float64, total)

	fft := fourier.NewFFT(nFFT)
	buf := make([]float64, nFFT)
	scale := 1 / float64(nFFT)
	for f, frame := range spec.Frames {
		seq := fft.Sequence(buf, frame)
		start := f * hop
		for i := range nFFT {
			out[start+i] += seq[i] * scale * window[i]
			norm[start+i] += window[i] * window[i]
		}
	}

	const tiny = 1e-10
	for i := range out {
		if norm[i] > tiny {
			out[i] /= norm[i]
		}
	}

	result := make([]float64, spec.Length)
	pad := nFFT / 2
	if pad < len(out) {
		copy(result, out[pad:])
	}
	return result
}

// hann периодическое окно Ханна
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// reflectPad дополняет сигнал отражением без повтора крайнего отсчёта
func reflectPad(x []float64, pad int) []float64 {
	out := make([]float64, len(x)+2*pad)
	n := len(x)
	if n == 0 {
		return out
	}
	for i := range out {
		out[i] = x[mirror(i-pad, n)]
	}
	return out
}

// mirror отражает индекс относительно границ [0, n) без повтора крайнего отсчёта
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
