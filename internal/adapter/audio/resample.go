package audio

import "math"

// Число пересечений нуля sinc-ядра с каждой стороны от отсчёта
const resampleZeroCrossings = 16

// Resample меняет частоту дискретизации оконной sinc-интерполяцией.
// При понижении частоты срез ядра опускается до новой частоты Найквиста.
func Resample(x []float64, from, to int) []float64 {
	if from <= 0 || to <= 0 || from == to || len(x) == 0 {
		return append([]float64(nil), x...)
	}

	ratio := float64(to) / float64(from)
	outLen := (len(x)*to + from - 1) / from
	cutoff := math.Min(1, ratio)
	halfWidth := resampleZeroCrossings / cutoff

	out := make([]float64, outLen)
	for n := range out {
		t := float64(n) / ratio
		lo := max(int(math.Ceil(t-halfWidth)), 0)
		hi := min(int(math.Floor(t+halfWidth)), len(x)-1)

		var sum float64
		for k := lo; k <= hi; k++ {
			d := t - float64(k)
			sum += x[k] * cutoff * sinc(cutoff*d) * hannTaper(d/halfWidth)
		}
		out[n] = sum
	}
	return out
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// hannTaper окно Ханна на отрезке [-1, 1]
func hannTaper(u float64) float64 {
	if u <= -1 || u >= 1 {
		return 0
	}
	return 0.5 * (1 + math.Cos(math.Pi*u))
}

// Split делит сигнал на n смежных частей; первые len%n частей длиннее на один отсчёт
func Split(x []float64, n int) [][]float64 {
	if n <= 0 {
		return nil
	}
	parts := make([][]float64, n)
	base, extra := len(x)/n, len(x)%n
	start := 0
	for i := range parts {
		size := base
		if i < extra {
			size++
		}
		parts[i] = x[start : start+size : start+size]
		start += size
	}
	return parts
}
