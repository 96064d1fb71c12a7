// Package audio содержит чтение и запись аудиофайлов и DSP, которые нужны
// резервному разделителю и постобработке: STFT, HPSS, ресемплинг.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidFile       = errors.New("invalid audio file")
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
	outputBitDepth      = 16
	// Предварительная ёмкость по заголовку FLAC не больше ~12 минут при 44.1 кГц
	maxPreallocSamples = 1 << 25
)

// Хвост GUID подформата WAVE_FORMAT_EXTENSIBLE; первые два байта GUID равны коду формата
var wavSubFormatSuffix = []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// Signal моно сигнал с нормированными в [-1, 1] отсчётами
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration длительность сигнала
func (s *Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Samples)) / float64(s.SampleRate) * float64(time.Second))
}

// Load читает аудиофайл и сводит его в моно
func Load(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".flac":
		return decodeFLAC(f)
	case ".ogg":
		return decodeVorbis(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// ProbeSampleRate читает только заголовок WAV файла
func ProbeSampleRate(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return int(d.SampleRate), nil
}

func decodeWAV(r io.ReadSeeker) (*Signal, error) {
	format, err := wavEncoding(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind wav file: %w", err)
	}

	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a readable wav file", ErrInvalidFile)
	}
	if format == wavFormatFloat && d.BitDepth != 32 {
		return nil, fmt.Errorf("%w: %d-bit float wav", ErrUnsupportedFormat, d.BitDepth)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	// go-audio читает 32-битные отсчёты как целые, float восстанавливаем из битов
	sample := func(v int) float64 { return float64(math.Float32frombits(uint32(int32(v)))) }
	if format == wavFormatPCM {
		scale, offset, err := pcmScale(int(d.BitDepth))
		if err != nil {
			return nil, err
		}
		sample = func(v int) float64 { return (float64(v) - offset) / scale }
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidFile)
	}
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += sample(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels)
	}

	return &Signal{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// wavEncoding читает код формата из fmt чанка; для WAVE_FORMAT_EXTENSIBLE
// возвращает код подформата
func wavEncoding(r io.Reader) (uint16, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil || string(header[:4]) != "RIFF" || string(header[8:]) != "WAVE" {
		return 0, fmt.Errorf("%w: not a readable wav file", ErrInvalidFile)
	}

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return 0, fmt.Errorf("%w: fmt chunk not found", ErrInvalidFile)
		}
		size := binary.LittleEndian.Uint32(chunk[4:])
		if string(chunk[:4]) != "fmt " {
			// чанки выровнены по чётной границе
			if _, err := io.CopyN(io.Discard, r, int64(size)+int64(size%2)); err != nil {
				return 0, fmt.Errorf("%w: fmt chunk not found", ErrInvalidFile)
			}
			continue
		}

		if size < 16 {
			return 0, fmt.Errorf("%w: short fmt chunk", ErrInvalidFile)
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return 0, fmt.Errorf("%w: short fmt chunk", ErrInvalidFile)
		}

		format := binary.LittleEndian.Uint16(body)
		if format == wavFormatExtensible {
			if size < 40 || !bytes.Equal(body[26:40], wavSubFormatSuffix) {
				return 0, fmt.Errorf("%w: unknown wav subformat", ErrUnsupportedFormat)
			}
			format = binary.LittleEndian.Uint16(body[24:26])
		}

		switch format {
		case wavFormatPCM, wavFormatFloat:
			return format, nil
		}
		return 0, fmt.Errorf("%w: wav audio format %d", ErrUnsupportedFormat, format)
	}
}

// pcmScale возвращает делитель и смещение для нормировки отсчётов.
// 8-битный PCM беззнаковый, остальные разрядности знаковые.
func pcmScale(bitDepth int) (scale, offset float64, err error) {
	switch bitDepth {
	case 8:
		return 128, 128, nil
	case 16, 24, 32:
		return math.Exp2(float64(bitDepth - 1)), 0, nil
	}
	return 0, 0, fmt.Errorf("%w: %d-bit pcm", ErrUnsupportedFormat, bitDepth)
}

func decodeMP3(r io.Reader) (*Signal, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	// go-mp3 всегда отдаёт 16-битное стерео little-endian
	const frameSize = 4
	frames := len(raw) / frameSize
	samples := make([]float64, frames)
	for i := range frames {
		l := int16(uint16(raw[i*frameSize]) | uint16(raw[i*frameSize+1])<<8)
		r := int16(uint16(raw[i*frameSize+2]) | uint16(raw[i*frameSize+3])<<8)
		samples[i] = (float64(l) + float64(r)) / 2 / 32768
	}

	return &Signal{Samples: samples, SampleRate: d.SampleRate()}, nil
}

func decodeFLAC(r io.Reader) (*Signal, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	scale := math.Exp2(float64(stream.Info.BitsPerSample) - 1)
	samples := make([]float64, 0, min(stream.Info.NSamples, maxPreallocSamples))
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}

		channels := len(frame.Subframes)
		for i := range frame.Subframes[0].Samples {
			var sum float64
			for _, sub := range frame.Subframes {
				sum += float64(sub.Samples[i])
			}
			samples = append(samples, sum/float64(channels)/scale)
		}
	}

	return &Signal{Samples: samples, SampleRate: int(stream.Info.SampleRate)}, nil
}

func decodeVorbis(r io.Reader) (*Signal, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidFile)
	}

	channels := format.Channels
	frames := len(data) / channels
	samples := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += float64(data[i*channels+c])
		}
		samples[i] = sum / float64(channels)
	}

	return &Signal{Samples: samples, SampleRate: format.SampleRate}, nil
}

// WriteWAV записывает сигнал в 16-битный моно WAV
func WriteWAV(path string, sig *Signal) (err error) {
	if sig.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sig.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close wav file: %w", cerr)
		}
	}()

	data := make([]int, len(sig.Samples))
	peak := math.Exp2(outputBitDepth-1) - 1
	for i, s := range sig.Samples {
		data[i] = int(math.Round(clamp(s) * peak))
	}

	enc := wav.NewEncoder(f, sig.SampleRate, outputBitDepth, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sig.SampleRate},
		Data:           data,
		SourceBitDepth: outputBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}

func clamp(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
