package domain

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// MaxUploadSize максимальный размер загружаемого файла по умолчанию
const MaxUploadSize = 50 << 20 // 50 MB

// Поддерживаемые расширения входных файлов: каждое читается и резервным разделителем
var supportedExtensions = []string{".mp3", ".wav", ".flac", ".ogg"}

// SupportedFormats возвращает поддерживаемые форматы без точки
func SupportedFormats() []string {
	formats := make([]string, len(supportedExtensions))
	for i, ext := range supportedExtensions {
		formats[i] = strings.TrimPrefix(ext, ".")
	}
	return formats
}

// ValidateAudioFileName проверяет расширение загружаемого файла
func ValidateAudioFileName(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !slices.Contains(supportedExtensions, ext) {
		return ErrUnsupportedFileType
	}
	return nil
}

// ValidateFileSize проверяет размер загружаемого файла
func ValidateFileSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return ErrFileTooLarge
	}
	return nil
}

// ContentTypeFromFileName определяет MIME тип артефакта по имени файла
func ContentTypeFromFileName(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	}
	return "application/octet-stream"
}
