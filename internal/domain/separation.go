package domain

import "errors"

var (
	ErrInvalidSeparationType = errors.New("invalid separation type")
	ErrInvalidQuality        = errors.New("invalid quality")
)

// SeparationType запрошенная гранулярность разделения
type SeparationType string

const (
	SeparationVocalsAccompaniment       SeparationType = "vocals_accompaniment"
	SeparationVocalsDrumsBassOther      SeparationType = "vocals_drums_bass_other"
	SeparationVocalsDrumsBassPianoOther SeparationType = "vocals_drums_bass_piano_other"
)

// SeparationTypes все поддерживаемые типы в порядке возрастания числа дорожек
var SeparationTypes = []SeparationType{
	SeparationVocalsAccompaniment,
	SeparationVocalsDrumsBassOther,
	SeparationVocalsDrumsBassPianoOther,
}

var separationStems = map[SeparationType][]string{
	SeparationVocalsAccompaniment:       {"vocals", "accompaniment"},
	SeparationVocalsDrumsBassOther:      {"vocals", "drums", "bass", "other"},
	SeparationVocalsDrumsBassPianoOther: {"vocals", "drums", "bass", "piano", "other"},
}

var separationDescriptions = map[SeparationType]string{
	SeparationVocalsAccompaniment:       "Separate vocals from background music",
	SeparationVocalsDrumsBassOther:      "Separate into vocals, drums, bass, and other instruments",
	SeparationVocalsDrumsBassPianoOther: "Separate into vocals, drums, bass, piano, and other instruments",
}

// ParseSeparationType разбирает тип разделения из строки
func ParseSeparationType(s string) (SeparationType, error) {
	st := SeparationType(s)
	if !st.IsValid() {
		return "", ErrInvalidSeparationType
	}
	return st, nil
}

// IsValid проверяет валидность типа
func (s SeparationType) IsValid() bool {
	_, ok := separationStems[s]
	return ok
}

// Stems возвращает имена дорожек в том порядке, в котором они отдаются клиенту
func (s SeparationType) Stems() []string {
	stems, ok := separationStems[s]
	if !ok {
		return separationStems[SeparationVocalsAccompaniment]
	}
	return stems
}

// StemCount количество дорожек, которое выдаёт основной движок
func (s SeparationType) StemCount() int {
	return len(s.Stems())
}

// Description человекочитаемое описание
func (s SeparationType) Description() string {
	return separationDescriptions[s]
}

func (s SeparationType) String() string {
	return string(s)
}

// Quality качество выходных файлов
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// Qualities все поддерживаемые значения качества
var Qualities = []Quality{QualityHigh, QualityMedium, QualityLow}

// ParseQuality разбирает качество из строки
func ParseQuality(s string) (Quality, error) {
	q := Quality(s)
	if !q.IsValid() {
		return "", ErrInvalidQuality
	}
	return q, nil
}

// IsValid проверяет валидность качества
func (q Quality) IsValid() bool {
	switch q {
	case QualityHigh, QualityMedium, QualityLow:
		return true
	}
	return false
}

// TargetSampleRate целевая частота дискретизации; 0 означает «без изменений»
func (q Quality) TargetSampleRate() int {
	switch q {
	case QualityMedium:
		return 22050
	case QualityLow:
		return 16000
	}
	return 0
}

// Description человекочитаемое описание
func (q Quality) Description() string {
	switch q {
	case QualityMedium:
		return "Reduced quality (22050 Hz, smaller files)"
	case QualityLow:
		return "Low quality (16000 Hz, smallest files)"
	}
	return "Original quality (larger files)"
}

func (q Quality) String() string {
	return string(q)
}

// Имена бэкендов разделения
const (
	BackendSpleeter = "spleeter"
	BackendFallback = "fallback"
)

// SeparationResult результат работы бэкенда разделения
type SeparationResult struct {
	Artifacts []string
	Backend   string
}
