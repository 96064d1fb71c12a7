package dto

import "github.com/shakib522/Sound-Extractor/internal/domain"

// ServiceInfoResponse ответ корневого эндпоинта
type ServiceInfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// SeparationTypeInfo описание типа разделения
type SeparationTypeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OutputFiles int    `json:"output_files"`
}

// QualityInfo описание уровня качества
type QualityInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SupportedFormatsResponse поддерживаемые форматы и параметры обработки
type SupportedFormatsResponse struct {
	SupportedFormats []string             `json:"supported_formats"`
	SeparationTypes  []SeparationTypeInfo `json:"separation_types"`
	QualityOptions   []QualityInfo        `json:"quality_options"`
}

// NewSupportedFormatsResponse собирает ответ из доменных справочников
func NewSupportedFormatsResponse() *SupportedFormatsResponse {
	resp := &SupportedFormatsResponse{
		SupportedFormats: domain.SupportedFormats(),
	}

	for _, st := range domain.SeparationTypes {
		resp.SeparationTypes = append(resp.SeparationTypes, SeparationTypeInfo{
			Name:        st.String(),
			Description: st.Description(),
			OutputFiles: st.StemCount(),
		})
	}

	for _, q := range domain.Qualities {
		resp.QualityOptions = append(resp.QualityOptions, QualityInfo{
			Name:        q.String(),
			Description: q.Description(),
		})
	}

	return resp
}
