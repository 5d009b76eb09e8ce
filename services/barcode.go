package services

import "strings"

// Виды отсканированных данных
const (
	ScanKindURL  = "url"
	ScanKindCode = "code"
)

// ScanResult классификация отсканированного кода
type ScanResult struct {
	Kind string `json:"kind"`
	Type string `json:"type,omitempty"`
	Data string `json:"data"`
}

// ClassifyScan определяет, является ли содержимое кода веб-ссылкой
func ClassifyScan(codeType, data string) ScanResult {
	data = strings.TrimSpace(data)
	kind := ScanKindCode
	if strings.HasPrefix(data, "http://") || strings.HasPrefix(data, "https://") {
		kind = ScanKindURL
	}
	return ScanResult{Kind: kind, Type: codeType, Data: data}
}
