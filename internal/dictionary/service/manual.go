package service

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"scope3-dict/internal/dictionary/model"
)

const manualConfidence = 0.90

// ASCII-запятая и японская 、
var reKeywordSep = regexp.MustCompile(`[,、]`)

// BuildManual собирает запись из ручного ввода оператора, минуя обучение.
func BuildManual(keywordText, category, categoryCode string) (model.Entry, error) {
	category = strings.TrimSpace(category)
	categoryCode = strings.TrimSpace(categoryCode)
	switch {
	case strings.TrimSpace(keywordText) == "":
		return model.Entry{}, validationErr("keywords", "required")
	case category == "":
		return model.Entry{}, validationErr("category", "required")
	case categoryCode == "":
		return model.Entry{}, validationErr("categoryCode", "required")
	}

	var keywords []string
	for _, p := range reKeywordSep.Split(keywordText, -1) {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	if len(keywords) == 0 {
		return model.Entry{}, validationErr("keywords", "no keywords after splitting")
	}

	return model.Entry{
		ID:           uuid.NewString(),
		Keywords:     keywords,
		Category:     category,
		CategoryCode: categoryCode,
		Confidence:   manualConfidence,
		Source:       model.SourceManual,
		Frequency:    1,
	}, nil
}
