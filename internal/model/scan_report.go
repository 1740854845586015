// Package model содержит модели отчетов сканирования.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel представляет уровень риска
type RiskLevel int

const (
	// RiskUnknown уровень не задан сканером
	RiskUnknown RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskBlock
)

var riskNames = map[RiskLevel]string{
	RiskLow:    "low",
	RiskMedium: "medium",
	RiskHigh:   "high",
	RiskBlock:  "block",
}

// ParseRiskLevel разбирает уровень риска из строки
func ParseRiskLevel(s string) (RiskLevel, error) {
	for level, name := range riskNames {
		if strings.EqualFold(s, name) {
			return level, nil
		}
	}
	return RiskUnknown, fmt.Errorf("unknown risk level %q", s)
}

// String возвращает строковое представление уровня риска
func (r RiskLevel) String() string {
	if name, ok := riskNames[r]; ok {
		return name
	}
	if r == RiskUnknown {
		return "unknown"
	}
	return fmt.Sprintf("risk(%d)", int(r))
}

// AtLeast проверяет, что уровень не ниже заданного
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r >= other
}

// MarshalText реализует encoding.TextMarshaler
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (r *RiskLevel) UnmarshalText(data []byte) error {
	level, err := ParseRiskLevel(string(data))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// SecurityFinding представляет найденную сканером проблему
type SecurityFinding struct {
	RuleID         string    `json:"rule_id"`
	RuleName       string    `json:"rule_name"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Description    string    `json:"description"`
	File           string    `json:"file"`
	Line           *int      `json:"line"`
	Snippet        *string   `json:"snippet"`
	Recommendation string    `json:"recommendation"`
}

// ScanSummary сводка по найденным проблемам
type ScanSummary struct {
	Total  int `json:"total"`
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Block  int `json:"block"`
}

// ScanReport представляет отчет о сканировании скилла
type ScanReport struct {
	SkillID     string            `json:"skill_id"`
	OverallRisk RiskLevel         `json:"overall_risk"`
	Passed      bool              `json:"passed"`
	Findings    []SecurityFinding `json:"findings"`
	ScannedAt   string            `json:"scanned_at"`
	VersionHash string            `json:"version_hash"`
	Summary     ScanSummary       `json:"summary"`
}

// UnmarshalJSON считает отчет пройденным, если сканер не вернул поле passed.
// Отсутствующий или неизвестный overall_risk делает отчет невалидным.
// Общий риск разбирается до находок, поэтому при ошибке в находках он уже заполнен.
func (r *ScanReport) UnmarshalJSON(data []byte) error {
	type alias ScanReport
	aux := struct {
		alias
		OverallRisk *string         `json:"overall_risk"`
		Findings    json.RawMessage `json:"findings"`
	}{alias: alias{Passed: true}}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScanReport, err)
	}

	*r = ScanReport(aux.alias)
	r.Findings = nil

	if aux.OverallRisk == nil {
		return fmt.Errorf("%w: overall_risk is missing", ErrInvalidScanReport)
	}
	level, err := ParseRiskLevel(*aux.OverallRisk)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScanReport, err)
	}
	r.OverallRisk = level

	if len(aux.Findings) > 0 && string(aux.Findings) != "null" {
		if err := json.Unmarshal(aux.Findings, &r.Findings); err != nil {
			return fmt.Errorf("%w: findings: %v", ErrInvalidScanReport, err)
		}
	}
	return nil
}
