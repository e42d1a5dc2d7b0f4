package ml

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NumFeatures is the width of every feature vector in the system. The scaler
// and both classifiers are fitted against this exact column order; reordering
// silently corrupts predictions.
const NumFeatures = 12

// FeatureNames returns the canonical feature order.
func FeatureNames() []string {
	return []string{
		"wbc", "rbc", "hemoglobin", "platelets",
		"cholesterol", "hdl", "ldl", "triglycerides",
		"glucose", "a1c", "ph", "protein",
	}
}

// Clinically-normal fallbacks, used whenever a field is missing or its value
// cannot be parsed. Protein is qualitative: 0 means negative, 1 stands in for
// a "positive"/"trace" result and is not a measured concentration.
const (
	DefaultWBC           = 7.5
	DefaultRBC           = 4.7
	DefaultHemoglobin    = 14.0
	DefaultPlatelets     = 250.0
	DefaultCholesterol   = 180.0
	DefaultHDL           = 55.0
	DefaultLDL           = 100.0
	DefaultTriglycerides = 140.0
	DefaultGlucose       = 95.0
	DefaultA1C           = 5.4
	DefaultPH            = 6.0
	DefaultProtein       = 0.0
)

type valueKind int

const (
	valueAbsent valueKind = iota
	valueNumber
	valueText
)

// LabValue is a single lab-panel entry as it arrives over the wire: a number,
// a free-form string, or absent. The zero value is absent.
type LabValue struct {
	kind   valueKind
	number float64
	text   string
}

// Number wraps a measured numeric value.
func Number(f float64) LabValue { return LabValue{kind: valueNumber, number: f} }

// Text wraps a raw string value.
func Text(s string) LabValue { return LabValue{kind: valueText, text: s} }

// Absent marks a missing field.
func Absent() LabValue { return LabValue{} }

// UnmarshalJSON accepts numbers and strings; null and any other JSON shape
// decode as absent. It never returns an error, so a single odd field cannot
// fail a whole request.
func (v *LabValue) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Text(s)
		return nil
	}
	*v = Absent()
	return nil
}

// ParseValue resolves a LabValue to a float. Policy, in order: absent uses
// the default; numbers pass through unclamped; strings that parse as float
// literals are used as-is; "positive"/"trace" (case-insensitive) map to 1.0;
// anything else degrades to the default.
//
// String matching deliberately trims surrounding whitespace and applies NFKC
// compatibility folding first, so " positive " and full-width variants like
// "Ｐｏｓｉｔｉｖｅ" resolve to 1.0 instead of quietly falling back to the
// default. Lab feeds routinely carry both.
func ParseValue(v LabValue, def float64) float64 {
	switch v.kind {
	case valueNumber:
		return v.number
	case valueText:
		s := strings.TrimSpace(v.text)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		switch foldToken(s) {
		case "positive", "trace":
			return 1.0
		}
		return def
	default:
		return def
	}
}

// foldToken normalizes lab-report strings that may carry full-width or
// composed characters before the categorical comparison.
func foldToken(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// LabPanel is the request-level view of the 12 lab values. Missing keys stay
// absent and resolve to their defaults.
type LabPanel struct {
	WBC           LabValue `json:"wbc"`
	RBC           LabValue `json:"rbc"`
	Hemoglobin    LabValue `json:"hemoglobin"`
	Platelets     LabValue `json:"platelets"`
	Cholesterol   LabValue `json:"cholesterol"`
	HDL           LabValue `json:"hdl"`
	LDL           LabValue `json:"ldl"`
	Triglycerides LabValue `json:"triglycerides"`
	Glucose       LabValue `json:"glucose"`
	A1C           LabValue `json:"a1c"`
	PH            LabValue `json:"ph"`
	Protein       LabValue `json:"protein"`
}

// Vector resolves the panel into the canonical feature order.
func (p LabPanel) Vector() []float64 {
	return []float64{
		ParseValue(p.WBC, DefaultWBC),
		ParseValue(p.RBC, DefaultRBC),
		ParseValue(p.Hemoglobin, DefaultHemoglobin),
		ParseValue(p.Platelets, DefaultPlatelets),
		ParseValue(p.Cholesterol, DefaultCholesterol),
		ParseValue(p.HDL, DefaultHDL),
		ParseValue(p.LDL, DefaultLDL),
		ParseValue(p.Triglycerides, DefaultTriglycerides),
		ParseValue(p.Glucose, DefaultGlucose),
		ParseValue(p.A1C, DefaultA1C),
		ParseValue(p.PH, DefaultPH),
		ParseValue(p.Protein, DefaultProtein),
	}
}
