// Package security implements the Security & Safety cross-cutting
// concern: prompt-injection sanitization/detection, sensitivity
// classification, and data-leakage/masking checks, ported from
// original_source/layers/crosscutting/security.py. Pattern compilation
// follows the teacher's pkg/masking service: every regex is compiled
// once at construction time and logged if it fails to compile, rather
// than compiled ad hoc on every call.
package security

import (
	"log/slog"
	"regexp"
	"strings"
)

// injectionPattern pairs a compiled detector with the threat name
// reported when it matches, mirroring security.py's
// injection_patterns list of (pattern, threat_name) tuples.
type injectionPattern struct {
	name  string
	regex *regexp.Regexp
}

// Service holds the compiled prompt-injection and PII detectors.
// Created once and shared; stateless beyond its compiled patterns.
type Service struct {
	dangerous []injectionPattern
	threats   []injectionPattern
	pii       []injectionPattern
}

var dangerousSpecs = []struct{ name, pattern string }{
	{"ignore_instructions", `(?i)ignore\s+(previous|all|above)\s+instructions?`},
	{"forget_instructions", `(?i)forget\s+(previous|all|above)\s+instructions?`},
	{"system_marker", `(?i)system\s*:`},
	{"assistant_marker", `(?i)assistant\s*:`},
	{"role_override", `(?i)you\s+are\s+now`},
	{"scenario_injection", `(?i)act\s+as\s+if`},
	{"role_impersonation", `(?i)pretend\s+to\s+be`},
}

var threatSpecs = []struct{ name, pattern string }{
	{"instruction override attempt", `(?i)ignore\s+(previous|all|above)\s+instructions?`},
	{"instruction erasure attempt", `(?i)forget\s+(previous|all|above)\s+instructions?`},
	{"system prompt manipulation attempt", `(?i)system\s*:\s*`},
	{"assistant role manipulation attempt", `(?i)assistant\s*:\s*`},
	{"role change attempt", `(?i)you\s+are\s+now\s+`},
	{"hypothetical scenario injection attempt", `(?i)act\s+as\s+if\s+`},
	{"role impersonation attempt", `(?i)pretend\s+to\s+be\s+`},
	{"output format manipulation attempt", `(?i)output\s+format\s*:\s*`},
	{"forced JSON output attempt", `(?i)json\s+only`},
	{"explanation suppression attempt", `(?i)no\s+explanation`},
}

var piiSpecs = []struct{ name, pattern string }{
	{"phone number", `\b\d{3}-\d{4}-\d{4}\b`},
	{"national ID number", `\b\d{6}-\d{7}\b`},
	{"email address", `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`},
}

var highSensitivityKeywords = []string{
	"body", "content", "text", "message", "personal_info",
	"password", "token", "secret", "private",
}

var mediumSensitivityKeywords = []string{
	"subject", "title", "sender", "domain", "metadata",
}

// highSensitivityFields is the set of map keys mask_sensitive_data and
// check_data_leakage both treat as carrying sensitive payloads.
var highSensitivityFields = []string{"body", "content", "text", "message", "password", "token"}

// NewService compiles every detector pattern once. A pattern that
// fails to compile is logged and skipped rather than aborting startup.
func NewService() *Service {
	s := &Service{
		dangerous: compileAll(dangerousSpecs),
		threats:   compileAll(threatSpecs),
		pii:       compileAll(piiSpecs),
	}
	slog.Info("security service initialized",
		"dangerous_patterns", len(s.dangerous),
		"threat_patterns", len(s.threats),
		"pii_patterns", len(s.pii))
	return s
}

func compileAll(specs []struct{ name, pattern string }) []injectionPattern {
	out := make([]injectionPattern, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.pattern)
		if err != nil {
			slog.Error("failed to compile security pattern, skipping", "pattern", spec.name, "error", err)
			continue
		}
		out = append(out, injectionPattern{name: spec.name, regex: re})
	}
	return out
}

// SanitizeInput strips prompt-injection trigger phrases from text,
// matching sanitize_input.
func (s *Service) SanitizeInput(text string) string {
	if text == "" {
		return ""
	}
	sanitized := text
	for _, p := range s.dangerous {
		sanitized = p.regex.ReplaceAllString(sanitized, "")
	}
	return strings.TrimSpace(sanitized)
}

// Sensitivity is the classification returned by ClassifySensitivity.
type Sensitivity string

const (
	SensitivityHigh   Sensitivity = "high"
	SensitivityMedium Sensitivity = "medium"
	SensitivityLow    Sensitivity = "low"
)

// ClassifySensitivity inspects a stringified data blob for keywords
// indicating how sensitive it is, matching classify_sensitivity's
// substring-over-lowercased-repr approach.
func (s *Service) ClassifySensitivity(dataRepr string) Sensitivity {
	lower := strings.ToLower(dataRepr)
	for _, kw := range highSensitivityKeywords {
		if strings.Contains(lower, kw) {
			return SensitivityHigh
		}
	}
	for _, kw := range mediumSensitivityKeywords {
		if strings.Contains(lower, kw) {
			return SensitivityMedium
		}
	}
	return SensitivityLow
}

// MaskSensitiveData returns a copy of data with its high-sensitivity
// fields redacted (data itself is left unchanged), matching
// mask_sensitive_data: values longer than 10 characters keep a
// 10-character preview, shorter values are fully replaced.
func (s *Service) MaskSensitiveData(data map[string]any, sensitivity Sensitivity) map[string]any {
	masked := make(map[string]any, len(data))
	for k, v := range data {
		masked[k] = v
	}

	if sensitivity != SensitivityHigh && sensitivity != SensitivityMedium {
		return masked
	}

	for _, field := range highSensitivityFields {
		v, ok := masked[field]
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok || str == "" {
			continue
		}
		if len(str) > 10 {
			masked[field] = str[:10] + "..." + "[MASKED]"
		} else {
			masked[field] = "[MASKED]"
		}
	}
	return masked
}

// InjectionCheck is ValidatePromptInjection's result.
type InjectionCheck struct {
	Safe      bool
	Threats   []string
	Sanitized string
}

// ValidatePromptInjection scans a prompt for known injection patterns,
// matching validate_prompt_injection. Detection always runs even if a
// later stage chooses to proceed anyway (fail-open at the call site,
// never silently inside the detector).
func (s *Service) ValidatePromptInjection(prompt string) InjectionCheck {
	var threats []string
	for _, p := range s.threats {
		if p.regex.MatchString(prompt) {
			threats = append(threats, p.name)
		}
	}
	return InjectionCheck{
		Safe:      len(threats) == 0,
		Threats:   threats,
		Sanitized: s.SanitizeInput(prompt),
	}
}

// LeakageCheck is CheckDataLeakage's result.
type LeakageCheck struct {
	Safe           bool
	Leaks          []string
	Recommendation string
}

// CheckDataLeakage inspects output for verbatim high-sensitivity input
// fields or PII patterns, matching check_data_leakage. It takes no
// world-model argument; the original's world_model parameter is
// unused there and has no counterpart here.
func (s *Service) CheckDataLeakage(output string, inputData map[string]any) LeakageCheck {
	var leaks []string

	for _, field := range highSensitivityFields {
		v, ok := inputData[field]
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok || str == "" {
			continue
		}
		if strings.Contains(output, str) {
			leaks = append(leaks, "high-sensitivity field '"+field+"' was included in the output")
		}
	}

	for _, p := range s.pii {
		if p.regex.MatchString(output) {
			leaks = append(leaks, p.name+" was included in the output")
		}
	}

	recommendation := "output is safe"
	if len(leaks) > 0 {
		recommendation = "mask or remove the sensitive information before returning this output"
	}

	return LeakageCheck{Safe: len(leaks) == 0, Leaks: leaks, Recommendation: recommendation}
}

// EnforceTenantIsolation reports whether data scoped to worldModelUserID
// may be accessed by userID, matching enforce_tenant_isolation: access
// is denied only when the World Model names an owner that disagrees
// with the requester.
func EnforceTenantIsolation(userID, worldModelUserID string) bool {
	if worldModelUserID != "" && worldModelUserID != userID {
		return false
	}
	return true
}
