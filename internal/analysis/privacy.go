package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PrivacyMode gates whether raw or anonymized text may leave the local
// process boundary. Exactly two values exist; anything else fails parsing.
type PrivacyMode int

const (
	// PrivacyFull sends only classifier probability distributions off-process.
	PrivacyFull PrivacyMode = iota
	// PrivacyAnonymized additionally sends PII-scrubbed text for detailed
	// analysis.
	PrivacyAnonymized
)

const (
	privacyFullValue       = "full_privacy"
	privacyAnonymizedValue = "anonymized"
)

// ParsePrivacyMode converts the wire/config representation into a PrivacyMode.
func ParsePrivacyMode(value string) (PrivacyMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case privacyFullValue:
		return PrivacyFull, nil
	case privacyAnonymizedValue:
		return PrivacyAnonymized, nil
	default:
		return PrivacyFull, fmt.Errorf("privacy mode: unknown value %q", value)
	}
}

func (m PrivacyMode) String() string {
	if m == PrivacyAnonymized {
		return privacyAnonymizedValue
	}
	return privacyFullValue
}

// AllowsOutboundText reports whether any text form may be sent to external
// services.
func (m PrivacyMode) AllowsOutboundText() bool {
	return m == PrivacyAnonymized
}

// MarshalJSON encodes the mode as its string value.
func (m PrivacyMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes the string value, rejecting unknown modes.
func (m *PrivacyMode) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePrivacyMode(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
