package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// YieldRecord is one entry of the knowledge base dataset
type YieldRecord struct {
	Pool       string     `json:"pool,omitempty"`
	Chain      string     `json:"chain"`
	Project    string     `json:"project"`
	Symbol     string     `json:"symbol"`
	TVLUsd     FlexNumber `json:"tvlUsd"`
	APYBase    FlexNumber `json:"apyBase"`
	Stablecoin FlexBool   `json:"stablecoin"`
}

// FlexNumber decodes from a JSON number, a numeric string or null (zero).
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = FlexNumber(f)
	return nil
}

// FlexBool decodes from a JSON bool, a "true"/"false" string (any case) or null (false).
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = false
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = FlexBool(strings.EqualFold(strings.TrimSpace(s), "true"))
		return nil
	default:
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("invalid bool %s: %w", data, err)
		}
		*b = FlexBool(v)
		return nil
	}
}
