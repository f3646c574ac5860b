package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AlexZinkM/yield-agent/internal/model"
)

// FormatYieldResponse parses the agent's final answer into a yield result.
// The answer may be wrapped in a fenced code block. Missing or mistyped
// fields take their zero value.
func FormatYieldResponse(content string) (model.YieldResult, error) {
	raw := map[string]any{}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &raw); err != nil {
		return model.YieldResult{}, fmt.Errorf("agent answer is not a JSON object: %w", err)
	}

	return model.YieldResult{
		Chain:      asString(raw["chain"]),
		Project:    asString(raw["project"]),
		Symbol:     asString(raw["symbol"]),
		TVLUsd:     asInt(raw["tvlUsd"]),
		APYBase:    asFloat(raw["apyBase"]),
		Stablecoin: asStablecoin(raw["stablecoin"]),
	}, nil
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// language tag
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asInt(v any) int64 {
	f := asFloat(v)
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

// asStablecoin accepts boolean true or the string "true" in any case
func asStablecoin(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}
