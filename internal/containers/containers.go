// Package containers normalizes free-text FCL container descriptions to
// standard ISO size/type codes used for rate lookups.
package containers

import (
	"context"
	"regexp"
	"strings"

	"github.com/ignite/freightdesk/internal/agents"
)

// Standard container codes, from most to least specific.
const (
	Type20GP = "20GP"
	Type40GP = "40GP"
	Type40HC = "40HC"
	Type45HC = "45HC"
	Type20RF = "20RF"
	Type40RF = "40RF"
	Type20OT = "20OT"
	Type40OT = "40OT"
)

// rateFallbacks map specialized codes to the general-purpose code used
// when a rate sheet lacks the specialized lane.
var rateFallbacks = map[string]string{
	Type40HC: Type40GP,
	Type45HC: Type40HC,
	Type20RF: Type20GP,
	Type40RF: Type40GP,
	Type20OT: Type20GP,
	Type40OT: Type40GP,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]`)

// Standardize maps a customer-worded container description to a standard
// code. Unrecognized descriptions come back unchanged with ok=false.
func Standardize(raw string) (code string, ok bool) {
	s := nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", false
	}

	reefer := strings.Contains(s, "reefer") || strings.Contains(s, "refrigerat") || strings.Contains(s, " rf")
	openTop := strings.Contains(s, "open top") || strings.Contains(s, " ot")
	highCube := strings.Contains(s, "hc") || strings.Contains(s, "high cube") || strings.Contains(s, "highcube")

	size := ""
	switch {
	case strings.Contains(s, "45"):
		size = "45"
	case strings.Contains(s, "40"):
		size = "40"
	case strings.Contains(s, "20"):
		size = "20"
	}
	if size == "" {
		return raw, false
	}

	switch {
	case reefer:
		return size + "RF", size != "45"
	case openTop:
		return size + "OT", size != "45"
	case size == "45":
		return Type45HC, true
	case highCube && size == "40":
		return Type40HC, true
	default:
		return size + "GP", true
	}
}

// RateFallback returns the general-purpose code a rate lookup should fall
// back to when the standardized code has no lane entry.
func RateFallback(code string) string {
	if fb, ok := rateFallbacks[code]; ok {
		return fb
	}
	return code
}

// Collaborator exposes standardization in the workflow's map shape.
func Collaborator() agents.Collaborator {
	return agents.Func(func(_ context.Context, req map[string]any) (map[string]any, error) {
		raw, _ := req["container_type"].(string)
		code, ok := Standardize(raw)
		resp := map[string]any{
			"original_type":     raw,
			"standardized_type": code,
			"recognized":        ok,
		}
		if ok {
			resp["rate_fallback_type"] = RateFallback(code)
		}
		return resp, nil
	})
}
