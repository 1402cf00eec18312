// Package jsonx recovers JSON values from model completions that wrap, decorate or
// slightly break the JSON they were asked for.
package jsonx

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/rickchristie/reactqa"
)

// Stage names the recovery step that produced a value.
type Stage string

const (
	// StageNone means no stage succeeded.
	StageNone Stage = ""

	// StageDirect parsed the trimmed completion as-is.
	StageDirect Stage = "direct"

	// StageFenced parsed the completion after removing code fence markers.
	StageFenced Stage = "fenced"

	// StageBraces parsed the substring from the first '{' to the last '}'.
	StageBraces Stage = "braces"

	// StageRepaired parsed the brace substring after jsonrepair fixed it.
	StageRepaired Stage = "repaired"
)

var fenceRe = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\n?(.*?)```")

// Extract runs the recovery stages in order and returns the first value that parses.
//
// When every stage fails, the returned error wraps [reactqa.ErrNoJSON] and the caller
// keeps the raw text for diagnostics.
func Extract(text string) (any, Stage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, StageNone, fmt.Errorf("%w: empty completion", reactqa.ErrNoJSON)
	}

	if v, err := decode(trimmed); err == nil {
		return v, StageDirect, nil
	}

	if unfenced, ok := StripFences(trimmed); ok {
		if v, err := decode(unfenced); err == nil {
			return v, StageFenced, nil
		}
	}

	braces, ok := BraceSpan(trimmed)
	if !ok {
		return nil, StageNone, fmt.Errorf("%w: no object braces", reactqa.ErrNoJSON)
	}
	if v, err := decode(braces); err == nil {
		return v, StageBraces, nil
	}

	repaired, err := jsonrepair.JSONRepair(braces)
	if err != nil {
		return nil, StageNone, fmt.Errorf("%w: %v", reactqa.ErrNoJSON, err)
	}
	v, err := decode(repaired)
	if err != nil {
		return nil, StageNone, fmt.Errorf("%w: %v", reactqa.ErrNoJSON, err)
	}
	if _, isObject := v.(map[string]any); !isObject {
		return nil, StageNone, fmt.Errorf("%w: repaired value is not an object", reactqa.ErrNoJSON)
	}
	return v, StageRepaired, nil
}

// ExtractObject is like Extract but requires the value to be a JSON object.
func ExtractObject(text string) (map[string]any, Stage, error) {
	v, stage, err := Extract(text)
	if err != nil {
		return nil, stage, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, StageNone, fmt.Errorf("%w: got %T instead of an object", reactqa.ErrNoJSON, v)
	}
	return obj, stage, nil
}

// StripFences returns the content of the first ``` fenced block in text.
// It also handles an opening fence without a closing one.
func StripFences(text string) (string, bool) {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if strings.HasPrefix(text, "```") {
		rest := strings.TrimPrefix(text, "```")
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		} else {
			rest = strings.TrimPrefix(rest, "json")
		}
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// BraceSpan returns text from the first '{' to the last '}', inclusive.
func BraceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
