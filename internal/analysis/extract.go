package analysis

import (
	"strings"

	"github.com/tidwall/gjson"
)

// shapeMatcher inspects one known response shape and reports a non-empty match.
type shapeMatcher func(doc gjson.Result) (string, bool)

// resultMatcher inspects the value under "result"; depth bounds JSON-in-string nesting.
type resultMatcher func(result gjson.Result, depth int) (string, bool)

const maxEncodedDepth = 4

// Applied in order; the first match wins.
var analysisShapes = []shapeMatcher{
	stringField("analysis"),
	stringField("summary"),
	stringField("text"),
	func(doc gjson.Result) (string, bool) { return matchResult(doc.Get("result"), 0) },
	firstMessageContent,
}

var resultShapes []resultMatcher

func init() {
	resultShapes = []resultMatcher{encodedResult, arrayResult, objectResult}
}

// ExtractAnalysisText pulls the analysis text out of a JSON object of unknown shape.
func ExtractAnalysisText(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return "", false
	}
	for _, match := range analysisShapes {
		if s, ok := match(doc); ok {
			return s, true
		}
	}
	return "", false
}

func stringField(name string) shapeMatcher {
	return func(doc gjson.Result) (string, bool) {
		return nonEmptyString(doc.Get(name))
	}
}

func firstMessageContent(doc gjson.Result) (string, bool) {
	messages := doc.Get("messages")
	if !messages.IsArray() {
		return "", false
	}
	for _, m := range messages.Array() {
		if content := m.Get("content"); content.Type == gjson.String {
			return nonEmptyString(content)
		}
	}
	return "", false
}

func matchResult(result gjson.Result, depth int) (string, bool) {
	if !result.Exists() {
		return "", false
	}
	for _, match := range resultShapes {
		if s, ok := match(result, depth); ok {
			return s, true
		}
	}
	return "", false
}

// encodedResult handles a result that is itself a JSON document inside a string.
func encodedResult(result gjson.Result, depth int) (string, bool) {
	if result.Type != gjson.String || depth >= maxEncodedDepth || !gjson.Valid(result.Str) {
		return "", false
	}
	return matchResult(gjson.Parse(result.Str), depth+1)
}

func arrayResult(result gjson.Result, _ int) (string, bool) {
	if !result.IsArray() {
		return "", false
	}
	items := result.Array()
	if len(items) == 0 {
		return "", false
	}
	first := items[0]
	if first.IsObject() {
		if s, ok := nonEmptyString(first.Get("analysis")); ok {
			return s, true
		}
		if s, ok := nonEmptyString(first.Get("summary")); ok {
			return s, true
		}
		return "", false
	}
	return nonEmptyString(first)
}

func objectResult(result gjson.Result, _ int) (string, bool) {
	if !result.IsObject() {
		return "", false
	}
	if s, ok := nonEmptyString(result.Get("analysis")); ok {
		return s, true
	}
	return nonEmptyString(result.Get("summary"))
}

func nonEmptyString(r gjson.Result) (string, bool) {
	if r.Type != gjson.String || strings.TrimSpace(r.Str) == "" {
		return "", false
	}
	return r.Str, true
}
