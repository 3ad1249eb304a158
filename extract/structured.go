package extract

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"airbnb-host-scraper/models"
)

// Structured-Data Reader: pulls candidates from embedded JSON payloads
// (JSON-LD blocks, script-tag blobs scanned for balanced-brace substrings)
// and from intercepted data-fetch responses. Highest confidence source:
// immune to visible-text contamination, but only present when the page
// actually embeds the data. First candidate per field wins, in
// payload-encounter order.

// aliasIndex is the lowercased key → field lookup built from structuredAliases.
var aliasIndex = func() map[string]models.Field {
	idx := make(map[string]models.Field)
	for field, keys := range structuredAliases {
		for _, k := range keys {
			idx[strings.ToLower(k)] = field
		}
	}
	return idx
}()

// ReadStructured walks every embedded payload and intercepted response.
func ReadStructured(snap *Snapshot) map[models.Field]models.Candidate {
	out := make(map[models.Field]models.Candidate)

	for _, payload := range embeddedPayloads(snap.Doc) {
		walkPayload(payload, out)
	}
	for _, body := range snap.Responses {
		walkPayload(body, out)
	}

	return out
}

// embeddedPayloads collects candidate JSON documents from script tags, in
// document order.
func embeddedPayloads(doc *goquery.Document) [][]byte {
	var payloads [][]byte

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !strings.Contains(text, "{") {
			return
		}

		typ, _ := s.Attr("type")
		switch {
		case strings.Contains(typ, "ld+json"), strings.Contains(typ, "application/json"):
			if json.Valid([]byte(text)) {
				payloads = append(payloads, []byte(text))
				return
			}
			payloads = append(payloads, scanJSONObjects(text)...)
		default:
			// Arbitrary scripts are scanned only when they mention a key we
			// care about; a full brace scan of every bundle would be wasted
			// work.
			if !mentionsAlias(text) {
				return
			}
			payloads = append(payloads, scanJSONObjects(text)...)
		}
	})

	return payloads
}

func mentionsAlias(text string) bool {
	lower := strings.ToLower(text)
	for key := range aliasIndex {
		if strings.Contains(lower, `"`+key+`"`) {
			return true
		}
	}
	return false
}

// scanJSONObjects extracts every top-level balanced-brace substring that
// parses as JSON. Brace depth is tracked string-aware so braces inside
// quoted values do not derail the scan.
func scanJSONObjects(s string) [][]byte {
	var out [][]byte

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end, ok := matchBrace(s, i)
		if !ok {
			continue
		}
		blob := s[i : end+1]
		if json.Valid([]byte(blob)) {
			out = append(out, []byte(blob))
			i = end
		}
	}

	return out
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func walkPayload(payload []byte, out map[models.Field]models.Candidate) {
	var node any
	if err := json.Unmarshal(payload, &node); err != nil {
		// Structural surprise: contributes no candidates, never aborts.
		return
	}
	walkValue(node, out)
}

// walkValue recursively visits every key/value pair. Map keys are visited in
// sorted order so runs are deterministic despite Go's map iteration.
func walkValue(node any, out map[models.Field]models.Candidate) {
	switch v := node.(type) {
	case map[string]any:
		walkObject(v, out)
	case []any:
		for _, item := range v {
			walkValue(item, out)
		}
	}
}

func walkObject(obj map[string]any, out map[models.Field]models.Candidate) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// An object carrying a profile-path-shaped value is a host object: its
	// name-ish keys mean the host, and the path itself is the profile URL.
	profilePath := profilePathValue(obj, keys)
	if profilePath != "" {
		setIfAbsent(out, models.FieldProfileURL, profilePath)
		for _, alias := range hostNameAliases {
			if s, ok := scalarString(obj[alias]); ok {
				setIfAbsent(out, models.FieldHostName, s)
				break
			}
		}
	}

	for _, k := range keys {
		val := obj[k]

		if s, ok := scalarString(val); ok {
			lower := strings.ToLower(k)
			if field, known := aliasIndex[lower]; known {
				setIfAbsent(out, field, s)
			} else if lower == "name" && profilePath == "" {
				// A bare "name" outside a host object is the listing title
				// (JSON-LD puts the listing name here).
				setIfAbsent(out, models.FieldTitle, s)
			}
			continue
		}

		walkValue(val, out)
	}
}

func profilePathValue(obj map[string]any, sortedKeys []string) string {
	for _, k := range sortedKeys {
		if s, ok := obj[k].(string); ok && profilePathRe.MatchString(s) {
			return s
		}
	}
	return ""
}

// scalarString converts acceptable scalar JSON values to a trimmed string.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func setIfAbsent(out map[models.Field]models.Candidate, field models.Field, value string) {
	if _, exists := out[field]; exists {
		return
	}
	out[field] = models.Candidate{Value: value, Source: models.SourceStructured}
}
