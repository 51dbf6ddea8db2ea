// Package jsonpath queries exported benchmark reports with a small JSONPath
// subset: $ root, dotted members, quoted bracket members, [n] indexes and the
// [*] wildcard.
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract returns the value at path as a string. Objects and arrays are
// returned as raw JSON; null is returned as "null".
func Extract(json string, path string) (string, error) {
	res, err := lookup(json, path)
	if err != nil {
		return "", err
	}
	if res.Type == gjson.Null {
		return "null", nil
	}
	if res.IsObject() || res.IsArray() {
		return res.Raw, nil
	}
	return res.String(), nil
}

// ExtractFloat returns the number at path.
func ExtractFloat(json string, path string) (float64, error) {
	res, err := lookup(json, path)
	if err != nil {
		return 0, err
	}
	switch res.Type {
	case gjson.Number:
		return res.Float(), nil
	case gjson.String:
		f, err := strconv.ParseFloat(res.Str, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not a number: %q", path, res.Str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value at %s is not a number: %s", path, res.Raw)
	}
}

// Select returns every value matched by path, which may contain [*]
// wildcards. A path without wildcards yields at most one value.
func Select(json string, path string) ([]string, error) {
	res, err := lookup(json, path)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(path, "[*]") {
		return []string{resultString(res)}, nil
	}
	var out []string
	flatten(res, &out)
	return out, nil
}

// ExtractMultiple extracts several named paths. Values that resolve are
// returned even when others fail; the error lists every failure.
func ExtractMultiple(json string, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	results := make(map[string]string, len(paths))
	var failed []string
	for name, path := range paths {
		value, err := Extract(json, path)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}
	if len(failed) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failed, "; "))
	}
	return results, nil
}

func lookup(json, path string) (gjson.Result, error) {
	if json == "" {
		return gjson.Result{}, fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.Valid(json) {
		return gjson.Result{}, fmt.Errorf("invalid JSON document")
	}
	gpath, err := toGjsonPath(path)
	if err != nil {
		return gjson.Result{}, err
	}
	res := gjson.Get(json, gpath)
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return res, nil
}

func resultString(res gjson.Result) string {
	switch {
	case res.Type == gjson.Null:
		return "null"
	case res.IsObject(), res.IsArray():
		return res.Raw
	default:
		return res.String()
	}
}

// flatten unwraps the nested arrays gjson produces for repeated # queries.
func flatten(res gjson.Result, out *[]string) {
	if !res.IsArray() {
		*out = append(*out, resultString(res))
		return
	}
	res.ForEach(func(_, v gjson.Result) bool {
		flatten(v, out)
		return true
	})
}

// toGjsonPath converts a JSONPath expression into gjson syntax, e.g.
// $.classes[0]['name'] -> classes.0.name and $.classes[*].name ->
// classes.#.name. Dots inside quoted members are escaped.
func toGjsonPath(path string) (string, error) {
	p := strings.TrimPrefix(path, "$")
	if p == "" {
		return "@this", nil
	}

	var parts []string
	for i := 0; i < len(p); {
		switch p[i] {
		case '.':
			i++
			j := i
			for j < len(p) && p[j] != '.' && p[j] != '[' {
				j++
			}
			if j == i {
				return "", fmt.Errorf("empty member in %q", path)
			}
			parts = append(parts, escape(p[i:j]))
			i = j
		case '[':
			if i+1 < len(p) && (p[i+1] == '\'' || p[i+1] == '"') {
				closing := string(p[i+1]) + "]"
				end := strings.Index(p[i+2:], closing)
				if end < 0 {
					return "", fmt.Errorf("unterminated bracket in %q", path)
				}
				parts = append(parts, escape(p[i+2:i+2+end]))
				i += 2 + end + len(closing)
				continue
			}
			end := strings.IndexByte(p[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("unterminated bracket in %q", path)
			}
			inner := p[i+1 : i+end]
			i += end + 1
			switch {
			case inner == "*":
				parts = append(parts, "#")
			default:
				if _, err := strconv.Atoi(inner); err != nil {
					return "", fmt.Errorf("invalid index %q in %q", inner, path)
				}
				parts = append(parts, inner)
			}
		default:
			if len(parts) == 0 && i == 0 {
				// bare member without $ or leading dot
				p = "." + p
				continue
			}
			return "", fmt.Errorf("unexpected %q in %q", p[i], path)
		}
	}
	return strings.Join(parts, "."), nil
}

var memberEscaper = strings.NewReplacer(
	".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`,
)

func escape(member string) string {
	return memberEscaper.Replace(member)
}
