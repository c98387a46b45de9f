package bunim

import "strings"

// valueKind tags the shape of a parsed value literal.
type valueKind uint8

const (
	stringValue valueKind = iota
	arrayValue
	mapValue
)

// value is the tagged variant produced by parseValue. Only manifest
// assembly consumes it; each field knows which shape it expects and
// coerces via asString/asList.
type value struct {
	kind  valueKind
	str   string
	list  []string
	pairs []mapPair
}

// mapPair keeps {...} entries in declaration order, so fields derived
// from map keys stay deterministic.
type mapPair struct {
	key string
	val string
}

// parseValue interprets one accumulated value literal: a double-quoted
// string, an @[...] or [...] array, a {key: value} map, or raw text
// passed through untouched.
func parseValue(raw string) value {
	s := strings.TrimSpace(raw)
	switch {
	case len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`):
		return value{kind: stringValue, str: strings.Trim(s, `"`)}
	case strings.HasPrefix(s, "@[") && strings.HasSuffix(s, "]"):
		return value{kind: arrayValue, list: splitTokens(s[2 : len(s)-1])}
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return value{kind: arrayValue, list: splitTokens(s[1 : len(s)-1])}
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		return value{kind: mapValue, pairs: splitPairs(s[1 : len(s)-1])}
	default:
		return value{kind: stringValue, str: s}
	}
}

func splitTokens(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.Trim(tok, " \t\n\"")
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func splitPairs(s string) []mapPair {
	var out []mapPair
	for _, tok := range strings.Split(s, ",") {
		k, v, found := strings.Cut(tok, ":")
		if !found {
			continue
		}
		k = strings.Trim(k, " \t\n\"")
		if k == "" {
			continue
		}
		out = append(out, mapPair{key: k, val: strings.Trim(v, " \t\n\"")})
	}
	return out
}

func (v value) asString() string {
	switch v.kind {
	case stringValue:
		return v.str
	case arrayValue:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// asList coerces the value to an ordered token list. A map yields its
// keys, which is how manifests that declare bin as {name: subdir} are
// read.
func (v value) asList() []string {
	switch v.kind {
	case arrayValue:
		return v.list
	case mapValue:
		out := make([]string, 0, len(v.pairs))
		for _, p := range v.pairs {
			out = append(out, p.key)
		}
		return out
	case stringValue:
		if v.str == "" {
			return nil
		}
		return []string{v.str}
	}
	return nil
}
