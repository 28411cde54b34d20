// Package i18n serves the zh/en label tables used by forms, errors and stats.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Lang is a supported display language.
type Lang string

const (
	ZH Lang = "zh"
	EN Lang = "en"

	// Default is used when nothing else selects a language.
	Default = ZH
)

// Langs lists the supported languages, default first.
var Langs = []Lang{ZH, EN}

//go:embed locales.yaml
var localesYAML []byte

var (
	loadOnce sync.Once
	tables   map[Lang]map[string]string
	loadErr  error

	matcher = language.NewMatcher([]language.Tag{language.Chinese, language.English})
)

func load() {
	loadOnce.Do(func() {
		tables, loadErr = parse(localesYAML)
	})
}

func parse(data []byte) (map[Lang]map[string]string, error) {
	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse locales: %w", err)
	}
	out := make(map[Lang]map[string]string, len(raw))
	for lang, tree := range raw {
		flat := make(map[string]string)
		flatten("", tree, flat)
		out[Lang(lang)] = flat
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case map[string]any:
			flatten(key, x, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(x)
		}
	}
}

// Parse accepts "zh"/"en" and region variants such as "zh-CN" or "en_US".
func Parse(s string) (Lang, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "", false
	case strings.HasPrefix(s, "zh"):
		return ZH, true
	case strings.HasPrefix(s, "en"):
		return EN, true
	}
	return "", false
}

// Match picks the best supported language for an Accept-Language header,
// falling back to fallback when the header names nothing we support.
func Match(acceptLanguage string, fallback Lang) Lang {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return Langs[idx]
}

// Resolve picks the request language: explicit value first, then the
// Accept-Language header, then fallback.
func Resolve(explicit, acceptLanguage string, fallback Lang) Lang {
	if l, ok := Parse(explicit); ok {
		return l
	}
	if acceptLanguage != "" {
		return Match(acceptLanguage, fallback)
	}
	return fallback
}

// Label looks up a dotted key such as "addsports.submitStrokeLabel". It never
// fails: unknown languages use Default and missing keys return the key itself.
func Label(lang Lang, key string) string {
	load()
	if loadErr != nil {
		return key
	}
	table, ok := tables[lang]
	if !ok {
		table = tables[Default]
	}
	if v, ok := table[key]; ok {
		return v
	}
	return key
}

// Keys lists every key defined for lang, sorted.
func Keys(lang Lang) []string {
	load()
	keys := make([]string, 0, len(tables[lang]))
	for k := range tables[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
