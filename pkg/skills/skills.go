// Package skills normalizes free-form skill names so that "Golang", "golang "
// and "Go" compare equal.
package skills

import (
	"regexp"
	"strings"
)

var (
	// + и # значимы: C, C++ и C# считаются разными навыками.
	reSeparators = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// aliases связывает взаимозаменяемые написания навыка (после нормализации).
var aliases = map[string][]string{
	"go":         {"golang"},
	"golang":     {"go"},
	"postgres":   {"postgresql"},
	"postgresql": {"postgres"},
	"k8s":        {"kubernetes"},
	"kubernetes": {"k8s"},
	"js":         {"javascript"},
	"javascript": {"js"},
	"ts":         {"typescript"},
	"typescript": {"ts"},
	"rest":       {"rest api"},
	"rest api":   {"rest"},
	"ci cd":      {"cicd"},
	"cicd":       {"ci cd"},
}

// Normalize lower-cases s, turns punctuation into single spaces and trims it.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = reSeparators.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Variants returns the normalized skill followed by its aliases. Multi-word
// skills also get a variant with every word replaced by its first alias.
func Variants(skill string) []string {
	base := Normalize(skill)
	if base == "" {
		return nil
	}
	out := []string{base}
	seen := map[string]struct{}{base: {}}
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, a := range aliases[base] {
		add(a)
	}
	if words := strings.Fields(base); len(words) > 1 {
		swapped := make([]string, len(words))
		changed := false
		for i, w := range words {
			swapped[i] = w
			if alt, ok := aliases[w]; ok {
				swapped[i] = alt[0]
				changed = true
			}
		}
		if changed {
			add(strings.Join(swapped, " "))
		}
	}
	return out
}

// Set is a lookup of normalized skills.
type Set map[string]struct{}

func NewSet(list []string) Set {
	s := make(Set, len(list))
	for _, v := range list {
		if n := Normalize(v); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Has reports whether skill or any of its variants is in the set.
func (s Set) Has(skill string) bool {
	for _, v := range Variants(skill) {
		if _, ok := s[v]; ok {
			return true
		}
	}
	return false
}
