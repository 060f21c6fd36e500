package domain

import (
	"fmt"
	"strings"
)

// Tags are free-form labels attached to documents and snapshotted onto
// chunks at ingestion time. Names are stored lowercase. A name may not
// contain ':' or start with '#' so that the query mini-syntax stays
// unambiguous; this is enforced at tag-creation time.

// NormalizeTag lowercases and trims a tag name.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// ValidateTag checks a tag name against the naming rules.
func ValidateTag(tag string) error {
	tag = NormalizeTag(tag)
	if tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidInput)
	}
	if strings.HasPrefix(tag, "#") {
		return fmt.Errorf("%w: tag %q may not start with '#'", ErrInvalidInput, tag)
	}
	if strings.Contains(tag, ":") {
		return fmt.Errorf("%w: tag %q may not contain ':'", ErrInvalidInput, tag)
	}
	if strings.ContainsAny(tag, " \t\n") {
		return fmt.Errorf("%w: tag %q may not contain whitespace", ErrInvalidInput, tag)
	}
	return nil
}

// ParseTagList parses a comma-separated tag list, normalising, dropping
// empties and deduplicating while preserving first-seen order.
// Any invalid name fails the whole list.
func ParseTagList(input string) ([]string, error) {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(input, ",") {
		tag := NormalizeTag(part)
		if tag == "" {
			continue
		}
		if err := ValidateTag(tag); err != nil {
			return nil, err
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, nil
}

// NormalizeTags validates and normalises a tag set, deduplicating while
// preserving first-seen order.
func NormalizeTags(tags []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, t := range tags {
		tag := NormalizeTag(t)
		if tag == "" {
			continue
		}
		if err := ValidateTag(tag); err != nil {
			return nil, err
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out, nil
}

// HasAllTags reports whether have contains every tag in want.
// An empty want set matches everything.
func HasAllTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

// UnionTags merges two tag sets, preserving the order of first appearance.
func UnionTags(a, b []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, set := range [][]string{a, b} {
		for _, t := range set {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
