package domain

import (
	"encoding/json"
	"strings"
)

// SkillSet is an insertion-ordered list of distinct skills. Uniqueness is
// case-sensitive. Add and Remove never modify the receiver.
type SkillSet []string

func (s SkillSet) Contains(skill string) bool {
	for _, have := range s {
		if have == skill {
			return true
		}
	}
	return false
}

// ContainsFold reports whether any skill equals one of terms, ignoring case.
// terms must already be lower-cased.
func (s SkillSet) ContainsFold(terms []string) bool {
	for _, have := range s {
		lower := strings.ToLower(have)
		for _, t := range terms {
			if lower == t {
				return true
			}
		}
	}
	return false
}

// Add appends each trimmed, non-empty skill that is not already present.
func (s SkillSet) Add(skills ...string) SkillSet {
	out := s.Clone()
	if out == nil {
		out = SkillSet{}
	}
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" || out.Contains(skill) {
			continue
		}
		out = append(out, skill)
	}
	return out
}

// Remove drops every listed skill. Missing skills are ignored.
func (s SkillSet) Remove(skills ...string) SkillSet {
	out := make(SkillSet, 0, len(s))
	for _, have := range s {
		drop := false
		for _, skill := range skills {
			if have == strings.TrimSpace(skill) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, have)
		}
	}
	return out
}

func (s SkillSet) Clone() SkillSet {
	if s == nil {
		return nil
	}
	out := make(SkillSet, len(s))
	copy(out, s)
	return out
}

// MarshalJSON renders an empty set as [] rather than null.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}
