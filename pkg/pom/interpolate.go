// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"regexp"
	"strings"
)

// maxInterpolationPasses bounds nested property expansion such as
// <a>${b}</a><b>${c}</b>; self-referencing properties stop here.
const maxInterpolationPasses = 8

var propertyPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate substitutes known property references in s.
// References that cannot be resolved are left in place.
func (p *Project) interpolate(s string) string {
	for range maxInterpolationPasses {
		if !strings.Contains(s, "${") {
			return s
		}
		next := propertyPattern.ReplaceAllStringFunc(s, func(ref string) string {
			if v, ok := p.lookupProperty(ref[2 : len(ref)-1]); ok {
				return v
			}
			return ref
		})
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func (p *Project) lookupProperty(key string) (string, bool) {
	if v, ok := p.Properties[key]; ok {
		return v, true
	}

	var v string
	switch key {
	case "project.groupId", "pom.groupId", "groupId":
		v = firstNonEmpty(p.GroupID, p.parentField(func(pp *Parent) string { return pp.GroupID }))
	case "project.artifactId", "pom.artifactId", "artifactId":
		v = p.ArtifactID
	case "project.version", "pom.version", "version":
		v = firstNonEmpty(p.Version, p.parentField(func(pp *Parent) string { return pp.Version }))
	case "project.parent.groupId":
		v = p.parentField(func(pp *Parent) string { return pp.GroupID })
	case "project.parent.version":
		v = p.parentField(func(pp *Parent) string { return pp.Version })
	case "project.packaging":
		v = p.EffectivePackaging()
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *Project) parentField(get func(*Parent) string) string {
	if p.Parent == nil {
		return ""
	}
	return get(p.Parent)
}

// unresolved reports whether s still carries a property reference.
func unresolved(s string) bool {
	return propertyPattern.MatchString(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
