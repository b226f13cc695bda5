package scene

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UniqueName returns "<Kind>_<n>" with the smallest n >= 1 not already used
// by a node in s. "pointLight" becomes "PointLight_1".
func UniqueName(s *Scene, kind string) string {
	base := cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(kind))
	if base == "" {
		base = "Object"
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if s == nil || s.FindByName(candidate) == nil {
			return candidate
		}
	}
}
