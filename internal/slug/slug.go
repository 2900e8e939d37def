package slug

import (
	"regexp"
	"strings"

	gosimple "github.com/gosimple/slug"
)

var (
	dashRuns  = regexp.MustCompile(`-{2,}`)
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Make transliterates name to ASCII and joins its words with single
// hyphens. The result always satisfies Valid unless it is empty.
func Make(name string) string {
	s := strings.ReplaceAll(gosimple.Make(name), "_", "-")
	return strings.Trim(dashRuns.ReplaceAllString(s, "-"), "-")
}

func Valid(s string) bool {
	return validSlug.MatchString(s)
}
