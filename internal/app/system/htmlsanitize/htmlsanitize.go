// Package htmlsanitize strips markup from user-supplied text before it is
// stored or echoed back to other household members.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Strip removes all HTML markup from s and decodes entities, leaving plain
// text. Used for single-line fields such as usernames and household names,
// which are stored as text and rendered by clients without escaping context.
func Strip(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
