// Package message renders reply templates for a matched comment
package message

import "strings"

// Placeholders recognised in template lines
const (
	PlaceholderUsername = "{{USERNAME}}"
	PlaceholderURL      = "{{URL}}"
	PlaceholderComment  = "{{COMMENT}}"
)

// LineSep separates rendered lines; Reddit markdown needs a blank line per paragraph
const LineSep = "\n\n"

// Vars are the values substituted into a template
type Vars struct {
	User    string // tracked account from the rule, rendered as /u/<user>
	URL     string // rule url, rendered as https://reddit.com/<url>
	Comment string // rule comment, verbatim
}

// Render substitutes every placeholder occurrence in each line and joins
// the lines with LineSep. Unknown {{...}} tokens are left as is
func Render(lines []string, v Vars) string {
	r := strings.NewReplacer(
		PlaceholderUsername, "/u/"+v.User,
		PlaceholderURL, "https://reddit.com/"+v.URL,
		PlaceholderComment, v.Comment,
	)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = r.Replace(l)
	}
	return strings.Join(out, LineSep)
}
