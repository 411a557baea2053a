package utils

import (
	"fmt"
	"strings"
	"time"
)

// RenderTemplate substitutes {identifier} placeholders in template with
// values from vars. Identifiers match [A-Za-z0-9_]+. Placeholders with no
// matching key are left in the output verbatim, braces included, so a
// partial variable set never corrupts the template. The template is walked
// in a single pass and substituted values are never rescanned, so a value
// containing {identifier}-shaped text cannot trigger a second substitution.
func RenderTemplate(template string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}

		end := -1
		for j := i + 1; j < len(template); j++ {
			if isIdentChar(template[j]) {
				continue
			}
			if template[j] == '}' && j > i+1 {
				end = j
			}
			break
		}
		if end == -1 {
			b.WriteByte(c)
			i++
			continue
		}

		name := template[i+1 : end]
		if value, ok := vars[name]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(template[i : end+1])
		}
		i = end + 1
	}

	return b.String()
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// DiscordTimestamp formats t as a Discord timestamp marker, e.g.
// <t:1700000000:F>. Style is one of Discord's single-letter formats.
func DiscordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// Mention formats a user id as a Discord user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// CleanReason collapses runs of whitespace in a moderation reason and
// substitutes a placeholder when the reason is empty.
func CleanReason(reason string) string {
	cleaned := strings.Join(strings.Fields(reason), " ")
	if cleaned == "" {
		return "No reason provided"
	}
	return cleaned
}
