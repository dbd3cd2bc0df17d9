// Package format escapes text for Telegram parse modes.
package format

import "strings"

var markdownV2 = strings.NewReplacer(
	`\`, `\\`, "_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`, "=", `\=`,
	"|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

// EscapeMarkdownV2 escapes every character reserved by MarkdownV2.
func EscapeMarkdownV2(text string) string {
	return markdownV2.Replace(text)
}

// Bold wraps escaped text in MarkdownV2 bold markers.
func Bold(text string) string {
	return "*" + EscapeMarkdownV2(text) + "*"
}

// Italic wraps escaped text in MarkdownV2 italic markers.
func Italic(text string) string {
	return "_" + EscapeMarkdownV2(text) + "_"
}
