package services

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	commentMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
	commentPolicy = bluemonday.UGCPolicy()
)

func init() {
	commentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	commentPolicy.RequireNoFollowOnLinks(true)
	commentPolicy.RequireNoReferrerOnLinks(true)
}

// RenderCommentHTML turns comment markdown into sanitized HTML. Raw HTML in the
// source is dropped by the sanitizer.
func RenderCommentHTML(source string) string {
	var buf bytes.Buffer
	if err := commentMarkdown.Convert([]byte(source), &buf); err != nil {
		return "<p>" + html.EscapeString(source) + "</p>"
	}
	return string(commentPolicy.SanitizeBytes(buf.Bytes()))
}
