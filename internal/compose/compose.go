// Package compose turns a generated article into the HTML body of a post.
package compose

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const placeholder = "Short update about AI evolution."

const imageStyle = "max-width:100%;height:auto;border-radius:12px;"

// goldmark omits raw HTML unless html.WithUnsafe is set.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMode selects how article text becomes HTML.
type RenderMode string

const (
	// Plain escapes everything and keeps only paragraph and line breaks.
	Plain RenderMode = "plain"
	// Markup renders the article as Markdown. Raw HTML is dropped.
	Markup RenderMode = "markup"
)

// ParseRenderMode accepts "plain" and "markup". Empty means plain.
func ParseRenderMode(s string) (RenderMode, error) {
	switch RenderMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Plain:
		return Plain, nil
	case Markup:
		return Markup, nil
	}
	return "", fmt.Errorf("unknown render mode %q (want plain or markup)", s)
}

// Post is an assembled article ready for delivery.
type Post struct {
	Title string
	HTML  string
	Plain string
}

// Assembler builds posts. The zero value renders plain text.
type Assembler struct {
	Mode RenderMode
}

// NewAssembler creates an Assembler for mode.
func NewAssembler(mode RenderMode) *Assembler {
	return &Assembler{Mode: mode}
}

// Assemble builds the post for topic. imageURL may be empty.
func (a *Assembler) Assemble(topic, article, imageURL string) Post {
	safeTopic := html.EscapeString(topic)

	var b strings.Builder
	b.WriteString("<h2>" + safeTopic + "</h2>")
	if a.Mode == Markup {
		b.WriteString(renderMarkup(article))
	} else {
		b.WriteString(renderPlain(article))
	}
	if imageURL != "" {
		fmt.Fprintf(&b, `<p><img src="%s" alt="%s" style="%s"></p>`,
			html.EscapeString(imageURL), safeTopic, imageStyle)
	}

	return Post{
		Title: topic,
		HTML:  b.String(),
		Plain: topic + "\n\n" + article,
	}
}

func renderPlain(article string) string {
	safe := strings.TrimSpace(html.EscapeString(article))
	if safe == "" {
		return "<p>" + placeholder + "</p>"
	}

	var b strings.Builder
	for _, para := range strings.Split(safe, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>" + strings.ReplaceAll(para, "\n", "<br>") + "</p>")
	}
	if b.Len() == 0 {
		return "<p>" + safe + "</p>"
	}
	return b.String()
}

func renderMarkup(article string) string {
	if strings.TrimSpace(article) == "" {
		return "<p>" + placeholder + "</p>"
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(article), &buf); err != nil {
		return renderPlain(article)
	}
	return strings.TrimSpace(buf.String())
}
