package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// builtin is the in-process HTML to markdown converter.
type builtin struct {
	client    *http.Client
	userAgent string
}

func newBuiltin(userAgent string) *builtin {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; deepcrawl/1.0)"
	}
	return &builtin{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
	}
}

// Convert fetches the page and returns its markdown rendition. The md-fit
// format converts only the main content subtree; md converts the whole
// document.
func (b *builtin) Convert(ctx context.Context, rawURL, format string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	source := string(body)
	if format == FormatMDFit {
		doc, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}
		if main := findMainContentNode(doc); main != nil {
			var buf bytes.Buffer
			if err := html.Render(&buf, main); err != nil {
				return "", fmt.Errorf("failed to render main content: %w", err)
			}
			source = buf.String()
		}
	}

	markdown, err := htmltomarkdown.ConvertString(source)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}

	return strings.TrimSpace(markdown) + "\n", nil
}

// findMainContentNode looks for common content containers like <main>,
// <article>, or elements with id="content" or id="main", falling back to
// <body>.
func findMainContentNode(doc *html.Node) *html.Node {
	var mainNode *html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "main" || n.Data == "article" {
				mainNode = n
				return
			}
			for _, a := range n.Attr {
				if a.Key == "id" && (a.Val == "content" || a.Val == "main") {
					mainNode = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
			if mainNode != nil {
				return
			}
		}
	}
	f(doc)

	if mainNode == nil {
		var findBody func(*html.Node)
		findBody = func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == "body" {
				mainNode = n
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				findBody(c)
				if mainNode != nil {
					return
				}
			}
		}
		findBody(doc)
	}

	return mainNode
}
