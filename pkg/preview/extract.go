package preview

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Preview is the data shown on a bookmark card.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Lookup order per field; the first non-empty value wins.
var (
	titleKeys       = []string{"og:title", "twitter:title"}
	descriptionKeys = []string{"og:description", "twitter:description", "description"}
	imageKeys       = []string{"og:image", "twitter:image", "og:image:url"}
)

// Extract parses page and returns its preview. base is the page URL, used
// for the URL field and to resolve a relative image.
func Extract(page []byte, base *url.URL) Preview {
	meta, title := scan(page)

	p := Preview{
		URL:         base.String(),
		Title:       first(meta, titleKeys),
		Description: first(meta, descriptionKeys),
		Image:       first(meta, imageKeys),
	}
	if p.Title == "" {
		p.Title = title
	}
	if p.Image != "" {
		p.Image = resolve(base, p.Image)
	}
	return p
}

// scan collects <meta property|name content> pairs and the <title> text.
// Earlier tags win over later duplicates.
func scan(page []byte) (map[string]string, string) {
	meta := make(map[string]string)
	var title strings.Builder
	inTitle, haveTitle := false, false

	z := html.NewTokenizer(bytes.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way keep what was found.
			return meta, strings.TrimSpace(title.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Meta:
				key, content := metaPair(tok)
				if key != "" && content != "" {
					if _, ok := meta[key]; !ok {
						meta[key] = content
					}
				}
			case atom.Title:
				inTitle = !haveTitle
			case atom.Body:
				if len(meta) > 0 || haveTitle {
					return meta, strings.TrimSpace(title.String())
				}
			}

		case html.EndTagToken:
			if tok := z.Token(); tok.DataAtom == atom.Title && inTitle {
				inTitle, haveTitle = false, true
			}

		case html.TextToken:
			if inTitle {
				title.Write(z.Text())
			}
		}
	}
}

func metaPair(tok html.Token) (key, content string) {
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	return key, content
}

func first(meta map[string]string, keys []string) string {
	for _, k := range keys {
		if v := meta[k]; v != "" {
			return v
		}
	}
	return ""
}

// resolve makes ref absolute against base. Unparsable refs are returned
// unchanged.
func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
