package reference

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/model"
	"golang.org/x/net/html"
)

// DefaultContainerID is the element holding the article body of a MediaWiki page
const DefaultContainerID = "mw-content-text"

// Extractor pulls plain-text paragraphs out of an HTML document
type Extractor interface {
	Extract(r io.Reader) ([]string, error)
}

// ContainerExtractor collects text of every <p> under the element with ID, in document order
type ContainerExtractor struct {
	ID string
}

// NewContainerExtractor creates a ContainerExtractor. Empty id means DefaultContainerID.
func NewContainerExtractor(id string) *ContainerExtractor {
	if id == "" {
		id = DefaultContainerID
	}
	return &ContainerExtractor{ID: id}
}

func (x *ContainerExtractor) Extract(r io.Reader) ([]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse HTML")
	}

	doc := goquery.NewDocumentFromNode(root)
	container := doc.FindMatcher(idMatcher(x.ID)).First()
	if container.Length() == 0 {
		return nil, goerr.New("content container not found",
			goerr.V("id", x.ID),
			goerr.T(model.ErrTagFetch))
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		paragraphs = append(paragraphs, p.Text())
	})

	return paragraphs, nil
}

// idMatcher matches by the id attribute without going through a CSS
// selector, so ids with characters special to CSS need no escaping.
type idMatcher string

func (m idMatcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == "id" {
			return attr.Val == string(m)
		}
	}
	return false
}

func (m idMatcher) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if m.Match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (m idMatcher) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

func joinParagraphs(paragraphs []string) string {
	text := strings.Join(paragraphs, "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
