package segmenter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// Class names used by the exported transcript.
const (
	classMessage   = "message"
	classService   = "service"
	classText      = "text"
	classPhotoWrap = "photo_wrap"
	idPrefix       = "message"
)

// ParseExport reads an exported transcript and returns its message blocks in
// document order. Blocks that cannot be parsed are skipped and reported as
// errors wrapping domain.ErrRecordUnparseable; a nil slice of errors means
// every block was read.
func ParseExport(r io.Reader) ([]domain.RawMessage, []error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, []error{fmt.Errorf("parse export: %w", err)}
	}

	var (
		msgs []domain.RawMessage
		errs []error
		pos  int
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if isElement(n, atom.Div) && hasClass(n, classMessage) {
			pos++
			msg, err := parseBlock(n, pos)
			if err != nil {
				errs = append(errs, err)
			} else {
				msgs = append(msgs, msg)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return msgs, errs
}

// parseBlock reads a single message block.
func parseBlock(n *html.Node, pos int) (domain.RawMessage, error) {
	rawID := attr(n, "id")
	id, err := parseID(rawID)
	if err != nil {
		return domain.RawMessage{}, fmt.Errorf("block %d id %q: %w", pos, rawID, domain.ErrRecordUnparseable)
	}

	msg := domain.RawMessage{
		ID:       id,
		Service:  hasClass(n, classService),
		Position: pos,
	}

	if textNode := find(n, func(c *html.Node) bool {
		return isElement(c, atom.Div) && hasClass(c, classText)
	}); textNode != nil {
		inner, err := innerHTML(textNode)
		if err != nil {
			return domain.RawMessage{}, fmt.Errorf("block %d render text: %w", id, domain.ErrRecordUnparseable)
		}
		msg.Text = strings.TrimSpace(inner)
		msg.HasText = msg.Text != ""
	}

	collect(n, func(c *html.Node) bool {
		return isElement(c, atom.A) && hasClass(c, classPhotoWrap)
	}, func(c *html.Node) {
		if href := attr(c, "href"); href != "" {
			msg.PhotoRefs = append(msg.PhotoRefs, href)
		}
	})

	return msg, nil
}

// parseID reads "message<digits>", allowing a leading minus for service blocks.
func parseID(raw string) (int, error) {
	if !strings.HasPrefix(raw, idPrefix) {
		return 0, domain.ErrRecordUnparseable
	}
	digits := strings.TrimPrefix(raw, idPrefix)
	if digits == "" {
		return 0, domain.ErrRecordUnparseable
	}
	return strconv.Atoi(digits)
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// find returns the first descendant of n matching pred, depth first.
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if found := find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// collect calls fn for every descendant of n matching pred, in document order.
func collect(n *html.Node, pred func(*html.Node) bool, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			fn(c)
		}
		collect(c, pred, fn)
	}
}

func innerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
