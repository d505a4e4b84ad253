// Package xmlreader is the XML Reader component (spec.md §4.1): it reads
// an SCXML document into a namespace-aware DOM and exposes the two
// primitives the rest of the front-end needs — find-first-child and
// find-all-children, both filtered to the SCXML namespace.
package xmlreader

import (
	"os"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/scxmlc/frontend/model"
)

// Namespace is the W3C SCXML namespace URI (spec.md §1).
const Namespace = "http://www.w3.org/2005/07/scxml"

// Document wraps a decoded xmldom.Document with its source text, kept
// around so downstream diagnostics (if any are ever added) can report
// precise offsets the way the teacher's validator does.
type Document struct {
	doc    xmldom.Document
	Source string
	Path   string
}

// ReadFile reads and parses path as an SCXML document. XML
// well-formedness errors are fatal per spec.md §7 and are returned
// wrapped so the caller can tell a read failure from a parse failure.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ParseError{Path: path, Err: err}
	}
	return ReadString(path, string(data))
}

// ReadString parses an in-memory SCXML document. path is used only for
// diagnostics; it need not exist on disk.
func ReadString(path, src string) (*Document, error) {
	decoder := xmldom.NewDecoderFromBytes([]byte(src))
	doc, err := decoder.Decode()
	if err != nil {
		return nil, &model.ParseError{Path: path, Err: err}
	}
	return &Document{doc: doc, Source: src, Path: path}, nil
}

// Root returns the document element, or nil if the document has none.
func (d *Document) Root() xmldom.Element {
	if d.doc == nil {
		return nil
	}
	return d.doc.DocumentElement()
}

// inSCXMLNamespace reports whether an element matches the SCXML
// namespace, or has no namespace at all (many hand-written SCXML test
// fixtures omit xmlns on nested elements; the teacher's xmldom layer
// resolves namespace inheritance, so by the time we see an element its
// NamespaceURI should already reflect the nearest ancestor's xmlns — an
// empty NamespaceURI here means the document declared none and the
// element is treated as unqualified, not foreign).
func inSCXMLNamespace(el xmldom.Element) bool {
	ns := string(el.NamespaceURI())
	return ns == "" || ns == Namespace
}

// FindFirstChild returns the first direct child element with the given
// local name in the SCXML namespace, or nil.
func FindFirstChild(parent xmldom.Element, localName string) xmldom.Element {
	if parent == nil {
		return nil
	}
	children := parent.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		if string(child.LocalName()) == localName && inSCXMLNamespace(child) {
			return child
		}
	}
	return nil
}

// FindAllChildren returns every direct child element with the given
// local name in the SCXML namespace, in document order.
func FindAllChildren(parent xmldom.Element, localName string) []xmldom.Element {
	if parent == nil {
		return nil
	}
	var out []xmldom.Element
	children := parent.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		if string(child.LocalName()) == localName && inSCXMLNamespace(child) {
			out = append(out, child)
		}
	}
	return out
}

// Attr returns the named attribute's value, trimmed of nothing (callers
// trim when "empty means absent" matters — spec.md design note).
func Attr(el xmldom.Element, name string) string {
	if el == nil {
		return ""
	}
	return string(el.GetAttribute(xmldom.DOMString(name)))
}

// Text returns an element's text content verbatim (spec.md §4.1).
func Text(el xmldom.Element) string {
	if el == nil {
		return ""
	}
	return string(el.TextContent())
}

// Pos returns an element's source position for diagnostics.
func Pos(el xmldom.Element) (line, col int, offset int64) {
	if el == nil {
		return 0, 0, 0
	}
	return el.Position()
}
