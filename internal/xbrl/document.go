// Package xbrl parses EDINET XBRL instance documents into a flat,
// read-only fact table that the resolver layers query.
package xbrl

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Fact is a single tagged datum from an instance document. Name is the
// local element name with the namespace prefix stripped; Space preserves
// whatever namespace token the decoder resolved (URI or bare prefix) for
// diagnostics only. Value is the raw, unparsed element text.
type Fact struct {
	Name       string
	Space      string
	ContextRef string
	Value      string

	order int
}

// Document holds every fact of one instance document in document order,
// plus a local-name index for direct tag lookups. Immutable after Parse.
type Document struct {
	facts  []Fact
	byName map[string][]int
}

// Parse reads an XBRL instance document and records a fact for every
// element whose direct character data is non-blank. Element order follows
// the order of start tags. Non-UTF-8 filings are handled through the
// declared charset.
func Parse(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xbrl: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	type frame struct {
		name       xml.Name
		contextRef string
		text       strings.Builder
		childSeen  bool
		order      int
	}

	var (
		stack []*frame
		facts []Fact
		seq   int
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "xbrl: read token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].childSeen = true
			}
			f := &frame{name: t.Name, order: seq}
			seq++
			for _, attr := range t.Attr {
				if attr.Name.Local == "contextRef" {
					f.contextRef = attr.Value
					break
				}
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			// Only text before the first child counts as the element's
			// own value; tail text between siblings belongs to nobody.
			top := stack[len(stack)-1]
			if !top.childSeen {
				top.text.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			value := strings.TrimSpace(top.text.String())
			if value == "" {
				continue
			}
			facts = append(facts, Fact{
				Name:       top.name.Local,
				Space:      top.name.Space,
				ContextRef: top.contextRef,
				Value:      value,
				order:      top.order,
			})
		}
	}

	// Facts are appended as end tags arrive; restore start-tag order so
	// "first in document order" is well defined for tie-breaking.
	sort.Slice(facts, func(i, j int) bool { return facts[i].order < facts[j].order })

	doc := &Document{
		facts:  facts,
		byName: make(map[string][]int, len(facts)),
	}
	for i, f := range facts {
		doc.byName[f.Name] = append(doc.byName[f.Name], i)
	}
	return doc, nil
}

// Facts returns every fact in document order. Callers must not mutate the
// returned slice.
func (d *Document) Facts() []Fact {
	return d.facts
}

// Named returns the facts whose local name equals name, in document order.
func (d *Document) Named(name string) []Fact {
	idx := d.byName[name]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Fact, len(idx))
	for i, j := range idx {
		out[i] = d.facts[j]
	}
	return out
}

// Len reports the number of recorded facts.
func (d *Document) Len() int {
	return len(d.facts)
}
