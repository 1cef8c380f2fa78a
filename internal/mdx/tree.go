package mdx

import "strings"

// Node is an element of the tag tree. The root node spans the whole document and has
// an empty Name.
type Node struct {
	Name  string
	Attrs Attrs

	// Start and End cover the element from '<' of the opener to '>' of the closer.
	Start int
	End   int
	// InnerStart and InnerEnd cover the element body.
	InnerStart int
	InnerEnd   int

	// Column is the byte offset of '<' from the start of its line; Indent is the
	// leading whitespace of that line.
	Column int
	Indent string

	SelfClosing bool
	// Dangling marks an unclosed opener or orphan closer. Rendering drops the tag text
	// and keeps the surrounding content.
	Dangling bool

	Parent   *Node
	Children []*Node

	src string
}

// Document is a parsed source.
type Document struct {
	Source string
	Root   *Node
	Issues []Issue
}

// Parse builds the tag tree of src.
//
// Recovery rules: a closer without a matching opener is dropped; an opener that is never
// closed is dropped and its would-be children become siblings; once MaxElements elements
// have been built, every remaining recognized tag is dropped and its content kept.
func Parse(src string, opts Options) *Document {
	tags, issues := Tokenize(src, opts)
	limit := opts.MaxElements
	if limit <= 0 {
		limit = DefaultMaxElements
	}

	root := &Node{InnerEnd: len(src), End: len(src), src: src}
	doc := &Document{Source: src, Root: root, Issues: issues}
	stack := []*Node{root}

	count := 0
	capped := false
	for _, t := range tags {
		if capped {
			top := stack[len(stack)-1]
			top.add(doc.dangling(t))
			continue
		}
		if !t.Closing && count >= limit {
			doc.issue(t.Start, "element limit reached; remaining tags are stripped")
			stack = doc.unwind(stack, 1)
			capped = true
			stack[0].add(doc.dangling(t))
			continue
		}

		switch {
		case t.SelfClosing:
			count++
			n := doc.element(t)
			n.SelfClosing = true
			n.End = t.End
			n.InnerStart, n.InnerEnd = t.End, t.End
			stack[len(stack)-1].add(n)
		case !t.Closing:
			count++
			n := doc.element(t)
			n.InnerStart = t.End
			stack[len(stack)-1].add(n)
			stack = append(stack, n)
		default:
			idx := -1
			for j := len(stack) - 1; j > 0; j-- {
				if stack[j].Name == t.Name {
					idx = j
					break
				}
			}
			if idx < 0 {
				doc.issue(t.Start, "closing </"+t.Name+"> without matching opener")
				stack[len(stack)-1].add(doc.dangling(t))
				continue
			}
			stack = doc.unwind(stack, idx+1)
			n := stack[idx]
			n.InnerEnd = t.Start
			n.End = t.End
			stack = stack[:idx]
		}
	}
	doc.unwind(stack, 1)
	return doc
}

// unwind marks every element above keep as unclosed, hoisting its children to its parent.
func (d *Document) unwind(stack []*Node, keep int) []*Node {
	for len(stack) > keep {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		d.issue(n.Start, "unclosed <"+n.Name+"> tag")
		n.Dangling = true
		n.End = n.InnerStart
		n.InnerEnd = n.InnerStart
		parent := n.Parent
		for _, c := range n.Children {
			c.Parent = parent
		}
		parent.Children = append(parent.Children, n.Children...)
		n.Children = nil
	}
	return stack
}

func (d *Document) element(t Tag) *Node {
	lineStart := strings.LastIndexByte(d.Source[:t.Start], '\n') + 1
	line := d.Source[lineStart:t.Start]
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	return &Node{
		Name:   t.Name,
		Attrs:  t.Attrs,
		Start:  t.Start,
		End:    t.End,
		Column: t.Start - lineStart,
		Indent: indent,
		src:    d.Source,
	}
}

func (d *Document) dangling(t Tag) *Node {
	n := d.element(t)
	n.Dangling = true
	n.InnerStart, n.InnerEnd = t.End, t.End
	return n
}

func (d *Document) issue(offset int, msg string) {
	d.Issues = append(d.Issues, newIssue(d.Source, offset, msg))
}

func (n *Node) add(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Inner returns the unprocessed body of the element.
func (n *Node) Inner() string {
	return n.src[n.InnerStart:n.InnerEnd]
}

// Outer returns the unprocessed source of the whole element.
func (n *Node) Outer() string {
	return n.src[n.Start:n.End]
}

// OpenTag returns the source of the opening tag.
func (n *Node) OpenTag() string {
	if n.SelfClosing {
		return n.Outer()
	}
	return n.src[n.Start:n.InnerStart]
}

// CloseTag returns the source of the closing tag ("" for self-closing elements).
func (n *Node) CloseTag() string {
	return n.src[n.InnerEnd:n.End]
}

// Elements returns the non-dangling children named name (all when name is empty).
func (n *Node) Elements(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Dangling {
			continue
		}
		if name == "" || c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Element returns the first non-dangling child named name.
func (n *Node) Element(name string) *Node {
	for _, c := range n.Children {
		if !c.Dangling && c.Name == name {
			return c
		}
	}
	return nil
}

// Text returns the element body with every recognized child tag removed.
func (n *Node) Text() string {
	return renderRange(n.src, n.Children, n.InnerStart, n.InnerEnd, func(c *Node, inner func() string) string {
		return inner()
	})
}

// OwnText returns the element body with every recognized child element removed,
// content included.
func (n *Node) OwnText() string {
	return renderRange(n.src, n.Children, n.InnerStart, n.InnerEnd, func(*Node, func() string) string {
		return ""
	})
}
