package syntax

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// DefaultIndent is the indentation unit used when Printer.Indent is empty.
const DefaultIndent = "  "

// Printer renders syntax trees as Elm source text.
// The zero value is ready to use.
type Printer struct {
	Indent string
}

func (p *Printer) unit() string {
	if p == nil || p.Indent == "" {
		return DefaultIndent
	}
	return p.Indent
}

// Type renders a type expression on one line.
func (p *Printer) Type(t Type) string {
	switch t := t.(type) {
	case nil:
		return "()"
	case *TUnit:
		return "()"
	case *TCon:
		if len(t.Args) == 0 {
			return t.Name
		}
		parts := make([]string, 0, len(t.Args)+1)
		parts = append(parts, t.Name)
		for _, a := range t.Args {
			parts = append(parts, p.typeArg(a))
		}
		return strings.Join(parts, " ")
	case *TFunc:
		from := p.Type(t.From)
		if _, ok := t.From.(*TFunc); ok {
			from = "(" + from + ")"
		}
		return from + " -> " + p.Type(t.To)
	case *TRecord:
		if len(t.Fields) == 0 {
			return "{}"
		}
		fields := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = f.Name + " : " + p.Type(f.Type)
		}
		return "{ " + strings.Join(fields, ", ") + " }"
	default:
		panic(fmt.Sprintf("syntax: unknown type node %T", t))
	}
}

func (p *Printer) typeArg(t Type) string {
	switch a := t.(type) {
	case *TCon:
		if len(a.Args) > 0 {
			return "(" + p.Type(a) + ")"
		}
	case *TFunc:
		return "(" + p.Type(a) + ")"
	}
	return p.Type(t)
}

// Expr renders an expression. Multi-line expressions start at column zero
// and indent continuation lines relative to it.
func (p *Printer) Expr(e Expr) string {
	return strings.Join(p.lines(e), "\n")
}

// lines renders e as lines relative to the column where it starts.
func (p *Printer) lines(e Expr) []string {
	in := p.unit()
	switch e := e.(type) {
	case *Var:
		return []string{e.Name}
	case *Str:
		return []string{quote(e.Value)}
	case *Int:
		return []string{strconv.Itoa(e.Value)}
	case *Unit:
		return []string{"()"}
	case *Paren:
		return wrap("(", p.lines(e.X), ")")
	case *Op:
		left := p.operand(e.Left)
		right := p.operand(e.Right)
		return joinLines(left, " "+e.Op+" ", right)
	case *Call:
		fn := p.lines(e.Fn)
		switch e.Fn.(type) {
		case *Op, *If, *Lambda, *Let, *Chain:
			fn = wrap("(", fn, ")")
		}
		if e.Multiline {
			out := fn
			for _, a := range e.Args {
				out = append(out, indent(p.arg(a), in)...)
			}
			return out
		}
		out := fn
		for _, a := range e.Args {
			out = joinLines(out, " ", p.arg(a))
		}
		return out
	case *If:
		out := joinLines([]string{"if"}, " ", p.lines(e.Cond))
		out = joinLines(out, " then ", p.lines(e.Then))
		return joinLines(out, " else ", p.lines(e.Else))
	case *Lambda:
		head := `\` + strings.Join(e.Params, " ") + " -> "
		return joinLines([]string{head}, "", p.lines(e.Body))
	case *Tuple:
		return p.sequence("(", e.Items, ")")
	case *List:
		if len(e.Items) == 0 {
			return []string{"[]"}
		}
		if !e.Multiline {
			return p.sequence("[", e.Items, "]")
		}
		var out []string
		for i, item := range e.Items {
			lead := ", "
			if i == 0 {
				lead = "[ "
			}
			out = append(out, wrap(lead, p.lines(item), "")...)
		}
		return append(out, "]")
	case *Record:
		if len(e.Fields) == 0 {
			return []string{"{}"}
		}
		var out []string
		for i, f := range e.Fields {
			lead := ", "
			if i == 0 {
				lead = "{ "
			}
			value := p.lines(f.Value)
			if len(value) == 1 {
				out = append(out, lead+f.Name+" = "+value[0])
				continue
			}
			out = append(out, lead+f.Name+" =")
			out = append(out, indent(value, in+in)...)
		}
		return append(out, "}")
	case *Let:
		out := []string{"let"}
		for _, b := range e.Bindings {
			out = append(out, in+b.Name+" =")
			out = append(out, indent(p.lines(b.Value), in+in)...)
		}
		out = append(out, "in")
		return append(out, indent(p.lines(e.Body), in)...)
	case *Chain:
		out := p.lines(e.Head)
		for _, t := range e.Tail {
			out = append(out, indent(joinLines([]string{e.Op}, " ", p.arg(t)), in)...)
		}
		return out
	case nil:
		panic("syntax: nil expression")
	default:
		panic(fmt.Sprintf("syntax: unknown expression node %T", e))
	}
}

// arg renders an application argument, parenthesizing anything that is not atomic.
func (p *Printer) arg(e Expr) []string {
	switch a := e.(type) {
	case *Call:
		if len(a.Args) == 0 {
			return p.lines(a.Fn)
		}
		return wrap("(", p.lines(a), ")")
	case *Op, *If, *Lambda, *Let, *Chain:
		return wrap("(", p.lines(a), ")")
	}
	return p.lines(e)
}

// operand renders one side of an infix operator.
func (p *Printer) operand(e Expr) []string {
	switch e.(type) {
	case *If, *Lambda, *Let, *Chain:
		return wrap("(", p.lines(e), ")")
	}
	return p.lines(e)
}

func (p *Printer) sequence(open string, items []Expr, close string) []string {
	out := []string{open}
	for i, item := range items {
		sep := ""
		if i > 0 {
			sep = ", "
		}
		out = joinLines(out, sep, p.lines(item))
	}
	return joinLines(out, "", []string{close})
}

// Decl renders a top-level declaration without a trailing newline.
func (p *Printer) Decl(d Decl) string {
	var buf bytes.Buffer
	in := p.unit()
	switch d := d.(type) {
	case *TypeAlias:
		writeDoc(&buf, d.Doc)
		buf.WriteString("type alias " + d.Name + " =\n")
		if rec, ok := d.Type.(*TRecord); ok && len(rec.Fields) > 0 {
			for i, f := range rec.Fields {
				lead := ", "
				if i == 0 {
					lead = "{ "
				}
				buf.WriteString(in + lead + f.Name + " : " + p.Type(f.Type) + "\n")
			}
			buf.WriteString(in + "}")
		} else {
			buf.WriteString(in + p.Type(d.Type))
		}
	case *FuncDecl:
		writeDoc(&buf, d.Doc)
		if d.Signature != nil {
			buf.WriteString(d.Name + " : " + p.Type(d.Signature) + "\n")
		}
		buf.WriteString(d.Name)
		for _, param := range d.Params {
			buf.WriteString(" " + param)
		}
		buf.WriteString(" =\n")
		buf.WriteString(strings.Join(indent(p.lines(d.Body), in), "\n"))
	case *Raw:
		buf.WriteString(strings.TrimRight(d.Text, "\n"))
	default:
		panic(fmt.Sprintf("syntax: unknown declaration node %T", d))
	}
	return buf.String()
}

// Import renders an import line.
func (p *Printer) Import(imp Import) string {
	s := "import " + imp.Module
	if imp.As != "" {
		s += " as " + imp.As
	}
	if imp.Exposing != "" {
		s += " exposing (" + imp.Exposing + ")"
	}
	return s
}

// Module renders a complete source file terminated by a newline.
func (p *Printer) Module(m *Module) string {
	var buf bytes.Buffer
	exposing := m.Exposing
	if exposing == "" {
		exposing = ".."
	}
	fmt.Fprintf(&buf, "module %s exposing (%s)\n", m.Name, exposing)
	if m.Frontmatter != "" {
		buf.WriteString("\n" + strings.TrimRight(m.Frontmatter, "\n") + "\n")
	}
	if len(m.Imports) > 0 {
		buf.WriteString("\n")
		for _, imp := range m.Imports {
			buf.WriteString(p.Import(imp) + "\n")
		}
	}
	for _, d := range m.Decls {
		buf.WriteString("\n\n")
		buf.WriteString(p.Decl(d))
		buf.WriteString("\n")
	}
	return buf.String()
}

func writeDoc(buf *bytes.Buffer, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	buf.WriteString("{-| " + doc + "\n-}\n")
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

// joinLines appends b to a, joining the last line of a with the first line of b.
func joinLines(a []string, sep string, b []string) []string {
	if len(a) == 0 {
		return b
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a[:len(a)-1]...)
	if len(b) == 0 {
		return append(out, a[len(a)-1]+sep)
	}
	out = append(out, a[len(a)-1]+sep+b[0])
	return append(out, b[1:]...)
}

func wrap(open string, lines []string, close string) []string {
	out := append([]string(nil), lines...)
	if len(out) == 0 {
		return []string{open + close}
	}
	out[0] = open + out[0]
	out[len(out)-1] += close
	return out
}

// indent prefixes every non-empty line with prefix.
func indent(lines []string, prefix string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			out[i] = l
			continue
		}
		out[i] = prefix + l
	}
	return out
}
