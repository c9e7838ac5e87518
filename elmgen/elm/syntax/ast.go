// Package syntax is a small typed syntax tree for Elm declarations and the
// printer that renders it. Generators build nodes; only the printer decides
// layout, quoting and parenthesization.
package syntax

// Type is an Elm type expression.
type Type interface {
	typeNode()
}

// TCon is a type constructor applied to zero or more arguments:
// Int, Maybe String, Task.Task Http.Error Book.
type TCon struct {
	Name string
	Args []Type
}

// TFunc is a function type From -> To. Chains are right-nested.
type TFunc struct {
	From Type
	To   Type
}

// TRecord is a record type.
type TRecord struct {
	Fields []TField
}

// TField is one record type field.
type TField struct {
	Name string
	Type Type
}

// TUnit is the unit type ().
type TUnit struct{}

func (*TCon) typeNode()    {}
func (*TFunc) typeNode()   {}
func (*TRecord) typeNode() {}
func (*TUnit) typeNode()   {}

// Con returns a type constructor.
func Con(name string, args ...Type) *TCon {
	return &TCon{Name: name, Args: args}
}

// Func folds types into a right-nested function type: Func(a, b, c) is a -> b -> c.
// A single type is returned unchanged.
func Func(first Type, rest ...Type) Type {
	if len(rest) == 0 {
		return first
	}
	return &TFunc{From: first, To: Func(rest[0], rest[1:]...)}
}

// Expr is an Elm expression.
type Expr interface {
	exprNode()
}

// Var is a possibly qualified name or operator section printed verbatim:
// id, Http.empty, x.title, (++).
type Var struct {
	Name string
}

// Str is a string literal. The printer escapes Value.
type Str struct {
	Value string
}

// Int is an integer literal.
type Int struct {
	Value int
}

// Unit is the unit value ().
type Unit struct{}

// Op is a binary infix operator application.
// Operands that are themselves Op nodes print without parentheses; builders
// nest them in the association the operator expects and wrap with Paren
// where grouping differs.
type Op struct {
	Op    string
	Left  Expr
	Right Expr
}

// Call is function application. Compound arguments are parenthesized by the
// printer. Multiline places each argument on its own line.
type Call struct {
	Fn        Expr
	Args      []Expr
	Multiline bool
}

// Paren forces parentheses around X.
type Paren struct {
	X Expr
}

// If is an if-then-else expression.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Lambda is an anonymous function.
type Lambda struct {
	Params []string
	Body   Expr
}

// List is a list literal. Multiline uses leading-comma layout.
type List struct {
	Items     []Expr
	Multiline bool
}

// Tuple is a tuple literal.
type Tuple struct {
	Items []Expr
}

// Record is a record literal, always printed one field per line.
type Record struct {
	Fields []Field
}

// Field is a record literal field.
type Field struct {
	Name  string
	Value Expr
}

// Let is a let-in expression.
type Let struct {
	Bindings []Binding
	Body     Expr
}

// Binding is a name bound in a let block.
type Binding struct {
	Name  string
	Value Expr
}

// Chain is Head followed by Op-applied Tail items, one per line:
//
//	Json.Decode.succeed Book
//	  |: ("title" := Json.Decode.string)
type Chain struct {
	Head Expr
	Op   string
	Tail []Expr
}

func (*Var) exprNode()    {}
func (*Str) exprNode()    {}
func (*Int) exprNode()    {}
func (*Unit) exprNode()   {}
func (*Op) exprNode()     {}
func (*Call) exprNode()   {}
func (*Paren) exprNode()  {}
func (*If) exprNode()     {}
func (*Lambda) exprNode() {}
func (*List) exprNode()   {}
func (*Tuple) exprNode()  {}
func (*Record) exprNode() {}
func (*Let) exprNode()    {}
func (*Chain) exprNode()  {}

// V returns a Var.
func V(name string) *Var { return &Var{Name: name} }

// S returns a string literal.
func S(value string) *Str { return &Str{Value: value} }

// Apply returns a single-line function application.
func Apply(fn Expr, args ...Expr) *Call { return &Call{Fn: fn, Args: args} }

// Infix returns a binary operator application.
func Infix(left Expr, op string, right Expr) *Op { return &Op{Op: op, Left: left, Right: right} }

// Pipe folds x |> f |> g ... left-associatively.
func Pipe(x Expr, fns ...Expr) Expr {
	for _, fn := range fns {
		x = Infix(x, "|>", fn)
	}
	return x
}

// Concat joins expressions with ++. It returns nil for no parts.
func Concat(parts ...Expr) Expr {
	if len(parts) == 0 {
		return nil
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out = Infix(out, "++", p)
	}
	return out
}

// Decl is a top-level Elm declaration.
type Decl interface {
	declNode()
}

// TypeAlias declares `type alias Name = Type`.
type TypeAlias struct {
	Name string
	Type Type
	Doc  string
}

// FuncDecl declares a top-level value or function with an optional signature.
type FuncDecl struct {
	Name      string
	Signature Type
	Params    []string
	Body      Expr
	Doc       string
}

// Raw is a declaration supplied as finished source text.
type Raw struct {
	Text string
}

func (*TypeAlias) declNode() {}
func (*FuncDecl) declNode()  {}
func (*Raw) declNode()       {}

// Import is one import line.
type Import struct {
	Module   string
	As       string
	Exposing string
}

// Module is a complete Elm source file.
type Module struct {
	Name        string
	Exposing    string
	Frontmatter string
	Imports     []Import
	Decls       []Decl
}
