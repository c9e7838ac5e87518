package elm

import "github.com/jhickner/servant-elm/elmgen/elm/syntax"

// encodeChain turns a value into a percent-encoded path or query fragment.
func encodeChain(x syntax.Expr) syntax.Expr {
	return syntax.Pipe(x, syntax.V("toString"), syntax.V("Http.uriEncode"))
}

func renderSegment(s Segment) syntax.Expr {
	if s.Capture {
		return &syntax.Paren{X: encodeChain(syntax.V(s.Text))}
	}
	return syntax.S(s.Text)
}

// BuildURL renders the path part of a request URL: the quoted prefix, if any,
// followed by "/" ++ segment for each segment. With neither prefix nor
// segments the URL is "/".
func BuildURL(prefix string, segments []Segment) syntax.Expr {
	var fragments []syntax.Expr
	if prefix != "" {
		fragments = append(fragments, syntax.S(prefix))
	}
	if len(segments) > 0 {
		parts := make([]syntax.Expr, 0, 2*len(segments))
		for _, s := range segments {
			parts = append(parts, syntax.S("/"), renderSegment(s))
		}
		fragments = append(fragments, syntax.Concat(parts...))
	}
	if len(fragments) == 0 {
		return syntax.S("/")
	}
	return syntax.Concat(fragments...)
}

// RenderQueryArg renders one query argument as an Elm String expression that
// is empty when the argument contributes nothing.
func RenderQueryArg(q QueryArg) syntax.Expr {
	arg := q.binding()
	switch q.Kind {
	case ArgFlag:
		return &syntax.If{
			Cond: syntax.V(arg),
			Then: syntax.S(q.Name + "="),
			Else: syntax.S(""),
		}
	case ArgList:
		val := "val"
		if arg == val {
			val = "item"
		}
		each := &syntax.Lambda{
			Params: []string{val},
			Body:   syntax.Infix(syntax.S(q.Name+"[]="), "++", &syntax.Paren{X: encodeChain(syntax.V(val))}),
		}
		return syntax.Pipe(syntax.V(arg),
			syntax.Apply(syntax.V("List.map"), each),
			syntax.Apply(syntax.V("String.join"), syntax.S("&")),
		)
	default:
		encode := syntax.Infix(
			syntax.Infix(syntax.V("toString"), ">>", syntax.V("Http.uriEncode")),
			">>",
			syntax.Apply(syntax.V("(++)"), syntax.S(q.Name+"=")),
		)
		return syntax.Pipe(syntax.V(arg),
			syntax.Apply(syntax.V("Maybe.map"), encode),
			syntax.Apply(syntax.V("Maybe.withDefault"), syntax.S("")),
		)
	}
}

// paramsBinding filters the rendered query arguments down to the non-empty ones.
func paramsBinding(args []QueryArg) syntax.Expr {
	items := make([]syntax.Expr, len(args))
	for i, q := range args {
		items[i] = RenderQueryArg(q)
	}
	return &syntax.Call{
		Fn:        syntax.Apply(syntax.V("List.filter"), syntax.Infix(syntax.V("not"), "<<", syntax.V("String.isEmpty"))),
		Args:      []syntax.Expr{&syntax.List{Items: items, Multiline: true}},
		Multiline: true,
	}
}

// querySuffix appends "?" and the joined params when any are present.
func querySuffix() syntax.Expr {
	return &syntax.If{
		Cond: syntax.Apply(syntax.V("List.isEmpty"), syntax.V("params")),
		Then: syntax.S(""),
		Else: syntax.Infix(syntax.S("?"), "++", syntax.Apply(syntax.V("String.join"), syntax.S("&"), syntax.V("params"))),
	}
}
