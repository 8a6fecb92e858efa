package typeparser

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// ErrSyntax is the cause of every error returned by Parse.
var ErrSyntax = errors.New("type expression syntax error")

type modifiers struct {
	optional   bool
	repeatable bool
}

type parser[T any] struct {
	b    Builder[T]
	src  string
	toks []token
	pos  int
}

// Parse parses a type expression using b to build the result.
//
// Supported syntax covers unions, parentheses, `T[]`, `Array.<T>`/`Array<T>`,
// `Object.<K,V>`, generic applications, `function(this:X, new:Y, a, b=): R`,
// record types `{a: T, b?: U}`, literals, `?T`, `!T`, `T=`, `...T`, `*`, `?`
// and `module:` names.
//
// Example:
//
//	t, err := typeparser.Parse("sap.m.Button|string[]", builder)
func Parse[T any](src string, b Builder[T]) (T, error) {
	var zero T
	toks, err := lex(src)
	if err != nil {
		return zero, errors.Wrapf(err, "parsing %q", src)
	}
	if len(toks) == 1 {
		return zero, errors.Wrapf(ErrSyntax, "empty type expression")
	}

	p := &parser[T]{b: b, src: src, toks: toks}
	t, mods, err := p.parseModified()
	if err != nil {
		return zero, errors.Wrapf(err, "parsing %q", src)
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return zero, errors.Wrapf(ErrSyntax, "parsing %q: unexpected %s at offset %d", src, tok, tok.pos)
	}

	if mods.repeatable {
		t = b.Repeatable(t)
	}
	if mods.optional {
		t = b.Optional(t)
	}
	return t, nil
}

func (p *parser[T]) peek() token {
	return p.toks[p.pos]
}

func (p *parser[T]) peekAt(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *parser[T]) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser[T]) accept(punct string) bool {
	if p.peek().is(punct) {
		p.pos++
		return true
	}
	return false
}

func (p *parser[T]) expect(punct string) error {
	if tok := p.peek(); !tok.is(punct) {
		return errors.Wrapf(ErrSyntax, "expected '%s' but found %s at offset %d", punct, tok, tok.pos)
	}
	p.pos++
	return nil
}

// parseModified parses `...T` and `T=` around a union.
func (p *parser[T]) parseModified() (T, modifiers, error) {
	var mods modifiers
	mods.repeatable = p.accept("...")
	t, err := p.parseUnion()
	if err != nil {
		return t, mods, err
	}
	mods.optional = p.accept("=")
	return t, mods, nil
}

func (p *parser[T]) parseUnion() (T, error) {
	first, err := p.parsePrefixed()
	if err != nil {
		return first, err
	}
	if !p.peek().is("|") {
		return first, nil
	}
	types := []T{first}
	for p.accept("|") {
		t, err := p.parsePrefixed()
		if err != nil {
			return t, err
		}
		types = append(types, t)
	}
	return p.b.Union(types), nil
}

func startsType(tok token) bool {
	switch tok.kind {
	case tokName, tokString, tokNumber:
		return true
	case tokPunct:
		switch tok.value {
		case "(", "{", "*", "?", "!":
			return true
		}
	}
	return false
}

func (p *parser[T]) parsePrefixed() (T, error) {
	switch {
	case p.peek().is("?"):
		p.next()
		if !startsType(p.peek()) {
			// A lone '?' is the unknown type.
			return p.parsePostfixOn(p.b.NormalizeType("any"))
		}
		t, err := p.parsePrefixed()
		if err != nil {
			return t, err
		}
		return p.b.Nullable(t), nil
	case p.peek().is("!"):
		p.next()
		return p.parsePrefixed()
	}
	t, err := p.parsePrimary()
	if err != nil {
		return t, err
	}
	return p.parsePostfixOn(t)
}

func (p *parser[T]) parsePostfixOn(t T) (T, error) {
	for p.peek().is("[") && p.peekAt(1).is("]") {
		p.pos += 2
		t = p.b.Array(t)
	}
	return t, nil
}

func (p *parser[T]) parsePrimary() (T, error) {
	var zero T
	tok := p.next()
	switch tok.kind {
	case tokString:
		return p.b.Literal(strconv.Quote(tok.value)), nil
	case tokNumber:
		return p.b.Literal(tok.value), nil
	case tokName:
		if tok.value == "function" && p.peek().is("(") {
			return p.parseFunction()
		}
		if p.peek().is("<") {
			args, err := p.parseTypeArgs()
			if err != nil {
				return zero, err
			}
			return p.applyGeneric(tok.value, args), nil
		}
		return p.b.NormalizeType(tok.value), nil
	case tokPunct:
		switch tok.value {
		case "(":
			t, err := p.parseUnion()
			if err != nil {
				return t, err
			}
			if err := p.expect(")"); err != nil {
				return zero, err
			}
			return t, nil
		case "*":
			return p.b.NormalizeType("*"), nil
		case "{":
			return p.parseStructure()
		}
	}
	return zero, errors.Wrapf(ErrSyntax, "unexpected %s at offset %d", tok, tok.pos)
}

func (p *parser[T]) parseTypeArgs() ([]T, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	var args []T
	for {
		t, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser[T]) applyGeneric(name string, args []T) T {
	switch {
	case name == "Array" && len(args) == 1:
		return p.b.Array(args[0])
	case name == "Object" && len(args) == 1:
		return p.b.Object(p.b.NormalizeType("string"), args[0])
	case name == "Object" && len(args) == 2:
		return p.b.Object(args[0], args[1])
	case name == "Promise" && len(args) == 1:
		return p.b.Promise(args[0])
	case name == "Set" && len(args) == 1:
		return p.b.Set(args[0])
	}
	return p.b.TypeApplication(p.b.SimpleType(name), args)
}

func (p *parser[T]) parseFunction() (T, error) {
	var zero T
	var sig FunctionSig[T]
	if err := p.expect("("); err != nil {
		return zero, err
	}
	for !p.peek().is(")") {
		tok := p.peek()
		switch {
		case tok.kind == tokName && tok.value == "this" && p.peekAt(1).is(":"):
			p.pos += 2
			t, err := p.parseUnion()
			if err != nil {
				return zero, err
			}
			sig.This, sig.HasThis = t, true
		case tok.kind == tokName && tok.value == "new" && p.peekAt(1).is(":"):
			p.pos += 2
			t, err := p.parseUnion()
			if err != nil {
				return zero, err
			}
			sig.New, sig.HasNew = t, true
		default:
			t, mods, err := p.parseModified()
			if err != nil {
				return zero, err
			}
			sig.Params = append(sig.Params, Param[T]{Type: t, Optional: mods.optional, Repeatable: mods.repeatable})
		}
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return zero, err
	}
	if p.accept(":") {
		t, err := p.parsePrefixed()
		if err != nil {
			return zero, err
		}
		sig.Return, sig.HasReturn = t, true
	}
	return p.b.Function(sig), nil
}

func (p *parser[T]) parseStructure() (T, error) {
	var zero T
	var fields []Field[T]
	for !p.peek().is("}") {
		tok := p.next()
		if tok.kind != tokName && tok.kind != tokString {
			return zero, errors.Wrapf(ErrSyntax, "expected field name but found %s at offset %d", tok, tok.pos)
		}
		f := Field[T]{Name: tok.value}
		f.Optional = p.accept("?")
		if p.accept(":") {
			t, mods, err := p.parseModified()
			if err != nil {
				return zero, err
			}
			f.Type = t
			f.Optional = f.Optional || mods.optional
		} else {
			f.Type = p.b.NormalizeType("any")
		}
		fields = append(fields, f)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect("}"); err != nil {
		return zero, err
	}
	return p.b.Structure(fields), nil
}
