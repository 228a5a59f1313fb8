// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package pep508

import (
	"fmt"
	"strings"

	"github.com/datawire/renderspec/pkg/python/pep440"
)

// Environment is the set of variables that environment markers are evaluated
// against; see the PEP 508 environment markers section for the variable names.
type Environment map[string]string

// Marker is a parsed environment marker expression, e.g.
//
//	python_version >= "3" and sys_platform != "win32"
type Marker struct {
	str  string
	expr markerExpr
}

// ParseMarker parses an environment marker expression.
func ParseMarker(str string) (*Marker, error) {
	lex := &markerLexer{input: str}
	expr, err := parseOr(lex)
	if err != nil {
		return nil, fmt.Errorf("pep508.ParseMarker: %q: %w", str, err)
	}
	if tok := lex.next(); tok.kind != tokEOF {
		return nil, fmt.Errorf("pep508.ParseMarker: %q: unexpected %q", str, tok.text)
	}
	return &Marker{str: str, expr: expr}, nil
}

func (m Marker) String() string { return m.str }

// Evaluate evaluates the marker against the given environment.  Referencing a
// variable that the environment does not define is an error.
func (m Marker) Evaluate(env Environment) (bool, error) {
	ret, err := m.expr.eval(env)
	if err != nil {
		return false, fmt.Errorf("evaluate marker %q: %w", m.str, err)
	}
	return ret, nil
}

type markerExpr interface {
	eval(env Environment) (bool, error)
}

type orExpr []markerExpr

func (e orExpr) eval(env Environment) (bool, error) {
	for _, sub := range e {
		ok, err := sub.eval(env)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

type andExpr []markerExpr

func (e andExpr) eval(env Environment) (bool, error) {
	for _, sub := range e {
		ok, err := sub.eval(env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

type cmpExpr struct {
	lhs markerValue
	op  string // "==", "!=", "<=", ">=", "<", ">", "~=", "in", "not in"
	rhs markerValue
}

type markerValue struct {
	isVar bool
	text  string
}

func (v markerValue) resolve(env Environment) (string, error) {
	if !v.isVar {
		return v.text, nil
	}
	val, ok := env[v.text]
	if !ok {
		return "", fmt.Errorf("undefined environment marker variable: %q", v.text)
	}
	return val, nil
}

func (e cmpExpr) eval(env Environment) (bool, error) {
	lhs, err := e.lhs.resolve(env)
	if err != nil {
		return false, err
	}
	rhs, err := e.rhs.resolve(env)
	if err != nil {
		return false, err
	}
	switch e.op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	}

	// Use PEP 440 ordering when both operands parse as versions (the
	// packaging library's behavior); fall back to plain string ordering.
	lVer, lErr := pep440.ParseVersion(lhs)
	rVer, rErr := pep440.ParseVersion(rhs)
	if lErr == nil && rErr == nil {
		if e.op == "~=" {
			clause := pep440.SpecifierClause{CmpOp: pep440.CmpOpCompatible, Version: *rVer}
			return clause.Match(*lVer), nil
		}
		return cmpToBool(e.op, lVer.Cmp(*rVer))
	}
	if e.op == "~=" {
		return false, fmt.Errorf("operator %q needs PEP 440 versions (got %q, %q)", e.op, lhs, rhs)
	}
	return cmpToBool(e.op, strings.Compare(lhs, rhs))
}

func cmpToBool(op string, d int) (bool, error) {
	switch op {
	case "==":
		return d == 0, nil
	case "!=":
		return d != 0, nil
	case "<=":
		return d <= 0, nil
	case ">=":
		return d >= 0, nil
	case "<":
		return d < 0, nil
	case ">":
		return d > 0, nil
	default:
		return false, fmt.Errorf("invalid comparison operator: %q", op)
	}
}

// lexer ///////////////////////////////////////////////////////////////////////

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
}

type markerLexer struct {
	input string
	pos   int
	saved *token
}

func (l *markerLexer) peek() token {
	if l.saved == nil {
		tok := l.lex()
		l.saved = &tok
	}
	return *l.saved
}

func (l *markerLexer) next() token {
	tok := l.peek()
	l.saved = nil
	return tok
}

func (l *markerLexer) lex() token {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF}
	}
	c := l.input[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "("}
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")"}
	case c == '\'' || c == '"':
		end := strings.IndexByte(l.input[l.pos+1:], c)
		if end < 0 {
			return token{kind: tokEOF, text: l.input[l.pos:]}
		}
		text := l.input[l.pos+1 : l.pos+1+end]
		l.pos += end + 2
		return token{kind: tokString, text: text}
	case strings.ContainsRune("<>=!~", rune(c)):
		op := string(c)
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			op += "="
		}
		l.pos += len(op)
		return token{kind: tokOp, text: op}
	default:
		start := l.pos
		for l.pos < len(l.input) && (isAlnum(l.input[l.pos]) || l.input[l.pos] == '_' || l.input[l.pos] == '.') {
			l.pos++
		}
		if l.pos == start {
			l.pos++ // make progress on garbage; the parser will reject it
		}
		return token{kind: tokIdent, text: l.input[start:l.pos]}
	}
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// parser //////////////////////////////////////////////////////////////////////

func parseOr(lex *markerLexer) (markerExpr, error) {
	ret := orExpr{}
	for {
		sub, err := parseAnd(lex)
		if err != nil {
			return nil, err
		}
		ret = append(ret, sub)
		if tok := lex.peek(); tok.kind == tokIdent && tok.text == "or" {
			lex.next()
			continue
		}
		break
	}
	if len(ret) == 1 {
		return ret[0], nil
	}
	return ret, nil
}

func parseAnd(lex *markerLexer) (markerExpr, error) {
	ret := andExpr{}
	for {
		sub, err := parseAtom(lex)
		if err != nil {
			return nil, err
		}
		ret = append(ret, sub)
		if tok := lex.peek(); tok.kind == tokIdent && tok.text == "and" {
			lex.next()
			continue
		}
		break
	}
	if len(ret) == 1 {
		return ret[0], nil
	}
	return ret, nil
}

func parseAtom(lex *markerLexer) (markerExpr, error) {
	if lex.peek().kind == tokLParen {
		lex.next()
		sub, err := parseOr(lex)
		if err != nil {
			return nil, err
		}
		if tok := lex.next(); tok.kind != tokRParen {
			return nil, fmt.Errorf("expected ')', got %q", tok.text)
		}
		return sub, nil
	}

	lhs, err := parseValue(lex)
	if err != nil {
		return nil, err
	}
	var op string
	switch tok := lex.next(); {
	case tok.kind == tokOp:
		op = tok.text
	case tok.kind == tokIdent && tok.text == "in":
		op = "in"
	case tok.kind == tokIdent && tok.text == "not":
		if tok2 := lex.next(); tok2.kind != tokIdent || tok2.text != "in" {
			return nil, fmt.Errorf("expected 'in' after 'not', got %q", tok2.text)
		}
		op = "not in"
	default:
		return nil, fmt.Errorf("expected comparison operator, got %q", tok.text)
	}
	rhs, err := parseValue(lex)
	if err != nil {
		return nil, err
	}
	return cmpExpr{lhs: lhs, op: op, rhs: rhs}, nil
}

func parseValue(lex *markerLexer) (markerValue, error) {
	switch tok := lex.next(); tok.kind {
	case tokString:
		return markerValue{text: tok.text}, nil
	case tokIdent:
		if tok.text == "" || tok.text == "and" || tok.text == "or" || tok.text == "in" || tok.text == "not" {
			return markerValue{}, fmt.Errorf("expected value, got %q", tok.text)
		}
		return markerValue{isVar: true, text: tok.text}, nil
	default:
		return markerValue{}, fmt.Errorf("expected value, got %q", tok.text)
	}
}
