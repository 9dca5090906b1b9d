package query

import "github.com/oxhq/blueprint-ls/core"

// TokenType enumerates the server's semantic-token legend (spec.md §4.9
// Semantic tokens).
type TokenType int

const (
	TokenKeyword TokenType = iota
	TokenVariable
	TokenType_ // identifiers inside @depends-on references ("type")
	TokenComment
	TokenString
)

// Type is the exported name for the "type" token kind.
const Type = TokenType_

// TokenModifier is a bitmask of declaration/definition modifiers.
type TokenModifier int

const (
	ModifierNone        TokenModifier = 0
	ModifierDeclaration TokenModifier = 1 << 0
	ModifierDefinition  TokenModifier = 1 << 1
)

// Token is one (line, char, length, tokenType, modifiers) tuple in
// document order.
type Token struct {
	Line      int
	Char      int
	Length    int
	Type      TokenType
	Modifiers TokenModifier
}

// SemanticTokens emits a variable token for each given symbol's
// declaration identifier and a type token spanning each of its
// @depends-on references, then recurses into its children: symbols are
// visited in the order given, each followed by its references and then
// its children. Keyword, comment and string tokens are not emitted here;
// the symbol table carries no spans for them.
func SemanticTokens(symbols []*core.Symbol) []Token {
	var out []Token
	var walk func(*core.Symbol)
	walk = func(sym *core.Symbol) {
		out = append(out, Token{
			Line: sym.NameLoc.Start.Line, Char: sym.NameLoc.Start.Col,
			Length: len(sym.Name), Type: TokenVariable, Modifiers: ModifierDeclaration | ModifierDefinition,
		})
		for _, ref := range sym.DependsOn {
			out = append(out, Token{
				Line: ref.Location.Start.Line, Char: ref.Location.Start.Col,
				Length: ref.Location.End.Col - ref.Location.Start.Col, Type: Type,
			})
		}
		for _, c := range sym.Children {
			walk(c)
		}
	}
	for _, s := range symbols {
		walk(s)
	}
	return out
}
