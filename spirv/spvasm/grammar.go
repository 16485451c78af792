package spvasm

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes assembly text. Newlines are significant: every
// instruction sits on a line of its own.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "EOL", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "ID", Pattern: `%[\w.]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Float", Pattern: `[-+]?\d+\.\d*([eE][-+]?\d+)?`},
	// Enumerants such as the image dimension 2D start with a digit.
	{Name: "Enum", Pattern: `\d+D\b`},
	{Name: "Int", Pattern: `[-+]?(0[xX][0-9a-fA-F]+|\d+)`},
	{Name: "Ident", Pattern: `[A-Za-z_][\w|]*`},
	{Name: "Punct", Pattern: `=`},
})

// Module is a parsed assembly file.
type Module struct {
	Pos   lexer.Position
	Lines []*Line `( EOL | @@ EOL )*`
}

// Line is one instruction.
type Line struct {
	Pos      lexer.Position
	Result   *string    `( @ID "=" )?`
	Opcode   string     `@Ident`
	Operands []*Operand `@@*`
}

// Operand is one operand token. Exactly one field is set.
type Operand struct {
	Pos    lexer.Position
	ID     *string `  @ID`
	String *string `| @String`
	Float  *string `| @Float`
	Int    *string `| @Int`
	Word   *string `| @( Ident | Enum )`
}

var parser = participle.MustBuild[Module](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)
