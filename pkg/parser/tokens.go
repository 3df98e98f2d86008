package parser

import "github.com/babel-lang/babel/pkg/lexer"

// Specs is the ordered token list for Babel source. The longest match wins;
// between matches of equal length the earlier entry wins, so floats come
// before integers and keywords before identifiers. Numeric patterns are
// deliberately permissive; digit validation happens in literal parsing so
// that 0b102 is reported as a bad literal instead of splitting into two
// tokens.
var Specs = []lexer.Spec{
	{Type: "COMMENT", Pattern: `#[^\n]*`},
	{Type: "NEWLINE", Pattern: `\r?\n`},

	{Type: "FLOATING_POINT", Pattern: `0[xX][0-9a-fA-F'_]+[pP][+-]?[0-9]+[HFDQ]?` +
		`|[0-9][0-9'_]*\.[0-9'_]*(?:[eE][+-]?[0-9]+)?[HFDQ]?` +
		`|[0-9][0-9'_]*[eE][+-]?[0-9]+[HFDQ]?` +
		`|[0-9][0-9'_]*[HFDQ]` +
		`|NaN\b|Inf\b`},
	{Type: "INTEGER", Pattern: `[0-9][0-9a-zA-Z'_]*`},
	{Type: "CHAR", Pattern: `'(?:\\.|[^'\\])'`},
	{Type: "STRING", Pattern: `"(?:\\.|[^"\\])*"`},

	{Type: "BOOL", Pattern: `(?:true|false)\b`},
	{Type: "NULL", Pattern: `null\b`},
	{Type: "LET", Pattern: `let\b`},
	{Type: "CONST", Pattern: `const\b`},
	{Type: "IF", Pattern: `if\b`},
	{Type: "THEN", Pattern: `then\b`},
	{Type: "ELIF", Pattern: `elif\b`},
	{Type: "ELSE", Pattern: `else\b`},
	{Type: "END", Pattern: `end\b`},
	{Type: "TASK", Pattern: `task\b`},
	{Type: "EXTERN", Pattern: `extern\b`},
	{Type: "GOTO", Pattern: `goto\b`},
	{Type: "LABEL", Pattern: `label\b`},
	{Type: "RETURN", Pattern: `return\b`},
	{Type: "BREAK", Pattern: `break\b`},
	{Type: "CONTINUE", Pattern: `continue\b`},
	{Type: "NOOP", Pattern: `noop\b`},
	{Type: "FALLTHROUGH", Pattern: `fallthrough\b`},

	{Type: "TYPE", Pattern: `(?:int8|int16|int32|int64|int128` +
		`|float16|float32|float64|float128` +
		`|cstring|bool|char|void|int|float)\b`},
	{Type: "CLASS", Pattern: `[A-Z][a-zA-Z0-9_]*`},
	{Type: "VAR", Pattern: `[a-z_][a-zA-Z0-9_]*`},

	{Type: "ARROW", Pattern: `->`},
	{Type: "INCREMENT", Pattern: `\+\+`},
	{Type: "DECREMENT", Pattern: `--`},
	{Type: "PLUS_ASSIGN", Pattern: `\+=`},
	{Type: "MINUS_ASSIGN", Pattern: `-=`},
	{Type: "STAR_ASSIGN", Pattern: `\*=`},
	{Type: "SLASH_ASSIGN", Pattern: `/=`},
	{Type: "PERCENT_ASSIGN", Pattern: `%=`},
	{Type: "SHL", Pattern: `<<`},
	{Type: "SHR", Pattern: `>>`},
	{Type: "LEQ", Pattern: `<=`},
	{Type: "GEQ", Pattern: `>=`},
	{Type: "EQ", Pattern: `==`},
	{Type: "NEQ", Pattern: `!=`},
	{Type: "OR", Pattern: `\|\|`},
	{Type: "AND", Pattern: `&&`},
	{Type: "XOR", Pattern: `\^\^`},
	{Type: "DSLASH", Pattern: `//`},

	{Type: "PLUS", Pattern: `\+`},
	{Type: "MINUS", Pattern: `-`},
	{Type: "STAR", Pattern: `\*`},
	{Type: "SLASH", Pattern: `/`},
	{Type: "PERCENT", Pattern: `%`},
	{Type: "PIPE", Pattern: `\|`},
	{Type: "AMP", Pattern: `&`},
	{Type: "CARET", Pattern: `\^`},
	{Type: "NOT", Pattern: `!`},
	{Type: "ASSIGN", Pattern: `=`},
	{Type: "LESS", Pattern: `<`},
	{Type: "GREATER", Pattern: `>`},
	{Type: "LPAREN", Pattern: `\(`},
	{Type: "RPAREN", Pattern: `\)`},
	{Type: "LBRACKET", Pattern: `\[`},
	{Type: "RBRACKET", Pattern: `\]`},
	{Type: "LBRACE", Pattern: `\{`},
	{Type: "RBRACE", Pattern: `\}`},
	{Type: "COLON", Pattern: `:`},
	{Type: "SEMICOLON", Pattern: `;`},
	{Type: "COMMA", Pattern: `,`},
	{Type: "DOT", Pattern: `\.`},
}
