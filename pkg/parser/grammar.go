package parser

// babelGrammar is the Babel surface grammar, one production per line. The
// expression ladder encodes precedence from disjunction down to atoms;
// statement separators are the SEMICOLONs synthesized by the lexer from
// newlines. A task header is always followed by a separator, so a pointer
// return type (whose trailing * suppresses semicolon insertion) needs an
// explicit ';'.
const babelGrammar = `
program -> statement_list

statement_list -> statement_list SEMICOLON statement
statement_list -> statement_list SEMICOLON
statement_list -> statement

statement -> assignment
statement -> expression
statement -> if_stmt
statement -> task_def
statement -> extern_task
statement -> goto_stmt
statement -> label_stmt
statement -> return_stmt
statement -> NOOP

assignment -> LET VAR annotation ASSIGN expression
assignment -> CONST VAR annotation ASSIGN expression
assignment -> target ASSIGN expression
assignment -> target PLUS_ASSIGN expression
assignment -> target MINUS_ASSIGN expression
assignment -> target STAR_ASSIGN expression
assignment -> target SLASH_ASSIGN expression
assignment -> target PERCENT_ASSIGN expression
assignment -> target INCREMENT
assignment -> target DECREMENT

annotation -> COLON type_spec
annotation -> ''

target -> STAR target
target -> primary

expression -> disjunction
disjunction -> disjunction OR contravalence
disjunction -> contravalence
contravalence -> contravalence XOR conjunction
contravalence -> conjunction
conjunction -> conjunction AND comparison
conjunction -> comparison
comparison -> comparison EQ bitwise_or
comparison -> comparison NEQ bitwise_or
comparison -> comparison LEQ bitwise_or
comparison -> comparison GEQ bitwise_or
comparison -> comparison LESS bitwise_or
comparison -> comparison GREATER bitwise_or
comparison -> bitwise_or
bitwise_or -> bitwise_or PIPE bitwise_xor
bitwise_or -> bitwise_xor
bitwise_xor -> bitwise_xor CARET bitwise_and
bitwise_xor -> bitwise_and
bitwise_and -> bitwise_and AMP shift_expression
bitwise_and -> shift_expression
shift_expression -> shift_expression SHL sum
shift_expression -> shift_expression SHR sum
shift_expression -> sum
sum -> sum PLUS term
sum -> sum MINUS term
sum -> term
term -> term STAR factor
term -> term SLASH factor
term -> term DSLASH factor
term -> term PERCENT factor
term -> factor
factor -> PLUS factor
factor -> MINUS factor
factor -> STAR factor
factor -> AMP factor
factor -> inversion
inversion -> NOT inversion
inversion -> primary
primary -> primary LBRACKET expression RBRACKET
primary -> LPAREN expression RPAREN
primary -> function_call
primary -> class_construction
primary -> atom

atom -> INTEGER
atom -> FLOATING_POINT
atom -> CHAR
atom -> STRING
atom -> BOOL
atom -> VAR

function_call -> VAR LPAREN arg_list RPAREN
function_call -> VAR LPAREN RPAREN
class_construction -> CLASS LPAREN arg_list RPAREN
class_construction -> CLASS LPAREN RPAREN
arg_list -> arg_list COMMA expression
arg_list -> expression

if_stmt -> IF expression THEN statement_list elif_chain END
elif_chain -> ELIF expression THEN statement_list elif_chain
elif_chain -> ELSE statement_list
elif_chain -> ''

task_def -> TASK task_header SEMICOLON statement_list END
task_def -> TASK task_header SEMICOLON END
task_header -> VAR LPAREN param_list RPAREN ARROW type_spec
task_header -> VAR LPAREN RPAREN ARROW type_spec
task_header -> VAR LPAREN param_list RPAREN
task_header -> VAR LPAREN RPAREN
extern_task -> EXTERN TASK task_header
param_list -> param_list COMMA param
param_list -> param
param -> VAR COLON type_spec

type_spec -> TYPE
type_spec -> type_spec STAR
type_spec -> CLASS LESS type_spec GREATER
type_spec -> CLASS LESS type_spec COMMA INTEGER GREATER

goto_stmt -> GOTO VAR
label_stmt -> LABEL VAR
return_stmt -> RETURN expression
return_stmt -> RETURN
`
