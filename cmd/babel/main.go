package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/babel-lang/babel/pkg/codegen"
	"github.com/babel-lang/babel/pkg/grammar"
	"github.com/babel-lang/babel/pkg/lr"
	"github.com/babel-lang/babel/pkg/manifest"
	"github.com/babel-lang/babel/pkg/parser"
	"github.com/spf13/cobra"
)

var version = "0.0.0-pre-alpha"

// Debug flags for dumping intermediate stages
var (
	emitTokens bool
	emitTree   bool
	outputPath string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "babel [file]",
		Short: "babel compiles Babel source to LLVM IR",
		Long: `babel compiles a Babel source file to a textual LLVM IR module.
Run without arguments it starts an interactive session that compiles
each input as it is entered.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return repl(in, out, errOut)
			}
			return compileFile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&emitTokens, "emit-tokens", false, "Dump the token stream and stop")
	rootCmd.Flags().BoolVar(&emitTree, "emit-tree", false, "Dump the concrete parse tree and stop")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write LLVM IR to this file instead of <stem>.ll")

	rootCmd.AddCommand(newVerifyCmd(out, errOut))

	return rootCmd
}

// outputFilename returns the IR output path for a source file.
// input.bl -> input.ll
func outputFilename(filename string) string {
	ext := ".bl"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".ll"
	}
	return filename + ".ll"
}

func compileFile(filename string, out, errOut io.Writer) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "babel: error reading %s: %v\n", filename, err)
		return err
	}
	src := string(content)

	p, err := parser.New()
	if err != nil {
		fmt.Fprintf(errOut, "babel: %v\n", err)
		return err
	}

	if emitTokens {
		for _, tok := range p.Tokenize(src) {
			fmt.Fprintf(out, "%s %q\n", tok.Type, tok.Value)
		}
		return nil
	}

	if emitTree {
		tree, err := p.Tree(src)
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", filename, err)
			return err
		}
		fmt.Fprint(out, tree.String())
		return nil
	}

	root, err := p.Parse(src)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", filename, err)
		return err
	}

	module, err := codegen.New().EmitRoot(root)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", filename, err)
		return err
	}

	output := outputPath
	if output == "" {
		output = outputFilename(filename)
	}
	if err := os.WriteFile(output, []byte(module.String()), 0644); err != nil {
		fmt.Fprintf(errOut, "babel: error writing %s: %v\n", output, err)
		return err
	}
	return nil
}

// incomplete reports whether a parse failure just means the input stopped
// early, so the session should keep reading lines.
func incomplete(err error) bool {
	var se *lr.SyntaxError
	return errors.As(err, &se) && se.Found == grammar.End
}

// repl reads lines until EOF, compiling each complete input and printing
// the resulting module. Multi-line constructs are buffered until they
// parse. EOF ends the session without error.
func repl(in io.Reader, out, errOut io.Writer) error {
	fmt.Fprintf(out, "Babel %s\n", version)

	p, err := parser.New()
	if err != nil {
		fmt.Fprintf(errOut, "babel: %v\n", err)
		return err
	}

	var buf strings.Builder
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, ">>> ")
	for scanner.Scan() {
		line := scanner.Text()
		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			fmt.Fprint(out, ">>> ")
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')

		root, err := p.Parse(buf.String())
		if err != nil {
			if incomplete(err) {
				fmt.Fprint(out, "... ")
				continue
			}
			fmt.Fprintf(errOut, "%v\n", err)
		} else if module, err := codegen.New().EmitRoot(root); err != nil {
			fmt.Fprintf(errOut, "%v\n", err)
		} else {
			fmt.Fprint(out, module.String())
		}
		buf.Reset()
		fmt.Fprint(out, ">>> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func newVerifyCmd(out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [dir]",
		Short: "Check a babel.yaml package manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			m, err := manifest.Load(dir)
			if err != nil {
				fmt.Fprintf(errOut, "babel: %v\n", err)
				return err
			}
			if err := m.Verify(dir); err != nil {
				fmt.Fprintf(errOut, "babel: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "%s %s verified\n", m.Name, m.Version)
			return nil
		},
	}
}
