// The lamina command: run programs, evaluate one-liners, or start a REPL.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	lamina "github.com/lamina-lang/lamina"
)

const (
	appName     = "lamina"
	historyFile = ".lamina_history"
	promptMain  = "==> "
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

var (
	flagSteps int
	flagAST   bool
)

func main() {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Interpreter for the Lamina typed lambda calculus",
		Version:       lamina.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().IntVar(&flagSteps, "steps", 0, "advisory evaluation step budget (0 = unlimited)")
	root.PersistentFlags().BoolVar(&flagAST, "ast", false, "dump the parsed AST before evaluating")

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a program from a file or standard input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}
			os.Exit(interpretOnce(src))
			return nil
		},
	}

	evalCmd := &cobra.Command{
		Use:   "eval <program>",
		Short: "Evaluate a program given on the command line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(interpretOnce(args[0]))
			return nil
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(runRepl())
			return nil
		},
	}

	root.AddCommand(runCmd, evalCmd, replCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(2)
	}
}

func readSource(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read standard input: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", args[0], err)
	}
	return string(b), nil
}

// interpretOnce runs one program and returns the process exit code per
// the CLI contract (0 value, 1 parse error, 2 type error, 3 stuck).
func interpretOnce(src string) int {
	ip := lamina.New()
	ip.MaxSteps = flagSteps

	if flagAST {
		if term, err := lamina.Parse(src, ip.Catalog()); err == nil {
			fmt.Fprintln(os.Stderr, lamina.DumpTerm(term, 0))
		}
	}

	res, err := ip.Interpret(src)
	line, code := lamina.Diagnose(res, err)
	if code == lamina.ExitOK {
		fmt.Println(line)
	} else {
		fmt.Fprintln(os.Stderr, line)
	}
	return code
}

func runRepl() int {
	fmt.Printf("Lamina %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", lamina.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ip := lamina.New()
	ip.MaxSteps = flagSteps

	for {
		code, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		res, err := ip.Interpret(code)
		line, exit := lamina.Diagnose(res, err)
		switch exit {
		case lamina.ExitOK:
			fmt.Println(blue(res.Value) + " : " + green(res.Type.String()))
		default:
			fmt.Fprintln(os.Stderr, red(line))
		}
		ln.AppendHistory(code)
	}
}
