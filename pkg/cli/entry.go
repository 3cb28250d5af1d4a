package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/config"
	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/evaluator"
	"github.com/decisivestrike/uncommon-lisp/internal/history"
	"github.com/decisivestrike/uncommon-lisp/internal/lexer"
	"github.com/decisivestrike/uncommon-lisp/internal/parser"
	"github.com/decisivestrike/uncommon-lisp/internal/pipeline"
	"github.com/decisivestrike/uncommon-lisp/internal/prettyprinter"
	"github.com/decisivestrike/uncommon-lisp/internal/server"
)

const usage = `Using: ul <filename>

  ul                      start the REPL (or run piped stdin)
  ul <file>               run a program
  ul -e <source>          run a snippet and print its last value
  ul tokenize [-tree] <file>
                          print the parsed top-level forms
  ul fmt [-w N] <file>    print the program as formatted source
  ul serve [-addr A]      run the gRPC evaluation service
                          (-timeout, -idle, -max-sessions)
  ul history [-n N]       list recent REPL inputs
  ul help | version

  --debug                 log host decisions to stderr
`

// app is one invocation of the command line.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	log    *logger
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	debug := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "-debug" || arg == "--debug" {
			debug = true
			continue
		}
		rest = append(rest, arg)
	}

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	a.log = &logger{w: stderr, debug: debug}

	wd, _ := os.Getwd()
	cfg, err := config.Resolve(wd)
	if err != nil {
		return a.log.logErrf(ErrSystem, "%v", err)
	}
	a.cfg = cfg
	a.log.color = diagnostics.ColorEnabled(fileOf(stderr), cfg.Repl.Color)

	if len(rest) == 0 {
		if f := fileOf(stdin); f != nil && isatty.IsTerminal(f.Fd()) {
			a.log.logDebugf("stdin is a terminal, starting the REPL")
			return a.runRepl()
		}
		a.log.logDebugf("stdin is not a terminal, running it as a program")
		src, err := io.ReadAll(stdin)
		if err != nil {
			return a.log.logErrf(ErrSystem, "reading stdin: %v", err)
		}
		return a.runSource(string(src), "", false)
	}

	switch rest[0] {
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	case "version", "-v", "-version", "--version":
		fmt.Fprintln(stdout, "ul "+config.Version)
		return 0
	case "-e":
		if len(rest) != 2 {
			return a.usageError("-e takes exactly one source argument")
		}
		return a.runSource(rest[1], "", true)
	case "tokenize":
		return a.runTokenize(rest[1:])
	case "fmt":
		return a.runFormat(rest[1:])
	case "serve":
		return a.runServe(rest[1:])
	case "history":
		return a.runHistory(rest[1:])
	}

	if len(rest) != 1 {
		return a.usageError("unexpected arguments %q", rest[1:])
	}
	src, err := os.ReadFile(rest[0])
	if err != nil {
		return a.log.logErrf(ErrSystem, "reading %s: %v", rest[0], err)
	}
	return a.runSource(string(src), rest[0], false)
}

func (a *app) usageError(format string, args ...interface{}) int {
	a.log.logErrf(ErrSystem, format, args...)
	fmt.Fprint(a.stderr, usage)
	return ErrSystem
}

func fileOf(v interface{}) *os.File {
	f, _ := v.(*os.File)
	return f
}

func (a *app) newEvaluator() *evaluator.Evaluator {
	ev := evaluator.New()
	ev.Out = a.stdout
	ev.MaxDepth = a.cfg.Eval.MaxDepth
	return ev
}

// runSource evaluates a whole program. Runtime errors are reported per
// form and the run goes on; a syntax error ends the batch after the forms
// that parsed before it.
func (a *app) runSource(src, file string, echoLast bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ev := a.newEvaluator()
	ev.Context = ctx

	initialContext := pipeline.NewPipelineContext(src)
	initialContext.FilePath = file
	processingPipeline := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&evaluator.EvaluatorProcessor{Evaluator: ev},
	)
	start := time.Now()
	finalContext := processingPipeline.Run(initialContext)
	a.log.logDebugf("evaluated %d forms in %s", len(finalContext.Results), time.Since(start))

	code := 0
	for _, err := range finalContext.RuntimeErrors() {
		a.log.logError(err)
		code = ErrRuntime
	}
	if finalContext.ParseError != nil {
		a.log.logError(finalContext.ParseError)
		code = ErrSyntax
	}
	if echoLast && code == 0 {
		if val := finalContext.LastValue(); val != nil {
			fmt.Fprintln(a.stdout, val.String())
		}
	}
	return code
}

func (a *app) parseFile(fs *flag.FlagSet, args []string) (*ast.Program, *diagnostics.ParseError, int) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, ErrSystem
	}
	if fs.NArg() != 1 {
		return nil, nil, a.usageError("%s takes one file", fs.Name())
	}
	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, a.log.logErrf(ErrSystem, "reading %s: %v", path, err)
	}
	ctx := pipeline.NewPipelineContext(string(src))
	ctx.FilePath = path
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	return ctx.Program, ctx.ParseError, 0
}

// runTokenize prints each parsed top-level form, one per line, in the
// canonical rendering. With -tree it prints the syntax tree instead.
func (a *app) runTokenize(args []string) int {
	fs := flag.NewFlagSet("tokenize", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	tree := fs.Bool("tree", false, "print the syntax tree")
	program, perr, code := a.parseFile(fs, args)
	if code != 0 {
		return code
	}
	if *tree {
		tp := prettyprinter.NewTreePrinter()
		program.Accept(tp)
		fmt.Fprint(a.stdout, tp.String())
	} else {
		for _, form := range program.Forms {
			fmt.Fprintln(a.stdout, form.String())
		}
	}
	if perr != nil {
		a.log.logError(perr)
		return ErrSyntax
	}
	return 0
}

// runFormat prints a program as source text. Comments and text between
// forms are not kept.
func (a *app) runFormat(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	width := fs.Int("w", 100, "line width")
	program, perr, code := a.parseFile(fs, args)
	if code != 0 {
		return code
	}
	if perr != nil {
		a.log.logError(perr)
		return ErrSyntax
	}
	cp := prettyprinter.NewCodePrinterWithWidth(*width)
	program.Accept(cp)
	fmt.Fprint(a.stdout, cp.String())
	return 0
}

func (a *app) runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", a.cfg.Serve.Addr, "listen address")
	timeout := fs.Duration("timeout", 10*time.Second, "per-request evaluation limit")
	idle := fs.Duration("idle", 30*time.Minute, "drop sessions unused for this long (0 keeps them)")
	maxSessions := fs.Int("max-sessions", 1024, "live session cap, least recently used evicted first")
	if err := fs.Parse(args); err != nil {
		return ErrSystem
	}

	srv, err := server.New(
		server.WithMaxDepth(a.cfg.Eval.MaxDepth),
		server.WithTimeout(*timeout),
		server.WithSessionIdle(*idle),
		server.WithMaxSessions(*maxSessions),
		server.WithLogger(a.log.logDebugf),
	)
	if err != nil {
		return a.log.logErrf(ErrSystem, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(a.stdout, "serving %s on %s\n", server.ServiceName, *addr)
	if err := srv.Serve(ctx, *addr); err != nil {
		return a.log.logErrf(ErrSystem, "%v", err)
	}
	return 0
}

func (a *app) runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	n := fs.Int("n", 20, "number of entries")
	if err := fs.Parse(args); err != nil {
		return ErrSystem
	}
	if !a.cfg.HistoryEnabled() {
		a.log.logWarnf("history is disabled in the configuration")
		return 0
	}

	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return a.log.logErrf(ErrSystem, "%v", err)
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), *n)
	if err != nil {
		return a.log.logErrf(ErrSystem, "%v", err)
	}
	printEntries(a.stdout, entries)
	return 0
}

func printEntries(w io.Writer, entries []history.Entry) {
	for _, e := range entries {
		arrow := "=>"
		if e.IsError {
			arrow = "!!"
		}
		fmt.Fprintf(w, "%s  %s %s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Source, arrow, e.Result)
	}
}
