package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/decisivestrike/uncommon-lisp/internal/config"
	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/evaluator"
	"github.com/decisivestrike/uncommon-lisp/internal/history"
	"github.com/decisivestrike/uncommon-lisp/internal/parser"
	"github.com/decisivestrike/uncommon-lisp/internal/prettyprinter"
)

const replHelp = `Enter forms such as (add 1 2). Unclosed forms continue on the next line.

  quit, :quit, :exit   leave
  :help                show this text
  :reset               forget all variables and functions
  :vars                list variables and functions
  :load <file>         run a file in this session
  :history [n]         show the last n inputs (default 20)
`

const historyPreload = 500

// lineReader is the part of liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	app     *app
	in      lineReader
	printer diagnostics.Printer
	eval    *evaluator.Evaluator
	scope   *evaluator.Scope
	store   *history.Store
	session string
}

func (a *app) runRepl() int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r := a.newRepl(ln)
	if r.store != nil {
		defer r.store.Close()
		r.preloadHistory(ln)
	}
	fmt.Fprintf(a.stdout, "ul %s. Type :help for help, %s to leave.\n", config.Version, config.QuitCommand)
	return r.loop()
}

func (a *app) newRepl(in lineReader) *repl {
	r := &repl{
		app:     a,
		in:      in,
		printer: diagnostics.Printer{Color: diagnostics.ColorEnabled(fileOf(a.stdout), a.cfg.Repl.Color)},
		eval:    a.newEvaluator(),
		scope:   evaluator.NewScope(),
		session: history.NewSession(),
	}
	if a.cfg.HistoryEnabled() {
		store, err := history.Open(a.cfg.History.Path)
		if err != nil {
			a.log.logWarnf("transcript disabled: %v", err)
		} else {
			r.store = store
		}
	}
	a.log.logDebugf("session %s", r.session)
	return r
}

func (r *repl) preloadHistory(ln *liner.State) {
	entries, err := r.store.Recent(context.Background(), historyPreload)
	if err != nil {
		r.app.log.logWarnf("loading history: %v", err)
		return
	}
	for _, e := range entries {
		ln.AppendHistory(e.Source)
	}
}

func (r *repl) loop() int {
	for {
		code, ok := readByParseProbe(r.in, r.app.cfg.Repl.Prompt, r.app.cfg.Repl.Continuation)
		if !ok {
			fmt.Fprintln(r.app.stdout)
			return 0
		}
		input := strings.TrimSpace(code)
		if input == "" {
			continue
		}
		r.in.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if input == config.QuitCommand || strings.HasPrefix(input, ":") {
			if quit := r.command(input); quit {
				return 0
			}
			continue
		}
		r.execute(code)
	}
}

// readByParseProbe reads lines until they parse or fail for a reason other
// than an unclosed form.
func readByParseProbe(ln lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := parser.Parse(src); perr != nil && diagnostics.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// command runs a colon command and reports whether the REPL should exit.
func (r *repl) command(input string) bool {
	fields := strings.Fields(input)
	out := r.app.stdout
	switch fields[0] {
	case config.QuitCommand, ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprint(out, replHelp)
		fmt.Fprintf(out, "\nbuiltins: %s\n", strings.Join(evaluator.BuiltinNames(), " "))
	case ":reset":
		r.scope = evaluator.NewScope()
		fmt.Fprintln(out, "scope cleared")
	case ":vars":
		for _, name := range r.scope.VariableNames() {
			val, _ := r.scope.Get(name)
			fmt.Fprintf(out, "%s = %s\n", name, prettyprinter.Source(val))
		}
		for _, name := range r.scope.FunctionNames() {
			fn, _ := r.scope.Function(name)
			params := make([]string, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = p.Name
			}
			fmt.Fprintf(out, "(func %s [%s] %s)\n", name, strings.Join(params, " "), prettyprinter.Source(fn.Body))
		}
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: :load <file>")
			return false
		}
		src, err := os.ReadFile(fields[1])
		if err != nil {
			r.app.log.logErrf(ErrSystem, "reading %s: %v", fields[1], err)
			return false
		}
		r.execute(string(src))
	case ":history":
		r.showHistory(fields[1:])
	default:
		fmt.Fprintf(out, "unknown command %s. Type :help for help.\n", fields[0])
	}
	return false
}

func (r *repl) showHistory(args []string) {
	if r.store == nil {
		r.app.log.logWarnf("no transcript store is open")
		return
	}
	n := 20
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			fmt.Fprintln(r.app.stdout, "usage: :history [n]")
			return
		}
		n = v
	}
	entries, err := r.store.Recent(context.Background(), n)
	if err != nil {
		r.app.log.logWarnf("%v", err)
		return
	}
	printEntries(r.app.stdout, entries)
}

// execute evaluates every complete form of src in the session scope and
// echoes each value. A runtime error ends that form only; a syntax error
// is reported after the forms before it have run.
func (r *repl) execute(src string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	r.eval.Context = ctx

	forms, perr := parser.Parse(src)
	for _, form := range forms {
		source := prettyprinter.Source(form)
		val, err := r.eval.Evaluate(form, r.scope)
		if err != nil {
			fmt.Fprintln(r.app.stderr, r.printer.Error(err))
			r.record(source, err.Error(), true)
			continue
		}
		fmt.Fprintln(r.app.stdout, r.printer.Value(val.String()))
		r.record(source, val.String(), false)
	}
	if perr != nil {
		fmt.Fprintln(r.app.stderr, r.printer.Error(perr))
		r.record(strings.TrimSpace(src), perr.Error(), true)
	}
}

func (r *repl) record(source, result string, isError bool) {
	if r.store == nil {
		return
	}
	if err := r.store.Record(context.Background(), r.session, source, result, isError); err != nil {
		r.app.log.logWarnf("recording history: %v", err)
	}
}
