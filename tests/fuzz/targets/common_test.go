package targets

import (
	"context"
	"io"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/decisivestrike/uncommon-lisp/internal/evaluator"
)

// corpusDir holds the functional test programs.
const corpusDir = "../../../pkg/cli/testdata"

func init() {
	// Cap fuzz worker parallelism unless the caller explicitly set GOMAXPROCS.
	if _, ok := os.LookupEnv("GOMAXPROCS"); !ok {
		max := runtime.NumCPU()
		if max > 4 {
			max = 4
		}
		if runtime.GOMAXPROCS(0) > max {
			runtime.GOMAXPROCS(max)
		}
	}
}

// newFuzzEvaluator returns an evaluator with a low depth limit, a deadline
// and discarded output.
func newFuzzEvaluator(t *testing.T) *evaluator.Evaluator {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	ev := evaluator.New()
	ev.Out = io.Discard
	ev.MaxDepth = 200
	ev.Context = ctx
	return ev
}
