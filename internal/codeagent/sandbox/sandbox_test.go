package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterpreter() *Interpreter {
	return &Interpreter{
		Tools:    map[string]Callable{},
		Builtins: map[string]Callable{},
		State:    map[string]any{},
	}
}

func TestRunBareExpressionIsOutput(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`1 + 2`)
	assert.EqualValues(t, 3, res.Output)
	assert.False(t, res.IsFinalAnswer)
}

func TestRunAssignmentAndArithmetic(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`
x := 10
y := 3
x - y
`)
	assert.EqualValues(t, 7, res.Output)
}

func TestRunIfElse(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`
x := 5
if x > 3 {
	x = 100
} else {
	x = 0
}
x
`)
	assert.EqualValues(t, 100, res.Output)
}

func TestRunForLoop(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`
total := 0
for i := 0; i < 5; i++ {
	total += i
}
total
`)
	assert.EqualValues(t, 10, res.Output)
}

func TestRunToolCall(t *testing.T) {
	it := newInterpreter()
	it.Tools["double"] = func(args map[string]any) (any, error) {
		n, _ := toInt(args["value"])
		return n * 2, nil
	}
	res := it.Run(`double(21)`)
	assert.EqualValues(t, 42, res.Output)
}

func TestRunToolCallWithKwargsMap(t *testing.T) {
	it := newInterpreter()
	it.Tools["add"] = func(args map[string]any) (any, error) {
		a, _ := toInt(args["a"])
		b, _ := toInt(args["b"])
		return a + b, nil
	}
	res := it.Run(`add(map[string]any{"a": 1, "b": 2})`)
	assert.EqualValues(t, 3, res.Output)
}

func TestRunFinalAnswerShortCircuits(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`
final_answer("done")
1 + 1
`)
	require.True(t, res.IsFinalAnswer)
	assert.Equal(t, "done", res.Output)
}

func TestRunUnauthorizedImportRejected(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`os.Getenv("HOME")`)
	assert.False(t, res.IsFinalAnswer)
	assert.Contains(t, res.Logs, "Traceback")
}

func TestRunAuthorizedStdlibCall(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`strings.ToUpper("go")`)
	assert.Equal(t, "GO", res.Output)
}

func TestRunPrintCapturedInLogs(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`print("hello")`)
	assert.Contains(t, res.Logs, "hello")
}

func TestRunSyntaxErrorProducesTraceback(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`this is not valid go (((`)
	assert.Contains(t, res.Logs, "Traceback")
}

func TestMaxPrintOutputLengthTruncates(t *testing.T) {
	it := newInterpreter()
	it.MaxPrintOutputLength = 5
	res := it.Run(`print("abcdefghij")`)
	assert.Contains(t, res.Logs, "truncated")
}

func TestRunRangeOverSlice(t *testing.T) {
	it := newInterpreter()
	res := it.Run(`
total := 0
for _, v := range []int{1, 2, 3} {
	total += v
}
total
`)
	assert.EqualValues(t, 6, res.Output)
}
