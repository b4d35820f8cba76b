package sandbox

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// stdlibFuncs implements the small slice of each allowlisted package that
// generated code snippets are realistically expected to reach for. This
// is deliberately not exhaustive — it grows as real snippets need more of
// a package, rather than mirroring the package wholesale.
var stdlibFuncs = map[string]func(args []any) (any, error){
	"math.Sqrt": func(a []any) (any, error) { return unaryFloat(a, math.Sqrt) },
	"math.Abs":  func(a []any) (any, error) { return unaryFloat(a, math.Abs) },
	"math.Floor": func(a []any) (any, error) { return unaryFloat(a, math.Floor) },
	"math.Ceil": func(a []any) (any, error) { return unaryFloat(a, math.Ceil) },
	"math.Max": func(a []any) (any, error) { return binaryFloat(a, math.Max) },
	"math.Min": func(a []any) (any, error) { return binaryFloat(a, math.Min) },
	"math.Pow": func(a []any) (any, error) { return binaryFloat(a, math.Pow) },

	"strings.ToUpper": func(a []any) (any, error) { return unaryString(a, strings.ToUpper) },
	"strings.ToLower": func(a []any) (any, error) { return unaryString(a, strings.ToLower) },
	"strings.TrimSpace": func(a []any) (any, error) { return unaryString(a, strings.TrimSpace) },
	"strings.Contains": func(a []any) (any, error) {
		s, sub, err := twoStrings(a)
		if err != nil {
			return nil, err
		}
		return strings.Contains(s, sub), nil
	},
	"strings.Split": func(a []any) (any, error) {
		s, sep, err := twoStrings(a)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, sep)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	},
	"strings.Join": func(a []any) (any, error) {
		if len(a) != 2 {
			return nil, fmt.Errorf("strings.Join expects 2 arguments")
		}
		items, ok := a[0].([]any)
		if !ok {
			return nil, fmt.Errorf("strings.Join: first argument must be a list")
		}
		sep, ok := a[1].(string)
		if !ok {
			return nil, fmt.Errorf("strings.Join: second argument must be a string")
		}
		parts := make([]string, len(items))
		for i, v := range items {
			parts[i] = fmt.Sprintf("%v", v)
		}
		return strings.Join(parts, sep), nil
	},
	"strings.Replace": func(a []any) (any, error) {
		if len(a) != 3 {
			return nil, fmt.Errorf("strings.Replace expects 3 arguments")
		}
		s, _ := a[0].(string)
		old, _ := a[1].(string)
		nw, _ := a[2].(string)
		return strings.ReplaceAll(s, old, nw), nil
	},

	"fmt.Sprintf": func(a []any) (any, error) {
		if len(a) == 0 {
			return nil, fmt.Errorf("fmt.Sprintf expects at least a format string")
		}
		format, ok := a[0].(string)
		if !ok {
			return nil, fmt.Errorf("fmt.Sprintf: first argument must be a string")
		}
		return fmt.Sprintf(format, a[1:]...), nil
	},

	"strconv.Itoa": func(a []any) (any, error) {
		n, ok := toInt(first(a))
		if !ok {
			return nil, fmt.Errorf("strconv.Itoa expects an integer")
		}
		return strconv.Itoa(int(n)), nil
	},
	"strconv.Atoi": func(a []any) (any, error) {
		s, ok := first(a).(string)
		if !ok {
			return nil, fmt.Errorf("strconv.Atoi expects a string")
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		return int64(n), nil
	},
	"strconv.FormatFloat": func(a []any) (any, error) {
		f, ok := toFloat(first(a))
		if !ok {
			return nil, fmt.Errorf("strconv.FormatFloat expects a number")
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	},

	"time.Now": func(a []any) (any, error) { return time.Now(), nil },

	"sort.Strings": func(a []any) (any, error) {
		items, ok := first(a).([]any)
		if !ok {
			return nil, fmt.Errorf("sort.Strings expects a list")
		}
		strs := make([]string, len(items))
		for i, v := range items {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("sort.Strings: non-string element at index %d", i)
			}
			strs[i] = s
		}
		sort.Strings(strs)
		out := make([]any, len(strs))
		for i, s := range strs {
			out[i] = s
		}
		return out, nil
	},
}

var stdlibConsts = map[string]any{
	"math.Pi": math.Pi,
}

func first(a []any) any {
	if len(a) == 0 {
		return nil
	}
	return a[0]
}

func unaryFloat(a []any, fn func(float64) float64) (any, error) {
	f, ok := toFloat(first(a))
	if !ok {
		return nil, fmt.Errorf("expected a numeric argument")
	}
	return fn(f), nil
}

func binaryFloat(a []any, fn func(float64, float64) float64) (any, error) {
	if len(a) != 2 {
		return nil, fmt.Errorf("expected 2 numeric arguments")
	}
	x, ok1 := toFloat(a[0])
	y, ok2 := toFloat(a[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("expected 2 numeric arguments")
	}
	return fn(x, y), nil
}

func unaryString(a []any, fn func(string) string) (any, error) {
	s, ok := first(a).(string)
	if !ok {
		return nil, fmt.Errorf("expected a string argument")
	}
	return fn(s), nil
}

func twoStrings(a []any) (string, string, error) {
	if len(a) != 2 {
		return "", "", fmt.Errorf("expected 2 string arguments")
	}
	s, ok1 := a[0].(string)
	sub, ok2 := a[1].(string)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("expected 2 string arguments")
	}
	return s, sub, nil
}
