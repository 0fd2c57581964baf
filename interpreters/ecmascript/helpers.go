package ecmascript

import (
	"fmt"
	"math"
	"strings"

	"github.com/reflectometry/scattio/traj"

	"github.com/dop251/goja"
)

// helpers are the functions and constants available to every
// expression.
//
//	sprintf(format, args...)  printf-style formatting (see Sprintf)
//	sin cos tan asin acos atan atan2 sinh cosh tanh
//	exp log log10 sqrt pow floor ceil fabs hypot
//	degrees radians pi e
//	abs round min max int float str len
var helpers = map[string]interface{}{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"atan2": math.Atan2,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"log": func(x float64, base ...float64) float64 {
		if 0 < len(base) {
			return math.Log(x) / math.Log(base[0])
		}
		return math.Log(x)
	},
	"log10": math.Log10,
	"sqrt":  math.Sqrt,
	"pow":   math.Pow,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"fabs":  math.Abs,
	"abs":   math.Abs,
	"hypot": math.Hypot,
	"degrees": func(x float64) float64 {
		return x * 180 / math.Pi
	},
	"radians": func(x float64) float64 {
		return x * math.Pi / 180
	},
	"round": math.Round,
	"min":   math.Min,
	"max":   math.Max,
	"int": func(x float64) int64 {
		return int64(x)
	},
	"float": func(x float64) float64 {
		return x
	},
	"pi": math.Pi,
	"e":  math.E,
}

func setHelpers(o *goja.Runtime) error {
	for name, f := range helpers {
		if err := o.Set(name, f); err != nil {
			return err
		}
	}

	err := o.Set("sprintf", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(o.NewTypeError("sprintf needs a format"))
		}
		args := make([]traj.Value, 0, len(call.Arguments)-1)
		for _, x := range call.Arguments[1:] {
			v, err := fromJS(x)
			if err != nil {
				panic(o.NewGoError(err))
			}
			args = append(args, v)
		}
		s, err := Sprintf(call.Arguments[0].String(), args...)
		if err != nil {
			panic(o.NewGoError(err))
		}
		return o.ToValue(s)
	})
	if err != nil {
		return err
	}

	if err = o.Set("str", func(call goja.FunctionCall) goja.Value {
		v, err := fromJS(call.Argument(0))
		if err != nil {
			panic(o.NewGoError(err))
		}
		return o.ToValue(v.String())
	}); err != nil {
		return err
	}

	return o.Set("len", func(call goja.FunctionCall) goja.Value {
		v, err := fromJS(call.Argument(0))
		if err != nil {
			panic(o.NewGoError(err))
		}
		switch v.Kind() {
		case traj.StringKind:
			s, _ := v.Str()
			return o.ToValue(len([]rune(s)))
		case traj.ListKind:
			xs, _ := v.List()
			return o.ToValue(len(xs))
		case traj.ObjectKind:
			fields, _ := v.Object()
			return o.ToValue(fields.Len())
		}
		panic(o.NewTypeError("len of " + v.Kind().String()))
	})
}

// Sprintf formats like the % operator on strings: %d, %i, and %u
// take integers (and truncate other numbers), %s takes anything,
// %r gives a quoted rendering, and %e %f %g %x %o %c work as usual.
// Flags, width, and precision are supported.  %% is a percent sign.
func Sprintf(format string, args ...traj.Value) (string, error) {
	var (
		out  strings.Builder
		next = 0
		rs   = []rune(format)
	)

	arg := func(verb rune) (traj.Value, error) {
		if len(args) <= next {
			return traj.Missing, fmt.Errorf("not enough arguments for format %q", format)
		}
		v := args[next]
		next++
		return v, nil
	}

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r != '%' {
			out.WriteRune(r)
			continue
		}
		j := i + 1
		for j < len(rs) && strings.ContainsRune("-+ #0123456789.", rs[j]) {
			j++
		}
		if len(rs) <= j {
			return "", fmt.Errorf("incomplete format %q", format)
		}
		flags := string(rs[i+1 : j])
		verb := rs[j]
		i = j

		if verb == '%' {
			out.WriteRune('%')
			continue
		}

		v, err := arg(verb)
		if err != nil {
			return "", err
		}

		switch verb {
		case 'd', 'i', 'u':
			n, err := integer(v)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&out, "%"+flags+"d", n)
		case 'x', 'X', 'o':
			n, err := integer(v)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&out, "%"+flags+string(verb), n)
		case 'e', 'E', 'f', 'F', 'g', 'G':
			x, is := v.Number()
			if !is {
				return "", fmt.Errorf("%%%c format: a number is required, not %s", verb, v.Kind())
			}
			if verb == 'F' {
				verb = 'f'
			}
			if (verb == 'g' || verb == 'G') && !strings.Contains(flags, ".") {
				flags += ".6"
			}
			fmt.Fprintf(&out, "%"+flags+string(verb), x)
		case 's':
			fmt.Fprintf(&out, "%"+flags+"s", v.String())
		case 'r':
			s := v.String()
			if str, is := v.Str(); is {
				s = "'" + strings.ReplaceAll(str, "'", `\'`) + "'"
			}
			fmt.Fprintf(&out, "%"+flags+"s", s)
		case 'c':
			if s, is := v.Str(); is && len([]rune(s)) == 1 {
				fmt.Fprintf(&out, "%"+flags+"s", s)
				break
			}
			n, err := integer(v)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&out, "%"+flags+"c", rune(n))
		default:
			return "", fmt.Errorf("unsupported format character %q in %q", verb, format)
		}
	}

	if next < len(args) {
		return "", fmt.Errorf("not all arguments converted during string formatting")
	}
	return out.String(), nil
}

func integer(v traj.Value) (int64, error) {
	if n, is := v.Int(); is {
		return n, nil
	}
	if x, is := v.Number(); is {
		return int64(x), nil
	}
	if b, is := v.Bool(); is {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%%d format: a number is required, not %s", v.Kind())
}
