//go:build tinygo

package fmtx

import (
	"io"

	"wavegen-go/x/strconvx"
)

// Tiny formatter subset for MCU builds.
// Supports %s %d %x %X %f %v %% with width, precision and the '0' flag
// (enough for status lines like "%.2f Hz" and "0x%04X"). No reflection.

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a...)
	return string(b.buf)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return w.Write([]byte(Sprintf(format, a...)))
}

func Sprint(a ...any) string {
	var b builder
	for i, v := range a {
		if i > 0 {
			b.byte(' ')
		}
		b.any(v)
	}
	return string(b.buf)
}

func Fprint(w io.Writer, a ...any) (int, error) {
	return w.Write([]byte(Sprint(a...)))
}

type builder struct{ buf []byte }

func (b *builder) byte(c byte)  { b.buf = append(b.buf, c) }
func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

// pad writes s honoring width and the zero flag (right-aligned).
func (b *builder) pad(s string, width int, zero bool) {
	fill := byte(' ')
	if zero {
		fill = '0'
	}
	for i := len(s); i < width; i++ {
		b.byte(fill)
	}
	b.str(s)
}

func (b *builder) any(v any) {
	switch x := v.(type) {
	case string:
		b.str(x)
	case []byte:
		b.buf = append(b.buf, x...)
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	case float32:
		b.str(strconvx.FormatFloat(float64(x), 'f', 6, 32))
	case float64:
		b.str(strconvx.FormatFloat(x, 'f', 6, 64))
	default:
		if i, ok := toI64(v); ok {
			b.str(strconvx.FormatInt(i, 10))
		} else {
			b.str("<unk>")
		}
	}
}

func (b *builder) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); {
		if format[i] != '%' {
			b.byte(format[i])
			i++
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			b.byte('%')
			i += 2
			continue
		}
		i++
		zero := false
		if i < len(format) && format[i] == '0' {
			zero = true
			i++
		}
		width, prec, hasPrec := 0, 0, false
		i = parseNum(format, i, &width)
		if i < len(format) && format[i] == '.' {
			i++
			hasPrec = true
			i = parseNum(format, i, &prec)
		}
		if i >= len(format) || ai >= len(args) {
			return
		}
		verb := format[i]
		arg := args[ai]
		ai++
		i++

		switch verb {
		case 's':
			s, ok := arg.(string)
			if !ok {
				if bs, ok2 := arg.([]byte); ok2 {
					s = string(bs)
				} else {
					b.any(arg)
					continue
				}
			}
			if hasPrec && prec < len(s) {
				s = s[:prec]
			}
			b.pad(s, width, false)
		case 'd':
			n, _ := toI64(arg)
			b.pad(strconvx.FormatInt(n, 10), width, zero)
		case 'x', 'X':
			n, _ := toI64(arg)
			h := strconvx.FormatUint(uint64(n), 16)
			if verb == 'X' {
				h = upperHex(h)
			}
			b.pad(h, width, zero)
		case 'f':
			f, ok := toF64(arg)
			if !ok {
				b.str("<unk>")
				continue
			}
			p := 6
			if hasPrec {
				p = prec
			}
			b.pad(strconvx.FormatFloat(f, 'f', p, 64), width, zero)
		case 'v':
			b.any(arg)
		default:
			// Unknown verb: write it literally to aid debugging.
			b.byte('%')
			b.byte(verb)
		}
	}
}

func toI64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	default:
		return 0, false
	}
}

func toF64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func upperHex(h string) string {
	out := []byte(h)
	for i, c := range out {
		if 'a' <= c && c <= 'f' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

func parseNum(s string, i int, out *int) int {
	n := 0
	start := i
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i > start {
		*out = n
	}
	return i
}
