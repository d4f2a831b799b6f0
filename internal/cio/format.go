package cio

import (
	"strconv"
	"strings"

	"github.com/cascade-hdl/cascade/internal/vartable"
)

// FormatTask renders a $display/$write task's format-string payload
// against its table-index operands, supporting the original's %d/%h/%b/
// %c/%s/%v directives (original_source/src/target/core/common/{printf,
// scanf}.h). Unlike fmt.Sprintf, operand values come from table words, not
// Go arguments, so the directive-matching walk is hand-rolled here rather
// than delegated to fmt.
func FormatTask(text string, args []vartable.Operand, t *vartable.Table) string {
	var out strings.Builder
	argIdx := 0
	nextWord := func() uint32 {
		if argIdx >= len(args) {
			return 0
		}
		op := args[argIdx]
		argIdx++
		words := t.ReadElement(op.Entry, op.Element)
		if len(words) == 0 {
			return 0
		}
		return words[0]
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '%' || i+1 >= len(text) {
			out.WriteByte(c)
			continue
		}
		i++
		switch text[i] {
		case 'd':
			out.WriteString(strconv.FormatInt(int64(int32(nextWord())), 10))
		case 'h':
			out.WriteString(strconv.FormatUint(uint64(nextWord()), 16))
		case 'b':
			out.WriteString(strconv.FormatUint(uint64(nextWord()), 2))
		case 'c':
			out.WriteByte(byte(nextWord()))
		case 's':
			out.WriteString(decodeString(nextWord()))
		case 'v':
			out.WriteString(strconv.FormatUint(uint64(nextWord()), 10))
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteByte(text[i])
		}
	}
	return out.String()
}

// decodeString unpacks a 4-byte-per-word ASCII-packed identifier value,
// the way the original's printf.h reads %s operands out of a reg array.
func decodeString(word uint32) string {
	bs := []byte{byte(word >> 24), byte(word >> 16), byte(word >> 8), byte(word)}
	end := len(bs)
	for end > 0 && bs[end-1] == 0 {
		end--
	}
	return string(bs[:end])
}
