// Package preprocessor expands `mask NAME { field:width; ... }` blocks in
// bit-DSL source text into explicit numeric offsets, substituting every
// `NAME.field` occurrence with its resolved value before the lexer ever
// sees the source.
package preprocessor

import (
	"strconv"
	"strings"
)

// MaskError is raised when a `<word>.<word>` token survives substitution
// without matching any declared mask field.
type MaskError struct {
	Key string
}

func (e MaskError) Error() string {
	return "💥 bitforge mask error:\nunknown mask field " + e.Key
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isWordChar(c byte) bool {
	return isAlnum(c) || c == '_'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// Process runs the full preprocessing pass: mask-block extraction and
// substitution, then emission.
//
// It mirrors the reference implementation's single left-to-right scan:
// outside a mask block, characters are copied through untouched except for
// `//` line comments, which are dropped but whose terminating newline is
// preserved so downstream line numbers stay meaningful. Inside a mask
// block, only whitespace newlines and a running per-field offset are kept;
// the block's braces and field declarations are consumed entirely.
func Process(source string) (string, error) {
	var out strings.Builder
	masks := map[string]string{}
	runningSum := 0
	n := len(source)
	i := 0

	for i < n {
		c := source[i]

		if c == '/' && i+1 < n && source[i+1] == '/' {
			i += 2
			for i < n && source[i] != '\n' {
				i++
			}
			if i < n && source[i] == '\n' {
				out.WriteByte('\n')
				i++
			}
			continue
		}

		if n-i >= 4 && source[i:i+4] == "mask" && (i+4 == n || !isAlnum(source[i+4])) {
			i = processMaskBlock(source, i+4, n, &out, masks, &runningSum)
			continue
		}

		out.WriteByte(c)
		i++
	}

	result := substituteToFixedPoint(out.String(), masks)
	if err := validateNoDanglingReferences(result, masks); err != nil {
		return "", err
	}
	return result, nil
}

// processMaskBlock consumes one `mask NAME { ... }` declaration starting
// just after the `mask` keyword (index start), recording every resolved
// field into masks and returning the index just past the block.
func processMaskBlock(source string, start, n int, out *strings.Builder, masks map[string]string, runningSum *int) int {
	i := start
	for i < n && isSpace(source[i]) {
		i++
	}
	nameStart := i
	for i < n && isWordChar(source[i]) {
		i++
	}
	maskName := source[nameStart:i]

	for i < n && source[i] != '{' {
		i++
	}
	if i < n && source[i] == '{' {
		i++
	}

	for i < n {
		for i < n && isSpace(source[i]) {
			if source[i] == '\n' {
				out.WriteByte('\n')
			}
			i++
		}

		if i+1 < n && source[i] == '/' && source[i+1] == '/' {
			i += 2
			for i < n && source[i] != '\n' {
				i++
			}
			if i < n && source[i] == '\n' {
				out.WriteByte('\n')
				i++
			}
			continue
		}

		if i >= n || source[i] == '}' {
			if i < n {
				i++
			}
			break
		}

		fieldStart := i
		for i < n && isWordChar(source[i]) {
			i++
		}
		field := source[fieldStart:i]

		for i < n && isSpace(source[i]) {
			if source[i] == '\n' {
				out.WriteByte('\n')
			}
			i++
		}
		if i < n && source[i] == ':' {
			i++
		}
		for i < n && isSpace(source[i]) {
			if source[i] == '\n' {
				out.WriteByte('\n')
			}
			i++
		}

		numStart := i
		for i < n && source[i] >= '0' && source[i] <= '9' {
			i++
		}
		number := source[numStart:i]
		val := 0
		if number != "" {
			val, _ = strconv.Atoi(number)
		}

		if field != "any" {
			start := *runningSum
			end := start + val
			if maskName != "" {
				if val == 1 {
					masks[maskName+"."+field] = strconv.Itoa(start)
				} else {
					masks[maskName+"."+field] = strconv.Itoa(start) + ":" + strconv.Itoa(end)
				}
			}
			*runningSum = end
		} else {
			*runningSum += val
		}

		for i < n && source[i] != ';' && source[i] != '}' {
			if source[i] == '\n' {
				out.WriteByte('\n')
			}
			i++
		}
		if i < n && source[i] == ';' {
			i++
		}
	}

	if i < n && (source[i] == ';' || source[i] == '\n') {
		if source[i] == '\n' {
			out.WriteByte('\n')
		}
		i++
	}
	*runningSum = 0
	return i
}

// substituteToFixedPoint repeatedly applies every mask substitution until
// no further replacement changes the text. A fixed point is required
// because a substitution value can itself contain a '.' (for ranges like
// "1:4"), so a single pass is not guaranteed to resolve every key.
func substituteToFixedPoint(output string, masks map[string]string) string {
	changed := true
	for changed {
		changed = false
		for key, val := range masks {
			pos := 0
			for {
				idx := strings.Index(output[pos:], key)
				if idx < 0 {
					break
				}
				idx += pos
				okBefore := idx == 0 || !isWordChar(output[idx-1])
				afterPos := idx + len(key)
				okAfter := afterPos >= len(output) || !isWordChar(output[afterPos])
				if okBefore && okAfter {
					output = output[:idx] + val + output[afterPos:]
					pos = idx + len(val)
					changed = true
				} else {
					pos = idx + len(key)
				}
			}
		}
	}
	return output
}

// validateNoDanglingReferences fails with MaskError if any `<word>.<word>`
// token in the fully-substituted output does not correspond to a known
// mask key - i.e. a mask field reference that was never declared.
func validateNoDanglingReferences(output string, masks map[string]string) error {
	dotPos := 0
	for {
		idx := strings.IndexByte(output[dotPos:], '.')
		if idx < 0 {
			return nil
		}
		idx += dotPos

		start := idx
		for start > 0 && isAlnum(output[start-1]) {
			start--
		}
		end := idx + 1
		for end < len(output) && isAlnum(output[end]) {
			end++
		}
		key := output[start:end]
		if _, ok := masks[key]; !ok {
			return MaskError{Key: key}
		}
		dotPos = end
	}
}
