package wam

import (
	"strings"
	"unicode"

	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
	"golang.org/x/text/unicode/norm"
)

// tokenizeContent scans a page content stream into a flat list of
// (operands, operator) pairs. It is a generalization of the teacher's
// resource-name-only parseContent scanner (pkg/pdfcpu/model/parseContent.go):
// where that scanner only cares which resource name preceded a handful of
// known operators, this one keeps every operand so the battery can inspect
// marked-content tags (BDC/EMC), text-showing operators (Tj/TJ/'/"),
// and XObject invocations (Do) directly.
func tokenizeContent(content string) ([]ContentToken, error) {
	var tokens []ContentToken
	var operands []types.Object

	s := content
	for {
		s = strings.TrimLeftFunc(s, whitespaceOrEOL)
		if len(s) == 0 {
			break
		}

		switch {
		case s[0] == '%':
			i := strings.IndexAny(s, "\n\r")
			if i < 0 {
				s = ""
			} else {
				s = s[i:]
			}

		case s[0] == '/':
			name, rest := scanName(s)
			operands = append(operands, types.Name(name))
			s = rest

		case s[0] == '(':
			str, rest := scanStringLiteral(s)
			operands = append(operands, types.StringLiteral(str))
			s = rest

		case s[0] == '<' && len(s) > 1 && s[1] == '<':
			_, rest := scanDict(s)
			operands = append(operands, nil)
			s = rest

		case s[0] == '<':
			str, rest := scanHexString(s)
			operands = append(operands, types.StringLiteral(str))
			s = rest

		case s[0] == '[':
			arr, rest := scanArray(s)
			operands = append(operands, arr)
			s = rest

		case s[0] == ']' || s[0] == '>' || s[0] == ')':
			// stray closer; skip defensively
			s = s[1:]

		case isNumberStart(s[0]):
			num, rest := scanNumber(s)
			operands = append(operands, num)
			s = rest

		default:
			op, rest := scanOperator(s)
			if op == "" {
				s = rest
				continue
			}
			switch op {
			case "BI":
				// Inline image: skip to EI, drop its operands.
				s = skipInlineImage(rest)
				operands = nil
				continue
			}
			tokens = append(tokens, ContentToken{Operands: operands, Operator: op})
			operands = nil
			s = rest
		}
	}

	return tokens, nil
}

func whitespaceOrEOL(r rune) bool {
	return unicode.IsSpace(r) || r == 0x00
}

func isDelim(b byte) bool {
	switch b {
	case '/', '(', ')', '<', '>', '[', ']', '{', '}', '%':
		return true
	}
	return false
}

func scanName(s string) (string, string) {
	s = s[1:]
	i := 0
	for i < len(s) && !whitespaceOrEOL(rune(s[i])) && !isDelim(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func scanStringLiteral(s string) (string, string) {
	s = s[1:]
	depth := 0
	var sb strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			sb.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '(' {
			depth++
		}
		if c == ')' {
			if depth == 0 {
				i++
				break
			}
			depth--
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String(), s[i:]
}

func scanHexString(s string) (string, string) {
	s = s[1:]
	i := strings.IndexByte(s, '>')
	if i < 0 {
		return "", ""
	}
	return s[:i], s[i+1:]
}

func scanDict(s string) (string, string) {
	s = s[2:]
	depth := 0
	i := 0
	for i < len(s)-1 {
		if s[i] == '<' && s[i+1] == '<' {
			depth++
			i += 2
			continue
		}
		if s[i] == '>' && s[i+1] == '>' {
			if depth == 0 {
				return "", s[i+2:]
			}
			depth--
			i += 2
			continue
		}
		i++
	}
	return "", ""
}

func scanArray(s string) (types.Array, string) {
	s = s[1:]
	var arr types.Array
	for {
		s = strings.TrimLeftFunc(s, whitespaceOrEOL)
		if len(s) == 0 {
			return arr, s
		}
		if s[0] == ']' {
			return arr, s[1:]
		}
		switch {
		case s[0] == '(':
			str, rest := scanStringLiteral(s)
			arr = append(arr, types.StringLiteral(str))
			s = rest
		case s[0] == '<':
			str, rest := scanHexString(s)
			arr = append(arr, types.StringLiteral(str))
			s = rest
		case s[0] == '/':
			name, rest := scanName(s)
			arr = append(arr, types.Name(name))
			s = rest
		case isNumberStart(s[0]):
			num, rest := scanNumber(s)
			arr = append(arr, num)
			s = rest
		default:
			s = s[1:]
		}
	}
}

func isNumberStart(b byte) bool {
	return b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9')
}

func scanNumber(s string) (types.Float, string) {
	i := 0
	for i < len(s) && (isNumberStart(s[i]) || s[i] == 'e' || s[i] == 'E') {
		i++
	}
	return types.Float(parseFloatLenient(s[:i])), s[i:]
}

func parseFloatLenient(s string) float64 {
	neg := false
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	var whole, frac float64
	var fracDiv float64 = 1
	seenDot := false
	for ; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			seenDot = true
			continue
		}
		if c < '0' || c > '9' {
			continue
		}
		d := float64(c - '0')
		if seenDot {
			fracDiv *= 10
			frac += d / fracDiv
		} else {
			whole = whole*10 + d
		}
	}
	v := whole + frac
	if neg {
		v = -v
	}
	return v
}

func scanOperator(s string) (string, string) {
	i := 0
	for i < len(s) && !whitespaceOrEOL(rune(s[i])) && !isDelim(s[i]) {
		i++
	}
	if i == 0 {
		return "", s[1:]
	}
	return s[:i], s[i:]
}

func skipInlineImage(s string) string {
	i := strings.Index(s, "EI")
	if i < 0 {
		return ""
	}
	return s[i+2:]
}

// extractText concatenates the string operands of Tj/TJ/'/" text-showing
// operators, normalizing the result to NFC so accessibility checks compare
// Unicode text consistently regardless of the source encoding's composition.
func extractText(tokens []ContentToken) string {
	var sb strings.Builder
	for _, t := range tokens {
		switch t.Operator {
		case "Tj", "'", "\"":
			for _, o := range t.Operands {
				if s, ok := o.(types.StringLiteral); ok {
					sb.WriteString(string(s))
				}
			}
		case "TJ":
			for _, o := range t.Operands {
				arr, ok := o.(types.Array)
				if !ok {
					continue
				}
				for _, e := range arr {
					if s, ok := e.(types.StringLiteral); ok {
						sb.WriteString(string(s))
					}
				}
			}
		}
	}
	return norm.NFC.String(sb.String())
}

// artifactElements counts the BDC and BMC operators in tokens that tag
// their marked-content sequence /Artifact, per PDF32000 14.8.2.2.
func artifactElements(tokens []ContentToken) int {
	n := 0
	for _, t := range tokens {
		if t.Operator != "BDC" && t.Operator != "BMC" {
			continue
		}
		if len(t.Operands) == 0 {
			continue
		}
		if name, ok := t.Operands[0].(types.Name); ok && string(name) == "Artifact" {
			n++
		}
	}
	return n
}

