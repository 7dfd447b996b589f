// Package links implements the link token language embedded in pipeline
// template text. Tokens have the form @[EVAL:BODY:FORMAT]@ where BODY is
// a quoted literal, a dotted attribute path evaluated against an
// ExportContext, a conditional "X if C else Y", or a bare literal, and
// FORMAT is an optional run of '#' zero-padding a numeric result.
//
// Resolution is innermost-first so a token's own text may contain further
// tokens. Resolution is pure: no I/O, no context mutation, and text
// without tokens passes through unchanged.
package links

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/types"
)

const (
	tokenOpen  = "@["
	tokenClose = "]@"
	evalPrefix = "EVAL:"

	// maxTokens bounds one Resolve call. Attribute values may themselves
	// carry tokens, so a self-referential value would otherwise never
	// terminate.
	maxTokens = 10000
)

// Truthy reports the truthiness of a resolved value. Conditions in
// conditional bodies evaluate to strings, so falseness is defined over
// the string domain.
func Truthy(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "0", "false", "False", "None":
		return false
	}
	return true
}

// Resolve replaces every link token in template with its resolved value
func Resolve(ectx *types.ExportContext, template string) (string, error) {
	return ResolveFrom(ectx, "", template)
}

// ResolveFrom is Resolve with an origin (template path, panel name)
// recorded in resolution errors for diagnostics
func ResolveFrom(ectx *types.ExportContext, origin, template string) (string, error) {
	text := template
	for i := 0; ; i++ {
		end := strings.Index(text, tokenClose)
		if end < 0 {
			if strings.Contains(text, tokenOpen) {
				return "", resolveErr(origin, text, "unterminated link token")
			}
			return text, nil
		}
		if i == maxTokens {
			return "", resolveErr(origin, "", "link resolution did not terminate")
		}
		start := strings.LastIndex(text[:end], tokenOpen)
		if start < 0 {
			return "", resolveErr(origin, text[:end+len(tokenClose)], "link token closed but never opened")
		}
		value, err := evalToken(ectx, origin, text[start+len(tokenOpen):end])
		if err != nil {
			return "", err
		}
		text = text[:start] + value + text[end+len(tokenClose):]
	}
}

// evalToken evaluates one token's content (delimiters stripped). By the
// innermost-first loop above, content holds no nested tokens.
func evalToken(ectx *types.ExportContext, origin, content string) (string, error) {
	if !strings.HasPrefix(content, evalPrefix) {
		return "", resolveErr(origin, content, "unsupported link token")
	}
	body, format := splitFormat(content[len(evalPrefix):])
	value, err := evalBody(ectx, origin, strings.TrimSpace(body))
	if err != nil {
		return "", err
	}
	return applyFormat(origin, value, strings.TrimSpace(format))
}

// splitFormat splits "BODY:FORMAT" at the last colon outside quotes.
// Without a top-level colon the whole expression is the body.
func splitFormat(expr string) (string, string) {
	last := -1
	inQuote := false
	for i := 0; i < len(expr); i++ {
		switch {
		case expr[i] == '"':
			inQuote = !inQuote
		case expr[i] == ':' && !inQuote:
			last = i
		}
	}
	if last < 0 {
		return expr, ""
	}
	return expr[:last], expr[last+1:]
}

func evalBody(ectx *types.ExportContext, origin, body string) (string, error) {
	if x, cond, y, ok := splitConditional(body); ok {
		c, err := evalBody(ectx, origin, strings.TrimSpace(cond))
		if err != nil {
			return "", err
		}
		if Truthy(c) {
			return evalBody(ectx, origin, strings.TrimSpace(x))
		}
		return evalBody(ectx, origin, strings.TrimSpace(y))
	}

	if len(body) >= 2 && strings.HasPrefix(body, `"`) && strings.HasSuffix(body, `"`) {
		return body[1 : len(body)-1], nil
	}

	if strings.HasPrefix(body, ".") {
		value, ok := ectx.Attr(body)
		if !ok {
			return "", resolveErr(origin, body, "attribute path did not resolve")
		}
		return value, nil
	}

	return body, nil
}

// splitConditional splits "X if C else Y", scanning outside double
// quotes. Conditionals associate to the right: Y may itself be a
// conditional and is handled by evalBody's recursion.
func splitConditional(body string) (x, cond, y string, ok bool) {
	ifAt := indexTopLevel(body, " if ")
	if ifAt < 0 {
		return "", "", "", false
	}
	rest := body[ifAt+len(" if "):]
	elseAt := indexTopLevel(rest, " else ")
	if elseAt < 0 {
		return "", "", "", false
	}
	return body[:ifAt], rest[:elseAt], rest[elseAt+len(" else "):], true
}

func indexTopLevel(s, sep string) int {
	inQuote := false
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i] == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote && s[i:i+len(sep)] == sep {
			return i
		}
	}
	return -1
}

// applyFormat applies the '#'-run zero-pad format. Non-numeric values
// cannot be padded and fail resolution.
func applyFormat(origin, value, format string) (string, error) {
	if format == "" {
		return value, nil
	}
	if strings.Count(format, "#") != len(format) {
		return "", resolveErr(origin, format, "unsupported format spec")
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrResolution, "zero-pad format needs a numeric value").
			WithDetail("value", value).
			WithDetail("origin", origin)
	}
	return fmt.Sprintf("%0*d", len(format), n), nil
}

func resolveErr(origin, expr, msg string) *errors.RibforgeError {
	err := errors.New(errors.ErrResolution, msg)
	if expr != "" {
		err = err.WithDetail("expression", expr)
	}
	if origin != "" {
		err = err.WithDetail("origin", origin)
	}
	return err
}
