package archive

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/ribforge/pkg/errors"
	"github.com/arthur-debert/ribforge/pkg/links"
)

// AddRegexes registers the rewrite rules declared under groupPath (a
// panel's "regexes" element). Rules bearing a target, their own or the
// group's, are deferred to ApplyTargetRegexes; the rest run when the
// root closes. Registration order is preserved; rules always land on
// the root so composed writers share one registry.
func (a *Archive) AddRegexes(groupPath string) error {
	groupTarget, err := a.store.GetAttribute(a.ectx, groupPath, "target", false, "")
	if err != nil {
		return err
	}
	root := a.rootArchive()
	for _, name := range a.store.ListElements(groupPath) {
		rulePath := groupPath + "/" + name
		ruleTarget, err := a.store.GetAttribute(a.ectx, rulePath, "target", false, "")
		if err != nil {
			return err
		}
		if ruleTarget == "" {
			ruleTarget = groupTarget
		}
		if ruleTarget != "" {
			root.deferred = append(root.deferred, deferredRule{rulePath: rulePath, target: ruleTarget})
		} else {
			root.regexPaths = append(root.regexPaths, rulePath)
		}
	}
	return nil
}

// ApplyTargetRegexes runs every deferred rule against the files its
// target pattern currently matches. Each matched file is opened as a
// fresh one-rule root archive and closed, reusing the close-time
// rewrite path. Matched files are treated as gzip only per
// SetTargetGzip, never probed. Cancellation is honored between files.
func (a *Archive) ApplyTargetRegexes(ctx context.Context) error {
	root := a.rootArchive()
	for _, rule := range root.deferred {
		resolved, err := links.ResolveFrom(a.ectx, rule.rulePath, rule.target)
		if err != nil {
			return err
		}
		targets, err := a.Targets(resolved)
		if err != nil {
			return err
		}
		for _, t := range targets {
			if t.File == "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, errors.ErrArchiveRegex, "target regex pass canceled").
					WithDetail("rule", rule.rulePath)
			}
			ectx := a.ectx.Derive()
			ectx.TargetPath = t.Dir
			ectx.TargetName = t.File

			sub := New(nil, ectx, a.store, t.Dir, t.File)
			sub.regexPaths = []string{rule.rulePath}
			if err := sub.Open(OpenOptions{Mode: "r", Gzip: root.targetGzip}); err != nil {
				return err
			}
			if err := sub.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyCloseRegexes is the close-time rewrite pass. The file is read
// back whole, every rule applies in registration order, and the result
// is written back in place. Any failure leaves the file exactly as
// written: a partially-applied rewrite never reaches disk.
func (a *Archive) applyCloseRegexes() {
	if len(a.regexPaths) == 0 {
		return
	}
	full := a.FullPath()

	text, err := a.readBack()
	if err != nil {
		a.log.Warn().Err(err).Str("path", full).Msg("Regex rewrite skipped, could not read archive back")
		return
	}

	rewritten := text
	for _, rulePath := range a.regexPaths {
		next, err := a.applyRule(rewritten, rulePath)
		if err != nil {
			a.log.Warn().Err(err).Str("rule", rulePath).Str("path", full).
				Msg("Regex rule failed, leaving archive content as written")
			return
		}
		rewritten = next
	}

	if rewritten == text {
		return
	}
	if err := a.writeBack(rewritten); err != nil {
		a.log.Warn().Err(err).Str("path", full).Msg("Regex rewrite could not be written back")
	}
}

// applyRule fetches one rule's attributes from the store (late binding:
// patterns and replacements are link-resolved at close time) and
// applies it to text.
func (a *Archive) applyRule(text, rulePath string) (string, error) {
	pattern, err := a.store.GetAttribute(a.ectx, rulePath, "regex", true, "")
	if err != nil {
		return "", err
	}
	if pattern == "" {
		return text, nil
	}
	replace, err := a.store.GetAttribute(a.ectx, rulePath, "replace", true, "")
	if err != nil {
		return "", err
	}
	matchesAttr, err := a.store.GetAttribute(a.ectx, rulePath, "matches", false, "0")
	if err != nil {
		return "", err
	}
	max, err := strconv.Atoi(strings.TrimSpace(matchesAttr))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrArchiveRegex, "matches attribute is not a number").
			WithDetail("rule", rulePath).
			WithDetail("matches", matchesAttr)
	}

	// Multiline mode matches the rule language: ^ and $ anchor per line.
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrArchiveRegex, "bad regex pattern").
			WithDetail("rule", rulePath).
			WithDetail("pattern", pattern)
	}
	return replaceLimit(re, text, replace, max), nil
}

// replaceLimit is ReplaceAllString with a match-count limit; max <= 0
// replaces every match. Replacements use $1 group syntax.
func replaceLimit(re *regexp.Regexp, text, replace string, max int) string {
	limit := max
	if limit <= 0 {
		limit = -1
	}
	matches := re.FindAllStringSubmatchIndex(text, limit)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		b.Write(re.ExpandString(nil, replace, text, m))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func (a *Archive) readBack() (string, error) {
	f, err := os.Open(a.FullPath())
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if a.gzip {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *Archive) writeBack(text string) error {
	f, err := os.OpenFile(a.FullPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if a.gzip {
		zw := gzip.NewWriter(f)
		if _, err := io.WriteString(zw, text); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	if _, err := io.WriteString(f, text); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
