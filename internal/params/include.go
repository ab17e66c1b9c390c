package params

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Tubbz-alt/thor/internal/events"
	"github.com/Tubbz-alt/thor/internal/lexer"
)

// DefaultMaxIncludeDepth bounds how deeply configuration files may include each other.
const DefaultMaxIncludeDepth = 16

// include reads the configuration file at path and parses its tokens before the
// caller resumes its own stream. Relative paths are taken from the include root,
// or the working directory when there is none.
func (ps *parser) include(path string) error {
	resolved, err := ps.confine(path, IncludeFlag)
	if err != nil {
		return err
	}
	canonical := canonicalPath(resolved)

	if slices.Contains(ps.chain, canonical) {
		return parseError(ErrCodeIncludeCycle, IncludeFlag,
			fmt.Sprintf("Config file includes itself: %s", path), nil)
	}
	if len(ps.chain) >= ps.maxDepth {
		return parseError(ErrCodeIncludeDepth, IncludeFlag,
			fmt.Sprintf("Config files nested deeper than %d levels at: %s", ps.maxDepth, path), nil)
	}

	tokens, err := lexer.TokenizeFile(resolved, lexer.WithMaxTokens(ps.maxTokens))
	if err != nil {
		var tooMany *lexer.TooManyTokensError
		if errors.As(err, &tooMany) {
			return parseError(ErrCodeTooManyTokens, IncludeFlag,
				fmt.Sprintf("Too many parameters in config file: %s (limit %d)", path, tooMany.Limit), nil)
		}
		return parseError(ErrCodeConfigUnreadable, IncludeFlag,
			fmt.Sprintf("Cannot open config file: %s", path), err)
	}

	ps.chain = append(ps.chain, canonical)
	defer func() { ps.chain = ps.chain[:len(ps.chain)-1] }()

	if !slices.Contains(ps.includes, canonical) {
		ps.includes = append(ps.includes, canonical)
	}
	ps.logger.Debug("Reading config file", "path", canonical, "depth", len(ps.chain), "tokens", len(tokens))
	if ps.bus != nil {
		ps.bus.Publish(events.IncludeEnteredEvent{
			Path:   canonical,
			Depth:  len(ps.chain),
			Tokens: len(tokens),
		})
	}

	return ps.parse(tokens, canonical)
}

// confine resolves path against the include root and rejects paths that leave it,
// symlinks included. Without a root the path is returned unchanged.
func (ps *parser) confine(path, param string) (string, error) {
	if ps.root == "" || path == "" {
		return path, nil
	}

	joined := path
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(ps.root, joined)
	}
	rel, err := filepath.Rel(ps.root, canonicalPath(joined))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", parseError(ErrCodePathOutsideRoot, param,
			fmt.Sprintf("Path is outside the include root: %s", path), nil)
	}
	return joined, nil
}

// canonicalPath returns an absolute path with symlinks resolved where possible, so
// one file reached through different names is recognized. For a missing file the
// directory is still resolved.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}
