// Package lexer splits configuration sources into parameter tokens.
//
// The syntax is the one used by encoder configuration files: tokens are separated by
// whitespace, a token starting with a double quote runs to the next double quote or
// end of line (so quoted values may contain spaces and commas), and a bare token
// starting with ';' comments out the rest of its line.
//
// The reader is intentionally permissive. A quote that is never closed runs to the end
// of its line or of the input, and an empty quoted token ends the stream instead of
// failing, so existing configuration files that relied on that behaviour keep loading.
package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// MaxTokenLen is the longest bare token. Longer runs of non-whitespace continue
	// as a new token.
	MaxTokenLen = 1999

	// DefaultMaxTokens bounds the number of tokens read from one source.
	DefaultMaxTokens = 200
)

// TooManyTokensError is returned when a source holds more tokens than allowed.
type TooManyTokensError struct {
	Limit int
}

func (e *TooManyTokensError) Error() string {
	return fmt.Sprintf("too many tokens: source exceeds the limit of %d", e.Limit)
}

type config struct {
	maxTokens int
}

// Option configures Tokenize.
type Option func(*config)

// WithMaxTokens sets the token limit. Values below 1 select DefaultMaxTokens.
func WithMaxTokens(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// Tokenize reads r to the end of the stream and returns its tokens in source order.
func Tokenize(r io.Reader, opts ...Option) ([]string, error) {
	cfg := config{maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(&cfg)
	}

	lx := &lexer{r: bufio.NewReader(r)}
	tokens := make([]string, 0, 16)
	for {
		tok, ok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		if len(tokens) == cfg.maxTokens {
			return nil, &TooManyTokensError{Limit: cfg.maxTokens}
		}
		tokens = append(tokens, tok)
	}
}

// TokenizeFile opens path, tokenizes its full contents and closes it.
func TokenizeFile(path string, opts ...Option) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Tokenize(f, opts...)
}

type lexer struct {
	r *bufio.Reader
}

// next returns the next token. ok is false at end of stream.
func (lx *lexer) next() (string, bool, error) {
	for {
		c, err := lx.skipSpace()
		if err != nil {
			return "", false, lx.endOf(err)
		}

		if c == '"' {
			return lx.quoted()
		}

		if err := lx.r.UnreadByte(); err != nil {
			return "", false, err
		}
		tok, err := lx.bare()
		if err != nil {
			return "", false, err
		}
		if tok[0] == ';' {
			if err := lx.skipLine(); err != nil {
				return "", false, lx.endOf(err)
			}
			continue
		}
		return tok, true, nil
	}
}

// skipSpace consumes whitespace and returns the first other byte.
func (lx *lexer) skipSpace() (byte, error) {
	for {
		c, err := lx.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !isSpace(c) {
			return c, nil
		}
	}
}

// quoted reads the body of a quoted token; the opening quote is already consumed.
func (lx *lexer) quoted() (string, bool, error) {
	var buf []byte
	for {
		c, err := lx.r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, err
		}
		if c == '"' {
			break
		}
		if c == '\n' {
			// Leave the newline for the next whitespace skip.
			if err := lx.r.UnreadByte(); err != nil {
				return "", false, err
			}
			break
		}
		buf = append(buf, c)
	}

	if len(buf) == 0 {
		return "", false, nil
	}
	return string(buf), true, nil
}

// bare reads a run of non-whitespace bytes of at most MaxTokenLen bytes.
func (lx *lexer) bare() (string, error) {
	buf := make([]byte, 0, 32)
	for len(buf) < MaxTokenLen {
		c, err := lx.r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if isSpace(c) {
			if err := lx.r.UnreadByte(); err != nil {
				return "", err
			}
			break
		}
		buf = append(buf, c)
	}
	return string(buf), nil
}

func (lx *lexer) skipLine() error {
	for {
		c, err := lx.r.ReadByte()
		if err != nil {
			return err
		}
		if c == '\n' {
			return nil
		}
	}
}

func (lx *lexer) endOf(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
