package lexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "flags and values",
			input: "-width 1920 -height 1080\n-qp 32\n",
			want:  []string{"-width", "1920", "-height", "1080", "-qp", "32"},
		},
		{
			name:  "quoted value keeps comma and space",
			input: `-if "a, b"`,
			want:  []string{"-if", "a, b"},
		},
		{
			name:  "quoted value ends at newline",
			input: "-of \"out file.bit\n-n 10",
			want:  []string{"-of", "out file.bit", "-n", "10"},
		},
		{
			name:  "comment discards rest of line",
			input: "; encoder settings -n 5\n-n 10 ;trailing words\n-qp 22",
			want:  []string{"-n", "10", "-qp", "22"},
		},
		{
			name:  "semicolon inside token is not a comment",
			input: "-stat a;b",
			want:  []string{"-stat", "a;b"},
		},
		{
			name:  "empty quoted token ends the stream",
			input: `-n 10 "" -qp 22`,
			want:  []string{"-n", "10"},
		},
		{
			name:  "quote open at end of input",
			input: `-if "clip.y4m`,
			want:  []string{"-if", "clip.y4m"},
		},
		{
			name:  "tabs and carriage returns",
			input: "-n\t10\r\n-f\t30\r\n",
			want:  []string{"-n", "10", "-f", "30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeOnlyComments(t *testing.T) {
	got, err := Tokenize(strings.NewReader("; nothing here\n\n   ; still nothing\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenizeEmpty(t *testing.T) {
	got, err := Tokenize(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenizeLongTokenIsSplit(t *testing.T) {
	long := strings.Repeat("x", MaxTokenLen+5)

	got, err := Tokenize(strings.NewReader(long))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], MaxTokenLen)
	assert.Equal(t, "xxxxx", got[1])
}

func TestTokenizeMaxTokens(t *testing.T) {
	_, err := Tokenize(strings.NewReader("a b c d"), WithMaxTokens(3))

	var tooMany *TooManyTokensError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 3, tooMany.Limit)

	got, err := Tokenize(strings.NewReader("a b c"), WithMaxTokens(3))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestTokenizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enc.cfg")
	require.NoError(t, os.WriteFile(path, []byte("-width 640 ; vga\n-height 480\n"), 0o644))

	got, err := TokenizeFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"-width", "640", "-height", "480"}, got)

	_, err = TokenizeFile(filepath.Join(t.TempDir(), "missing.cfg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
