package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	var a, b int
	reg := NewRegistry(4)
	require.NoError(t, reg.Register("-x", "1", Int(&a), "first"))
	require.NoError(t, reg.Register("-x", "2", Int(&b), "duplicate"))

	e, ok := reg.Lookup("-x")
	require.True(t, ok)
	assert.Equal(t, "first", e.Help)
	assert.Equal(t, "1", e.Default)
	assert.Equal(t, KindInteger, e.Kind())
	assert.Equal(t, 2, reg.Len())

	_, ok = reg.Lookup("-X")
	assert.False(t, ok, "lookup is case sensitive")

	_, ok = reg.Lookup("-")
	assert.False(t, ok, "no prefix matches")
}

func TestRegistryFull(t *testing.T) {
	var v int
	reg := NewRegistry(1)
	require.NoError(t, reg.Register("-a", "", Int(&v), ""))

	err := reg.Register("-b", "", Int(&v), "")
	require.Error(t, err)
	assert.Equal(t, ErrCodeRegistryFull, Code(err))
	assert.True(t, IsParseError(err))
}

func TestRegistryDefaultTokens(t *testing.T) {
	var (
		name    string
		width   int
		verbose bool
		quiet   bool
	)
	reg := NewRegistry(0)
	require.NoError(t, reg.Register("-name", "", String(&name), ""))
	require.NoError(t, reg.Register("-width", "1920", Int(&width), ""))
	require.NoError(t, reg.Register("-verbose", "1", Flag(&verbose), ""))
	require.NoError(t, reg.Register("-quiet", "0", Flag(&quiet), ""))

	assert.Equal(t, []string{"-width", "1920", "-verbose"}, reg.defaultTokens())
}

func TestDefaultRegistry(t *testing.T) {
	p := newParams()
	reg, err := DefaultRegistry(p)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range reg.Entries() {
		assert.False(t, names[e.Name], "duplicate parameter %s", e.Name)
		names[e.Name] = true
	}

	for _, name := range []string{"-cf", "-if", "-width", "-height", "-f", "-HQperiod", "-num_reorder_pics", "-cdef", "-input_bitdepth"} {
		assert.True(t, names[name], "missing parameter %s", name)
	}

	cf, ok := reg.Lookup(IncludeFlag)
	require.True(t, ok)
	assert.False(t, cf.HasDefault())

	f, ok := reg.Lookup("-f")
	require.True(t, ok)
	assert.Equal(t, KindFloat, f.Kind())
	assert.Equal(t, "60", f.Default)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "integer-list", KindIntegerList.String())
	assert.Equal(t, "flag", KindFlag.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
