package directive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDirective(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterDirective("shout", func(expr string) string { return expr + "!" }))
	assert.True(t, r.Has("shout"))

	out, ok := r.Compile("shout", "hi")
	assert.True(t, ok)
	assert.Equal(t, "hi!", out)

	_, ok = r.Compile("whisper", "hi")
	assert.False(t, ok)
}

func TestRegisterDirectiveValidation(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.RegisterDirective("", func(string) string { return "" }))
	assert.Error(t, r.RegisterDirective("has-dash", func(string) string { return "" }))
	assert.Error(t, r.RegisterDirective("9lives", func(string) string { return "" }))
	assert.Error(t, r.RegisterDirective("nil", nil))
	assert.Zero(t, r.Len())
}

func TestReRegistrationOverwrites(t *testing.T) {
	r := Builtins()

	require.NoError(t, r.RegisterDirective("csrf", func(string) string { return "custom" }))

	assert.Equal(t, "<form>custom</form>", r.CompileSource("<form>@csrf</form>"))
}

type recordingRegistrar struct {
	names []string
	fail  string
}

func (r *recordingRegistrar) RegisterDirective(name string, _ CompileFunc) error {
	if name == r.fail {
		return errors.New("rejected")
	}
	r.names = append(r.names, name)
	return nil
}

func TestInstallInto(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterDirective("b", func(string) string { return "" }))
	require.NoError(t, r.RegisterDirective("a", func(string) string { return "" }))

	target := &recordingRegistrar{}
	require.NoError(t, r.InstallInto(target))
	assert.Equal(t, []string{"a", "b"}, target.names)

	err := r.InstallInto(&recordingRegistrar{fail: "b"})
	assert.ErrorContains(t, err, "install directive b")
}
