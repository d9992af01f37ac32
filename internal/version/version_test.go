package version

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short, Full and KV return consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())

	kv := KV()
	require.Len(t, kv, 6)
	require.Equal(t, "version", kv[0])
	require.Equal(t, Short(), kv[1])
}

// TestVersionCommand runs the attached subcommand in both modes.
func TestVersionCommand(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{name: "full", args: []string{"version"}, want: Full() + "\n"},
		{name: "short", args: []string{"version", "--short"}, want: Short() + "\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := &cobra.Command{Use: "test"}
			AttachCobraVersionCommand(root)

			var out bytes.Buffer

			root.SetOut(&out)
			root.SetArgs(tc.args)

			require.NoError(t, root.Execute())
			require.Equal(t, tc.want, out.String())
		})
	}
}
