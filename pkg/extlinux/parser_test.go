package extlinux

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, conf string) *Label {
	t.Helper()
	return Parse(BufferFromBytes([]byte(conf)), nil)
}

func TestParseKernelAndFDT(t *testing.T) {
	label := parseString(t, "kernel foo\nfdt bar\n")
	require.Equal(t, "foo", label.Value(label.Kernel))
	require.Equal(t, "bar", label.Value(label.DTB))
	require.False(t, label.Initramfs.IsSet())
	require.False(t, label.DTBDir.IsSet())
	require.False(t, label.Cmdline.IsSet())
}

func TestParseLastDirectiveWins(t *testing.T) {
	label := parseString(t, "kernel a\nkernel b\n")
	require.Equal(t, "b", label.Value(label.Kernel))
}

func TestParseUnknownDirective(t *testing.T) {
	label := parseString(t, "foo bar\nkernel x\n")
	require.Equal(t, "x", label.Value(label.Kernel))
	require.False(t, label.Initramfs.IsSet())
	require.False(t, label.DTB.IsSet())
	require.False(t, label.DTBDir.IsSet())
	require.False(t, label.Cmdline.IsSet())
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	label := parseString(t, "# comment\n\n  \nkernel x\n")
	require.Equal(t, "x", label.Value(label.Kernel))

	label = parseString(t, "\t# indented comment\nkernel x\n  # trailing comment\n")
	require.Equal(t, "x", label.Value(label.Kernel))
}

func TestParseNoTrailingNewline(t *testing.T) {
	buf := BufferFromBytes([]byte("kernel x"))
	label := Parse(buf, nil)
	require.Equal(t, "x", label.Value(label.Kernel))
	require.Equal(t, 1, label.Kernel.Len())
	// The terminator goes into the reserved byte.
	require.Equal(t, byte(0), buf.data[buf.Len()])
}

func TestParseCaseSensitive(t *testing.T) {
	label := parseString(t, "KERNEL x\nKernel y\n")
	require.False(t, label.Kernel.IsSet())
}

func TestParseAllDirectives(t *testing.T) {
	conf := `# generated by postmarketOS
timeout 1
kernel /vmlinuz
initrd /initramfs
fdtdir /dtbs
fdt /board.dtb
append console=ttyMSM0,115200 PMOS_NO_OUTPUT_REDIRECT	quiet
`
	label := parseString(t, conf)
	require.Equal(t, "/vmlinuz", label.Value(label.Kernel))
	require.Equal(t, "/initramfs", label.Value(label.Initramfs))
	require.Equal(t, "/dtbs", label.Value(label.DTBDir))
	require.Equal(t, "/board.dtb", label.Value(label.DTB))
	require.Equal(t, "console=ttyMSM0,115200 PMOS_NO_OUTPUT_REDIRECT\tquiet", label.Value(label.Cmdline))
}

func TestParseValueLength(t *testing.T) {
	for _, value := range []string{"x", "/boot/vmlinuz-6.6", "a b  c", "root=/dev/mmcblk0p2 rw"} {
		for _, conf := range []string{"append " + value + "\n", "append\t\t" + value, "append " + value} {
			label := parseString(t, conf)
			require.Equal(t, len(value), label.Cmdline.Len(), conf)
			require.Equal(t, value, label.Value(label.Cmdline), conf)
			require.NotContains(t, label.Value(label.Cmdline), "\x00", conf)
		}
	}
}

func TestParseStopsAtMalformedDirective(t *testing.T) {
	label := parseString(t, "kernel x\ninitrd\nfdt y\n")
	require.Equal(t, "x", label.Value(label.Kernel))
	require.False(t, label.Initramfs.IsSet())
	require.False(t, label.DTB.IsSet())

	label = parseString(t, "kernel x\nfdt   \nappend y\n")
	require.Equal(t, "x", label.Value(label.Kernel))
	require.False(t, label.DTB.IsSet())
	require.False(t, label.Cmdline.IsSet())
}

func TestParseEmpty(t *testing.T) {
	for _, conf := range []string{"", "\n\n", "# only a comment", "   \t"} {
		label := parseString(t, conf)
		require.False(t, label.Kernel.IsSet(), conf)
	}
}

func TestParseMutatesBuffer(t *testing.T) {
	buf := BufferFromBytes([]byte("kernel x\nfdt y\n"))
	Parse(buf, nil)
	require.Equal(t, []byte("kernel\x00x\x00fdt\x00y\x00"), buf.Data())
}

func TestReadDirectiveErrors(t *testing.T) {
	tests := []struct {
		conf string
		err  error
	}{
		{"", ErrExhausted},
		{"# comment without newline", ErrExhausted},
		{"kernel", ErrNoValue},
		{"kernel\nfdt x\n", ErrNoValue},
		{"kernel \n", ErrNoValue},
		{"kernel  \n", ErrEmptyValue},
		{"kernel \t\t\nfdt x\n", ErrEmptyValue},
		{"kernel \t ", ErrExhausted},
	}
	for _, tt := range tests {
		s := newScanner(BufferFromBytes([]byte(tt.conf)))
		_, _, err := s.readDirective()
		require.True(t, errors.Is(err, tt.err), "%q: %v", tt.conf, err)
	}
}

func TestLookupToken(t *testing.T) {
	require.Equal(t, TokenKernel, LookupToken("kernel"))
	require.Equal(t, TokenAppend, LookupToken("append"))
	require.Equal(t, TokenInitrd, LookupToken("initrd"))
	require.Equal(t, TokenFDT, LookupToken("fdt"))
	require.Equal(t, TokenFDTDir, LookupToken("fdtdir"))
	require.Equal(t, TokenUnknown, LookupToken("label"))
	require.Equal(t, "fdtdir", TokenFDTDir.String())
	require.Equal(t, "unknown", TokenUnknown.String())
}

func TestBufferRelease(t *testing.T) {
	buf := BufferFromBytes([]byte("kernel x\n"))
	label := Parse(buf, nil)
	buf.Release()
	require.True(t, buf.Released())
	require.Panics(t, func() { label.Value(label.Kernel) })
}
