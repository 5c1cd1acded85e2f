// Package extlinux reads the single-stanza extlinux.conf dialect used by
// second stage bootloaders and turns it into a bootable Config.
//
// Parsing works in place on a Buffer and yields a Label of spans into it.
// Expand is the only way to get owned strings out of a Label; once it has
// returned the Buffer can be released.
package extlinux

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Token identifies a recognized directive.
type Token int

// Recognized directives. Anything else maps to TokenUnknown.
const (
	TokenKernel Token = iota
	TokenAppend
	TokenInitrd
	TokenFDT
	TokenFDTDir
	TokenUnknown
)

var tokenMap = map[string]Token{
	"kernel": TokenKernel,
	"fdtdir": TokenFDTDir,
	"fdt":    TokenFDT,
	"initrd": TokenInitrd,
	"append": TokenAppend,
}

// LookupToken maps a command name to its Token. Matching is exact and case
// sensitive.
func LookupToken(command string) Token {
	if tok, ok := tokenMap[command]; ok {
		return tok
	}
	return TokenUnknown
}

func (t Token) String() string {
	for name, tok := range tokenMap {
		if tok == t {
			return name
		}
	}
	return "unknown"
}

// Label collects the directive values of one configuration file. Every
// directive in the file folds into the same Label, later ones overwriting
// earlier ones. The spans are only valid while the Buffer is live.
type Label struct {
	buf *Buffer

	Kernel    Span
	Initramfs Span
	DTB       Span
	DTBDir    Span
	Cmdline   Span
}

// Value resolves a span of this label to a string copy.
func (l *Label) Value(s Span) string {
	return l.buf.String(s)
}

// Parse assembles a Label from buf. Reading stops at the first directive
// that cannot be read, which is treated as the end of the file: fields
// assigned before it are kept.
func Parse(buf *Buffer, log *zap.Logger) *Label {
	if log == nil {
		log = zap.NewNop()
	}
	label := &Label{buf: buf}
	s := newScanner(buf)
	for {
		command, value, err := s.readDirective()
		if err != nil {
			if !errors.Is(err, ErrExhausted) {
				log.Debug("Stopped at malformed directive", zap.Int("offset", s.pos), zap.Error(err))
			}
			return label
		}

		log.Debug("Directive", zap.ByteString("command", buf.bytes(command)), zap.ByteString("value", buf.bytes(value)))

		switch LookupToken(string(buf.bytes(command))) {
		case TokenKernel:
			label.Kernel = value
		case TokenInitrd:
			label.Initramfs = value
		case TokenAppend:
			label.Cmdline = value
		case TokenFDT:
			label.DTB = value
		case TokenFDTDir:
			label.DTBDir = value
		}
	}
}
