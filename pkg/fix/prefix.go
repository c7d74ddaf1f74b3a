package fix

import "bytes"

// Some PICO-8 exporters append an _update60 shim to the end of the
// cartridge using syntax the grammar does not accept. The shim is fixed
// textually before parsing: the missing "then" is inserted, a newline is
// added in front so the shim cannot glue onto a preceding "end" token, and
// the matching "end" goes at the very end of the code.
var (
	update60Invalid = []byte("if(_update60)_update=function()")
	update60Valid   = []byte("\nif(_update60)then _update=function()")
)

// FixUpdate60 rewrites the first _update60 shim, if present. Content
// without the shim is returned unchanged.
func FixUpdate60(content []byte) []byte {
	idx := bytes.Index(content, update60Invalid)
	if idx < 0 {
		return content
	}

	out := make([]byte, 0, len(content)+len(update60Valid)-len(update60Invalid)+len(" end"))
	out = append(out, content[:idx]...)
	out = append(out, update60Valid...)
	out = append(out, content[idx+len(update60Invalid):]...)
	out = append(out, " end"...)
	return out
}
