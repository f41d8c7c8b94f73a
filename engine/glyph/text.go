package glyph

import (
	"strings"

	"github.com/npillmayer/cords"
	"golang.org/x/text/unicode/norm"
)

// Leaf is a cords.Leaf wrapping the text of a single Span, used to assemble
// a line's or paragraph's text without repeatedly copying and
// concatenating strings as spans are joined. Modeled after
// engine/frame/lines.Leaf in the teacher repo, adapted from an HTML
// text-node wrapper to a Span wrapper.
type Leaf struct {
	content string
}

// NewLeaf builds a cords.Leaf from a span's current glyph text.
func NewLeaf(s *Span) *Leaf {
	return &Leaf{content: s.Text()}
}

// Weight is the leaf's string length in bytes.
func (l Leaf) Weight() uint64 { return uint64(len(l.content)) }

func (l Leaf) String() string { return l.content }

// Split splits a leaf at byte position i, resulting in 2 new leaves.
func (l Leaf) Split(i uint64) (cords.Leaf, cords.Leaf) {
	left := &Leaf{content: l.content[:i]}
	right := &Leaf{content: l.content[i:]}
	return left, right
}

// Substring returns a byte segment of the leaf's text fragment.
func (l Leaf) Substring(i, j uint64) []byte {
	return []byte(l.content)[i:j]
}

var _ cords.Leaf = Leaf{}

// Text renders a span's glyphs as a string, skipping any glyph still
// pending purge after table routing.
func (s *Span) Text() string {
	buf := make([]rune, 0, len(s.Chars))
	for _, c := range s.Chars {
		if c.removed() {
			continue
		}
		buf = append(buf, c.UCS)
	}
	return string(buf)
}

// BuildCord assembles a cords.Cord out of an ordered list of spans, one
// leaf per span. Callers normalize the result with NFC before emitting it,
// matching how the line/paragraph assemblers hand finished text to the
// output backends.
func BuildCord(spans []*Span) cords.Cord {
	b := cords.NewBuilder()
	for _, s := range spans {
		if s.Empty() {
			continue
		}
		b.Append(NewLeaf(s))
	}
	return b.Cord()
}

// CordText concatenates a cord's leaves in order, the way
// engine/khipu/styled.paragraph's innerText walks its cords.Cord via
// EachLeaf rather than assuming a direct String() method on Cord.
func CordText(cord cords.Cord) string {
	var sb strings.Builder
	cord.EachLeaf(func(l cords.Leaf, pos uint64) error {
		sb.WriteString(l.String())
		return nil
	})
	return sb.String()
}

// NormalizeNFC returns s normalized to Unicode NFC, applied to assembled
// run text just before handing it to an output emitter.
func NormalizeNFC(s string) string {
	return norm.NFC.String(s)
}
