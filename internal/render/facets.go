package render

import (
	"errors"
	"fmt"

	"github.com/blackmichael/matrix-embeds/internal/content"
)

// ErrBadFacets marks a facet list that is unsorted, overlapping, or out of
// bounds. Substitution fails loudly rather than emitting garbled text.
var ErrBadFacets = errors.New("invalid facet list")

// LinkFunc renders one substituted span for a target encoding. The text it
// receives is raw; HTML renderers must escape it.
type LinkFunc func(url, text string) string

// SubstituteFacets splices each facet's link into the text with a single
// left-to-right pass. Offsets index bytes or runes depending on unit; for
// byte offsets all slicing happens on the byte representation and only the
// assembled result is interpreted as text again, so multi-byte characters
// before a facet cannot shift the spans.
//
// Non-facet stretches of text pass through escape (which may be a no-op for
// the plain encoding).
func SubstituteFacets(text string, facets []content.Facet, unit content.OffsetUnit, link LinkFunc, escape func(string) string) (string, error) {
	if len(facets) == 0 {
		return escape(text), nil
	}

	if unit == content.OffsetBytes {
		return spliceBytes([]byte(text), facets, link, escape)
	}
	return spliceRunes([]rune(text), facets, link, escape)
}

func validateSpan(f content.Facet, cursor, length int) error {
	if f.Start < cursor {
		return fmt.Errorf("%w: span [%d,%d) unsorted or overlapping", ErrBadFacets, f.Start, f.End)
	}
	if f.End < f.Start || f.End > length {
		return fmt.Errorf("%w: span [%d,%d) out of bounds (len %d)", ErrBadFacets, f.Start, f.End, length)
	}
	return nil
}

func spliceBytes(text []byte, facets []content.Facet, link LinkFunc, escape func(string) string) (string, error) {
	var out []byte
	cursor := 0
	for _, f := range facets {
		if err := validateSpan(f, cursor, len(text)); err != nil {
			return "", err
		}
		out = append(out, escape(string(text[cursor:f.Start]))...)
		out = append(out, link(f.URL, f.Text)...)
		cursor = f.End
	}
	out = append(out, escape(string(text[cursor:]))...)
	return string(out), nil
}

func spliceRunes(text []rune, facets []content.Facet, link LinkFunc, escape func(string) string) (string, error) {
	var out []byte
	cursor := 0
	for _, f := range facets {
		if err := validateSpan(f, cursor, len(text)); err != nil {
			return "", err
		}
		out = append(out, escape(string(text[cursor:f.Start]))...)
		out = append(out, link(f.URL, f.Text)...)
		cursor = f.End
	}
	out = append(out, escape(string(text[cursor:]))...)
	return string(out), nil
}
