package reader

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnsupportedEncoding is returned for encoding names that cannot be resolved.
var ErrUnsupportedEncoding = errors.New("unsupported text encoding")

// DefaultEncoding is the assumed encoding of history exports.
const DefaultEncoding = "utf-8"

// NewDecodingReader returns a reader yielding valid UTF-8 decoded from r.
// Byte sequences that cannot be decoded are dropped silently and line endings
// are normalized to "\n".
func NewDecodingReader(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return transform.NewReader(r, transform.Chain(DropIllFormed(), NormalizeNewlines())), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}

	return transform.NewReader(r, transform.Chain(enc.NewDecoder(), DropIllFormed(), NormalizeNewlines())), nil
}

// DropIllFormed returns a transformer that removes ill-formed UTF-8 and
// passes everything else through unchanged, including literal U+FFFD.
func DropIllFormed() transform.Transformer {
	return dropIllFormed{}
}

type dropIllFormed struct{ transform.NopResetter }

func (dropIllFormed) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if c := src[nSrc]; c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}

			dst[nDst] = c
			nDst++
			nSrc++

			continue
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			// An incomplete sequence at the end of src may be completed by the next read.
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}

			nSrc++

			continue
		}

		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		copy(dst[nDst:], src[nSrc:nSrc+size])
		nDst += size
		nSrc += size
	}

	return nDst, nSrc, nil
}

// NormalizeNewlines returns a transformer that rewrites "\r\n" and lone "\r" as "\n".
func NormalizeNewlines() transform.Transformer {
	return normalizeNewlines{}
}

type normalizeNewlines struct{ transform.NopResetter }

func (normalizeNewlines) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\r' {
			// A trailing "\r" may be the first half of "\r\n".
			if nSrc+1 == len(src) && !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}

			c = '\n'

			if nSrc+1 < len(src) && src[nSrc+1] == '\n' {
				nSrc++
			}
		}

		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		dst[nDst] = c
		nDst++
		nSrc++
	}

	return nDst, nSrc, nil
}
