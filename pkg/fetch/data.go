package fetch

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/matzehuels/pageprint/pkg/errors"
)

// IsDataURL reports whether u is an RFC 2397 data: URL.
func IsDataURL(u string) bool {
	return len(u) > 5 && strings.EqualFold(u[:5], "data:")
}

// DecodeDataURL decodes a data: URL locally.
func DecodeDataURL(u string) (Resource, error) {
	if !IsDataURL(u) {
		return Resource{}, errors.New(errors.ErrCodeInvalidURL, "not a data URL")
	}
	meta, payload, ok := strings.Cut(u[5:], ",")
	if !ok {
		return Resource{}, errors.New(errors.ErrCodeInvalidURL, "data URL has no payload")
	}

	isBase64 := false
	mime := ""
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0:
			mime = strings.TrimSpace(part)
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		}
	}

	var data []byte
	var err error
	if isBase64 {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return Resource{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode data URL")
	}
	return Resource{Data: data, MIME: mime}, nil
}
