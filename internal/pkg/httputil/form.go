package httputil

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
)

// ErrMalformedForm is returned when a body is not a usable url-encoded form.
var ErrMalformedForm = errors.New("malformed form body")

// MaxFormBytes caps url-encoded bodies read by DecodeForm.
const MaxFormBytes = 64 << 10

// DecodeForm parses an application/x-www-form-urlencoded body and returns
// the first value of each required key. A missing key is an error; an
// empty value is not.
func DecodeForm(w http.ResponseWriter, r *http.Request, required ...string) (map[string]string, error) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/x-www-form-urlencoded" {
			return nil, fmt.Errorf("%w: unsupported content type %q", ErrMalformedForm, ct)
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}

	return requireKeys(r.PostForm, required)
}

func requireKeys(form url.Values, required []string) (map[string]string, error) {
	out := make(map[string]string, len(required))
	for _, key := range required {
		vals, ok := form[key]
		if !ok || len(vals) == 0 {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedForm, key)
		}
		out[key] = vals[0]
	}
	return out, nil
}
