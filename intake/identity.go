package intake

import (
	"net/http"

	"github.com/kbukum/voiceingest/util"
)

// Source holds the candidate identity values found on a request.
type Source struct {
	Header string
	Body   string
	Query  string
	Form   string
}

// ResolveIdentity returns the first non-blank candidate, trimmed, in the
// order header, body, query, form. It returns "" when none is set.
func ResolveIdentity(src Source) string {
	return util.FirstNonBlank(src.Header, src.Body, src.Query, src.Form)
}

// SourceFromRequest collects identity candidates from r. The multipart form
// must already be parsed for body fields to be seen.
func SourceFromRequest(r *http.Request, names IdentityNames) Source {
	src := Source{
		Header: r.Header.Get(names.Header),
		Query:  r.URL.Query().Get(names.Query),
	}
	if r.MultipartForm != nil {
		src.Body = firstValue(r.MultipartForm.Value, names.Field)
		src.Form = firstValue(r.MultipartForm.Value, names.FallbackField)
	}
	return src
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
