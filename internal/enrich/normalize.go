package enrich

import "strings"

var linkedinHostPrefixes = []string{
	"https://www.linkedin.com",
	"https://linkedin.com",
	"http://www.linkedin.com",
}

// NormalizeHandle canonicalizes a LinkedIn profile reference into the
// /in/<handle> comparison key. It accepts a full URL, a path, or a bare
// handle and always lowercases the result:
//
//	"https://linkedin.com/in/ArtsOfBaniya/" -> "/in/artsofbaniya"
//	"/in/ArtsOfBaniya"                      -> "/in/artsofbaniya"
//	"artsofbaniya"                          -> "/in/artsofbaniya"
//
// This is the join key between stored handles and provider identifiers, so
// case and URL-form differences never cause spurious misses.
func NormalizeHandle(ref string) string {
	handle := ref
	for _, prefix := range linkedinHostPrefixes {
		handle = strings.ReplaceAll(handle, prefix, "")
	}
	handle = strings.Trim(handle, "/")

	if !strings.HasPrefix(handle, "in/") {
		handle = "in/" + handle
	}

	return strings.ToLower("/" + handle)
}
