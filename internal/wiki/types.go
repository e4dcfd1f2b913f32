package wiki

// Summary is the display-ready result of parsing one wiki page. Exactly one
// of Fields or Description carries the page content: infobox pages populate
// Fields, plain articles populate Description.
type Summary struct {
	Title        string       `json:"title"`
	SourceURL    string       `json:"source_url"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Description  string       `json:"description,omitempty"`
	Fields       []FieldEntry `json:"fields,omitempty"`
}

// FieldEntry is one infobox row in source document order. Duplicate names
// are preserved.
type FieldEntry struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type ResolutionKind int

const (
	ResolutionNotFound ResolutionKind = iota
	ResolutionDirectHit
	ResolutionSearchRedirect
	ResolutionSearchResult
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionDirectHit:
		return "direct"
	case ResolutionSearchRedirect:
		return "search_redirect"
	case ResolutionSearchResult:
		return "search_result"
	case ResolutionNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving one query. URL is empty only for
// ResolutionNotFound.
type Resolution struct {
	Kind ResolutionKind
	URL  string
}
