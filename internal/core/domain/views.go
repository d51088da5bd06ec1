package domain

// ResultView is one row of the rendered result list shown after a query.
type ResultView struct {
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	Excerpt string  `json:"excerpt"`
}

// DocumentView is a reconstructed document segmented into display parts that
// fit the transport message limit. Headers ("part i/total") are rendered by
// the transport; the segmenter already reserved room for them.
type DocumentView struct {
	Title       string      `json:"title"`
	ElementType ElementType `json:"element_type"`
	Parts       []string    `json:"parts"`
	TotalParts  int         `json:"total_parts"`
	BrokenLinks int         `json:"broken_links"`
}
