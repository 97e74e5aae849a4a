package service

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// pageWindow clamps page/perPage and returns the matching LIMIT/OFFSET.
func pageWindow(page, perPage int) (p, pp, limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, perPage, (page - 1) * perPage
}
