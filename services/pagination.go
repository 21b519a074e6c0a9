package services

// PageBounds returns the [start, end) slice bounds of a 1-based page over
// total items. Pages past the end, including ones whose offset would
// overflow int, yield an empty range at total.
func PageBounds(page, pageSize, total int) (start, end int) {
	if page < 1 || pageSize < 1 || page-1 > total/pageSize {
		return total, total
	}
	start = (page - 1) * pageSize
	end = start + min(pageSize, total-start)
	return start, end
}
