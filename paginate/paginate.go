// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package paginate derives paged and carousel views over aggregated results.
// Nothing here mutates its input; page cursors belong to the caller.
package paginate

// DefaultPageSize is used for voter-code and candidate-vote listings
const DefaultPageSize = 50

// PageOfPositions returns the single item at pageIndex, clamped to the valid
// range, together with the clamped index. ok is false only for empty input.
func PageOfPositions[T any](positions []T, pageIndex int) (item T, index int, ok bool) {
	if len(positions) == 0 {
		return item, 0, false
	}
	index = clamp(pageIndex, len(positions))
	return positions[index], index, true
}

// Chunk splits items into consecutive pages of pageSize. The last page may be
// shorter. A non-positive pageSize means DefaultPageSize.
func Chunk[T any](items []T, pageSize int) [][]T {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := make([][]T, 0, PageCount(len(items), pageSize))
	for start := 0; start < len(items); start += pageSize {
		end := min(start+pageSize, len(items))
		pages = append(pages, items[start:end:end])
	}
	return pages
}

// PageCount is the number of pages Chunk would produce for n items
func PageCount(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Page returns one clamped page of items plus the clamped index and page count
func Page[T any](items []T, pageSize, pageIndex int) (page []T, index, pages int) {
	chunks := Chunk(items, pageSize)
	if len(chunks) == 0 {
		return []T{}, 0, 0
	}
	index = clamp(pageIndex, len(chunks))
	return chunks[index], index, len(chunks)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
