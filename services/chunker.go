package services

// ChunkText splits text into character windows of size chars with the
// given overlap between consecutive chunks. The stride is size-overlap.
// Text no longer than size yields exactly one chunk; empty text yields
// none. Splitting operates on runes so multi-byte characters are never
// cut.
func ChunkText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	stride := size - overlap
	for i := 0; ; i += stride {
		end := i + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[i:]))
			break
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
