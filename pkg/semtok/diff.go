package semtok

// Edit replaces DeleteCount integers at Start of a previous result with Data.
// Offsets count integers, not tokens.
type Edit struct {
	Start       uint32   `json:"start"`
	DeleteCount uint32   `json:"deleteCount"`
	Data        []uint32 `json:"data,omitempty"`
}

// Diff describes how to turn prev into next with at most one edit. The edit
// covers everything between the longest common prefix and the longest
// common suffix; identical inputs produce no edit.
func Diff(prev, next []Token) []Edit {
	prefix := 0
	for prefix < len(prev) && prefix < len(next) && prev[prefix] == next[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(prev)-prefix && suffix < len(next)-prefix &&
		prev[len(prev)-1-suffix] == next[len(next)-1-suffix] {
		suffix++
	}

	removed := len(prev) - prefix - suffix
	inserted := next[prefix : len(next)-suffix]
	if removed == 0 && len(inserted) == 0 {
		return nil
	}

	return []Edit{{
		Start:       uint32(prefix * FieldsPerToken),
		DeleteCount: uint32(removed * FieldsPerToken),
		Data:        Encode(inserted),
	}}
}

// Apply performs edits, in order, on data, a previously encoded result.
func Apply(data []uint32, edits []Edit) []uint32 {
	out := make([]uint32, len(data))
	copy(out, data)
	for _, edit := range edits {
		start := min(int(edit.Start), len(out))
		end := min(start+int(edit.DeleteCount), len(out))
		out = append(out[:start], append(append([]uint32(nil), edit.Data...), out[end:]...)...)
	}
	return out
}
