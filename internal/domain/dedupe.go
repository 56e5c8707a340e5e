package domain

// Dedupe keeps the first record seen for every id and reports how many were dropped.
// Records without an id cannot collide and are always kept.
func Dedupe(in []RawHotel) ([]RawHotel, int) {
	seen := make(map[string]struct{}, len(in))
	out := make([]RawHotel, 0, len(in))
	dropped := 0
	for _, h := range in {
		if h.ID != "" {
			if _, ok := seen[h.ID]; ok {
				dropped++
				continue
			}
			seen[h.ID] = struct{}{}
		}
		out = append(out, h)
	}
	return out, dropped
}
