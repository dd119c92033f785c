package domain

type Solution struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Request is a help ticket. IDs are assigned max-plus-one and never reused;
// the solutions list is append-only for the lifetime of the request.
type Request struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Author      string     `json:"author"`
	Solutions   []Solution `json:"solutions"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the board's backing slices.
func (r Request) Clone() Request {
	out := r
	out.Solutions = make([]Solution, len(r.Solutions))
	copy(out.Solutions, r.Solutions)
	return out
}
