// Package word holds the per-word occurrence record stored in the index tree.
package word

// Record maps one word to the lines it occurs on, grouped by source file.
// Files keep the order in which they were first seen.
type Record struct {
	key   string
	files []string
	lines map[string][]int
}

// Location is one file's slice of a Record, used for serialisation.
type Location struct {
	File  string `json:"f"`
	Lines []int  `json:"l"`
}

func New(key string) *Record {
	return &Record{
		key:   key,
		lines: make(map[string][]int),
	}
}

// FromLocations rebuilds a record from its serialised form. Files are added in
// the given order.
func FromLocations(key string, locs []Location) *Record {
	r := New(key)
	for _, loc := range locs {
		if _, seen := r.lines[loc.File]; !seen {
			r.files = append(r.files, loc.File)
		}
		r.lines[loc.File] = append(r.lines[loc.File], loc.Lines...)
	}
	return r
}

func (r *Record) Key() string {
	return r.key
}

// AddOccurrence appends line to the list kept for file.
func (r *Record) AddOccurrence(file string, line int) {
	if _, seen := r.lines[file]; !seen {
		r.files = append(r.files, file)
	}
	r.lines[file] = append(r.lines[file], line)
}

func (r *Record) TotalFrequency() int {
	total := 0
	for _, l := range r.lines {
		total += len(l)
	}
	return total
}

// Files returns the filenames with at least one occurrence, first-seen first.
func (r *Record) Files() []string {
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

// Lines returns a copy of the line numbers recorded for file.
func (r *Record) Lines(file string) []int {
	l, ok := r.lines[file]
	if !ok {
		return nil
	}
	out := make([]int, len(l))
	copy(out, l)
	return out
}

func (r *Record) Locations() []Location {
	locs := make([]Location, 0, len(r.files))
	for _, f := range r.files {
		locs = append(locs, Location{File: f, Lines: r.Lines(f)})
	}
	return locs
}

func (r *Record) String() string {
	return r.key
}
