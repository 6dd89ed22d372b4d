// Package mixed splits capture files that interleave Hot Threads text and
// _tasks JSON into two independent input streams.
//
// Support bundles often concatenate both API outputs into a single file, with
// the tasks section introduced by a "tasks:" marker line or simply by the
// first top-level JSON object. The splitter is a pre-pass only: each stream
// it yields is handed to its own parser and processed as an independent
// document, so a failure in one stream never aborts the other.
package mixed

import (
	"regexp"
	"strings"
)

var (
	hotThreadsRe  = regexp.MustCompile(`^:::\s+\{`)
	tasksMarkerRe = regexp.MustCompile(`^tasks:`)
)

// Split holds the separated input streams. An absent section is "".
type Split struct {
	HotThreads string
	Tasks      string
}

// HasHotThreads reports whether a Hot Threads section was found.
func (s Split) HasHotThreads() bool { return s.HotThreads != "" }

// HasTasks reports whether a tasks section was found.
func (s Split) HasTasks() bool { return s.Tasks != "" }

// Sections returns how many sub-documents the split produced.
func (s Split) Sections() int {
	n := 0
	if s.HasHotThreads() {
		n++
	}
	if s.HasTasks() {
		n++
	}
	return n
}

// SplitText separates mixed input into Hot Threads text and tasks JSON.
//
// The tasks section starts at a "tasks:" marker line when present, otherwise
// at the first line beginning a top-level JSON object. Everything before that
// boundary belonging to ":::" node sections is the Hot Threads stream. Input
// that is purely one format yields a Split with only that section set.
func SplitText(text string) Split {
	lines := strings.Split(text, "\n")

	boundary := len(lines)
	for i, line := range lines {
		if tasksMarkerRe.MatchString(strings.TrimSpace(line)) {
			boundary = i
			break
		}
	}

	var hot []string
	inSection := false
	for i := 0; i < boundary; i++ {
		line := lines[i]
		if hotThreadsRe.MatchString(line) {
			inSection = true
		} else if boundary == len(lines) && strings.HasPrefix(strings.TrimSpace(line), "{") && inSection {
			// No explicit marker: a top-level JSON object ends the hot
			// threads stream and starts the tasks stream.
			boundary = i
			break
		}
		if inSection {
			hot = append(hot, line)
		}
	}

	var tasks []string
	for i := boundary; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "{") {
			tasks = lines[i:]
			break
		}
	}

	s := Split{}
	if len(hot) > 0 {
		s.HotThreads = strings.Join(hot, "\n")
	}
	if len(tasks) > 0 {
		s.Tasks = strings.Join(tasks, "\n")
	}

	// Input that never opened a hot threads section but starts with JSON is
	// a pure tasks capture.
	if s.HotThreads == "" && s.Tasks == "" && strings.HasPrefix(strings.TrimSpace(text), "{") {
		s.Tasks = text
	}
	return s
}
