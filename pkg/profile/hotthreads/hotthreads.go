// Package hotthreads parses Elasticsearch Hot Threads API text output into
// normalized profile records.
//
// The format is line-oriented: node header lines (":::" prefix) introduce a
// node section, a "Hot threads at ..." line carries the sampling interval,
// and each thread block starts with a CPU usage line followed by a snapshots
// line and stack frames. Only the thread-level data is carried into records;
// the thread name is the leaf label and the CPU time is the weight.
package hotthreads

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/esflame/esflame/pkg/errors"
	"github.com/esflame/esflame/pkg/profile"
)

var (
	// Node header line, e.g.
	// ::: {8d13c2252a3717d6039a93c52054b7db}{yzr8Xq-1TwytcvJ04S4YoQ}{...}{10.0.0.1}
	nodeHeaderRe = regexp.MustCompile(`^:::\s+\{([a-f0-9]+)\}\{([^}]+)\}\{[^}]+\}\{([^}]+)\}`)

	// Hot threads header, e.g.
	// Hot threads at 2026-01-18T08:42:32.186Z, interval=500ms, busiestThreads=3
	headerRe = regexp.MustCompile(`Hot threads at ([\dT:.]+Z),\s+interval=(\d+)ms,`)

	// CPU usage line, e.g.
	// 0.4% (2.2ms out of 500ms) cpu usage by thread 'thread-name'
	// 0.0% (141.2micros out of 500ms) cpu usage by thread 'thread-name'
	cpuUsageRe = regexp.MustCompile(`^([\d.]+)%\s+\(([\d.]+)(micros|ms)\s+out of (\d+)ms\)\s+cpu usage by thread '([^']+)'`)

	// Snapshots line, e.g. 10/10 snapshots sharing following 6 elements
	snapshotsRe = regexp.MustCompile(`(\d+)/(\d+) snapshots sharing following \d+ elements`)
)

// node carries the identity of the node section currently being scanned.
type node struct {
	id   string
	name string
	ip   string
}

// Parse reads Hot Threads text from r and returns the normalized document.
func Parse(r io.Reader) (profile.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return profile.Document{}, errors.Wrap(errors.ErrCodeParseFailed, err, "read hot threads input")
	}
	return ParseText(string(data))
}

// ParseText parses Hot Threads text into a document. Input containing no
// thread blocks yields an empty document, not an error; a thread block seen
// before any node header is a parse error since the record would lack its
// grouping key.
func ParseText(text string) (profile.Document, error) {
	doc := profile.Document{Source: profile.SourceHotThreads, Interval: 500}

	var (
		current     *node
		interval    float64
		threadLines []string
	)

	flush := func() error {
		if len(threadLines) == 0 {
			return nil
		}
		if current == nil {
			return errors.New(errors.ErrCodeParseFailed, "thread block without a preceding node header: %q", threadLines[0])
		}
		if rec, ok := parseThread(threadLines, *current); ok {
			doc.Records = append(doc.Records, rec)
		}
		threadLines = nil
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := nodeHeaderRe.FindStringSubmatch(line); m != nil {
			if err := flush(); err != nil {
				return profile.Document{}, err
			}
			current = &node{id: m[1], name: m[2], ip: m[3]}
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			interval, _ = strconv.ParseFloat(m[2], 64)
			doc.Interval = interval
			continue
		}

		trimmed := strings.TrimSpace(line)
		if cpuUsageRe.MatchString(trimmed) {
			if err := flush(); err != nil {
				return profile.Document{}, err
			}
			threadLines = []string{trimmed}
			continue
		}

		switch {
		case len(threadLines) > 0 && trimmed != "":
			threadLines = append(threadLines, trimmed)
		case len(threadLines) > 0:
			if err := flush(); err != nil {
				return profile.Document{}, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return profile.Document{}, errors.Wrap(errors.ErrCodeParseFailed, err, "scan hot threads input")
	}
	if err := flush(); err != nil {
		return profile.Document{}, err
	}

	return doc, nil
}

// parseThread converts one collected thread block into a record.
// Threads without any stack frames carry no attributable work and are
// skipped, matching the Hot Threads API's idle thread entries.
func parseThread(lines []string, n node) (profile.Record, bool) {
	m := cpuUsageRe.FindStringSubmatch(lines[0])
	if m == nil {
		return profile.Record{}, false
	}

	cpuTime, _ := strconv.ParseFloat(m[2], 64)
	if m[3] == "micros" {
		cpuTime /= 1000
	}
	threadName := m[5]

	samples := 0
	if len(lines) > 1 {
		if sm := snapshotsRe.FindStringSubmatch(lines[1]); sm != nil {
			samples, _ = strconv.Atoi(sm[1])
		}
	}

	var frames []string
	for _, line := range lines[2:] {
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		frames = append(frames, stripModulePrefix(line))
	}
	if len(frames) == 0 {
		return profile.Record{}, false
	}

	return profile.Record{
		GroupKey:  n.id,
		GroupName: n.name,
		Label:     threadName,
		Weight:    cpuTime,
		Samples:   samples,
	}, true
}

// stripModulePrefix removes a Java module qualifier from a stack frame, e.g.
// "java.base@11.0.25/jdk.internal.misc.Unsafe.park" becomes
// "jdk.internal.misc.Unsafe.park".
func stripModulePrefix(frame string) string {
	at := strings.Index(frame, "@")
	if at < 0 {
		return frame
	}
	rest := frame[at+1:]
	slash := strings.LastIndex(rest, "/")
	if slash < 0 {
		return frame
	}
	return rest[slash+1:]
}
