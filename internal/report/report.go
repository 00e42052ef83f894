// Package report formats the word index for people: one line per word, in
// ascending word order.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/bst"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/word"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

type Format int

const (
	// FilesOnly prints "word: a.txt b.txt".
	FilesOnly Format = iota + 1
	// FilesWithLines prints "word: a.txt[1, 4] b.txt[2]".
	FilesWithLines
	// FilesWithLinesAndFrequency appends "(freq = N)" to FilesWithLines.
	FilesWithLinesAndFrequency
)

var flags = map[string]Format{
	"pf": FilesOnly,
	"pl": FilesWithLines,
	"po": FilesWithLinesAndFrequency,
}

// ParseFlag maps a command-line flag ("-pf", "-pl", "-po", with or without the
// dash) to its Format.
func ParseFlag(flag string) (Format, error) {
	if f, ok := flags[strings.TrimPrefix(flag, "-")]; ok {
		return f, nil
	}
	return 0, apperrors.Newf(apperrors.ErrUsage, apperrors.ExitUsage, "unknown report flag %q, use -pf, -pl or -po", flag)
}

func (f Format) String() string {
	for name, v := range flags {
		if v == f {
			return "-" + name
		}
	}
	return "unknown(" + strconv.Itoa(int(f)) + ")"
}

// Line renders a single record.
func Line(rec *word.Record, f Format) string {
	var sb strings.Builder
	sb.WriteString(rec.Key())
	sb.WriteString(":")
	for _, file := range rec.Files() {
		sb.WriteByte(' ')
		sb.WriteString(file)
		if f == FilesOnly {
			continue
		}
		sb.WriteByte('[')
		for i, line := range rec.Lines(file) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Itoa(line))
		}
		sb.WriteByte(']')
	}
	if f == FilesWithLinesAndFrequency {
		fmt.Fprintf(&sb, " (freq = %d)", rec.TotalFrequency())
	}
	return sb.String()
}

// Write drains c, writing one line per record. It returns the number of
// records written.
func Write(w io.Writer, c *bst.Cursor[*word.Record], f Format) (int, error) {
	if !validFormat(f) {
		return 0, fmt.Errorf("writing report: format %d: %w", f, apperrors.ErrInvalidArgument)
	}
	bw := bufio.NewWriter(w)
	count := 0
	for rec := range c.All() {
		if _, err := bw.WriteString(Line(rec, f)); err != nil {
			return count, fmt.Errorf("writing report line for %q: %w", rec.Key(), err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return count, fmt.Errorf("writing report line for %q: %w", rec.Key(), err)
		}
		count++
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("flushing report: %w", err)
	}
	return count, nil
}

func validFormat(f Format) bool {
	switch f {
	case FilesOnly, FilesWithLines, FilesWithLinesAndFrequency:
		return true
	}
	return false
}
