package zonefile

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strconv"
	"strings"
)

// CZDS dumps are tab-separated: owner, TTL, class, type, then rdata. The
// rdata may itself contain literal tabs (TXT records), so everything past the
// fourth field is rejoined verbatim.

const (
	// maxLineBytes covers long TXT/DNSKEY rdata lines.
	maxLineBytes = 1024 * 1024

	// GzipSuffix marks a compressed zone file.
	GzipSuffix = ".gz"
)

type Record struct {
	Owner string
	TTL   *int32
	Class *string
	Type  *string
	RData *string
}

// ParseLine parses one zone file line. It reports false for empty lines,
// comments (';'), directives ('$') and lines with fewer than four
// tab-separated fields. It never fails: a malformed TTL becomes a nil TTL,
// empty fields become nil.
func ParseLine(line string) (Record, bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" || line[0] == ';' || line[0] == '$' {
		return Record{}, false
	}

	parts := strings.Split(line, "\t")
	if len(parts) < 4 {
		return Record{}, false
	}

	r := Record{
		Owner: parts[0],
		Class: optional(parts[2]),
		Type:  optional(parts[3]),
		RData: optional(strings.TrimSpace(strings.Join(parts[4:], "\t"))),
	}

	if ttl, err := strconv.ParseInt(parts[1], 10, 32); err == nil {
		t := int32(ttl)
		r.TTL = &t
	}

	return r, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SOASerial extracts the serial from an SOA rdata string
// (mname rname serial refresh retry expire minimum).
func SOASerial(rdata string) (int64, bool) {
	fields := strings.Fields(rdata)
	if len(fields) < 3 {
		return 0, false
	}
	serial, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return serial, true
}

// Scanner lazily yields parsed records from a reader, skipping anything
// ParseLine rejects.
type Scanner struct {
	s   *bufio.Scanner
	rec Record
}

func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Scanner{s: s}
}

// Scan advances to the next record. It returns false at EOF or on a read
// error (see Err).
func (sc *Scanner) Scan() bool {
	for sc.s.Scan() {
		if rec, ok := ParseLine(sc.s.Text()); ok {
			sc.rec = rec
			return true
		}
	}
	return false
}

func (sc *Scanner) Record() Record {
	return sc.rec
}

func (sc *Scanner) Err() error {
	return sc.s.Err()
}

type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// Open opens a zone file for reading, transparently decompressing it when the
// path carries a gzip suffix.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, GzipSuffix) {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipReadCloser{Reader: gz, f: f}, nil
}
