package zonefile

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func strptr(s string) *string { return &s }
func ttlptr(n int32) *int32   { return &n }

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		ok       bool
		expected Record
	}{
		{name: "empty", line: "", ok: false},
		{name: "newline only", line: "\n", ok: false},
		{name: "comment", line: "; this is a comment", ok: false},
		{name: "directive", line: "$ORIGIN example.", ok: false},
		{name: "two fields", line: "a\tb", ok: false},
		{name: "three fields", line: "a\t3600\tIN", ok: false},
		{
			name: "basic a record",
			line: "a\t1\tIN\tA\t1.2.3.4",
			ok:   true,
			expected: Record{
				Owner: "a",
				TTL:   ttlptr(1),
				Class: strptr("IN"),
				Type:  strptr("A"),
				RData: strptr("1.2.3.4"),
			},
		},
		{
			name: "trailing newline stripped",
			line: "a\t3600\tIN\tA\t1.1.1.1\n",
			ok:   true,
			expected: Record{
				Owner: "a",
				TTL:   ttlptr(3600),
				Class: strptr("IN"),
				Type:  strptr("A"),
				RData: strptr("1.1.1.1"),
			},
		},
		{
			name: "crlf stripped",
			line: "a\t3600\tIN\tA\t1.1.1.1\r\n",
			ok:   true,
			expected: Record{
				Owner: "a",
				TTL:   ttlptr(3600),
				Class: strptr("IN"),
				Type:  strptr("A"),
				RData: strptr("1.1.1.1"),
			},
		},
		{
			name: "four fields only",
			line: "example.\t86400\tIN\tNS",
			ok:   true,
			expected: Record{
				Owner: "example.",
				TTL:   ttlptr(86400),
				Class: strptr("IN"),
				Type:  strptr("NS"),
			},
		},
		{
			name: "malformed ttl tolerated",
			line: "a\tnot-a-number\tIN\tA\t1.2.3.4",
			ok:   true,
			expected: Record{
				Owner: "a",
				Class: strptr("IN"),
				Type:  strptr("A"),
				RData: strptr("1.2.3.4"),
			},
		},
		{
			name: "empty ttl class and type",
			line: "a\t\t\t\tpayload",
			ok:   true,
			expected: Record{
				Owner: "a",
				RData: strptr("payload"),
			},
		},
		{
			name: "rdata with literal tabs rejoined",
			line: "a\t300\tIN\tTXT\tv=spf1\tinclude:example.com\t~all",
			ok:   true,
			expected: Record{
				Owner: "a",
				TTL:   ttlptr(300),
				Class: strptr("IN"),
				Type:  strptr("TXT"),
				RData: strptr("v=spf1\tinclude:example.com\t~all"),
			},
		},
		{
			name: "rdata whitespace trimmed to nil",
			line: "a\t300\tIN\tA\t   ",
			ok:   true,
			expected: Record{
				Owner: "a",
				TTL:   ttlptr(300),
				Class: strptr("IN"),
				Type:  strptr("A"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, ok := ParseLine(tc.line)
			if ok != tc.ok {
				t.Fatalf("ParseLine(%q) ok = %v, expected %v", tc.line, ok, tc.ok)
			}
			if !ok {
				return
			}
			if rec.Owner != tc.expected.Owner {
				t.Errorf("owner = %q, expected %q", rec.Owner, tc.expected.Owner)
			}
			checkInt32(t, "ttl", rec.TTL, tc.expected.TTL)
			checkString(t, "class", rec.Class, tc.expected.Class)
			checkString(t, "type", rec.Type, tc.expected.Type)
			checkString(t, "rdata", rec.RData, tc.expected.RData)
		})
	}
}

func checkString(t *testing.T, field string, got, expected *string) {
	t.Helper()
	if (got == nil) != (expected == nil) {
		t.Errorf("%s = %v, expected %v", field, got, expected)
		return
	}
	if got != nil && *got != *expected {
		t.Errorf("%s = %q, expected %q", field, *got, *expected)
	}
}

func checkInt32(t *testing.T, field string, got, expected *int32) {
	t.Helper()
	if (got == nil) != (expected == nil) {
		t.Errorf("%s = %v, expected %v", field, got, expected)
		return
	}
	if got != nil && *got != *expected {
		t.Errorf("%s = %d, expected %d", field, *got, *expected)
	}
}

func TestSOASerial(t *testing.T) {
	tests := []struct {
		rdata    string
		serial   int64
		expected bool
	}{
		{"ns1.example. hostmaster.example. 2024010101 7200 3600 1209600 300", 2024010101, true},
		{"ns1.example. hostmaster.example.", 0, false},
		{"ns1.example. hostmaster.example. not-a-serial 7200 3600 1209600 300", 0, false},
		{"", 0, false},
	}

	for i, tc := range tests {
		serial, ok := SOASerial(tc.rdata)
		if ok != tc.expected {
			t.Errorf("Test %d: ok = %v, expected %v", i, ok, tc.expected)
		}
		if serial != tc.serial {
			t.Errorf("Test %d: serial = %d, expected %d", i, serial, tc.serial)
		}
	}
}

func TestScanner(t *testing.T) {
	input := strings.Join([]string{
		"; generated by czds",
		"$ORIGIN example.",
		"",
		"a\t3600\tIN\tA\t1.1.1.1",
		"bad line",
		"b\t3600\tIN\tAAAA\t::1",
	}, "\n")

	sc := NewScanner(strings.NewReader(input))

	var owners []string
	for sc.Scan() {
		owners = append(owners, sc.Record().Owner)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}

	if len(owners) != 2 || owners[0] != "a" || owners[1] != "b" {
		t.Errorf("owners = %v, expected [a b]", owners)
	}
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	content := "a\t3600\tIN\tA\t1.1.1.1\n"

	plain := filepath.Join(dir, "test.zone")
	if err := os.WriteFile(plain, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	compressed := filepath.Join(dir, "test.zone.gz")
	f, err := os.Create(compressed)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, compressed} {
		r, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s): %v", path, err)
		}

		sc := NewScanner(r)
		if !sc.Scan() {
			t.Fatalf("Open(%s): expected one record", path)
		}
		if sc.Record().Owner != "a" {
			t.Errorf("Open(%s): owner = %q, expected %q", path, sc.Record().Owner, "a")
		}
		if sc.Scan() {
			t.Errorf("Open(%s): unexpected extra record", path)
		}
		if err := r.Close(); err != nil {
			t.Errorf("Open(%s): close: %v", path, err)
		}
	}
}
