package resultsink

import (
	"os"
	"strings"
	"testing"

	"github.com/alienzj/skani-go"
)

func TestWriteQueryRefListHeaderOnlyOnFirstWrite(t *testing.T) {
	dir := t.TempDir()
	outFile := dir + "/out.tsv"

	results := []skani.AniEstimate{
		{Ani: 98.5, AfRef: 0.9, AfQuery: 0.91, RefName: "r1", QueryName: "q1"},
	}
	if err := WriteQueryRefList(results, outFile, 0, false, false, false, true); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteQueryRefList(results, outFile, 0, false, false, false, false); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "Ref_file\tQuery_file\tANI\tAlign_fraction_ref\tAlign_fraction_query" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("expected one header row and two data rows, got %d lines: %v", len(lines), lines)
	}
}

func TestWriteQueryRefListTruncatesPerQuery(t *testing.T) {
	dir := t.TempDir()
	outFile := dir + "/out.tsv"

	results := []skani.AniEstimate{
		{Ani: 90, RefName: "r1", QueryName: "q1"},
		{Ani: 99, RefName: "r2", QueryName: "q1"},
		{Ani: 80, RefName: "r3", QueryName: "q1"},
	}
	if err := WriteQueryRefList(results, outFile, 1, false, false, false, true); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %v", lines)
	}
	if !strings.Contains(lines[1], "r2") {
		t.Fatalf("expected the highest-identity row (r2) to survive truncation, got %q", lines[1])
	}
}

func TestWritePhylipMatrixFullVsLowerTriangle(t *testing.T) {
	results := []skani.AniEstimate{
		{Ani: 95, RefName: "a", QueryName: "b"},
	}

	full, err := WritePhylipMatrix(results, []string{"a", "b"}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	lower, err := WritePhylipMatrix(results, []string{"a", "b"}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(strings.Split(string(full), "\n")[1]) <= len(strings.Split(string(lower), "\n")[1]) {
		t.Fatalf("full matrix rows should be longer than lower-triangle rows")
	}
}

func TestWritePhylipMatrixMissingPairIsNA(t *testing.T) {
	out, err := WritePhylipMatrix(nil, []string{"a", "b"}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "NA") {
		t.Fatalf("expected an NA placeholder for the unreported a-b pair, got %q", out)
	}
}
