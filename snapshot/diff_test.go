package snapshot_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpDiff(t *testing.T) {
	base := "types:\n  [0] \"\" ScalarType{Kind:2 Width:4}\nfunction [0] \"main\":\n  body:\n    StmtReturn{Value:nil}\n"

	tests := []struct {
		name     string
		actual   string
		contains []string
	}{
		{
			name:     "equal",
			actual:   base,
			contains: []string{"(no difference found)"},
		},
		{
			name:   "changed statement",
			actual: strings.Replace(base, "Value:nil", "Value:3", 1),
			contains: []string{
				`line 5 in function [0] "main"`,
				"want: StmtReturn{Value:nil}",
				"got:  StmtReturn{Value:3}",
				"want 5 lines, got 5",
			},
		},
		{
			name:   "changed type",
			actual: strings.Replace(base, "Kind:2", "Kind:1", 1),
			contains: []string{
				"line 2 in types",
				"got:  [0] \"\" ScalarType{Kind:1 Width:4}",
			},
		},
		{
			name:   "extra line",
			actual: base + "; warning: unused decoration on %7: {name:x}\n",
			contains: []string{
				"line 6 in",
				"want: (missing)",
				"got:  ; warning: unused decoration on %7: {name:x}",
				"want 5 lines, got 6",
			},
		},
		{
			name:   "missing lines",
			actual: "types:\n",
			contains: []string{
				"line 2 in types",
				"got:  (missing)",
				"want 5 lines, got 1",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := dumpDiff(base, tt.actual)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDumpDiffLimit(t *testing.T) {
	var want, got strings.Builder
	for i := 0; i < maxReportedLines+3; i++ {
		want.WriteString("  a\n")
		got.WriteString("  b\n")
	}
	out := dumpDiff(want.String(), got.String())
	assert.Equal(t, maxReportedLines, strings.Count(out, "want: a"))
	assert.Contains(t, out, "... 3 more differing lines")
}

func TestGoldenFilesPresent(t *testing.T) {
	for _, shader := range loadInputShaders(t, "testdata/in") {
		_, err := os.Stat(filepath.Join("testdata", "golden", shader.name+".ir"))
		require.NoError(t, err, "golden file for %s", shader.name)
	}
}
