package scan

import (
	"regexp"
	"testing"

	"github.com/corey/tally/internal/domain/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, spec pattern.Spec) *pattern.Matcher {
	t.Helper()
	m, err := pattern.Compile(spec)
	require.NoError(t, err)
	return m
}

func keys(seq func(func(MatchRecord) bool)) []string {
	var out []string
	for rec := range seq {
		out = append(out, rec.Key)
	}
	return out
}

func TestScan_NonOverlapping(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: "aa"})
	var spans [][2]int
	for rec := range Scan(m, "aaaaa") {
		spans = append(spans, [2]int{rec.Start, rec.End})
	}
	// "aaaaa" holds two non-overlapping "aa", not four overlapping ones.
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}}, spans)
}

func TestScan_SubstringOccurrences(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: "at"})
	assert.Equal(t, 3, Count(m, "the cat sat on the mat"))
	assert.Equal(t, []string{"at", "at", "at"}, keys(Scan(m, "the cat sat on the mat")))
}

func TestScan_GroupKey(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: `username=(\w+)`, Group: pattern.GroupIndex(1)})
	got := keys(ScanLine(m, "username=alice username=bob", 3))
	assert.Equal(t, []string{"alice", "bob"}, got)

	for rec := range ScanLine(m, "username=alice", 7) {
		assert.Equal(t, 7, rec.Line)
		assert.Equal(t, 0, rec.Start)
		assert.Equal(t, 14, rec.End)
	}
}

func TestScan_NonParticipatingGroupSkipped(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: `id(?:=(\d+))?`, Group: pattern.GroupIndex(1)})
	text := "id=1 id id=22"
	assert.Equal(t, []string{"1", "22"}, keys(Scan(m, text)))
	assert.Equal(t, 2, Count(m, text))
}

func TestScan_WholeMatchWithGroups(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: `(\w+)@(\w+)`})
	assert.Equal(t, []string{"a@b", "c@d"}, keys(Scan(m, "a@b c@d")))
}

func TestScan_CaseSensitiveNoTrim(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: `Cat\s?`})
	assert.Equal(t, []string{"Cat "}, keys(Scan(m, "cat Cat CAT")))
}

func TestScan_AnchorsPerSpan(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: `^\w+`})
	// A whole document has one start; a line scan resets it per line.
	assert.Equal(t, 1, Count(m, "alpha\nbeta"))
	assert.Equal(t, 1, Count(m, "beta"))
}

func TestScan_Restartable(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: `\d`})
	seq := Scan(m, "1 2 3")
	assert.Equal(t, keys(seq), keys(seq))
}

func TestScan_EarlyStop(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: `\d`})
	n := 0
	for range Scan(m, "1 2 3 4") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestScan_EmptyText(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: "x"})
	assert.Empty(t, keys(Scan(m, "")))
	assert.Zero(t, Count(m, ""))
}

func TestScan_Literal(t *testing.T) {
	m := mustCompile(t, pattern.Spec{Text: "(", Kind: pattern.Literal})
	assert.Equal(t, 2, Count(m, "f(x(y"))
}

// The engine must agree with a plain regexp find loop.
func TestScan_MatchesStdlibOracle(t *testing.T) {
	texts := []string{
		"the cat sat on the mat",
		"user login username=alice from 10.0.0.1\nuser login username=bob from 10.0.0.1",
		"aaaaaaaaab abab ba",
		"192.168.1.1 999.1.1.1 1.2.3 1.2.3.4.5",
		"Lorem ipsum dolor sit amet,\nconsectetur adipiscing elit.",
		"10.0.0.1 - - [x] \"GET /a HTTP/1.1\" 200 username=bob_9",
		"héllo wörld ünïcode",
		"Ärger über Öl, naïve café - 東京 Tōkyō",
		"AaAa aAAa",
	}
	patterns := []string{
		"cat", "at", `\b(?:\d{1,3}\.){3}\d{1,3}\b`, `username=\w+`,
		`a+b`, `ab`, `[aeiou]`, `\w+`, `o\w*`, `t.e`, `\d+`,
		`(?i)A`, `(?i)cat|é`, `.`, `x*`, `\pL+`, `[^ ]+`, `ö|ü`,
	}
	for _, p := range patterns {
		m := mustCompile(t, pattern.Spec{Text: p})
		oracle := regexp.MustCompile(p)
		for _, text := range texts {
			want := oracle.FindAllStringIndex(text, -1)
			var got [][]int
			for rec := range Scan(m, text) {
				got = append(got, []int{rec.Start, rec.End})
			}
			assert.Equal(t, len(want), Count(m, text), "count %q in %q", p, text)
			assert.Equal(t, want, got, "spans %q in %q", p, text)
		}
	}
}
