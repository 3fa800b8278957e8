package rules

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	aho "github.com/petar-dambovaliev/aho-corasick"

	"jstyle/internal/config"
	"jstyle/internal/convention"
	"jstyle/internal/diag"
	"jstyle/internal/source"
	"jstyle/internal/tree"
)

// naming-convention: no name starts or ends with '_' or '$'.
type namingConvention struct{ base }

func newNamingConvention() *namingConvention {
	return &namingConvention{base{
		id:       "naming-convention",
		code:     diag.NamEdgeUnderscore,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindIdentifier},
		severity: diag.SevWarning,
	}}
}

func (r *namingConvention) Check(ctx *Context, ident tree.Node) error {
	text := ident.Text()
	if !convention.HasEdgeMarker(text) {
		return nil
	}
	b := ctx.Report(r.code, ident, fmt.Sprintf("name %q starts or ends with '_' or '$'", text))
	if fixed := convention.StripEdgeMarkers(text); isDeclName(ident) && fixed != text && validIdentifier(fixed) {
		b.WithFix(diag.RenameIdentifier("rename to "+fixed, ident, fixed).
			WithApplicability(diag.FixApplicabilitySafeWithHeuristics).
			Preferred())
	}
	b.Emit()
	return nil
}

// mixed-script: names are English, neither Chinese nor Chinese mixed with Latin.
type mixedScript struct{ base }

func newMixedScript() *mixedScript {
	return &mixedScript{base{
		id:       "mixed-script",
		code:     diag.NamMixedScript,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindIdentifier},
		severity: diag.SevWarning,
	}}
}

func (r *mixedScript) Check(ctx *Context, ident tree.Node) error {
	text := ident.Text()
	if !convention.ContainsHan(text) {
		return nil
	}
	msg := fmt.Sprintf("name %q contains Chinese characters", text)
	if convention.MixesLatinHan(text) {
		msg = fmt.Sprintf("name %q mixes Latin and Chinese characters", text)
	}
	b := ctx.Report(r.code, ident, msg)
	if fixed := convention.DropHan(text); isDeclName(ident) && fixed != text && validIdentifier(fixed) {
		b.WithFix(diag.RenameIdentifier("rename to "+fixed, ident, fixed).
			WithApplicability(diag.FixApplicabilityManualReview))
	}
	b.Emit()
	return nil
}

// sensitive-words: configured words in comments (whole word, any case) and
// in field names (exact substring).
type sensitiveWords struct{ base }

var defaultSensitiveWords = []string{"blackList", "whiteList", "slave", "SB", "WTF"}

func newSensitiveWords() *sensitiveWords {
	return &sensitiveWords{base{
		id:       "sensitive-words",
		code:     diag.NamSensitiveWord,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindComment, tree.KindField},
		severity: diag.SevWarning,
		options: []config.OptionSpec{
			{Name: "words", Kind: config.OptionStringSet, Default: defaultSensitiveWords, Doc: "words to report"},
		},
	}}
}

func (r *sensitiveWords) Check(ctx *Context, n tree.Node) error {
	words := ctx.Options.StringSet("words")
	if len(words) == 0 {
		return nil
	}
	if n.Kind() == tree.KindComment {
		m := matcherFor(words, true)
		for _, hit := range m.ac.FindAll(n.Text()) {
			sp := source.Span{
				File:  n.Span().File,
				Start: n.Start() + uint32(hit.Start()), // #nosec G115 -- offsets inside a comment
				End:   n.Start() + uint32(hit.End()),   // #nosec G115
			}
			ctx.ReportAt(r.code, n, sp, fmt.Sprintf("comment uses sensitive word %q", ctx.Text(sp))).Emit()
		}
		return nil
	}
	m := matcherFor(words, false)
	for _, d := range convention.Declarators(n) {
		name := convention.DeclaredName(d)
		hits := m.ac.FindAll(name.Text())
		if len(hits) == 0 {
			continue
		}
		ctx.Report(r.code, name, fmt.Sprintf("field %q uses sensitive word %q", name.Text(), m.words[hits[0].Pattern()])).Emit()
	}
	return nil
}

type wordMatcher struct {
	ac    aho.AhoCorasick
	words []string
}

const matcherCacheSize = 32

var matcherCache = func() *lru.Cache[string, *wordMatcher] {
	c, err := lru.New[string, *wordMatcher](matcherCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}()

// matcherFor returns an automaton for words; comment matching is whole-word
// and ASCII case-insensitive, name matching is exact.
func matcherFor(words []string, comments bool) *wordMatcher {
	key := fmt.Sprintf("%t\x00%s", comments, strings.Join(words, "\x00"))
	if m, ok := matcherCache.Get(key); ok {
		return m
	}
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		AsciiCaseInsensitive: comments,
		MatchOnlyWholeWords:  comments,
		MatchKind:            aho.LeftMostLongestMatch,
		DFA:                  true,
	})
	m := &wordMatcher{ac: builder.Build(words), words: words}
	matcherCache.Add(key, m)
	return m
}
