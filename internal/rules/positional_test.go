package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jstyle/internal/diag"
)

func TestBraceSpacing(t *testing.T) {
	h := newHarness(t)
	rule := newBraceSpacing()
	tr, ds := h.run(rule, `class A{
    void f( int x ) {
        g(x);
        int[] a = {1};
        h( );
    }
}
`)
	require.Len(t, ds, 4)
	assert.Equal(t, "{", spanText(tr, ds[0]))
	for _, d := range ds[1:] {
		assert.Equal(t, " ", spanText(tr, d))
	}

	fixed := h.fixAll(rule, tr, nil)
	assert.Equal(t, `class A {
    void f(int x) {
        g(x);
        int[] a = {1};
        h();
    }
}
`, string(fixed.Source()))
}

func TestBraceStyle(t *testing.T) {
	h := newHarness(t)
	rule := newBraceStyle()
	tr, ds := h.run(rule, `class A {
    void f(boolean c) {
        if (c) {
        }
        if (c) { g(); }
        if (c) {
            g();
        }
        else {
            h();
        }
        while (c)
        {
            g();
        }
        try {
            g();
        } catch (Exception e) {}
    }
}
`)
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Message
		assert.Equal(t, diag.PosBraceStyle, d.Code)
	}
	assert.Equal(t, []string{
		"empty block should be written as {}",
		"line break expected after '{'",
		"line break expected before '}'",
		"'else' should follow '}' on the same line",
		"'{' should stay on the line of its statement",
	}, msgs)
	assert.True(t, ds[0].HasFix())
	assert.False(t, ds[1].HasFix())

	fixed := h.apply(tr, ds[0])
	assert.Contains(t, string(fixed.Source()), "        if (c) {}\n")
}

func TestBraceStyleClosingBrace(t *testing.T) {
	h := newHarness(t)
	_, ds := h.run(newBraceStyle(), `class A {
    void f(boolean c) {
        if (c) {
            g();
        } h();
        do {
            g();
        } while (c);
        run(() -> {
            g();
        });
        if (c) {
            // nothing yet
        }
    }
}
`)
	require.Len(t, ds, 2)
	assert.Equal(t, "line break expected after a closing '}'", ds[0].Message)
	assert.Equal(t, "empty block should be written as {}", ds[1].Message)
	assert.False(t, ds[1].HasFix(), "a commented block is kept")
}

func TestCommentSpacing(t *testing.T) {
	h := newHarness(t)
	rule := newCommentSpacing()
	tr, ds := h.run(rule, `class A {
    //missing
    // fine
    //   many
    //
    /* block */
    int x; //trailing
}
`)
	require.Len(t, ds, 3)
	assert.Equal(t, "//missing", spanText(tr, ds[0]))
	assert.Equal(t, "//   many", spanText(tr, ds[1]))
	assert.Equal(t, "//trailing", spanText(tr, ds[2]))

	fixed := h.fixAll(rule, tr, nil)
	assert.Equal(t, `class A {
    // missing
    // fine
    // many
    //
    /* block */
    int x; // trailing
}
`, string(fixed.Source()))
}

func TestIndentationTab(t *testing.T) {
	h := newHarness(t)
	rule := newIndentationTab()
	tr, ds := h.run(rule, "class A {\n\tint x;\n\t\tint y;\n}\n")
	require.Len(t, ds, 2)
	assert.Equal(t, diag.SevError, ds[0].Severity)

	fixed := h.fixAll(rule, tr, map[string]any{"tabWidth": 2})
	assert.Equal(t, "class A {\n  int x;\n    int y;\n}\n", string(fixed.Source()))
}

func TestLineLength(t *testing.T) {
	h := newHarness(t)
	rule := newLineLength()
	tr := h.parse(defaultPath, `class A {
    int f(int a, int b) {
        int c = a +
            b;
        String s = "x".
            trim();
        g(a
            , b);
        g(
            (a), b);
        // this comment is definitely longer than thirty
        int e = c++
            + 1;
        String t = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa";
        return c;
    }
}
`)
	ds := h.check(rule, tr, map[string]any{"max": 30})
	assert.Equal(t, []diag.Code{
		diag.PosOperatorAtLineEnd,
		diag.PosDotAtLineEnd,
		diag.PosLeadingComma,
		diag.PosLeadingParen,
		diag.PosLineTooLong,
	}, codes(ds))
	assert.Equal(t, "        int c = a +", spanText(tr, ds[0]))
	assert.Contains(t, ds[4].Message, "44 characters, limit is 30")
	for _, d := range ds {
		assert.False(t, d.HasFix())
	}

	assert.Len(t, h.check(rule, tr, nil), 4, "default limit is 120")
}

func TestLineLengthIgnoresStringBodies(t *testing.T) {
	h := newHarness(t)
	tr := h.parse(defaultPath, "class A {\n"+
		"    String s = \"\"\"\n"+
		"        a +\n"+
		"        b.\n"+
		"        , c\n"+
		"        \"\"\";\n"+
		"    String t = \"x +\";\n"+
		"    String u = \"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\";\n"+
		"}\n")
	ds := h.check(newLineLength(), tr, map[string]any{"max": 40})
	assert.Equal(t, []diag.Code{diag.PosLineTooLong}, codes(ds), "string contents still count toward length")
	assert.Contains(t, spanText(tr, ds[0]), "String u")
}

func TestOperatorAtEnd(t *testing.T) {
	cases := map[string]string{
		"x >>>=":   ">>>=",
		"a &&":     "&&",
		"b =":      "=",
		"i++":      "",
		"i--":      "",
		"foo();":   "",
		"a <<":     "<<",
		"flag = !": "!",
	}
	for line, want := range cases {
		assert.Equal(t, want, operatorAtEnd(line), line)
	}
}

func TestCastSpacing(t *testing.T) {
	h := newHarness(t)
	rule := newCastSpacing()
	tr, ds := h.run(rule, `class A {
    int f(long y) {
        int a = (int) y;
        int b = (int)y;
        return a + b;
    }
}
`)
	require.Len(t, ds, 1)

	fixed := h.apply(tr, ds[0])
	assert.Contains(t, string(fixed.Source()), "int a = (int)y;")
}

func TestOperatorSpacing(t *testing.T) {
	h := newHarness(t)
	rule := newOperatorSpacing()
	tr, ds := h.run(rule, `class A {
    int f(int a, int b) {
        int c = a+b;
        c  = a -  b;
        c = a > b ?a : b;
        c = a
            + b;
        return c;
    }
}
`)
	ops := make([]string, len(ds))
	for i, d := range ds {
		ops[i] = spanText(tr, d)
	}
	assert.Equal(t, []string{"+", "=", "-", "?"}, ops)
	assert.Len(t, ds[0].Fixes[0].Steps, 2)

	fixed := h.fixAll(rule, tr, nil)
	assert.Equal(t, `class A {
    int f(int a, int b) {
        int c = a + b;
        c = a - b;
        c = a > b ? a : b;
        c = a
            + b;
        return c;
    }
}
`, string(fixed.Source()))
}

func TestReservedWordSpacing(t *testing.T) {
	h := newHarness(t)
	rule := newReservedWordSpacing()
	tr, ds := h.run(rule, `class A {
    void f(boolean c) {
        if(c) {
            return;
        }
        while (c) {
            break;
        }
        for(;;) {
            break;
        }
        do {
            g();
        } while(c);
        synchronized(this) {
            g();
        }
    }
}
`)
	words := make([]string, len(ds))
	for i, d := range ds {
		words[i] = spanText(tr, d)
	}
	assert.Equal(t, []string{"if", "for", "while", "synchronized"}, words)

	fixed := h.fixAll(rule, tr, nil)
	src := string(fixed.Source())
	assert.Contains(t, src, "if (c) {")
	assert.Contains(t, src, "for (;;) {")
	assert.Contains(t, src, "} while (c);")
	assert.Contains(t, src, "synchronized (this) {")
}
