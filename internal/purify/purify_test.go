package purify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const stylesheet = `/* site styles */
@charset "UTF-8";
body { margin: 0 }
.used { color: red; }
.unused { color: blue; }
.used, .unused { padding: 0 }
@media (max-width: 600px) { .unused { display: none } }
@media screen { .used { display: block } }
@font-face { font-family: Foo; src: url(foo.woff) }
@keyframes spin { from { opacity: 0 } to { opacity: 1 } }
#main .used { margin: 1px }
#sidebar { width: 10px }
`

func usedSet(words ...string) Set {
	s := make(Set)
	for _, w := range words {
		s.Add(w)
	}
	return s
}

func TestPurify(t *testing.T) {
	out, err := Purify([]byte(stylesheet), usedSet("used", "main"))
	require.NoError(t, err)

	got := string(out)
	require.Contains(t, got, `@charset "UTF-8";`)
	require.Contains(t, got, "body{margin:0;}")
	require.Contains(t, got, ".used{color:red;}")
	require.Contains(t, got, ".used{padding:0;}")
	require.Contains(t, got, "@media screen{.used{display:block;}}")
	require.Contains(t, got, "@font-face{font-family:Foo;src:url(foo.woff);}")
	require.Contains(t, got, "@keyframes spin{from{opacity:0;}to{opacity:1;}}")
	require.Contains(t, got, "#main .used{margin:1px;}")

	require.NotContains(t, got, "unused")
	require.NotContains(t, got, "max-width")
	require.NotContains(t, got, "sidebar")
	require.NotContains(t, got, "site styles")
}

func TestPurify_NothingUsed(t *testing.T) {
	out, err := Purify([]byte(".a{color:red}.b{color:blue}"), usedSet())
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestPurify_Empty(t *testing.T) {
	out, err := Purify(nil, usedSet("a"))
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestUsed(t *testing.T) {
	used := usedSet("btn", "btn-primary", "nav", "col-md-6")

	tests := []struct {
		selector string
		want     bool
	}{
		{selector: "body", want: true},
		{selector: "a:hover", want: true},
		{selector: ".btn", want: true},
		{selector: ".btn.btn-primary", want: true},
		{selector: ".btn:hover", want: true},
		{selector: "#nav > li", want: true},
		{selector: ".col-md-6", want: true},
		{selector: ".btn .missing", want: false},
		{selector: "#missing", want: false},
		{selector: ".btn-secondary", want: false},
		{selector: `a[href$=".pdf"]`, want: true},
		{selector: `a[class~='pdf']`, want: true},
		{selector: `.btn[data-x="#id.cls"]`, want: true},
		{selector: `.missing[href]`, want: false},
		{selector: ".btn:not(.hidden)", want: true},
		{selector: ".btn:NOT(.hidden, #gone)", want: true},
		{selector: ".missing:not(.btn)", want: false},
		{selector: ".btn:not([data-x=')'])", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			require.Equal(t, tt.want, Used(tt.selector, used))
		})
	}
}

func TestPurify_AttributeAndNegation(t *testing.T) {
	used := usedSet("a", "href", "btn")

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "attribute value is not a class",
			src:  `a[href$=".pdf"]{color:red}`,
			want: `a[href$=".pdf"]{color:red;}`,
		},
		{
			name: "negated class is not required",
			src:  ".btn:not(.hidden){color:red}",
			want: ".btn:not(.hidden){color:red;}",
		},
		{
			name: "unused member of a list is dropped",
			src:  ".btn,.gone{margin:0 auto}",
			want: ".btn{margin:0 auto;}",
		},
		{
			name: "missing class outside the negation",
			src:  ".gone:not(.btn){color:red}",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Purify([]byte(tt.src), used)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))
		})
	}
}

func TestRequiredPart(t *testing.T) {
	tests := []struct {
		selector string
		want     string
	}{
		{selector: ".a .b", want: ".a .b"},
		{selector: `a[href$=".pdf"]`, want: "a"},
		{selector: `input[type="text"].field`, want: "input.field"},
		{selector: ".a:not(.b):hover", want: ".a:hover"},
		{selector: ".a:not(:is(.b,.c))", want: ".a"},
		{selector: `.a[title="]"]`, want: ".a"},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			require.Equal(t, tt.want, requiredPart(tt.selector))
		})
	}
}

func TestSplitSelectors(t *testing.T) {
	tests := []struct {
		list string
		want []string
	}{
		{list: ".a", want: []string{".a"}},
		{list: ".a,.b", want: []string{".a", ".b"}},
		{list: ".a, .b ,div", want: []string{".a", ".b", "div"}},
		{list: ":is(.a,.b),.c", want: []string{":is(.a,.b)", ".c"}},
		{list: `a[title="x,y"]`, want: []string{`a[title="x,y"]`}},
	}

	for _, tt := range tests {
		t.Run(tt.list, func(t *testing.T) {
			require.Equal(t, tt.want, splitSelectors(tt.list))
		})
	}
}
