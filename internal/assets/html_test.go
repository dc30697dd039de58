package assets

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/webparts/internal/fragment"
	"github.com/wolfeidau/webparts/internal/selector"
)

func productionMetadata() *BuildMetadata {
	return &BuildMetadata{
		Outputs: map[string]OutputInfo{
			"build/vendor.AAAA1111.js": {
				EntryPoint: "webparts-entry:vendor",
				Imports:    []ImportInfo{{Path: "build/CHUNK111.js", Kind: "import-statement"}},
			},
			"build/app.BBBB2222.js": {
				EntryPoint: "app/index.js",
				Imports: []ImportInfo{
					{Path: "build/CHUNK111.js", Kind: "import-statement"},
					{Path: "build/LAZY2222.js", Kind: "dynamic-import"},
				},
			},
			"build/CHUNK111.js":            {},
			"build/LAZY2222.js":            {},
			"build/app.BBBB2222.js.map":    {},
			"build/style.CCCC3333.css":     {EntryPoint: "app/main.css"},
			"build/style.CCCC3333.css.map": {},
		},
	}
}

func productionPipeline(t *testing.T, config Config) *Pipeline {
	t.Helper()

	p, err := New(config, selectConfig(t, selector.Build, testPaths, "react", "react-dom"))
	require.NoError(t, err)
	return p
}

func TestEntryOrder(t *testing.T) {
	p := productionPipeline(t, DefaultConfig("/project"))
	require.Equal(t, []string{"vendor", "app", "style"}, p.entryOrder())

	dev, err := New(DefaultConfig("/project"), selectConfig(t, selector.Dev, testPaths))
	require.NoError(t, err)
	require.Equal(t, []string{"app", "style"}, dev.entryOrder())
}

func TestPage_Production(t *testing.T) {
	p := productionPipeline(t, DefaultConfig("/project"))

	pg := p.page(fragment.HTMLOptions{Title: "Storefront"}, productionMetadata())

	require.Equal(t, Page{
		Title:    "Storefront",
		Scripts:  []string{"/vendor.AAAA1111.js", "/app.BBBB2222.js"},
		Styles:   []string{"/style.CCCC3333.css"},
		Preloads: []string{"/CHUNK111.js"},
		Module:   true,
	}, pg)
}

func TestPage_Dev(t *testing.T) {
	config := DefaultConfig("/project")
	config.LiveReload = "/__webparts/reload"

	p, err := New(config, selectConfig(t, selector.Dev, testPaths))
	require.NoError(t, err)

	metadata := &BuildMetadata{
		Outputs: map[string]OutputInfo{
			"build/app.js":   {EntryPoint: "app/index.js"},
			"build/style.js": {EntryPoint: "app/main.css"},
		},
	}

	pg := p.page(fragment.HTMLOptions{Title: selector.DefaultTitle}, metadata)
	require.Equal(t, []string{"/app.js", "/style.js"}, pg.Scripts)
	require.Empty(t, pg.Styles)
	require.Empty(t, pg.Preloads)
	require.False(t, pg.Module)
	require.Equal(t, "/__webparts/reload", pg.LiveReload)
}

func TestRenderIndex(t *testing.T) {
	p := productionPipeline(t, DefaultConfig("/project"))

	buf := new(bytes.Buffer)
	require.NoError(t, p.renderIndex(buf, productionMetadata()))

	html := buf.String()
	require.Contains(t, html, "<title>Webpack demo</title>")
	require.Contains(t, html, `<link rel="stylesheet" href="/style.CCCC3333.css">`)
	require.Contains(t, html, `<link rel="modulepreload" href="/CHUNK111.js">`)
	require.Contains(t, html, `<script type="module" src="/vendor.AAAA1111.js"></script>`)
	require.Contains(t, html, `<script type="module" src="/app.BBBB2222.js"></script>`)
	require.NotContains(t, html, "EventSource")
	require.Less(t, bytes.Index(buf.Bytes(), []byte("vendor.AAAA1111.js")), bytes.Index(buf.Bytes(), []byte("app.BBBB2222.js")))
}

func TestRenderIndex_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "page.html.tmpl")
	err := os.WriteFile(tmplPath, []byte(`<h1>{{.Title}}</h1>{{range .Scripts}}<s>{{.}}</s>{{end}}`), 0o600)
	require.NoError(t, err)

	config := DefaultConfig("/project")
	config.Template = tmplPath
	p := productionPipeline(t, config)

	buf := new(bytes.Buffer)
	require.NoError(t, p.renderIndex(buf, productionMetadata()))
	require.Equal(t, `<h1>Webpack demo</h1><s>/vendor.AAAA1111.js</s><s>/app.BBBB2222.js</s>`, buf.String())
}

func TestNew_MissingTemplate(t *testing.T) {
	config := DefaultConfig("/project")
	config.Template = filepath.Join(t.TempDir(), "missing.tmpl")

	_, err := New(config, selectConfig(t, selector.Dev, testPaths))
	require.Error(t, err)
}

func TestLoadScripts(t *testing.T) {
	p := productionPipeline(t, DefaultConfig("/project"))

	_, _, err := p.LoadScripts("app")
	require.ErrorIs(t, err, ErrNotBuilt)

	p.metadata = productionMetadata()

	preloads, script, err := p.LoadScripts("app")
	require.NoError(t, err)
	require.Equal(t, "/app.BBBB2222.js", script)
	require.Equal(t, []string{"/CHUNK111.js"}, preloads)

	_, _, err = p.LoadScripts("missing")
	require.ErrorIs(t, err, errEntryNotFound)
}

func TestHandler(t *testing.T) {
	p := productionPipeline(t, DefaultConfig("/project"))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	p.metadata = productionMetadata()

	rec = httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "/app.BBBB2222.js")
}

func TestOutputMatcher(t *testing.T) {
	tests := []struct {
		filename   string
		outputPath string
		name       string
		want       bool
	}{
		{filename: "[name].js", outputPath: "build/app.js", name: "app", want: true},
		{filename: "[name].js", outputPath: "build/app.css", name: "app", want: true},
		{filename: "[name].js", outputPath: "build/application.js", name: "app", want: false},
		{filename: "[name].[chunkhash].js", outputPath: "build/app.AB12CD34.js", name: "app", want: true},
		{filename: "[name].[chunkhash].js", outputPath: "build/app.js", name: "app", want: false},
		{filename: "[name].[chunkhash].js", outputPath: "build/vendor.AB12CD34.js", name: "app", want: false},
		{filename: "[name].[chunkhash].js", outputPath: "build/AB12CD34.js", name: "app", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename+" "+tt.outputPath, func(t *testing.T) {
			require.Equal(t, tt.want, outputMatcher(tt.filename)(tt.outputPath, tt.name))
		})
	}
}
