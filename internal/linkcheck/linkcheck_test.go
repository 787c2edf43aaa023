package linkcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestExtractSourceLinks_FindsInlineImagesAndAutolinks(t *testing.T) {
	body := []byte("[a](./a.md) ![img](./img.png)\n\n<https://example.com>\n")

	dests := ExtractSourceLinks(body)
	require.Contains(t, dests, "./a.md")
	require.Contains(t, dests, "./img.png")
	require.Contains(t, dests, "https://example.com")
}

func TestCheckSources_AllLinksResolve_NoIssues(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"home.md":         "[blog](./blog.md) and [logo](images/logo.png)\n",
		"blog.md":         "[back](./home.md)\n",
		"images/logo.png": "png",
	})

	issues, err := CheckSources(filepath.Join(dir, "home.md"))
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestCheckSources_ReportsMissingTargets(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"home.md": "[gone](./gone.md) and [ok](./blog.md)\n",
		"blog.md": "[also gone](missing/deep.md)\n",
	})

	issues, err := CheckSources(filepath.Join(dir, "home.md"))
	require.NoError(t, err)
	require.Len(t, issues, 2)
	require.Equal(t, "./gone.md", issues[1].Link)
	require.Equal(t, "missing/deep.md", issues[0].Link)
}

func TestCheckSources_IgnoresExternalLinks(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"home.md": "[ext](https://example.com/x.md) [mail](mailto:a@b.c) [frag](#top)\n",
	})

	issues, err := CheckSources(filepath.Join(dir, "home.md"))
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestCheckSources_CyclicDocuments_Terminate(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.md": "[b](./b.md)\n",
		"b.md": "[a](./a.md)\n",
	})

	issues, err := CheckSources(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestCheckSources_MissingIndex_ReturnsError(t *testing.T) {
	_, err := CheckSources(filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
}

func TestExtractHTMLRefs_FindsHrefAndSrc(t *testing.T) {
	doc := `<html><head><link rel="stylesheet" href="main.css"></head>
<body><a href="blog">blog</a><img src="images/logo.png"><script src="app.js"></script></body></html>`

	refs, err := ExtractHTMLRefs(strings.NewReader(doc))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"main.css", "blog", "images/logo.png", "app.js"}, refs)
}

func TestCheckSite_ResolvedAndDirectoryIndexLinks_NoIssues(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html":      `<a href="blog">blog</a><link href="main.css">`,
		"main.css":        "body{}",
		"blog/index.html": `<a href="../">home</a>`,
	})

	issues, err := CheckSite(dir)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestCheckSite_ReportsBrokenInternalRefs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html": `<a href="gone">gone</a><img src="missing.png">`,
	})

	issues, err := CheckSite(dir)
	require.NoError(t, err)
	require.Len(t, issues, 2)
}

func TestCheckSite_IgnoresExternalRefs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html": `<a href="https://example.com">x</a><script src="//cdn.example.com/a.js"></script>`,
	})

	issues, err := CheckSite(dir)
	require.NoError(t, err)
	require.Empty(t, issues)
}
