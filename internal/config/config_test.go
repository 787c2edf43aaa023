package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
index: ./content/home.md
not_found_page: ./content/404.md
favicon: ./content/favicon.ico
stylesheet:
  global: ./content/main.css
  replace_default: true
links:
  - rel: stylesheet
    path: ./content/lib/icons.css
output:
  directory: ./build
site:
  title: Example
  language: nl
  meta:
    - name: description
      content: an example
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./content/home.md", cfg.Index)
	require.Equal(t, "./content/404.md", cfg.NotFoundPage)
	require.Equal(t, "./content/favicon.ico", cfg.Favicon)
	require.True(t, cfg.Stylesheet.ReplaceDefault)
	require.Equal(t, "./build", cfg.Output.Directory)
	require.Equal(t, "nl", cfg.Site.Language)
	require.Len(t, cfg.Links, 1)
	require.Equal(t, RelStylesheet, cfg.Links[0].Rel)
	require.Equal(t, []Meta{{Name: "description", Content: "an example"}}, cfg.Site.Meta)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "index: ./home.md\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./site", cfg.Output.Directory)
	require.Equal(t, "Documentation", cfg.Site.Title)
	require.Equal(t, "en", cfg.Site.Language)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("SITEGEN_TEST_TITLE", "From env")
	path := writeConfig(t, "index: ./home.md\nsite:\n  title: ${SITEGEN_TEST_TITLE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "From env", cfg.Site.Title)
}

func TestLoad_MissingIndex_ReturnsValidationError(t *testing.T) {
	path := writeConfig(t, "output:\n  directory: ./site\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryValidation))
}

func TestLoad_InvalidLanguage_ReturnsValidationError(t *testing.T) {
	path := writeConfig(t, "index: ./home.md\nsite:\n  language: 'not a tag'\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryValidation))
}

func TestLoad_LinkWithoutPath_ReturnsValidationError(t *testing.T) {
	path := writeConfig(t, "index: ./home.md\nlinks:\n  - rel: stylesheet\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryValidation))
}

func TestLoad_MissingFile_ReturnsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryConfig))
}

func TestLoad_MalformedYAML_ReturnsConfigError(t *testing.T) {
	path := writeConfig(t, "index: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryConfig))
}

func TestInit_WritesLoadableExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitegen.yaml")

	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./content/home.md", cfg.Index)
}

func TestInit_ExistingFileWithoutForce_Fails(t *testing.T) {
	path := writeConfig(t, "index: ./keep.md\n")

	err := Init(path, false)
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryValidation))

	// Content untouched.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	require.Contains(t, string(data), "keep.md")
}

func TestInit_Force_Overwrites(t *testing.T) {
	path := writeConfig(t, "index: ./old.md\n")

	require.NoError(t, Init(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "home.md")
}
