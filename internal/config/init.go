package config

import (
	"os"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

const exampleConfig = `# sitegen configuration
#
# The site tree is built from the index document: every local markdown link
# becomes a page, every other local link a copied resource.
index: ./content/home.md

# Rendered as home-relative 404.html, usable as the web server's error page.
# not_found_page: ./content/404.md

# favicon: ./content/favicon.ico

stylesheet:
  # Appended to the built-in default sheet. Set replace_default: true to
  # start from an empty sheet instead.
  # global: ./content/main.css
  replace_default: false

# Extra link resources. rel: stylesheet entries are merged into main.css.
# links:
#   - rel: stylesheet
#     path: ./content/lib/fontawesome.css

output:
  directory: ./site

site:
  title: My site
  language: en
  meta:
    - name: description
      content: A site generated with sitegen
`

// Init writes an example configuration file to path. It refuses to overwrite
// an existing file unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return sgerrors.New(sgerrors.CategoryValidation, "configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", path).
			Build()
	}
	return nil
}
