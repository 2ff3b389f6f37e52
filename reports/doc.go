/*
Package reports assembles the CI test and coverage reports into a single
directory tree suitable for publishing on GitHub Pages.

Each report becomes a section of the published tree:

	gh-pages/
	├── .nojekyll
	├── index.html          landing page linking all sections
	├── embedded/index.html Allure report (embedded)
	├── remote/index.html   Allure report (remote)
	└── coverage/index.html HTML coverage report

A section whose report is absent or empty gets a placeholder page instead, so
that all section links always lead somewhere. The sections can be customized
using a YAML manifest, see [LoadManifest].
*/
package reports
