package ignore

// ExcludedDirNames are directory names that are never traversed, watched, or indexed.
// Hidden directories (leading dot) are excluded separately by IsHidden.
var ExcludedDirNames = map[string]bool{
	// Dependencies
	"node_modules":     true,
	"vendor":           true,
	"bower_components": true,
	"jspm_packages":    true,
	"__pycache__":      true,
	"venv":             true,

	// Build output
	"dist":   true,
	"build":  true,
	"out":    true,
	"target": true,
	"bin":    true,
	"obj":    true,
	"_site":  true,

	// Coverage
	"coverage": true,
	"htmlcov":  true,
}

// DefaultExtensions is used when no document extension is configured.
var DefaultExtensions = []string{".md"}

// IgnoreFileNames are read from the root directory and reloaded when they change.
var IgnoreFileNames = []string{".gitignore", ".docignore"}
