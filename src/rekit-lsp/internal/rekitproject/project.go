// Package rekitproject locates Rekit projects on disk and classifies paths inside them
// into the artifact categories that the generator commands operate on.
//
// Classification is heuristic: it relies on directory conventions, file name casing and
// substrings of the source text. Every predicate is side-effect free, may read files, never
// writes, and reports false instead of returning an error.
package rekitproject

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
)

const (
	_actionIndexFile = "actions.js"
	_reducerFile     = "reducer.js"
	_testFileSuffix  = ".test.js"
)

var (
	_componentFileName = regexp.MustCompile(`^([A-Z]+[a-z0-9]+)+\.`)
	_componentFileExt  = regexp.MustCompile(`\.js$|\.less$|\.scss$|\.css$`)
	_styleFileExt      = regexp.MustCompile(`\.less$|\.scss$|\.css$`)
	_connectedExport   = regexp.MustCompile(`export default connect\(`)
	_extensions        = regexp.MustCompile(`\.\w+`)
)

// Classifier answers questions about paths relative to the Rekit project that contains them.
type Classifier struct {
	fs     fs.WorkspaceFS
	layout Layout
}

// New creates a Classifier reading through fs. Unset layout fields take their default values.
func New(fs fs.WorkspaceFS, layout Layout) *Classifier {
	return &Classifier{
		fs:     fs,
		layout: layout.withDefaults(),
	}
}

// Layout returns the layout used by the classifier.
func (c *Classifier) Layout() Layout {
	return c.layout
}

// IsProjectRoot reports whether dir holds the features directory and at least one root marker.
func (c *Classifier) IsProjectRoot(dir string) bool {
	if dir == "" {
		return false
	}
	if !c.dirExists(c.join(dir, c.layout.FeaturesDir)) {
		return false
	}
	for _, marker := range c.layout.RootMarkers {
		markerPath := c.join(dir, marker)
		if c.fileExists(markerPath) || c.dirExists(markerPath) {
			return true
		}
	}
	return false
}

// LocateRoot walks from path towards the filesystem root and returns the first project root found.
// The walk stops once a directory is its own parent.
func (c *Classifier) LocateRoot(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	dir := filepath.Clean(path)
	for {
		if c.IsProjectRoot(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// IsInsideProject reports whether path belongs to a Rekit project.
func (c *Classifier) IsInsideProject(path string) bool {
	_, ok := c.LocateRoot(path)
	return ok
}

// FeatureName returns the path segment following the features directory, or "" when path is not
// below a features directory.
func (c *Classifier) FeatureName(path string) string {
	slashPath := filepath.ToSlash(filepath.Clean(path))
	marker := "/" + strings.Trim(c.layout.FeaturesDir, "/") + "/"
	idx := strings.Index(slashPath, marker)
	if idx < 0 {
		return ""
	}
	rest := slashPath[idx+len(marker):]
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// ArtifactName returns the base name of path with every extension removed.
func ArtifactName(path string) string {
	return _extensions.ReplaceAllString(filepath.Base(path), "")
}

// IsFeaturesFolder reports whether path is the project's features directory.
func (c *Classifier) IsFeaturesFolder(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isFeaturesFolder(root, path)
}

// IsFeature reports whether path is a directory directly inside the features directory.
func (c *Classifier) IsFeature(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isFeature(root, path)
}

// IsFeatureElement reports whether path is nested anywhere below a feature directory.
func (c *Classifier) IsFeatureElement(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isFeatureElement(root, path)
}

// IsComponent reports whether path is a component module or one of its style sheets.
func (c *Classifier) IsComponent(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isComponent(root, path)
}

// IsPage reports whether path is a page, a component whose default export is wrapped in connect().
func (c *Classifier) IsPage(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isPage(root, path)
}

// IsAction reports whether path is an action module re-exported by its feature's actions.js.
func (c *Classifier) IsAction(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isAction(root, path)
}

// IsAsyncAction reports whether path is an action module that also declares dismiss<Name>Error.
func (c *Classifier) IsAsyncAction(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isAsyncAction(root, path)
}

// IsActionIndex reports whether path is a feature's actions.js.
func (c *Classifier) IsActionIndex(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isActionIndex(root, path)
}

// IsReducer reports whether path is reducer.js inside a feature's redux directory.
func (c *Classifier) IsReducer(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isReducer(root, path)
}

// IsTest reports whether path is a *.test.js file under the test directory.
func (c *Classifier) IsTest(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isTest(root, path)
}

// IsTestFolder reports whether path is the test directory or an existing directory below it.
func (c *Classifier) IsTestFolder(path string) bool {
	root, ok := c.LocateRoot(path)
	return ok && c.isTestFolder(root, path)
}

// IsOther always holds.
func (c *Classifier) IsOther(string) bool {
	return true
}

// Classify returns every category path matches. Other is always a member.
func (c *Classifier) Classify(path string) CategorySet {
	return c.Describe(path).Categories
}

// Selection is everything known about one selected path.
type Selection struct {
	Path        string
	Root        string
	InProject   bool
	Categories  CategorySet
	ActionIndex bool
	// Feature is empty unless the path lies below the features directory.
	Feature string
	// Name is the artifact name, the base name without extensions.
	Name string
}

// Describe classifies path and gathers the values commands derive from it.
func (c *Classifier) Describe(path string) Selection {
	s := Selection{
		Path:       filepath.Clean(path),
		Categories: NewCategorySet(Other),
		Name:       ArtifactName(path),
	}

	root, ok := c.LocateRoot(path)
	if !ok {
		return s
	}
	s.Root = root
	s.InProject = true
	s.Feature = c.FeatureName(path)
	s.ActionIndex = c.isActionIndex(root, path)

	checks := []struct {
		category Category
		match    func(root, path string) bool
	}{
		{FeaturesFolder, c.isFeaturesFolder},
		{Feature, c.isFeature},
		{Component, c.isComponent},
		{Page, c.isPage},
		{Action, c.isAction},
		{AsyncAction, c.isAsyncAction},
		{Reducer, c.isReducer},
		{Test, c.isTest},
		{TestFolder, c.isTestFolder},
	}
	for _, check := range checks {
		if check.match(root, path) {
			s.Categories = s.Categories.With(check.category)
		}
	}
	return s
}

// UnitTestPath returns where the unit test of the artifact at path lives.
// Feature elements map to <test>/app/features/<feature>/<name>.test.js, everything else to
// <test>/app/components/<name>.test.js.
func (c *Classifier) UnitTestPath(path string) (string, bool) {
	root, ok := c.LocateRoot(path)
	if !ok {
		return "", false
	}
	name := ArtifactName(path) + _testFileSuffix
	if c.isFeatureElement(root, path) {
		return c.join(root, c.layout.TestDir, "app", "features", c.FeatureName(path), name), true
	}
	return c.join(root, c.layout.TestDir, "app", "components", name), true
}

func (c *Classifier) featuresDir(root string) string {
	return c.join(root, c.layout.FeaturesDir)
}

func (c *Classifier) isFeaturesFolder(root, path string) bool {
	return filepath.Clean(path) == c.featuresDir(root)
}

func (c *Classifier) isFeature(root, path string) bool {
	path = filepath.Clean(path)
	return filepath.Dir(path) == c.featuresDir(root) && c.dirExists(path)
}

func (c *Classifier) isFeatureElement(root, path string) bool {
	rel, ok := c.relative(c.featuresDir(root), filepath.Dir(filepath.Clean(path)))
	return ok && rel != "."
}

// isReduxDir reports whether dir is <features>/<feature>/<redux>.
func (c *Classifier) isReduxDir(root, dir string) bool {
	rel, ok := c.relative(c.featuresDir(root), dir)
	if !ok {
		return false
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	return len(segments) == 2 && segments[1] == c.layout.ReduxDir
}

func (c *Classifier) componentText(path string) (string, bool) {
	filename := filepath.Base(path)
	if !_componentFileName.MatchString(filename) || !_componentFileExt.MatchString(filename) {
		return "", false
	}

	jsPath := _styleFileExt.ReplaceAllString(path, ".js")
	text, ok := c.readFile(jsPath)
	if !ok {
		return "", false
	}

	declaration := regexp.MustCompile(`class ` + regexp.QuoteMeta(ArtifactName(filename)) + ` extends`)
	if !declaration.MatchString(text) {
		return "", false
	}
	return text, true
}

func (c *Classifier) isComponent(_, path string) bool {
	text, ok := c.componentText(path)
	return ok && !_connectedExport.MatchString(text)
}

func (c *Classifier) isPage(_, path string) bool {
	text, ok := c.componentText(path)
	return ok && _connectedExport.MatchString(text)
}

func (c *Classifier) isActionIndex(root, path string) bool {
	path = filepath.Clean(path)
	if filepath.Base(path) != _actionIndexFile {
		return false
	}
	dir := filepath.Dir(path)
	return (c.isFeature(root, dir) || c.isReduxDir(root, dir)) && c.fileExists(path)
}

func (c *Classifier) isAction(root, path string) bool {
	path = filepath.Clean(path)
	base := filepath.Base(path)
	if filepath.Ext(base) != ".js" || base == _actionIndexFile {
		return false
	}
	dir := filepath.Dir(path)
	if !c.isReduxDir(root, dir) || !c.fileExists(path) {
		return false
	}

	index, ok := c.readFile(filepath.Join(dir, _actionIndexFile))
	if !ok {
		return false
	}
	reexport := regexp.MustCompile(`from\s+['"]\./` + regexp.QuoteMeta(ArtifactName(base)) + `(\.js)?['"]`)
	return reexport.MatchString(index)
}

func (c *Classifier) isAsyncAction(root, path string) bool {
	if !c.isAction(root, path) {
		return false
	}
	text, ok := c.readFile(path)
	if !ok {
		return false
	}
	name := ArtifactName(path)
	action := regexp.MustCompile(`function\s+` + regexp.QuoteMeta(name) + `\s*\(`)
	dismiss := regexp.MustCompile(`function\s+dismiss` + regexp.QuoteMeta(upperFirst(name)) + `Error\s*\(`)
	return action.MatchString(text) && dismiss.MatchString(text)
}

func (c *Classifier) isReducer(root, path string) bool {
	path = filepath.Clean(path)
	return filepath.Base(path) == _reducerFile && c.isReduxDir(root, filepath.Dir(path)) && c.fileExists(path)
}

func (c *Classifier) isTest(root, path string) bool {
	rel, ok := c.relative(c.join(root, c.layout.TestDir), path)
	return ok && rel != "." && strings.HasSuffix(rel, _testFileSuffix)
}

func (c *Classifier) isTestFolder(root, path string) bool {
	_, ok := c.relative(c.join(root, c.layout.TestDir), path)
	return ok && c.dirExists(path)
}

// relative returns path relative to base when path is base or lies below it.
func (c *Classifier) relative(base, path string) (string, bool) {
	rel, err := filepath.Rel(base, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func (c *Classifier) join(root string, elem ...string) string {
	parts := []string{root}
	for _, e := range elem {
		parts = append(parts, filepath.FromSlash(e))
	}
	return filepath.Join(parts...)
}

func (c *Classifier) dirExists(path string) bool {
	ok, err := c.fs.DirExists(path)
	return err == nil && ok
}

func (c *Classifier) fileExists(path string) bool {
	ok, err := c.fs.FileExists(path)
	return err == nil && ok
}

func (c *Classifier) readFile(path string) (string, bool) {
	if !c.fileExists(path) {
		return "", false
	}
	content, err := c.fs.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(content), true
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
