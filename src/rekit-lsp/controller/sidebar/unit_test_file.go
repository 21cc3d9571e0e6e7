package sidebar

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	rerrors "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/errors"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/rekitproject"
)

const (
	_confirmCreateTest = "The unit test file doesn't exist, create it?"

	_unitTestTemplate = `import * as subject from '%s';

describe('%s', () => {
  it('is defined', () => {
    expect(subject).toBeDefined();
  });
});
`
)

// unitTest opens the unit test of the selected artifact, offering to create it when missing.
func (c *controller) unitTest(ctx context.Context, req *request) error {
	testPath, ok := c.classifier.UnitTestPath(req.sel.Path)
	if !ok {
		return &rerrors.NotAProjectError{Path: req.sel.Path}
	}

	exists, err := c.fs.FileExists(testPath)
	if err != nil {
		return fmt.Errorf("checking unit test: %w", err)
	}
	if !exists {
		create, err := c.confirm(ctx, _confirmCreateTest, _actionCreate)
		if err != nil || !create {
			return err
		}
		if err := c.createUnitTest(testPath, req.sel); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(req.panel, "created %s\n", testPath); err != nil {
			c.logger.Warnf("writing to output panel: %v", err)
		}
	}
	return c.showDocument(ctx, testPath, false)
}

func (c *controller) createUnitTest(testPath string, sel rekitproject.Selection) error {
	dir := filepath.Dir(testPath)
	if err := c.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := c.fs.WriteFile(testPath, unitTestSkeleton(testPath, sel)); err != nil {
		return fmt.Errorf("creating %s: %w", testPath, err)
	}
	return nil
}

// unitTestSkeleton imports the artifact relative to the test file.
func unitTestSkeleton(testPath string, sel rekitproject.Selection) string {
	target := filepath.Join(filepath.Dir(sel.Path), sel.Name)
	importPath, err := filepath.Rel(filepath.Dir(testPath), target)
	if err != nil {
		importPath = target
	}
	importPath = filepath.ToSlash(importPath)
	if !strings.HasPrefix(importPath, ".") && !filepath.IsAbs(importPath) {
		importPath = "./" + importPath
	}

	label := sel.Name
	if sel.Feature != "" {
		label = sel.Feature + "/" + sel.Name
	}
	return fmt.Sprintf(_unitTestTemplate, importPath, label)
}
