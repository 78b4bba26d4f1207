// internal/library/paths.go
// Path generation logic for the on-disk library layout.
package library

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"shapehub/internal/shared"
)

const (
	categoriesFileName = "categories.json"
	shapesDirName      = "shapes"
	assetsDirName      = "assets"
	nativeDirName      = "native"
	deckFileName       = "library_deck.pptx"
	repairMarkerName   = ".preview_repair_done"

	previewExt = ".png"
	nativeExt  = ".pptx"
)

// Paths resolves every file and directory of one shape library from its root.
// All resolved paths are guaranteed to stay inside the root.
type Paths struct {
	root string
}

// DefaultRoot returns the per-user library location under the OS config
// directory (e.g. ~/.config/shapehub/library on Linux).
func DefaultRoot() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config dir: %w", err)
	}
	return filepath.Join(base, "shapehub", "library"), nil
}

// NewPaths creates a resolver for the given library root. An empty root
// selects the per-user default location.
func NewPaths(root string) (*Paths, error) {
	if root == "" {
		def, err := DefaultRoot()
		if err != nil {
			return nil, err
		}
		root = def
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve library root: %w", err)
	}
	return &Paths{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute library root directory.
func (p *Paths) Root() string { return p.root }

// CategoriesFile returns the absolute path of categories.json.
func (p *Paths) CategoriesFile() string { return filepath.Join(p.root, categoriesFileName) }

// ShapesDir returns the absolute path of the per-category shape file directory.
func (p *Paths) ShapesDir() string { return filepath.Join(p.root, shapesDirName) }

// AssetsDir returns the absolute path of the preview asset directory.
func (p *Paths) AssetsDir() string { return filepath.Join(p.root, assetsDirName) }

// NativeDir returns the absolute path of the native snippet directory.
func (p *Paths) NativeDir() string { return filepath.Join(p.root, nativeDirName) }

// DeckFile returns the absolute path of the consolidated library deck.
func (p *Paths) DeckFile() string { return filepath.Join(p.root, deckFileName) }

// RepairStateFile returns the absolute path of the repair marker file.
func (p *Paths) RepairStateFile() string { return filepath.Join(p.root, repairMarkerName) }

// CategoryShapesFile returns the absolute path of shapes/<categoryID>.json.
func (p *Paths) CategoryShapesFile(categoryID string) (string, error) {
	if !shared.ValidCategoryID(categoryID) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidCategoryID, categoryID)
	}
	return p.secureJoin(shapesDirName, categoryID+".json")
}

// CategoryAssetsDir returns the absolute path of assets/<categoryID>.
func (p *Paths) CategoryAssetsDir(categoryID string) (string, error) {
	if !shared.ValidCategoryID(categoryID) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidCategoryID, categoryID)
	}
	return p.secureJoin(assetsDirName, categoryID)
}

// PreviewFile returns the absolute path of assets/<categoryID>/<shapeID>.png.
func (p *Paths) PreviewFile(categoryID, shapeID string) (string, error) {
	if !shared.ValidCategoryID(categoryID) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidCategoryID, categoryID)
	}
	if !shared.ValidShapeID(shapeID) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidShapeID, shapeID)
	}
	return p.secureJoin(assetsDirName, categoryID, shapeID+previewExt)
}

// NativeFile returns the absolute path of native/<shapeID>.pptx.
func (p *Paths) NativeFile(shapeID string) (string, error) {
	if !shared.ValidShapeID(shapeID) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidShapeID, shapeID)
	}
	return p.secureJoin(nativeDirName, shapeID+nativeExt)
}

// PreviewRel returns the library-relative preview path stored inside shape
// records. Relative paths always use forward slashes.
func PreviewRel(categoryID, shapeID string) string {
	return path.Join(assetsDirName, categoryID, shapeID+previewExt)
}

// NativeRel returns the library-relative native snippet path stored inside
// shape records.
func NativeRel(shapeID string) string {
	return path.Join(nativeDirName, shapeID+nativeExt)
}

// ResolveRel resolves a stored library-relative path (forward slashes) to an
// absolute path inside the root.
func (p *Paths) ResolveRel(rel string) (string, error) {
	return p.secureJoin(strings.Split(path.Clean(rel), "/")...)
}

// EnsureLayout creates the root directory skeleton if it does not exist.
func (p *Paths) EnsureLayout() error {
	for _, dir := range []string{p.root, p.ShapesDir(), p.AssetsDir(), p.NativeDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create library directory %s: %w", dir, err)
		}
	}
	return nil
}

// secureJoin joins parts under the root and rejects any result that would
// escape it.
func (p *Paths) secureJoin(parts ...string) (string, error) {
	joined := filepath.Join(append([]string{p.root}, parts...)...)

	// --- SECURITY: Prevent Path Traversal ---
	cleaned := filepath.Clean(joined)
	if cleaned == p.root || !strings.HasPrefix(cleaned, p.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path: potential path traversal")
	}
	return cleaned, nil
}
