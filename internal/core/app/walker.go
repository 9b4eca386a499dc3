package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"ifacescan/internal/core/errors"
	"ifacescan/internal/shared/util"
)

// CollectFiles lists the source files under root in lexical traversal order.
// A root that is itself a file yields that file when its extension is
// supported. Excluded directories are pruned; the root is never excluded.
func (a *App) CollectFiles(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.IOFailure(err, root)
	}
	if !info.IsDir() {
		if a.includeFile(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.IOFailure(err, path)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && util.MatchAny(a.excludeDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if !a.includeFile(path) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			isFile, err := isFileLink(path)
			if err != nil {
				return errors.IOFailure(err, path)
			}
			if !isFile {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (a *App) includeFile(path string) bool {
	if !a.Parser.IsSupportedPath(path) {
		return false
	}
	return !util.MatchAny(a.excludeFiles, filepath.Base(path))
}

// isFileLink reports whether a symlink resolves to a regular file. Links to
// directories are not followed, matching WalkDir. A dangling link is an error.
func isFileLink(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
