package app

import (
	"context"
	"log/slog"

	"ifacescan/internal/core/ports"
	"ifacescan/internal/core/watcher"
)

// Watch scans rootPath, reports the result, and then re-reports after every
// debounced batch of file changes until ctx is cancelled. Refresh errors are
// logged and do not stop the loop.
func (a *App) Watch(ctx context.Context, interfaceName, libraryName, rootPath string, opts Options, onResult func(ScanResult)) error {
	session, err := a.NewSession(ctx, interfaceName, libraryName, rootPath, opts)
	if err != nil {
		return err
	}
	onResult(session.Result())

	w, err := a.startWatcher(rootPath, func(paths []string) {
		if ctx.Err() != nil {
			return
		}
		slog.Info("rescanning", "files", len(paths))
		result, err := session.Refresh(ctx, paths)
		if err != nil {
			slog.Error("rescan failed", "error", err)
			return
		}
		onResult(result)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	<-ctx.Done()
	return nil
}

func (a *App) startWatcher(root string, onChange func([]string)) (ports.FileWatcher, error) {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		onChange,
	)
	if err != nil {
		return nil, err
	}
	w.SetExtensions(a.Parser.Loader().SupportedExtensions())
	if err := w.Watch([]string{root}); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}
