package renderer

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// ResolveExecutable finds the browser binary: the configured path, then an
// installed browser, then a download when allowed. It returns "" when all of
// these fail. Only a successful resolution is remembered, so a failed or
// abandoned attempt is retried by the next caller. Concurrent callers share
// one attempt, which runs detached from any single caller's context; each
// caller still stops waiting when its own ctx is done.
func (e *Engine) ResolveExecutable(ctx context.Context) string {
	e.mu.Lock()
	p := e.executable
	e.mu.Unlock()
	if p != "" {
		return p
	}

	ch := e.resolving.DoChan("executable", func() (any, error) {
		p := e.resolveExecutable(context.WithoutCancel(ctx))
		if p != "" {
			e.mu.Lock()
			e.executable = p
			e.mu.Unlock()
		}
		e.logger.Info("renderer.executable.resolved", zap.String("path", p))
		return p, nil
	})

	select {
	case res := <-ch:
		p, _ := res.Val.(string)
		return p
	case <-ctx.Done():
		e.logger.Warn("renderer.executable.wait_abandoned", zap.Error(ctx.Err()))
		return ""
	}
}

func (e *Engine) resolveExecutable(ctx context.Context) string {
	if p := e.opts.BrowserPath; p != "" {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
		e.logger.Warn("renderer.executable.configured_missing", zap.String("path", p))
	}

	if e.acquirer == nil {
		return ""
	}
	if p, ok := e.acquirer.LookPath(); ok {
		return p
	}
	if !e.opts.AllowDownload {
		return ""
	}

	p, err := e.acquirer.Download(ctx)
	if err != nil {
		e.logger.Warn("renderer.executable.download_failed", zap.Error(err))
		return ""
	}
	return p
}
