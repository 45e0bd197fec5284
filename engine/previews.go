package engine

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
	"github.com/spaghettifunk/offaxis/engine/preview"
	"github.com/spaghettifunk/offaxis/engine/systems"
)

type previewParams struct {
	name  string
	tick  uint64
	state offaxis.ProjectionState
	opts  preview.Options
}

// previewWriter renders previews on the job system. Rendering runs in
// parallel; writes are serialized and an older tick never replaces a newer
// image of the same camera.
type previewWriter struct {
	dir    string
	format string
	jobs   *systems.JobSystem

	mu      sync.Mutex
	written map[string]uint64
}

func newPreviewWriter(dir, format string, jobs *systems.JobSystem) *previewWriter {
	return &previewWriter{
		dir:     dir,
		format:  format,
		jobs:    jobs,
		written: make(map[string]uint64),
	}
}

func (p *previewWriter) path(name string) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s.%s", name, p.format))
}

func (p *previewWriter) submit(params previewParams) {
	p.jobs.Submit(systems.JobTask{
		JobType:     systems.JOB_TYPE_FILE_IO,
		InputParams: params,
		OnStart:     p.render,
	})
}

func (p *previewWriter) render(in interface{}, out chan<- interface{}) error {
	params, ok := in.(previewParams)
	if !ok {
		return fmt.Errorf("%w: preview job params of type %T", core.ErrUnknown, in)
	}
	img := preview.Render(params.state, params.opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	if last, ok := p.written[params.name]; ok && params.tick <= last {
		return nil
	}
	path := p.path(params.name)
	if err := preview.Save(path, img); err != nil {
		return fmt.Errorf("preview of camera '%s': %w", params.name, err)
	}
	p.written[params.name] = params.tick
	core.LogDebug("wrote preview %s (tick %d)", path, params.tick)
	out <- path
	return nil
}
