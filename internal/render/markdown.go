package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// rendererKey is the part of Options that changes glamour output.
// Options with different Enabled values share renderers.
type rendererKey struct {
	style            string
	width            int
	emoji            bool
	preserveNewLines bool
	tableWrap        bool
	inlineTableLinks bool
}

func keyOf(opts Options) rendererKey {
	return rendererKey{
		style:            opts.Style,
		width:            opts.Width,
		emoji:            opts.EnableEmoji,
		preserveNewLines: opts.PreserveNewLines,
		tableWrap:        opts.TableWrap,
		inlineTableLinks: opts.InlineTableLinks,
	}
}

// renderers holds idle glamour renderers per key. A TermRenderer is not
// safe for concurrent Render calls, so each caller checks one out.
var renderers = struct {
	sync.Mutex
	idle map[rendererKey][]*glamour.TermRenderer
}{idle: make(map[rendererKey][]*glamour.TermRenderer)}

func checkout(opts Options) (*glamour.TermRenderer, error) {
	key := keyOf(opts)

	renderers.Lock()
	idle := renderers.idle[key]
	if n := len(idle); n > 0 {
		r := idle[n-1]
		renderers.idle[key] = idle[:n-1]
		renderers.Unlock()
		return r, nil
	}
	if _, seen := renderers.idle[key]; !seen {
		renderers.idle[key] = nil
	}
	renderers.Unlock()

	return newRenderer(opts)
}

func checkin(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	key := keyOf(opts)
	renderers.Lock()
	renderers.idle[key] = append(renderers.idle[key], r)
	renderers.Unlock()
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// Markdown renders a reply as full markdown with a reused glamour renderer
func Markdown(content string, opts Options) (string, error) {
	r, err := checkout(opts)
	if err != nil {
		return "", err
	}
	defer checkin(opts, r)

	return r.Render(content)
}

// clearCache drops every idle renderer
func clearCache() {
	renderers.Lock()
	renderers.idle = make(map[rendererKey][]*glamour.TermRenderer)
	renderers.Unlock()
}

// cacheSize returns the number of distinct option sets seen so far
func cacheSize() int {
	renderers.Lock()
	defer renderers.Unlock()
	return len(renderers.idle)
}
