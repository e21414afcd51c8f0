package shell

import (
	"context"
	"errors"
	"sync"
)

// Host is an in-process Bridge for UIs that draw their own dialogs.
// ShowMessageBox queues a prompt and blocks until the UI answers it with
// Respond; the UI polls Current to know what to draw.
type Host struct {
	info     AppInfo
	onChange func()

	mu      sync.Mutex
	prompts []*prompt
}

type prompt struct {
	opts  MessageBoxOptions
	reply chan int
}

// NewHost creates a Host. onChange, if non-nil, is called whenever the
// current prompt changes so the UI can redraw.
func NewHost(info AppInfo, onChange func()) *Host {
	if info.Platform == "" {
		info.Platform = Platform()
	}
	return &Host{info: info, onChange: onChange}
}

// AppInfo returns the metadata the Host was built with.
func (h *Host) AppInfo(_ context.Context) (AppInfo, error) {
	return h.info, nil
}

// ShowMessageBox blocks until the prompt is answered or ctx is done.
func (h *Host) ShowMessageBox(ctx context.Context, opts MessageBoxOptions) (MessageBoxResult, error) {
	if len(opts.Buttons) == 0 {
		opts.Buttons = []string{"OK"}
	}
	p := &prompt{opts: opts, reply: make(chan int, 1)}
	h.mu.Lock()
	h.prompts = append(h.prompts, p)
	h.mu.Unlock()
	h.changed()

	select {
	case i := <-p.reply:
		return MessageBoxResult{Response: i}, nil
	case <-ctx.Done():
		h.remove(p)
		return MessageBoxResult{Response: CancelID}, ctx.Err()
	}
}

// Current returns the prompt the UI should show, if any.
func (h *Host) Current() (MessageBoxOptions, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.prompts) == 0 {
		return MessageBoxOptions{}, false
	}
	return h.prompts[0].opts, true
}

// ErrNoPrompt is returned by Respond when nothing is waiting for an answer.
var ErrNoPrompt = errors.New("no message box is open")

// Respond answers the current prompt with a button index, or CancelID.
func (h *Host) Respond(button int) error {
	h.mu.Lock()
	if len(h.prompts) == 0 {
		h.mu.Unlock()
		return ErrNoPrompt
	}
	p := h.prompts[0]
	h.prompts = h.prompts[1:]
	h.mu.Unlock()

	if button < CancelID || button >= len(p.opts.Buttons) {
		button = CancelID
	}
	p.reply <- button
	h.changed()
	return nil
}

func (h *Host) remove(p *prompt) {
	h.mu.Lock()
	for i, q := range h.prompts {
		if q == p {
			h.prompts = append(h.prompts[:i], h.prompts[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
	h.changed()
}

func (h *Host) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}
