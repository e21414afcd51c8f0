// Package shell is the bridge between the task UI and the desktop host it
// runs in: application metadata and native-style message boxes.
package shell

import (
	"context"
	"runtime"
)

// AppInfo describes the running application.
type AppInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Platform string `json:"platform"`
	IsDev    bool   `json:"isDev"`
}

// MessageBoxOptions configures a modal message box. Type is one of none,
// info, error, question or warning.
type MessageBoxOptions struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Detail  string   `json:"detail,omitempty"`
	Buttons []string `json:"buttons"`
}

// MessageBoxResult reports the index of the chosen button. Dismissing the
// box without a choice reports CancelID.
type MessageBoxResult struct {
	Response int `json:"response"`
}

// Bridge is what the UI needs from its host.
type Bridge interface {
	AppInfo(ctx context.Context) (AppInfo, error)
	ShowMessageBox(ctx context.Context, opts MessageBoxOptions) (MessageBoxResult, error)
}

// CancelID is the Response of a box dismissed without choosing a button.
const CancelID = -1

// Platform returns the host OS name as reported to the UI.
func Platform() string {
	return runtime.GOOS
}

// Confirm shows a two-button question box and reports whether the first
// button was chosen.
func Confirm(ctx context.Context, b Bridge, title, message, ok, cancel string) (bool, error) {
	res, err := b.ShowMessageBox(ctx, MessageBoxOptions{
		Type:    "question",
		Title:   title,
		Message: message,
		Buttons: []string{ok, cancel},
	})
	if err != nil {
		return false, err
	}
	return res.Response == 0, nil
}
