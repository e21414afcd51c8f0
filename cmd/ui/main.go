package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"taskdesk/internal/config"
	"taskdesk/pkg/client"
	"taskdesk/pkg/shell"
	"taskdesk/pkg/task"
	"taskdesk/pkg/taskstore"
)

var (
	theme *material.Theme

	grey   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	red    = color.NRGBA{R: 0xE0, G: 0x40, B: 0x40, A: 0xFF}
	orange = color.NRGBA{R: 0xFF, G: 0xA0, B: 0x00, A: 0xFF}
	green  = color.NRGBA{R: 0x00, G: 0xC0, B: 0x00, A: 0xFF}
)

const pollInterval = 15 * time.Second

// UI holds the widget state of the task window between frames.
type UI struct {
	ctx    context.Context
	window *app.Window
	store  *taskstore.Store
	host   *shell.Host
	logger *slog.Logger

	// Header
	aboutBtn   widget.Clickable
	refreshBtn widget.Clickable
	newTaskBtn widget.Clickable

	// Filters
	filterAll       widget.Clickable
	filterActive    widget.Clickable
	filterCompleted widget.Clickable

	// Tasks
	taskList widget.List
	rows     map[string]*taskRow

	form   taskForm
	prompt promptBox
}

type taskRow struct {
	toggle widget.Clickable
	edit   widget.Clickable
	delete widget.Clickable
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	api, err := client.New(cfg.APIBaseURL, client.WithLogger(logger))
	if err != nil {
		logger.Error("api client", "error", err)
		os.Exit(1)
	}

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	ctx, cancel := context.WithCancel(context.Background())
	w := new(app.Window)
	w.Option(app.Title(cfg.AppName))
	w.Option(app.Size(unit.Dp(900), unit.Dp(700)))

	ui := &UI{
		ctx:    ctx,
		window: w,
		store:  taskstore.New(api, taskstore.WithLogger(logger)),
		host: shell.NewHost(shell.AppInfo{
			Name:    cfg.AppName,
			Version: cfg.AppVersion,
			IsDev:   cfg.IsDev(),
		}, w.Invalidate),
		logger: logger,
		rows:   make(map[string]*taskRow),
	}
	ui.taskList.Axis = layout.Vertical
	ui.form.init()
	ui.store.Subscribe(func(taskstore.State) { w.Invalidate() })

	go ui.pollTasks()

	go func() {
		err := ui.run(w)
		cancel()
		if err != nil {
			logger.Error("window", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (ui *UI) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			st := ui.store.State()
			ui.form.sync(st)
			if opts, open := ui.host.Current(); open {
				ui.prompt.handle(gtx, ui.host, opts)
			} else if st.IsFormOpen {
				ui.form.handle(gtx, ui)
			} else {
				ui.handleClicks(gtx, st)
			}
			ui.layout(gtx, st)
			e.Frame(gtx.Ops)
		}
	}
}

func (ui *UI) pollTasks() {
	ui.store.FetchTasks(ui.ctx)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ui.ctx.Done():
			return
		case <-ticker.C:
			ui.store.FetchTasks(ui.ctx)
		}
	}
}

func (ui *UI) handleClicks(gtx layout.Context, st taskstore.State) {
	if ui.aboutBtn.Clicked(gtx) {
		go ui.showAbout()
	}
	if ui.refreshBtn.Clicked(gtx) {
		go ui.store.FetchTasks(ui.ctx)
	}
	if ui.newTaskBtn.Clicked(gtx) {
		ui.store.OpenTaskForm(nil)
	}
	if ui.filterAll.Clicked(gtx) {
		ui.store.SetFilter(task.FilterAll)
	}
	if ui.filterActive.Clicked(gtx) {
		ui.store.SetFilter(task.FilterActive)
	}
	if ui.filterCompleted.Clicked(gtx) {
		ui.store.SetFilter(task.FilterCompleted)
	}
	for _, t := range st.Tasks {
		r := ui.row(t.ID)
		if r.toggle.Clicked(gtx) {
			id := t.ID
			go func() { _, _ = ui.store.ToggleTaskCompletion(ui.ctx, id) }()
		}
		if r.edit.Clicked(gtx) {
			ui.store.OpenTaskForm(&t)
		}
		if r.delete.Clicked(gtx) {
			go ui.confirmDelete(t.ID)
		}
	}
}

func (ui *UI) row(id string) *taskRow {
	r, ok := ui.rows[id]
	if !ok {
		r = new(taskRow)
		ui.rows[id] = r
	}
	return r
}

// pruneRows drops widgets for tasks no longer in the list.
func (ui *UI) pruneRows(tasks []task.Task) {
	if len(ui.rows) <= len(tasks) {
		return
	}
	keep := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		keep[t.ID] = true
	}
	for id := range ui.rows {
		if !keep[id] {
			delete(ui.rows, id)
		}
	}
}

func (ui *UI) confirmDelete(id string) {
	ok, err := shell.Confirm(ui.ctx, ui.host, "Delete Task", "Are you sure you want to delete this task?", "Delete", "Cancel")
	if err != nil || !ok {
		return
	}
	_ = ui.store.DeleteTask(ui.ctx, id)
}

func (ui *UI) showAbout() {
	info, err := ui.host.AppInfo(ui.ctx)
	if err != nil {
		ui.logger.Error("app info", "error", err)
		return
	}
	detail := fmt.Sprintf("Version %s\nPlatform: %s", info.Version, info.Platform)
	if info.IsDev {
		detail += "\nDevelopment build"
	}
	_, _ = ui.host.ShowMessageBox(ui.ctx, shell.MessageBoxOptions{
		Type:    "info",
		Title:   "About",
		Message: info.Name,
		Detail:  detail,
	})
}

func (ui *UI) layout(gtx layout.Context, st taskstore.State) layout.Dimensions {
	_, prompting := ui.host.Current()
	return layout.Stack{}.Layout(gtx,
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			if prompting || st.IsFormOpen {
				gtx = gtx.Disabled()
			}
			return ui.layoutMain(gtx, st)
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			if !st.IsFormOpen {
				return layout.Dimensions{}
			}
			if prompting {
				gtx = gtx.Disabled()
			}
			return modal(gtx, func(gtx layout.Context) layout.Dimensions {
				return ui.form.layout(gtx, st)
			})
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			opts, open := ui.host.Current()
			if !open {
				return layout.Dimensions{}
			}
			return modal(gtx, func(gtx layout.Context) layout.Dimensions {
				return ui.prompt.layout(gtx, opts)
			})
		}),
	)
}

func (ui *UI) layoutMain(gtx layout.Context, st taskstore.State) layout.Dimensions {
	counts := task.Tally(st.Tasks)
	visible := task.FilterTasks(st.Tasks, st.Filter)
	ui.pruneRows(st.Tasks)

	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return ui.layoutHeader(gtx, st)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{}.Layout(gtx,
					layout.Rigid(filterBtn(&ui.filterAll, fmt.Sprintf("All (%d)", counts.Total), st.Filter == task.FilterAll || st.Filter == "")),
					layout.Rigid(filterBtn(&ui.filterActive, fmt.Sprintf("Active (%d)", counts.Active), st.Filter == task.FilterActive)),
					layout.Rigid(filterBtn(&ui.filterCompleted, fmt.Sprintf("Completed (%d)", counts.Completed), st.Filter == task.FilterCompleted)),
				)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if st.Error == "" || st.IsFormOpen {
					return layout.Dimensions{}
				}
				return layout.Inset{Top: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					label := material.Body2(theme, st.Error)
					label.Color = red
					return label.Layout(gtx)
				})
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				if len(visible) == 0 {
					msg := "No tasks yet. Create one to get started."
					if st.IsLoading {
						msg = "Loading tasks..."
					} else if len(st.Tasks) > 0 {
						msg = "No tasks match this filter."
					}
					label := material.Body1(theme, msg)
					label.Color = grey
					return label.Layout(gtx)
				}
				return material.List(theme, &ui.taskList).Layout(gtx, len(visible), func(gtx layout.Context, i int) layout.Dimensions {
					return ui.layoutTask(gtx, visible[i])
				})
			}),
		)
	})
}

func (ui *UI) layoutHeader(gtx layout.Context, st taskstore.State) layout.Dimensions {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.H5(theme, "Tasks").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !st.IsLoading {
				return layout.Dimensions{}
			}
			gtx.Constraints.Max.X = gtx.Dp(unit.Dp(20))
			gtx.Constraints.Max.Y = gtx.Dp(unit.Dp(20))
			return material.Loader(theme).Layout(gtx)
		}),
		layout.Flexed(1, layout.Spacer{}.Layout),
		layout.Rigid(flatBtn(&ui.aboutBtn, "About")),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(flatBtn(&ui.refreshBtn, "Refresh")),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.Button(theme, &ui.newTaskBtn, "New Task").Layout(gtx)
		}),
	)
}

func (ui *UI) layoutTask(gtx layout.Context, t task.Task) layout.Dimensions {
	r := ui.row(t.ID)
	toggleLabel := "Done"
	if t.Completed {
		toggleLabel = "Undo"
	}
	return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						label := material.Body1(theme, t.Title)
						label.Font.Weight = font.Bold
						if t.Completed {
							label.Color = grey
						}
						return label.Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						if t.Description == "" {
							return layout.Dimensions{}
						}
						return material.Body2(theme, t.Description).Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						label := material.Caption(theme, taskMeta(t))
						label.Color = priorityColor(t.Priority)
						return label.Layout(gtx)
					}),
				)
			}),
			layout.Rigid(flatBtn(&r.toggle, toggleLabel)),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
			layout.Rigid(flatBtn(&r.edit, "Edit")),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				btn := material.Button(theme, &r.delete, "Delete")
				btn.Background = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
				return btn.Layout(gtx)
			}),
		)
	})
}

func taskMeta(t task.Task) string {
	s := fmt.Sprintf("[%s]", t.Priority)
	if t.DueDate != nil {
		s += " due " + t.DueDate.Format("Jan 2, 2006")
		if !t.Completed && t.DueDate.Before(time.Now()) {
			s += " (overdue)"
		}
	}
	return s + " · created " + t.CreatedAt.Local().Format("Jan 2, 15:04")
}

func priorityColor(p task.Priority) color.NRGBA {
	switch p {
	case task.PriorityHigh:
		return red
	case task.PriorityMedium:
		return orange
	case task.PriorityLow:
		return green
	}
	return grey
}

func filterBtn(btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(theme, btn, label)
			if active {
				b.Background = theme.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{A: 0}
			}
			b.Color = theme.Palette.Fg
			return b.Layout(gtx)
		})
	}
}

func flatBtn(btn *widget.Clickable, label string) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		b := material.Button(theme, btn, label)
		b.Background = color.NRGBA{R: 0x2A, G: 0x2A, B: 0x2A, A: 0xFF}
		b.Color = theme.Palette.Fg
		return b.Layout(gtx)
	}
}
