package main

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"taskdesk/pkg/shell"
	"taskdesk/pkg/task"
	"taskdesk/pkg/taskstore"
)

const dueLayout = "2006-01-02"

// taskForm is the create/edit editor. Its field errors are written from
// the submit goroutine, so they sit behind mu.
type taskForm struct {
	open bool

	title       widget.Editor
	description widget.Editor
	due         widget.Editor
	priority    widget.Enum

	saveBtn   widget.Clickable
	cancelBtn widget.Clickable

	mu     sync.Mutex
	errs   map[string]string
	saving bool
}

func (f *taskForm) init() {
	f.title.SingleLine = true
	f.title.Submit = true
	f.due.SingleLine = true
	f.priority.Value = string(task.PriorityMedium)
}

// sync loads the selected task into the editors when the form opens.
func (f *taskForm) sync(st taskstore.State) {
	if !st.IsFormOpen {
		f.open = false
		return
	}
	if f.open {
		return
	}
	f.open = true
	f.setErrors(nil)

	t := st.SelectedTask
	if t == nil {
		f.title.SetText("")
		f.description.SetText("")
		f.due.SetText("")
		f.priority.Value = string(task.PriorityMedium)
		return
	}
	f.title.SetText(t.Title)
	f.description.SetText(t.Description)
	f.due.SetText("")
	if t.DueDate != nil {
		f.due.SetText(t.DueDate.UTC().Format(dueLayout))
	}
	f.priority.Value = string(t.Priority)
}

func (f *taskForm) handle(gtx layout.Context, ui *UI) {
	if f.cancelBtn.Clicked(gtx) {
		ui.store.CloseTaskForm()
		return
	}
	submitted := f.saveBtn.Clicked(gtx)
	for {
		ev, ok := f.title.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			submitted = true
		}
	}
	f.priority.Update(gtx)
	if !submitted {
		return
	}

	d, errs := f.draft()
	if errs != nil {
		f.setErrors(errs)
		return
	}
	f.mu.Lock()
	if f.saving {
		f.mu.Unlock()
		return
	}
	f.saving = true
	f.mu.Unlock()

	go func() {
		_, err := ui.store.SubmitForm(ui.ctx, d)
		var ve *task.ValidationError
		if errors.As(err, &ve) {
			f.setErrors(ve.Fields)
		}
		f.mu.Lock()
		f.saving = false
		f.mu.Unlock()
		ui.window.Invalidate()
	}()
}

// draft reads the editors. Only the due date is checked here; the rest is
// validated by the store.
func (f *taskForm) draft() (task.Draft, map[string]string) {
	d := task.Draft{
		Title:       f.title.Text(),
		Description: strings.TrimSpace(f.description.Text()),
		Priority:    task.Priority(f.priority.Value),
	}
	if s := strings.TrimSpace(f.due.Text()); s != "" {
		due, err := time.Parse(dueLayout, s)
		if err != nil {
			return d, map[string]string{"dueDate": "Due date must be YYYY-MM-DD"}
		}
		d.DueDate = &due
	}
	return d, nil
}

func (f *taskForm) setErrors(errs map[string]string) {
	f.mu.Lock()
	f.errs = errs
	f.mu.Unlock()
}

func (f *taskForm) fieldError(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[name]
}

func (f *taskForm) layout(gtx layout.Context, st taskstore.State) layout.Dimensions {
	heading := "New Task"
	if st.SelectedTask != nil {
		heading = "Edit Task"
	}
	f.mu.Lock()
	saving := f.saving
	f.mu.Unlock()
	saveLabel := "Save"
	if saving {
		saveLabel = "Saving..."
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(material.H6(theme, heading).Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
		layout.Rigid(f.field("Title", "title", material.Editor(theme, &f.title, "What needs doing?").Layout)),
		layout.Rigid(f.field("Description", "description", material.Editor(theme, &f.description, "Optional details").Layout)),
		layout.Rigid(f.field("Priority", "priority", func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(material.RadioButton(theme, &f.priority, string(task.PriorityLow), "Low").Layout),
				layout.Rigid(material.RadioButton(theme, &f.priority, string(task.PriorityMedium), "Medium").Layout),
				layout.Rigid(material.RadioButton(theme, &f.priority, string(task.PriorityHigh), "High").Layout),
			)
		})),
		layout.Rigid(f.field("Due date", "dueDate", material.Editor(theme, &f.due, "YYYY-MM-DD").Layout)),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if st.Error == "" {
				return layout.Dimensions{}
			}
			label := material.Body2(theme, st.Error)
			label.Color = red
			return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, label.Layout)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Spacing: layout.SpaceStart}.Layout(gtx,
				layout.Rigid(flatBtn(&f.cancelBtn, "Cancel")),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Button(theme, &f.saveBtn, saveLabel).Layout),
			)
		}),
	)
}

func (f *taskForm) field(label, name string, input layout.Widget) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(10)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					l := material.Caption(theme, label)
					l.Color = grey
					return l.Layout(gtx)
				}),
				layout.Rigid(input),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					msg := f.fieldError(name)
					if msg == "" {
						return layout.Dimensions{}
					}
					l := material.Caption(theme, msg)
					l.Color = red
					return l.Layout(gtx)
				}),
			)
		})
	}
}

// promptBox draws the shell host's current message box.
type promptBox struct {
	buttons []widget.Clickable
}

func (p *promptBox) ensure(n int) {
	for len(p.buttons) < n {
		p.buttons = append(p.buttons, widget.Clickable{})
	}
}

func (p *promptBox) handle(gtx layout.Context, host *shell.Host, opts shell.MessageBoxOptions) {
	p.ensure(len(opts.Buttons))
	for i := range opts.Buttons {
		if p.buttons[i].Clicked(gtx) {
			_ = host.Respond(i)
			return
		}
	}
}

func (p *promptBox) layout(gtx layout.Context, opts shell.MessageBoxOptions) layout.Dimensions {
	p.ensure(len(opts.Buttons))
	children := []layout.FlexChild{
		layout.Rigid(material.H6(theme, opts.Title).Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(material.Body1(theme, opts.Message).Layout),
	}
	if opts.Detail != "" {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			l := material.Body2(theme, opts.Detail)
			l.Color = grey
			return layout.Inset{Top: unit.Dp(6)}.Layout(gtx, l.Layout)
		}))
	}
	children = append(children,
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			btns := make([]layout.FlexChild, 0, 2*len(opts.Buttons))
			for i, label := range opts.Buttons {
				if i > 0 {
					btns = append(btns, layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout))
				}
				if i == 0 {
					btns = append(btns, layout.Rigid(material.Button(theme, &p.buttons[i], label).Layout))
				} else {
					btns = append(btns, layout.Rigid(flatBtn(&p.buttons[i], label)))
				}
			}
			return layout.Flex{Spacing: layout.SpaceStart}.Layout(gtx, btns...)
		}),
	)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

// modal dims the window and centres content in a card.
func modal(gtx layout.Context, content layout.Widget) layout.Dimensions {
	size := gtx.Constraints.Max
	paint.FillShape(gtx.Ops, color.NRGBA{A: 0xB0}, clip.Rect{Max: size}.Op())
	layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min.X = 0
		if w := gtx.Dp(unit.Dp(440)); gtx.Constraints.Max.X > w {
			gtx.Constraints.Max.X = w
		}
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				rect := image.Rectangle{Max: gtx.Constraints.Min}
				defer clip.UniformRRect(rect, gtx.Dp(unit.Dp(8))).Push(gtx.Ops).Pop()
				paint.Fill(gtx.Ops, color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF})
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(20)).Layout(gtx, content)
			},
		)
	})
	return layout.Dimensions{Size: size}
}
