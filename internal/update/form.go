package update

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/views"
)

const (
	fieldName = iota
	fieldMin
	fieldMax
	fieldCount
)

var fieldKeys = [fieldCount]string{model.FieldName, model.FieldMinDays, model.FieldMaxDays}

var fieldLabels = [fieldCount]string{"Name", "Min days", "Max days"}

type taskForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	errs   map[string]string
}

func newTaskForm() taskForm {
	var f taskForm
	placeholders := [fieldCount]string{"Water the plants", "3", "5"}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 80
		if i != fieldName {
			in.CharLimit = 5
		}
		f.inputs[i] = in
	}
	f.errs = map[string]string{}
	return f
}

func (f *taskForm) open() tea.Cmd {
	f.focus = fieldName
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[fieldName].Focus()
}

func (f *taskForm) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.errs = map[string]string{}
	f.focus = fieldName
}

func (f *taskForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *taskForm) setValues(name, minDays, maxDays string) {
	f.inputs[fieldName].SetValue(name)
	f.inputs[fieldMin].SetValue(minDays)
	f.inputs[fieldMax].SetValue(maxDays)
}

// submit checks every field and records one message per bad field. The
// returned values are only meaningful when ok is true.
func (f *taskForm) submit() (name string, minDays, maxDays int, ok bool) {
	f.errs = map[string]string{}
	name = strings.TrimSpace(f.inputs[fieldName].Value())

	minDays, minErr := strconv.Atoi(strings.TrimSpace(f.inputs[fieldMin].Value()))
	if minErr != nil {
		f.errs[model.FieldMinDays] = "must be a number"
	}
	maxDays, maxErr := strconv.Atoi(strings.TrimSpace(f.inputs[fieldMax].Value()))
	if maxErr != nil {
		f.errs[model.FieldMaxDays] = "must be a number"
	}
	f.mergeValidation(model.ValidateInput(name, minDays, maxDays))
	return name, minDays, maxDays, len(f.errs) == 0
}

// mergeValidation copies field messages from a validation error without
// overwriting messages already recorded.
func (f *taskForm) mergeValidation(err error) bool {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	for k, v := range verr.Fields {
		if _, exists := f.errs[k]; !exists {
			f.errs[k] = v
		}
	}
	return true
}

func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f taskForm) view() string {
	fields := make([]views.FormFieldData, 0, fieldCount)
	for i := range f.inputs {
		fields = append(fields, views.FormFieldData{
			Label:   fieldLabels[i],
			View:    f.inputs[i].View(),
			Error:   f.errs[fieldKeys[i]],
			Focused: i == f.focus,
		})
	}
	return views.RenderForm(views.FormData{Title: "New task", Fields: fields})
}
