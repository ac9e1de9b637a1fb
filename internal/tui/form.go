package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/go-playground/validator/v10"

	"github.com/Makepad-fr/leads/internal/model"
)

// leadForm is what the inline add/edit form collects.
type leadForm struct {
	CompanyName     string `validate:"required,max=200"`
	CompanyLocation string `validate:"required,max=200"`
	Source          string `validate:"required,max=100"`
}

var formLabels = map[string]string{
	"CompanyName":     "Company",
	"CompanyLocation": "Location",
	"Source":          "Source",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func newInputs() []textinput.Model {
	placeholders := []string{"Company name", "Location", "Source (web, referral, fair...)"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, ph := range placeholders {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = ph
		ti.CharLimit = 200
		inputs[i] = ti
	}
	return inputs
}

func formFromInputs(inputs []textinput.Model) leadForm {
	return leadForm{
		CompanyName:     strings.TrimSpace(inputs[0].Value()),
		CompanyLocation: strings.TrimSpace(inputs[1].Value()),
		Source:          strings.TrimSpace(inputs[2].Value()),
	}
}

// check validates f and returns a message fit for the form title, or "".
func (f leadForm) check() string {
	err := validate.Struct(f)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	label := formLabels[fe.Field()]
	switch fe.Tag() {
	case "required":
		return label + " cannot be empty"
	case "max":
		return fmt.Sprintf("%s is longer than %s characters", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

// apply copies the form onto l.
func (f leadForm) apply(l model.Lead) model.Lead {
	l.CompanyName = f.CompanyName
	l.CompanyLocation = f.CompanyLocation
	l.Source = f.Source
	return l
}

// newLead builds a local-only lead with the next free id and today's date.
func (f leadForm) newLead(existing []model.Lead, now time.Time) model.Lead {
	return f.apply(model.Lead{
		ID:       nextID(existing),
		Date:     now.Format("2006-01-02"),
		Contacts: []model.Contact{},
	})
}

func nextID(leads []model.Lead) int {
	max := 0
	for _, l := range leads {
		if l.ID > max {
			max = l.ID
		}
	}
	return max + 1
}
