// Package profile defines the flat candidate view handed to the page
// agent. The agent never sees the full stored profile document; the view
// limits blast radius if a hostile page could somehow read injected
// values.
package profile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-agent/internal/forms"
)

// View is the read-only projection of a stored candidate profile into
// flat scalar fields. Every field is optional; empty values mean the
// matching form controls are simply not filled.
type View struct {
	FullName  string `json:"fullName" validate:"omitempty,max=200"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=40"`
	Location  string `json:"location" validate:"omitempty,max=200"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url"`
	GitHub    string `json:"github" validate:"omitempty,url"`
	Portfolio string `json:"portfolio" validate:"omitempty,url"`
	College   string `json:"college" validate:"omitempty,max=200"`
	Degree    string `json:"degree" validate:"omitempty,max=200"`
	Branch    string `json:"branch" validate:"omitempty,max=200"`
	EndYear   string `json:"endYear" validate:"omitempty,max=10"`
	Skills    string `json:"skills" validate:"omitempty,max=2000"`
	Summary   string `json:"summary" validate:"omitempty,max=10000"`
}

var validate = validator.New()

// Validate checks field constraints on the view.
func (v *View) Validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid profile view: %w", err)
	}
	return nil
}

// Normalize fills derivable fields: FullName from the name parts and the
// name parts from FullName, whichever side is missing.
func (v *View) Normalize() {
	if v.FullName == "" {
		v.FullName = strings.TrimSpace(v.FirstName + " " + v.LastName)
	}
	if v.FirstName == "" && v.FullName != "" {
		parts := strings.Fields(v.FullName)
		v.FirstName = parts[0]
		if len(parts) > 1 && v.LastName == "" {
			v.LastName = strings.Join(parts[1:], " ")
		}
	}
}

// ValueFor returns the view value for one classified form attribute.
func (v *View) ValueFor(attr forms.Attribute) string {
	switch attr {
	case forms.AttrFullName:
		return v.FullName
	case forms.AttrFirstName:
		return v.FirstName
	case forms.AttrLastName:
		return v.LastName
	case forms.AttrEmail:
		return v.Email
	case forms.AttrPhone:
		return v.Phone
	case forms.AttrLocation:
		return v.Location
	case forms.AttrLinkedIn:
		return v.LinkedIn
	case forms.AttrGitHub:
		return v.GitHub
	case forms.AttrPortfolio:
		return v.Portfolio
	case forms.AttrCollege:
		return v.College
	case forms.AttrDegree:
		return v.Degree
	case forms.AttrBranch:
		return v.Branch
	case forms.AttrEndYear:
		return v.EndYear
	case forms.AttrSkills:
		return v.Skills
	case forms.AttrSummary:
		return v.Summary
	default:
		return ""
	}
}

// JoinSkills flattens a stored skills list into the view's joined form.
func JoinSkills(skills []string) string {
	var kept []string
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}
