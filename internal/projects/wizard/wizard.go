// Package wizard implements the four-step project creation flow: project
// details, client details, budget sections, then a single review/submit that
// cascades the writes to the store.
package wizard

import (
	"fmt"
	"strings"
)

// Wizard steps
const (
	StepProject = 1
	StepClient  = 2
	StepBudget  = 3
	StepReview  = 4
)

// ValidationError blocks a step from advancing or a finalize from starting.
// It never reaches the persistence layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrWrongStep is returned when a step submission does not match the
// session's current step.
type ErrWrongStep struct {
	Want int
	Got  int
}

func (e *ErrWrongStep) Error() string {
	return fmt.Sprintf("wizard is at step %d, not %d", e.Got, e.Want)
}

type ProjectDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	Status      string  `json:"status"`
}

// ClientDraft either references an existing client or describes a new one.
type ClientDraft struct {
	ExistingID  *string `json:"existing_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`
}

func (d ClientDraft) IsExisting() bool {
	return d.ExistingID != nil && strings.TrimSpace(*d.ExistingID) != ""
}

type DetailDraft struct {
	AllocatedAmount *float64 `json:"allocated_amount"`
	Description     string   `json:"description"`
}

// BudgetSection is wizard-only: it is decomposed into budget_detail rows on
// finalize, with the section name flattened onto each row.
type BudgetSection struct {
	SectionName string        `json:"section_name"`
	Details     []DetailDraft `json:"details"`
}

// State is one wizard session. It round-trips through the session store
// between HTTP calls.
type State struct {
	SessionID string          `json:"session_id"`
	UID       string          `json:"uid,omitempty"`
	Step      int             `json:"step"`
	Project   *ProjectDraft   `json:"project,omitempty"`
	Client    *ClientDraft    `json:"client,omitempty"`
	Sections  []BudgetSection `json:"sections,omitempty"`
}

func NewState(sessionID string) *State {
	return &State{SessionID: sessionID, Step: StepProject}
}

// SubmitProjectDetails validates and stores the project draft, then advances.
func (s *State) SubmitProjectDetails(draft ProjectDraft) error {
	if s.Step != StepProject {
		return &ErrWrongStep{Want: StepProject, Got: s.Step}
	}
	if err := validateProject(draft); err != nil {
		return err
	}
	s.Project = &draft
	s.Step++
	return nil
}

// SubmitClientDetails accepts an existing client reference or a new client
// draft, then advances.
func (s *State) SubmitClientDetails(draft ClientDraft) error {
	if s.Step != StepClient {
		return &ErrWrongStep{Want: StepClient, Got: s.Step}
	}
	if err := validateClient(draft); err != nil {
		return err
	}
	s.Client = &draft
	s.Step++
	return nil
}

// SubmitBudgetDetails stores the ordered section list, then advances.
func (s *State) SubmitBudgetDetails(sections []BudgetSection) error {
	if s.Step != StepBudget {
		return &ErrWrongStep{Want: StepBudget, Got: s.Step}
	}
	if err := validateSections(sections); err != nil {
		return err
	}
	s.Sections = sections
	s.Step++
	return nil
}

// GoBack decrements the step. No-op at step 1. Later-step drafts are kept so
// the user can move forward again without re-entering them.
func (s *State) GoBack() {
	if s.Step > StepProject {
		s.Step--
	}
}

// Validate re-runs every step's checks as a final guard before finalize,
// independent of the per-step checks. Back-navigation can leave stale drafts
// behind, so the duplication is deliberate.
func (s *State) Validate() error {
	if s.Step != StepReview {
		return &ErrWrongStep{Want: StepReview, Got: s.Step}
	}
	if s.Project == nil {
		return &ValidationError{Field: "project", Message: "project details are incomplete"}
	}
	if err := validateProject(*s.Project); err != nil {
		return err
	}
	if s.Client == nil {
		return &ValidationError{Field: "client", Message: "client details are incomplete"}
	}
	if err := validateClient(*s.Client); err != nil {
		return err
	}
	return validateSections(s.Sections)
}

// InitialBudget sums every section detail allocation, treating a missing
// amount as 0.
func (s *State) InitialBudget() float64 {
	var total float64
	for _, section := range s.Sections {
		for _, d := range section.Details {
			if d.AllocatedAmount != nil {
				total += *d.AllocatedAmount
			}
		}
	}
	return total
}

// DetailCount is the number of budget_detail rows finalize will create.
func (s *State) DetailCount() int {
	n := 0
	for _, section := range s.Sections {
		n += len(section.Details)
	}
	return n
}

func validateProject(d ProjectDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Message: "required"}
	}
	if strings.TrimSpace(d.StartDate) == "" {
		return &ValidationError{Field: "start_date", Message: "required"}
	}
	if strings.TrimSpace(d.Status) == "" {
		return &ValidationError{Field: "status", Message: "required"}
	}
	return nil
}

func validateClient(d ClientDraft) error {
	if d.IsExisting() {
		return nil
	}
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "client.name", Message: "required"}
	}
	return nil
}

func validateSections(sections []BudgetSection) error {
	if len(sections) == 0 {
		return &ValidationError{Field: "sections", Message: "at least one budget section is required"}
	}
	for i, section := range sections {
		if strings.TrimSpace(section.SectionName) == "" {
			return &ValidationError{Field: fmt.Sprintf("sections[%d].section_name", i), Message: "required"}
		}
		if len(section.Details) == 0 {
			return &ValidationError{Field: fmt.Sprintf("sections[%d].details", i), Message: "at least one detail is required"}
		}
		for j, d := range section.Details {
			if d.AllocatedAmount == nil {
				return &ValidationError{Field: fmt.Sprintf("sections[%d].details[%d].allocated_amount", i, j), Message: "required"}
			}
			if strings.TrimSpace(d.Description) == "" {
				return &ValidationError{Field: fmt.Sprintf("sections[%d].details[%d].description", i, j), Message: "required"}
			}
		}
	}
	return nil
}
