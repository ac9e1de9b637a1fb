package model

// Contact is one point of contact at a lead's company.
// Every field may be null on the wire.
type Contact struct {
	Name     *string `json:"ContactName"`
	Title    *string `json:"ContactTitle"`
	Email    *string `json:"ContactEmail"`
	Phone    *string `json:"ContactPhone"`
	RoleName *string `json:"ContactRoleName"`
}

// Lead is one sales/recruiting lead as served by /api/employees/leads.
// ID is the identity key for every local mutation.
type Lead struct {
	ID              int       `json:"LeadId"`
	CompanyName     string    `json:"CompanyName"`
	CompanyLocation string    `json:"CompanyLocation"`
	Source          string    `json:"LeadSource"`
	Date            string    `json:"LeadDate"`
	Notes           *string   `json:"LeadNotes"`
	StatusName      *string   `json:"StatusName"`
	OwnerName       *string   `json:"OwnerName"`
	Contacts        []Contact `json:"Contacts"`
}

// Str returns a pointer to s, for filling nullable fields.
func Str(s string) *string { return &s }

// Deref returns *p, or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Status is the status name, or "" when the lead has none.
func (l Lead) Status() string { return Deref(l.StatusName) }

// Clone returns a copy that shares no memory with l.
func (l Lead) Clone() Lead {
	out := l
	out.Notes = cloneStr(l.Notes)
	out.StatusName = cloneStr(l.StatusName)
	out.OwnerName = cloneStr(l.OwnerName)
	if l.Contacts != nil {
		out.Contacts = make([]Contact, len(l.Contacts))
		for i, c := range l.Contacts {
			out.Contacts[i] = Contact{
				Name:     cloneStr(c.Name),
				Title:    cloneStr(c.Title),
				Email:    cloneStr(c.Email),
				Phone:    cloneStr(c.Phone),
				RoleName: cloneStr(c.RoleName),
			}
		}
	}
	return out
}

// CloneAll deep-copies a list of leads. A nil input yields an empty list.
func CloneAll(leads []Lead) []Lead {
	out := make([]Lead, len(leads))
	for i, l := range leads {
		out[i] = l.Clone()
	}
	return out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
