package render

// Column is one table header. The synthetic actions column carries
// Actions=true.
type Column struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Actions bool   `json:"actions"`
}

// Cell is the display text of one record property.
type Cell struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Row is one rendered record.
type Row struct {
	ID    string `json:"id"`
	Cells []Cell `json:"cells"`
}

// Actions lists the enabled table actions.
type Actions struct {
	Add    bool `json:"add"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
	View   bool `json:"view"`
}

// Pagination describes the visible slice of rows.
type Pagination struct {
	Page      int `json:"page"`
	PageCount int `json:"page_count"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
}

// FormView is the editable (or read-only) sub-view of a page.
type FormView struct {
	RecordID string        `json:"record_id,omitempty"`
	Controls []Control     `json:"controls"`
	Hidden   []HiddenField `json:"hidden,omitempty"`
	Editing  bool          `json:"editing"`
	Notice   string        `json:"notice,omitempty"`
}

// Notice is a transient success or error message.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Confirmation asks the user to approve a destructive action.
type Confirmation struct {
	RecordID string `json:"record_id"`
	Message  string `json:"message"`
}

// Screen is everything a page renderer needs to draw one table page.
type Screen struct {
	Page       string        `json:"page"`
	Title      string        `json:"title"`
	Heading    string        `json:"heading"`
	Mode       string        `json:"mode"`
	Columns    []Column      `json:"columns"`
	Rows       []Row         `json:"rows"`
	Actions    Actions       `json:"actions"`
	Pagination Pagination    `json:"pagination"`
	Query      string        `json:"query,omitempty"`
	SortKey    string        `json:"sort_key,omitempty"`
	SortDesc   bool          `json:"sort_desc,omitempty"`
	Form       *FormView     `json:"form,omitempty"`
	Confirm    *Confirmation `json:"confirm,omitempty"`
	Notices    []Notice      `json:"notices,omitempty"`
}
