package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassBody       ChromeClass = "careforms"
	ClassNav        ChromeClass = "careforms-nav"
	ClassUser       ChromeClass = "careforms-user"
	ClassCard       ChromeClass = "careforms-card"
	ClassHeader     ChromeClass = "careforms-header"
	ClassTable      ChromeClass = "careforms-table"
	ClassRowActions ChromeClass = "careforms-row-actions"
	ClassSearch     ChromeClass = "careforms-search"
	ClassPagination ChromeClass = "careforms-pagination"
	ClassForm       ChromeClass = "careforms-form"
	ClassGrid       ChromeClass = "careforms-grid"
	ClassActions    ChromeClass = "careforms-actions"
	ClassErrors     ChromeClass = "careforms-errors"
	ClassNotice     ChromeClass = "careforms-notice"
	ClassConfirm    ChromeClass = "careforms-confirm"
)

// defaultClasses maps template slots to class names. Overrides replace
// single slots.
func defaultClasses() map[string]string {
	return map[string]string{
		"body":        string(ClassBody),
		"nav":         string(ClassNav),
		"user":        string(ClassUser),
		"card":        string(ClassCard),
		"header":      string(ClassHeader),
		"table":       string(ClassTable),
		"row_actions": string(ClassRowActions),
		"search":      string(ClassSearch),
		"pagination":  string(ClassPagination),
		"form":        string(ClassForm),
		"grid":        string(ClassGrid),
		"actions":     string(ClassActions),
		"errors":      string(ClassErrors),
		"notice":      string(ClassNotice),
		"confirm":     string(ClassConfirm),
	}
}
