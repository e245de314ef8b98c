package schema

import "strings"

// Normalize trims display strings, drops constraints that do not apply to
// the field's type and fills layout defaults. It never changes the label's
// inner text, only surrounding whitespace.
func (f Field) Normalize() Field {
	f.Label = strings.TrimSpace(f.Label)
	f.Unit = strings.TrimSpace(f.Unit)
	f.Placeholder = strings.TrimSpace(f.Placeholder)
	f.HelpText = strings.TrimSpace(f.HelpText)
	if t, err := ParseDataType(string(f.Type)); err == nil {
		f.Type = t
	}
	if f.ColumnPosition == 0 {
		f.ColumnPosition = 1
	}

	if f.Type != TypeNumber {
		f.MinValue, f.MaxValue = nil, nil
	}
	if f.Type.IsText() {
		f.RegexPattern = strings.TrimSpace(f.RegexPattern)
	} else {
		f.RegexPattern = ""
		f.MaxLength = 0
	}
	if f.Type == TypeTable {
		cols := make([]string, 0, len(f.TableColumns))
		for _, c := range f.TableColumns {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
		if len(cols) == 0 {
			cols = nil
		}
		f.TableColumns = cols
		if f.TableRows == 0 {
			f.TableRows = DefaultTableRows
		}
	} else {
		f.TableColumns = nil
		f.TableRows = 0
	}
	return f
}
