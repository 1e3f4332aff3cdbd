package output

import "github.com/olekukonko/tablewriter/tw"

// Align is a column alignment.
type Align int

const (
	// AlignDefault leaves alignment to the table writer.
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

func (a Align) tw() tw.Align {
	switch a {
	case AlignLeft:
		return tw.AlignLeft
	case AlignCenter:
		return tw.AlignCenter
	case AlignRight:
		return tw.AlignRight
	default:
		return tw.Skip
	}
}

// Data is a table ready to render.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// Append adds a row.
func (d *Data) Append(cells ...string) {
	d.Rows = append(d.Rows, cells)
}

// KeyValue builds a two column Field/Value table from pairs.
func KeyValue(pairs ...string) Data {
	d := Data{Headers: []string{"Field", "Value"}}
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Append(pairs[i], pairs[i+1])
	}
	return d
}
