// Package form maps new-bill form input into a transport-ready bill record.
package form

// FieldAccessor exposes the raw values of the new-bill form fields.
// It decouples the bill model from any particular rendering technology:
// a DOM-backed form, a CLI flag set and a test fixture all satisfy it.
type FieldAccessor interface {
	Type() string
	Name() string
	Date() string
	Amount() string
	VAT() string
	Pct() string
	Commentary() string
}

// Values is a plain value-backed FieldAccessor
type Values struct {
	ExpenseType string
	ExpenseName string
	ExpenseDate string
	AmountRaw   string
	VATRaw      string
	PctRaw      string
	Comment     string
}

func (v Values) Type() string       { return v.ExpenseType }
func (v Values) Name() string       { return v.ExpenseName }
func (v Values) Date() string       { return v.ExpenseDate }
func (v Values) Amount() string     { return v.AmountRaw }
func (v Values) VAT() string        { return v.VATRaw }
func (v Values) Pct() string        { return v.PctRaw }
func (v Values) Commentary() string { return v.Comment }
