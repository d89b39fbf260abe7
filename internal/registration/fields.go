package registration

// Control is the kind of input a field renders as.
type Control string

const (
	ControlText     Control = "text"
	ControlEmail    Control = "email"
	ControlDate     Control = "date"
	ControlRadio    Control = "radio"
	ControlSelect   Control = "select"
	ControlPassword Control = "password"
	ControlFile     Control = "file"
	ControlCheckbox Control = "checkbox"
)

// Option is one choice of a radio group or select.
type Option struct {
	Value string
	Label string
}

// Field describes how one draft field is presented.
type Field struct {
	Name    string
	Label   string
	Control Control
	Options []Option
	// Placeholder is the empty choice of a select.
	Placeholder string
}

// Fields lists the controls of the page in display order.
var Fields = []Field{
	{Name: "name", Label: "Name", Control: ControlText},
	{Name: "email", Label: "Email", Control: ControlEmail},
	{Name: "phone", Label: "Phone Number", Control: ControlText},
	{Name: "birth", Label: "Date of Birth", Control: ControlDate},
	{Name: "gender", Label: "Gender", Control: ControlRadio, Options: []Option{
		{Value: "male", Label: "Male"},
		{Value: "female", Label: "Female"},
		{Value: "other", Label: "Other"},
	}},
	{Name: "password", Label: "Password", Control: ControlPassword},
	{Name: "confirmPassword", Label: "Confirm Password", Control: ControlPassword},
	{Name: "address", Label: "Address", Control: ControlText},
	{Name: "country", Label: "Country", Control: ControlSelect, Placeholder: "Select a country", Options: []Option{
		{Value: "India", Label: "India"},
		{Value: "USA", Label: "USA"},
		{Value: "UK", Label: "UK"},
		{Value: "Australia", Label: "Australia"},
	}},
	{Name: "photo", Label: "Upload Photo", Control: ControlFile},
	{Name: "agreeToTerms", Label: "I agree to the terms and conditions", Control: ControlCheckbox},
}

// Lookup returns the presentation of the named field.
func Lookup(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
