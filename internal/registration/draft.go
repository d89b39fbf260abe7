package registration

import (
	"log/slog"

	"github.com/vango-dev/regform/pkg/form"
	"github.com/vango-dev/regform/pkg/upload"
)

// DateLayout is the wire format of the birth field, as sent by a date input.
const DateLayout = "2006-01-02"

// Draft is the in-progress registration a session edits.
type Draft struct {
	Name            string       `form:"name" json:"name"`
	Email           string       `form:"email" json:"email"`
	Phone           string       `form:"phone" json:"phone"`
	Birth           string       `form:"birth" json:"birth"`
	Gender          string       `form:"gender" json:"gender"`
	Password        string       `form:"password" json:"password"`
	ConfirmPassword string       `form:"confirmPassword" json:"confirmPassword"`
	Address         string       `form:"address" json:"address"`
	Country         string       `form:"country" json:"country"`
	Photo           *upload.File `form:"photo" json:"photo"`
	AgreeToTerms    bool         `form:"agreeToTerms" json:"agreeToTerms"`
}

// LogValue implements slog.LogValuer. Passwords are never included.
func (d Draft) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", d.Name),
		slog.String("email", d.Email),
		slog.String("phone", d.Phone),
		slog.String("birth", d.Birth),
		slog.String("gender", d.Gender),
		slog.String("country", d.Country),
		slog.String("photo", d.Photo.String()),
		slog.Bool("agree_to_terms", d.AgreeToTerms),
	)
}

// Genders are the accepted gender values.
var Genders = []string{"male", "female", "other"}

// Countries are the accepted country values.
var Countries = []string{"India", "USA", "UK", "Australia"}

// ImageTypes are the accepted declared types of the photo.
var ImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// NewForm returns the registration form with all of its rules declared.
// The returned form is immutable and may be shared between sessions.
func NewForm() *form.Form[Draft] {
	return form.New(Draft{}).
		Rule("name",
			form.Trim(form.Required("Name is required")),
			form.Trim(form.MinLength(3, "Name must be at least 3 characters"))).
		Rule("email",
			form.Required("Email is required"),
			form.Email("Invalid email address")).
		Rule("phone",
			form.Required("Phone number is required"),
			form.Pattern(`^[0-9]{10}$`, "Phone number must be exactly 10 digits")).
		Rule("birth",
			form.Required("Date of Birth is required"),
			form.Date(DateLayout, "Date of Birth must be a valid date")).
		Rule("gender",
			form.Required("Gender is required"),
			form.OneOf("Gender is required", Genders...)).
		Rule("password",
			form.Required("Password is required"),
			form.MinLength(8, "Password must be at least 8 characters")).
		Rule("confirmPassword",
			form.Required("Confirm Password is required"),
			form.EqualTo("password", "Passwords must match")).
		Rule("address",
			form.Required("Address is required")).
		Rule("country",
			form.Required("Country is required"),
			form.OneOf("Please select a valid country", Countries...)).
		Rule("photo",
			form.Required("Photo is required"),
			form.AcceptTypes("Only images are allowed", ImageTypes...)).
		Rule("agreeToTerms",
			form.True("You must agree to the terms and conditions"))
}
