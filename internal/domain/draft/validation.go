package draft

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/go-playground/validator/v10"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Struct fields checked before leaving each stage.
var (
	basicInfoFields     = []string{"Title", "Description", "Genre", "ContactNo", "State", "City"}
	venueScheduleFields = []string{"Venue", "StartDate", "EndDate"}
	completionFields    = []string{"StartDate", "StartTime", "EndDate", "EndTime", "TicketPriceCents", "Image", "AgreedToTerms"}
)

var messages = map[string]string{
	FieldTitle:         "Event title is required",
	FieldDescription:   "Please provide a more detailed description (at least 10 characters)",
	FieldGenre:         "Please select a genre",
	FieldContactNo:     "Please enter a valid 10-digit number",
	FieldState:         "Please select a state",
	FieldCity:          "Please select a city",
	FieldVenue:         "Please select a venue",
	FieldStartDate:     "Please select a valid start date",
	FieldStartTime:     "Please select a valid start time",
	FieldEndDate:       "Please select a valid end date",
	FieldEndTime:       "Please select a valid end time",
	FieldSchedule:      "Event end must be after its start",
	FieldTicketPrice:   "Ticket price is required",
	FieldImage:         "Please upload an event image",
	FieldAgreedToTerms: "You must agree to the terms and conditions",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("trimmed_min", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= n
	}))
	must(v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return IsGenre(fl.Field().String())
	}))
	must(v.RegisterValidation("state", func(fl validator.FieldLevel) bool {
		return IsState(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("draft: register validation: %v", err))
	}
}

// FieldErrors maps a field name to a user-facing message.
type FieldErrors map[string]string

// Err returns nil when there are no errors, otherwise a field-level ValidationError.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return domain.NewFieldValidationError(f)
}

func (f FieldErrors) merge(other FieldErrors) FieldErrors {
	for k, v := range other {
		if _, exists := f[k]; !exists {
			f[k] = v
		}
	}
	return f
}

// ValidateBasicInfo checks the fields required to leave the basic-info stage.
func ValidateBasicInfo(d EventDraft) FieldErrors {
	errs := check(d, basicInfoFields...)
	if _, bad := errs[FieldState]; !bad && !CityInState(d.State, d.City) {
		errs[FieldCity] = messages[FieldCity]
	}
	return errs
}

// ValidateVenueSchedule checks the fields required to leave the venue and schedule stage.
func ValidateVenueSchedule(d EventDraft) FieldErrors {
	return check(d, venueScheduleFields...)
}

// ValidateCompletion checks the fields that must be present before availability can be
// checked. It does not enforce start < end.
func ValidateCompletion(d EventDraft) FieldErrors {
	return check(d, completionFields...)
}

// Validate checks the full invariant set, including both cross-field rules.
func Validate(d EventDraft, loc *time.Location) FieldErrors {
	errs := ValidateBasicInfo(d).
		merge(ValidateVenueSchedule(d)).
		merge(ValidateCompletion(d))
	if len(errs) > 0 {
		return errs
	}
	if _, err := Schedule(d, loc); err != nil {
		errs[FieldSchedule] = messages[FieldSchedule]
	}
	return errs
}

// Schedule combines the date and time fields into the proposed booking interval.
func Schedule(d EventDraft, loc *time.Location) (availability.Interval, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, d.StartDate+" "+d.StartTime, loc)
	if err != nil {
		return availability.Interval{}, domain.NewFieldValidationError(FieldErrors{FieldStartDate: messages[FieldStartDate]})
	}
	end, err := time.ParseInLocation(dateLayout+" "+timeLayout, d.EndDate+" "+d.EndTime, loc)
	if err != nil {
		return availability.Interval{}, domain.NewFieldValidationError(FieldErrors{FieldEndDate: messages[FieldEndDate]})
	}
	iv, err := availability.NewInterval(start, end)
	if err != nil {
		return availability.Interval{}, domain.NewFieldValidationError(FieldErrors{FieldSchedule: messages[FieldSchedule]})
	}
	return iv, nil
}

func check(d EventDraft, fields ...string) FieldErrors {
	errs := FieldErrors{}
	err := validate.StructPartial(d, fields...)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable if the struct tags themselves are broken.
		panic(fmt.Sprintf("draft: unexpected validation failure: %v", err))
	}
	for _, fe := range verrs {
		name := fe.Field()
		if _, exists := errs[name]; exists {
			continue
		}
		errs[name] = messageFor(name, fe.Tag())
	}
	return errs
}

func messageFor(field, tag string) string {
	switch {
	case field == FieldContactNo && tag == "required":
		return "Contact number is required"
	case field == FieldTicketPrice && tag == "min":
		return "Ticket price cannot be negative"
	}
	if msg, ok := messages[field]; ok {
		return msg
	}
	return field + " is invalid"
}
