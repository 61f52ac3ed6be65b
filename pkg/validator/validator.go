package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"nub.ac.bd/transport/pkg/apperror"
)

// BindError turns a gin binding failure into a BadRequest with readable messages.
func BindError(err error) error {
	return apperror.BadRequest("%s", FormatValidationError(err))
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "latitude":
		return fmt.Sprintf("%s must be a valid latitude", field)
	case "longitude":
		return fmt.Sprintf("%s must be a valid longitude", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"RegistrationNumber":   "Registration number",
		"BusID":                "Bus ID",
		"RouteID":              "Route ID",
		"ManagerID":            "Manager ID",
		"UserID":               "User ID",
		"BusStopID":            "Bus stop ID",
		"OffDays":              "Off days",
		"OperatingDays":        "Operating days",
		"DepartureTime":        "Departure time",
		"ArrivalTime":          "Arrival time",
		"ScheduledArrivalTime": "Scheduled arrival time",
		"LocationName":         "Location name",
		"NewPassword":          "New password",
		"OldPassword":          "Old password",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
