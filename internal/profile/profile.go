// Package profile looks up a customer's analytics profile by email.
package profile

import (
	"encoding/json"
	"strconv"
	"strings"
)

const defaultFirstName = "User"

// Profile is the public view of an analytics people record. Optional fields
// are nil when the record does not carry them.
type Profile struct {
	FirstName             string   `json:"firstName"`
	LastName              string   `json:"lastName"`
	Email                 string   `json:"email"`
	DeviceSerial          *string  `json:"deviceSerial"`
	RegistrationDate      *string  `json:"registrationDate"`
	SubscriptionType      *string  `json:"subscriptionType"`
	FirstConnectDate      *string  `json:"firstConnectDate"`
	LastConnectDate       *string  `json:"lastConnectDate"`
	SessionCount          *float64 `json:"sessionCount"`
	CapturedShots         *float64 `json:"capturedShots"`
	PhoneType             *string  `json:"phoneType"`
	AppVersion            *string  `json:"appVersion"`
	FirmwareVersion       *string  `json:"firmwareVersion"`
	LastPlayed            *string  `json:"lastPlayed"`
	SubscriptionStartDate *string  `json:"subscriptionStartDate"`
	SubscriptionEndDate   *string  `json:"subscriptionEndDate"`
	Age                   *float64 `json:"age"`
	Handedness            *string  `json:"handedness"`
	E6ConnectKey          *string  `json:"e6ConnectKey"`
}

// FromProperties maps raw people properties onto a Profile. fallbackEmail is
// used when the record has no email of its own.
func FromProperties(props map[string]any, fallbackEmail string) Profile {
	p := Profile{
		FirstName: defaultFirstName,
		Email:     fallbackEmail,
	}

	if v := stringProp(props, "$first_name"); v != nil && *v != "" {
		p.FirstName = *v
	}

	if v := stringProp(props, "$last_name"); v != nil {
		p.LastName = *v
	}

	if v := stringProp(props, "$email"); v != nil && *v != "" {
		p.Email = *v
	}

	p.DeviceSerial = stringProp(props, "Device Serial Number")
	p.RegistrationDate = stringProp(props, "Registration Date")
	p.SubscriptionType = stringProp(props, "Subscription Type")
	p.FirstConnectDate = stringProp(props, "First Connect Date")
	p.LastConnectDate = stringProp(props, "Last Connect Date")
	p.SessionCount = numberProp(props, "Session Count")
	p.CapturedShots = numberProp(props, "Captured Shots")
	p.PhoneType = stringProp(props, "Phone Type")
	p.AppVersion = stringProp(props, "App Version")
	p.FirmwareVersion = stringProp(props, "Firmware Version")
	p.LastPlayed = stringProp(props, "Last Played")
	p.SubscriptionStartDate = stringProp(props, "Subscription Start Date")
	p.SubscriptionEndDate = stringProp(props, "Subscription End Date")
	p.Age = numberProp(props, "Age")
	p.Handedness = stringProp(props, "Handedness")
	p.E6ConnectKey = stringProp(props, "E6 Connect Key")

	return p
}

// stringProp reads a text property. Numbers and booleans are rendered as text
// since the people store does not enforce property types.
func stringProp(props map[string]any, key string) *string {
	var s string

	switch v := props[key].(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	default:
		return nil
	}

	return &s
}

// numberProp reads a numeric property given either as a number or as numeric text.
func numberProp(props map[string]any, key string) *float64 {
	var (
		f   float64
		err error
	)

	switch v := props[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return nil
	}

	if err != nil {
		return nil
	}

	return &f
}
