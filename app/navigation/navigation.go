// Package navigation names the screens the registration flow can route to.
package navigation

import (
	"net/url"
	"strings"
)

const (
	// WorkingFieldsPath is the screen for registered users.
	WorkingFieldsPath = "/working-fields"
	// SubscriptionPath is the plan picker for new users.
	SubscriptionPath = "/subscription"
)

// Target is a router path, optionally with a query.
type Target string

// WorkingFields routes a registered user to the working fields with their plan.
func WorkingFields(plan string) Target {
	return Target(WorkingFieldsPath + "?plan=" + plan)
}

// Subscription routes an unregistered user to the plan picker.
func Subscription() Target {
	return Target(SubscriptionPath)
}

// Path returns the target without its query.
func (t Target) Path() string {
	p, _, _ := strings.Cut(string(t), "?")
	return p
}

// Plan returns the plan query parameter, if any.
func (t Target) Plan() string {
	_, q, ok := strings.Cut(string(t), "?")
	if !ok {
		return ""
	}
	// Raw targets are built by concatenation, so parse leniently.
	values, err := url.ParseQuery(q)
	if err != nil {
		return ""
	}
	return values.Get("plan")
}

func (t Target) String() string { return string(t) }

// Navigator performs a terminal navigation decision.
type Navigator interface {
	Navigate(Target)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Target)

// Navigate calls f(t).
func (f NavigatorFunc) Navigate(t Target) { f(t) }
