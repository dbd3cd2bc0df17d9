package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargets(t *testing.T) {
	wf := WorkingFields("pro")
	assert.Equal(t, "/working-fields?plan=pro", wf.String())
	assert.Equal(t, WorkingFieldsPath, wf.Path())
	assert.Equal(t, "pro", wf.Plan())

	sub := Subscription()
	assert.Equal(t, "/subscription", sub.String())
	assert.Equal(t, SubscriptionPath, sub.Path())
	assert.Empty(t, sub.Plan())
}

func TestNavigatorFunc(t *testing.T) {
	var got Target
	var n Navigator = NavigatorFunc(func(t Target) { got = t })
	n.Navigate(Subscription())
	assert.Equal(t, Subscription(), got)
}
