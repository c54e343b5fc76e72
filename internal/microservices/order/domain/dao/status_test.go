package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusNew, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}
	expected := map[Status]map[Status]bool{
		StatusNew:       {StatusPreparing: true, StatusCancelled: true},
		StatusPreparing: {StatusReady: true, StatusCancelled: true},
		StatusReady:     {StatusCompleted: true},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, expected[from][to], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("served", StatusReady))
	assert.False(t, CanTransition(StatusNew, "served"))
}

func TestStatus_Predicates(t *testing.T) {
	testCases := map[string]struct {
		status   Status
		valid    bool
		terminal bool
		active   bool
	}{
		"new is active":            {status: StatusNew, valid: true, active: true},
		"preparing is active":      {status: StatusPreparing, valid: true, active: true},
		"ready is active":          {status: StatusReady, valid: true, active: true},
		"completed is terminal":    {status: StatusCompleted, valid: true, terminal: true},
		"cancelled is terminal":    {status: StatusCancelled, valid: true, terminal: true},
		"unknown is neither valid": {status: "served"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.valid, tc.status.Valid())
			assert.Equal(t, tc.terminal, tc.status.Terminal())
			assert.Equal(t, tc.active, tc.status.Active())
		})
	}
}

func TestStatus_NextIsACopy(t *testing.T) {
	next := StatusNew.Next()
	next[0] = StatusCompleted

	assert.True(t, CanTransition(StatusNew, StatusPreparing))
}

func TestComputeTotal(t *testing.T) {
	items := []OrderItem{
		{ItemID: "5", Name: "Butter Chicken", Price: 100, Quantity: 2},
		{ItemID: "11", Name: "Butter Naan", Price: 50, Quantity: 1},
	}

	assert.Equal(t, int64(250), ComputeTotal(items))
	assert.Equal(t, int64(0), ComputeTotal(nil))
}

func TestOrder_Clone(t *testing.T) {
	o := Order{ID: "a", Items: []OrderItem{{ItemID: "1", Name: "Paneer Tikka", Price: 220, Quantity: 1}}}

	c := o.Clone()
	c.Items[0].Name = "changed"

	assert.Equal(t, "Paneer Tikka", o.Items[0].Name)
}
