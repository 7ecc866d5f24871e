package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPaid, OrderShipped, true},
		{OrderPaid, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.False(t, OrderStatus("Lost").Valid())
	assert.False(t, OrderCancelled.HoldsStock())
	assert.True(t, OrderShipped.HoldsStock())
}

func TestPagination(t *testing.T) {
	p := PageRequest{Page: 0, Limit: 500}.Normalize()
	assert.Equal(t, PageRequest{Page: 1, Limit: 10}, p)
	assert.Equal(t, 0, p.Offset())

	meta := NewPaginationMetadata(PageRequest{Page: 2, Limit: 10}, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	last := NewPaginationMetadata(PageRequest{Page: 3, Limit: 10}, 25)
	assert.False(t, last.HasNext)
}

func TestActor(t *testing.T) {
	me := uuid.New()
	customer := Actor{UserID: me, Roles: []string{RoleCustomer}}
	admin := Actor{UserID: uuid.New(), Roles: []string{RoleCustomer, RoleAdmin}}

	assert.False(t, customer.IsAdmin())
	assert.True(t, customer.CanAccess(me))
	assert.False(t, customer.CanAccess(uuid.New()))
	assert.True(t, admin.CanAccess(me))
}
