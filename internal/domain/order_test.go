package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to DeliveryStatus
		want     bool
	}{
		{DeliveryPending, DeliveryConfirmed, true},
		{DeliveryPending, DeliveryCancelled, true},
		{DeliveryPending, DeliveryShipping, false},
		{DeliveryPending, DeliveryDelivered, false},
		{DeliveryConfirmed, DeliveryShipping, true},
		{DeliveryConfirmed, DeliveryCancelled, true},
		{DeliveryConfirmed, DeliveryDelivered, false},
		{DeliveryConfirmed, DeliveryPending, false},
		{DeliveryShipping, DeliveryDelivered, true},
		{DeliveryShipping, DeliveryCancelled, false},
		{DeliveryDelivered, DeliveryPending, false},
		{DeliveryDelivered, DeliveryCancelled, false},
		{DeliveryCancelled, DeliveryPending, false},
		{DeliveryCancelled, DeliveryConfirmed, false},
		{DeliveryStatus("returned"), DeliveryPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsValidDeliveryStatus(t *testing.T) {
	for _, s := range []DeliveryStatus{
		DeliveryPending, DeliveryConfirmed, DeliveryShipping, DeliveryDelivered, DeliveryCancelled,
	} {
		assert.True(t, IsValidDeliveryStatus(s), string(s))
	}
	assert.False(t, IsValidDeliveryStatus(DeliveryStatus("returned")))
	assert.False(t, IsValidDeliveryStatus(DeliveryStatus("")))
	assert.False(t, IsValidDeliveryStatus(DeliveryStatus("PENDING")))
}
