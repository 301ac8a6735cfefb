package calculator

import "github.com/mmynk/wattsplit/internal/models"

// allocator distributes shared consumption across rooms for one policy.
type allocator interface {
	// validate rejects room sets the policy cannot divide.
	validate(sumRoom float64) error

	// share returns one room's portion of shared kWh and shared cost.
	share(roomKwh, sumRoom float64, rooms int, sharedKwh, sharedCost float64) (kwh, cost float64)

	// charged reports whether shared cost is added to room charges.
	charged() bool
}

func allocatorFor(method models.AllocationMethod) allocator {
	switch method {
	case models.AllocLandlord:
		return landlordAllocator{}
	case models.AllocEqual:
		return equalAllocator{}
	default:
		return proportionalAllocator{}
	}
}

// landlordAllocator leaves shared cost off every room; the gap between the
// bill and the room charges is the landlord's.
type landlordAllocator struct{}

func (landlordAllocator) validate(float64) error { return nil }

func (landlordAllocator) share(float64, float64, int, float64, float64) (float64, float64) {
	return 0, 0
}

func (landlordAllocator) charged() bool { return false }

// equalAllocator gives every room the same slice. Room count is never
// zero, so no guard is needed.
type equalAllocator struct{}

func (equalAllocator) validate(float64) error { return nil }

func (equalAllocator) share(_, _ float64, rooms int, sharedKwh, sharedCost float64) (float64, float64) {
	n := float64(rooms)
	return sharedKwh / n, sharedCost / n
}

func (equalAllocator) charged() bool { return true }

// proportionalAllocator splits shared consumption in the ratio of each
// room's own consumption, so every metered room pays the same effective
// shared rate per kWh.
type proportionalAllocator struct{}

func (proportionalAllocator) validate(sumRoom float64) error {
	if sumRoom <= 0 {
		return ErrProportionalZeroUsage
	}
	return nil
}

func (proportionalAllocator) share(roomKwh, sumRoom float64, _ int, sharedKwh, sharedCost float64) (float64, float64) {
	if sumRoom <= 0 {
		return 0, 0
	}
	ratio := roomKwh / sumRoom
	return sharedKwh * ratio, sharedCost * ratio
}

func (proportionalAllocator) charged() bool { return true }
