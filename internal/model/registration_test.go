package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionRegistration(t *testing.T) {
	require.True(t, CanTransitionRegistration(RegStatusPendingReview, RegStatusApproved))
	require.True(t, CanTransitionRegistration(RegStatusPendingReview, RegStatusRejected))
	require.True(t, CanTransitionRegistration(RegStatusPendingReview, RegStatusInfoRequested))
	require.True(t, CanTransitionRegistration(RegStatusInfoRequested, RegStatusPendingReview))
	require.True(t, CanTransitionRegistration(RegStatusInfoRequested, RegStatusApproved))

	// APPROVED and REJECTED are terminal.
	require.False(t, CanTransitionRegistration(RegStatusApproved, RegStatusRejected))
	require.False(t, CanTransitionRegistration(RegStatusApproved, RegStatusPendingReview))
	require.False(t, CanTransitionRegistration(RegStatusRejected, RegStatusApproved))

	// No self loops.
	require.False(t, CanTransitionRegistration(RegStatusPendingReview, RegStatusPendingReview))
}

func TestValidatePurchaseDate(t *testing.T) {
	now := date(2026, time.June, 1)
	released := date(2025, time.January, 1)

	require.NoError(t, ValidatePurchaseDate(date(2026, time.March, 1), &released, now))

	err := ValidatePurchaseDate(date(2024, time.December, 1), &released, now)
	require.ErrorIs(t, err, ErrPurchaseBeforeRelease)

	err = ValidatePurchaseDate(date(2026, time.July, 1), &released, now)
	require.ErrorIs(t, err, ErrPurchaseInFuture)

	err = ValidatePurchaseDate(date(2025, time.May, 1), &released, now)
	require.ErrorIs(t, err, ErrPurchaseTooOld)

	// Without a release date only the window rules apply.
	require.NoError(t, ValidatePurchaseDate(date(2026, time.January, 1), nil, now))
}
