package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckCustomerReply(t *testing.T) {
	now := date(2026, time.June, 1)

	// Open and in-progress tickets accept replies without reopening.
	for _, s := range []string{TicketOpen, TicketInProgress} {
		reopen, err := CheckCustomerReply(SupportTicket{Status: s}, now)
		require.NoError(t, err)
		require.False(t, reopen)
	}

	// Closed tickets never accept replies.
	_, err := CheckCustomerReply(SupportTicket{Status: TicketClosed}, now)
	require.ErrorIs(t, err, ErrTicketClosed)

	// A resolved ticket inside the grace window reopens.
	within := now.Add(-29 * 24 * time.Hour)
	reopen, err := CheckCustomerReply(SupportTicket{Status: TicketResolved, ClosedAt: &within}, now)
	require.NoError(t, err)
	require.True(t, reopen)

	// Past the window it is permanently closed.
	past := now.Add(-31 * 24 * time.Hour)
	_, err = CheckCustomerReply(SupportTicket{Status: TicketResolved, ClosedAt: &past}, now)
	require.ErrorIs(t, err, ErrTicketClosed)
}

func TestValidTicketStatus(t *testing.T) {
	for _, s := range []string{TicketOpen, TicketInProgress, TicketResolved, TicketClosed} {
		require.True(t, ValidTicketStatus(s))
	}
	require.False(t, ValidTicketStatus("ARCHIVED"))
	require.False(t, ValidTicketStatus(""))
}
