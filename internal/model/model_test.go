package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTicketStatus(t *testing.T) {
	for _, s := range []string{TicketStatusActive, TicketStatusUsed, TicketStatusCancelled, TicketStatusRefunded} {
		assert.True(t, ValidTicketStatus(s), s)
	}
	assert.False(t, ValidTicketStatus(""))
	assert.False(t, ValidTicketStatus("ACTIVE"))
	assert.False(t, ValidTicketStatus("expired"))
}

func TestTerminalTicketStatus(t *testing.T) {
	assert.False(t, TerminalTicketStatus(TicketStatusActive))
	assert.True(t, TerminalTicketStatus(TicketStatusUsed))
	assert.True(t, TerminalTicketStatus(TicketStatusCancelled))
	assert.True(t, TerminalTicketStatus(TicketStatusRefunded))
}

func TestPriceTierRemaining(t *testing.T) {
	assert.Equal(t, uint32(7), PriceTier{QuantityTotal: 10, QuantitySold: 3}.Remaining())
	assert.Equal(t, uint32(0), PriceTier{QuantityTotal: 10, QuantitySold: 10}.Remaining())
	// A corrupt counter must not underflow.
	assert.Equal(t, uint32(0), PriceTier{QuantityTotal: 10, QuantitySold: 11}.Remaining())
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, ValidRole(RoleBuyer))
	assert.True(t, ValidRole(RoleCreator))
	assert.True(t, ValidRole(RoleOrganizer))
	assert.False(t, ValidRole("admin"))
	assert.False(t, ValidRole("BUYER"))

	buyer := []string{RoleBuyer}
	creator := []string{RoleBuyer, RoleCreator}
	organizer := []string{RoleBuyer, RoleOrganizer}

	assert.True(t, HasRole(creator, RoleCreator))
	assert.False(t, HasRole(buyer, RoleCreator))

	assert.False(t, CanManageEvents(buyer))
	assert.True(t, CanManageEvents(creator))
	assert.True(t, CanManageEvents(organizer))

	assert.False(t, IsAdmin(buyer))
	assert.False(t, IsAdmin(creator))
	assert.True(t, IsAdmin(organizer))
}

func TestValidBannerPosition(t *testing.T) {
	assert.True(t, ValidBannerPosition(BannerPositionTop))
	assert.True(t, ValidBannerPosition(BannerPositionMiddle))
	assert.False(t, ValidBannerPosition("bottom"))
	assert.False(t, ValidBannerPosition(""))
}
