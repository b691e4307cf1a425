package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
)

func TestScopeService_EffectiveScope(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)
	winds := f.seedFaction("Winds", org.ID(), nil)

	t.Run("leader scope wins over attendee scope", func(t *testing.T) {
		personID := uuid.New()
		lead := member.New(member.KindLeader, personID, org.ID(), member.WithFactionID(brass.ID()))
		attend := member.New(member.KindAttendee, personID, org.ID(), member.WithFactionID(winds.ID()))
		f.members.items[lead.ID()] = lead
		f.members.items[attend.ID()] = attend

		scope, ok, err := f.scope.EffectiveScope(ctx, personID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, brass.ID(), scope.ID())
	})

	t.Run("attendee scope when no leader membership", func(t *testing.T) {
		personID := uuid.New()
		attend := member.New(member.KindAttendee, personID, org.ID(), member.WithFactionID(winds.ID()))
		f.members.items[attend.ID()] = attend

		scope, ok, err := f.scope.EffectiveScope(ctx, personID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, winds.ID(), scope.ID())
	})

	t.Run("no memberships means no scope", func(t *testing.T) {
		_, ok, err := f.scope.EffectiveScope(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unassigned leader falls through to attendee", func(t *testing.T) {
		personID := uuid.New()
		lead := member.New(member.KindLeader, personID, org.ID())
		attend := member.New(member.KindAttendee, personID, org.ID(), member.WithFactionID(winds.ID()))
		f.members.items[lead.ID()] = lead
		f.members.items[attend.ID()] = attend

		scope, ok, err := f.scope.EffectiveScope(ctx, personID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, winds.ID(), scope.ID())
	})

	t.Run("soft-deleted person yields no scope", func(t *testing.T) {
		personID := uuid.New()
		lead := member.New(member.KindLeader, personID, org.ID(), member.WithFactionID(brass.ID()))
		f.members.items[lead.ID()] = lead
		f.members.deletedPeople[personID] = true

		_, ok, err := f.scope.EffectiveScope(ctx, personID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("soft-deleted faction yields no scope", func(t *testing.T) {
		ghost := f.seedFaction("Ghost", org.ID(), nil)
		personID := uuid.New()
		lead := member.New(member.KindLeader, personID, org.ID(), member.WithFactionID(ghost.ID()))
		f.members.items[lead.ID()] = lead
		require.NoError(t, f.factions.SoftDeleteMany(ctx, []uuid.UUID{ghost.ID()}, lead.CreatedAt()))

		_, ok, err := f.scope.EffectiveScope(ctx, personID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestScopeService_IsAdministrator(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)

	t.Run("admin leader", func(t *testing.T) {
		m := f.seedMember(member.KindLeader, org.ID(), brass.ID(), member.WithAdmin())
		got, err := f.scope.IsAdministrator(ctx, m.PersonID())
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("plain leader", func(t *testing.T) {
		m := f.seedMember(member.KindLeader, org.ID(), brass.ID())
		got, err := f.scope.IsAdministrator(ctx, m.PersonID())
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("attendee never administers", func(t *testing.T) {
		m := f.seedMember(member.KindAttendee, org.ID(), brass.ID())
		got, err := f.scope.IsAdministrator(ctx, m.PersonID())
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("promotion is visible on the next call", func(t *testing.T) {
		m := f.seedMember(member.KindLeader, org.ID(), brass.ID())

		got, err := f.scope.IsAdministrator(ctx, m.PersonID())
		require.NoError(t, err)
		require.False(t, got)

		f.members.items[m.ID()] = m.Promoted(true)

		got, err = f.scope.IsAdministrator(ctx, m.PersonID())
		require.NoError(t, err)
		assert.True(t, got)
	})
}
