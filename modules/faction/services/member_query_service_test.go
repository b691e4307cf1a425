package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
)

func TestMemberQueryService_MemberCount(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)
	brassID := brass.ID()
	trumpets := f.seedFaction("Trumpets", org.ID(), &brassID)

	f.seedMember(member.KindAttendee, org.ID(), brass.ID())
	f.seedMember(member.KindAttendee, org.ID(), brass.ID())
	f.seedMember(member.KindAttendee, org.ID(), trumpets.ID())
	f.seedMember(member.KindLeader, org.ID(), brass.ID())

	t.Run("recursive count spans the subtree", func(t *testing.T) {
		got, err := f.queries.MemberCount(ctx, brass.ID(), member.KindAttendee, true)
		require.NoError(t, err)
		assert.EqualValues(t, 3, got)
	})

	t.Run("direct count stops at the faction", func(t *testing.T) {
		got, err := f.queries.MemberCount(ctx, brass.ID(), member.KindAttendee, false)
		require.NoError(t, err)
		assert.EqualValues(t, 2, got)
	})

	t.Run("kinds are counted separately", func(t *testing.T) {
		got, err := f.queries.MemberCount(ctx, brass.ID(), member.KindLeader, true)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got)
	})

	t.Run("unknown faction counts zero", func(t *testing.T) {
		got, err := f.queries.MemberCount(ctx, uuid.New(), member.KindAttendee, true)
		require.NoError(t, err)
		assert.Zero(t, got)
	})

	t.Run("soft-deleted membership is excluded", func(t *testing.T) {
		m := f.seedMember(member.KindAttendee, org.ID(), trumpets.ID())
		require.NoError(t, f.members.SoftDelete(ctx, m.ID()))

		got, err := f.queries.MemberCount(ctx, brass.ID(), member.KindAttendee, true)
		require.NoError(t, err)
		assert.EqualValues(t, 3, got)
	})
}

func TestMemberQueryService_MembersOf(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)
	brassID := brass.ID()
	trumpets := f.seedFaction("Trumpets", org.ID(), &brassID)

	direct := f.seedMember(member.KindAttendee, org.ID(), brass.ID())
	nested := f.seedMember(member.KindAttendee, org.ID(), trumpets.ID())

	t.Run("recursive listing includes nested factions", func(t *testing.T) {
		got, err := f.queries.MembersOf(ctx, brass.ID(), member.KindAttendee, true)
		require.NoError(t, err)
		ids := []uuid.UUID{}
		for _, m := range got {
			ids = append(ids, m.ID())
		}
		assert.ElementsMatch(t, []uuid.UUID{direct.ID(), nested.ID()}, ids)
	})

	t.Run("direct listing excludes nested factions", func(t *testing.T) {
		got, err := f.queries.MembersOf(ctx, brass.ID(), member.KindAttendee, false)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, direct.ID(), got[0].ID())
	})

	t.Run("unknown faction lists empty", func(t *testing.T) {
		got, err := f.queries.MembersOf(ctx, uuid.New(), member.KindAttendee, true)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemberQueryService_SoftDeletedPersonIsInvisible(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)
	brassID := brass.ID()
	trumpets := f.seedFaction("Trumpets", org.ID(), &brassID)

	kept := f.seedMember(member.KindAttendee, org.ID(), brass.ID())
	gone := f.seedMember(member.KindAttendee, org.ID(), trumpets.ID())
	f.members.deletedPeople[gone.PersonID()] = true

	t.Run("listing skips the still-live membership row", func(t *testing.T) {
		got, err := f.queries.MembersOf(ctx, brass.ID(), member.KindAttendee, true)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, kept.ID(), got[0].ID())
	})

	t.Run("count skips the still-live membership row", func(t *testing.T) {
		got, err := f.queries.MemberCount(ctx, brass.ID(), member.KindAttendee, true)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got)
	})

	t.Run("roster skips the still-live membership row", func(t *testing.T) {
		got, err := f.queries.Roster(ctx, brass.ID())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, kept.ID(), got[0].ID())
	})

	t.Run("distribution skips the still-live membership row", func(t *testing.T) {
		got, err := f.queries.Distribution(ctx, brass.ID(), member.KindAttendee)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Brass", got[0].FactionName)
	})
}

func TestMemberQueryService_SubFactionCount(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)
	brassID := brass.ID()
	trumpets := f.seedFaction("Trumpets", org.ID(), &brassID)
	f.seedFaction("Trombones", org.ID(), &brassID)
	trumpetsID := trumpets.ID()
	f.seedFaction("Piccolo trumpets", org.ID(), &trumpetsID)

	t.Run("counts direct children only", func(t *testing.T) {
		got, err := f.queries.SubFactionCount(ctx, brass.ID())
		require.NoError(t, err)
		assert.EqualValues(t, 2, got)
	})

	t.Run("unknown faction counts zero", func(t *testing.T) {
		got, err := f.queries.SubFactionCount(ctx, uuid.New())
		require.NoError(t, err)
		assert.Zero(t, got)
	})
}

func TestMemberQueryService_Distribution(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)
	brassID := brass.ID()
	trumpets := f.seedFaction("Trumpets", org.ID(), &brassID)

	f.seedMember(member.KindAttendee, org.ID(), brass.ID())
	f.seedMember(member.KindAttendee, org.ID(), trumpets.ID())
	f.seedMember(member.KindAttendee, org.ID(), trumpets.ID())

	got, err := f.queries.Distribution(ctx, brass.ID(), member.KindAttendee)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byName := map[string]int64{}
	for _, c := range got {
		byName[c.FactionName] = c.Count
	}
	assert.EqualValues(t, 1, byName["Brass"])
	assert.EqualValues(t, 2, byName["Trumpets"])
}

func TestMemberQueryService_Roster(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	brass := f.seedFaction("Brass", org.ID(), nil)
	brassID := brass.ID()
	trumpets := f.seedFaction("Trumpets", org.ID(), &brassID)

	f.seedMember(member.KindLeader, org.ID(), trumpets.ID())
	f.seedMember(member.KindAttendee, org.ID(), brass.ID())
	f.seedMember(member.KindAttendee, org.ID(), trumpets.ID())

	got, err := f.queries.Roster(ctx, brass.ID())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, member.KindLeader, got[0].Kind())
}
