package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
)

func TestMemberService_Provision(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	ctx := f.manageCtx(org.ID())
	brass := f.seedFaction("Brass", org.ID(), nil)
	brassID := brass.ID()

	t.Run("attendee lands in the faction", func(t *testing.T) {
		created, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
			FactionID:      &brassID,
		})
		require.NoError(t, err)
		require.NotNil(t, created.FactionID())
		assert.Equal(t, brass.ID(), *created.FactionID())
	})

	t.Run("duplicate live membership is rejected", func(t *testing.T) {
		personID := uuid.New()
		dto := &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       personID,
			OrganizationID: org.ID(),
			FactionID:      &brassID,
		}
		_, err := f.memberSvc.Provision(ctx, dto)
		require.NoError(t, err)

		_, err = f.memberSvc.Provision(ctx, dto)
		require.ErrorIs(t, err, member.ErrAlreadyMember)
	})

	t.Run("removed membership can be provisioned again", func(t *testing.T) {
		personID := uuid.New()
		dto := &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       personID,
			OrganizationID: org.ID(),
			FactionID:      &brassID,
		}
		created, err := f.memberSvc.Provision(ctx, dto)
		require.NoError(t, err)
		require.NoError(t, f.memberSvc.Remove(ctx, created.ID()))

		_, err = f.memberSvc.Provision(ctx, dto)
		require.NoError(t, err)
	})

	t.Run("unassigned provisioning skips faction checks", func(t *testing.T) {
		created, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
		})
		require.NoError(t, err)
		assert.Nil(t, created.FactionID())
	})

	t.Run("faction of a different organization is rejected", func(t *testing.T) {
		other := f.seedOrg("Choir", organization.DefaultSettings())
		loft := f.seedFaction("Loft", other.ID(), nil)
		loftID := loft.ID()

		_, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
			FactionID:      &loftID,
		})
		require.ErrorIs(t, err, member.ErrOrganizationMismatch)
	})

	t.Run("unknown faction is rejected", func(t *testing.T) {
		ghostID := uuid.New()
		_, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
			FactionID:      &ghostID,
		})
		require.ErrorIs(t, err, faction.ErrNotFound)
	})

	t.Run("requires management rights", func(t *testing.T) {
		_, err := f.memberSvc.Provision(f.ctx(), &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
			FactionID:      &brassID,
		})
		require.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestMemberService_Provision_Capacity(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg("Tiny hall", organization.Settings{
		MaxFactionDepth:        2,
		MaxAttendeesPerFaction: 2,
	})
	ctx := f.manageCtx(org.ID())
	stage := f.seedFaction("Stage", org.ID(), nil)
	stageID := stage.ID()

	for i := 0; i < 2; i++ {
		_, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
			FactionID:      &stageID,
		})
		require.NoError(t, err)
	}

	t.Run("full faction rejects another attendee", func(t *testing.T) {
		_, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
			FactionID:      &stageID,
		})

		var fullErr *member.FactionFullError
		require.ErrorAs(t, err, &fullErr)
		assert.Equal(t, 2, fullErr.MaxAttendees)
		assert.Equal(t, "Stage", fullErr.FactionName)
	})

	t.Run("leaders are not counted against the cap", func(t *testing.T) {
		_, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindLeader,
			PersonID:       uuid.New(),
			OrganizationID: org.ID(),
			FactionID:      &stageID,
		})
		require.NoError(t, err)
	})

	t.Run("a zero cap disables the check", func(t *testing.T) {
		open := f.seedOrg("Open air", organization.Settings{MaxFactionDepth: 2})
		field := f.seedFaction("Field", open.ID(), nil)
		fieldID := field.ID()

		_, err := f.memberSvc.Provision(ctx, &member.CreateDTO{
			Kind:           member.KindAttendee,
			PersonID:       uuid.New(),
			OrganizationID: open.ID(),
			FactionID:      &fieldID,
		})
		require.NoError(t, err)
	})
}

func TestMemberService_Promote(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	ctx := f.manageCtx(org.ID())
	brass := f.seedFaction("Brass", org.ID(), nil)

	t.Run("leader gains and loses the flag", func(t *testing.T) {
		m := f.seedMember(member.KindLeader, org.ID(), brass.ID())

		promoted, err := f.memberSvc.Promote(ctx, m.ID(), true)
		require.NoError(t, err)
		assert.True(t, promoted.IsAdmin())

		demoted, err := f.memberSvc.Promote(ctx, m.ID(), false)
		require.NoError(t, err)
		assert.False(t, demoted.IsAdmin())
	})

	t.Run("attendee stays non-admin", func(t *testing.T) {
		m := f.seedMember(member.KindAttendee, org.ID(), brass.ID())

		promoted, err := f.memberSvc.Promote(ctx, m.ID(), true)
		require.NoError(t, err)
		assert.False(t, promoted.IsAdmin())
	})
}

func TestMemberService_Reassign(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	ctx := f.manageCtx(org.ID())
	brass := f.seedFaction("Brass", org.ID(), nil)
	winds := f.seedFaction("Winds", org.ID(), nil)
	windsID := winds.ID()

	t.Run("moves to the destination faction", func(t *testing.T) {
		m := f.seedMember(member.KindAttendee, org.ID(), brass.ID())

		moved, err := f.memberSvc.Reassign(ctx, m.ID(), &windsID)
		require.NoError(t, err)
		require.NotNil(t, moved.FactionID())
		assert.Equal(t, winds.ID(), *moved.FactionID())
	})

	t.Run("destination uniqueness is enforced", func(t *testing.T) {
		personID := uuid.New()
		here := member.New(member.KindAttendee, personID, org.ID(), member.WithFactionID(brass.ID()))
		there := member.New(member.KindAttendee, personID, org.ID(), member.WithFactionID(winds.ID()))
		f.members.items[here.ID()] = here
		f.members.items[there.ID()] = there

		_, err := f.memberSvc.Reassign(ctx, here.ID(), &windsID)
		require.ErrorIs(t, err, member.ErrAlreadyMember)
	})

	t.Run("nil detaches the membership", func(t *testing.T) {
		m := f.seedMember(member.KindAttendee, org.ID(), brass.ID())

		moved, err := f.memberSvc.Reassign(ctx, m.ID(), nil)
		require.NoError(t, err)
		assert.Nil(t, moved.FactionID())
	})

	t.Run("destination in a different organization is rejected", func(t *testing.T) {
		other := f.seedOrg("Choir", organization.DefaultSettings())
		loft := f.seedFaction("Loft", other.ID(), nil)
		loftID := loft.ID()
		m := f.seedMember(member.KindAttendee, org.ID(), brass.ID())

		_, err := f.memberSvc.Reassign(ctx, m.ID(), &loftID)
		require.ErrorIs(t, err, member.ErrOrganizationMismatch)
	})

	t.Run("destination capacity is enforced", func(t *testing.T) {
		tiny := f.seedOrg("Tiny", organization.Settings{MaxFactionDepth: 2, MaxAttendeesPerFaction: 1})
		box := f.seedFaction("Box", tiny.ID(), nil)
		boxID := box.ID()
		f.seedMember(member.KindAttendee, tiny.ID(), box.ID())
		outsider := f.seedMember(member.KindAttendee, tiny.ID(), uuid.New())

		_, err := f.memberSvc.Reassign(ctx, outsider.ID(), &boxID)

		var fullErr *member.FactionFullError
		require.ErrorAs(t, err, &fullErr)
	})
}

func TestMemberService_Remove(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg("Orchestra", organization.DefaultSettings())
	ctx := f.manageCtx(org.ID())
	brass := f.seedFaction("Brass", org.ID(), nil)
	m := f.seedMember(member.KindAttendee, org.ID(), brass.ID())

	require.NoError(t, f.memberSvc.Remove(ctx, m.ID()))

	_, err := f.members.GetByID(ctx, m.ID())
	require.ErrorIs(t, err, member.ErrNotFound)

	t.Run("removing twice fails", func(t *testing.T) {
		err := f.memberSvc.Remove(ctx, m.ID())
		require.ErrorIs(t, err, member.ErrNotFound)
	})
}
