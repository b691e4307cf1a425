package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
	"github.com/musterhq/muster/pkg/composables"
)

// stubTx satisfies the repository query surface so transactional
// service paths can run against in-memory fakes. The fakes never touch
// it.
type stubTx struct{}

func (stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (stubTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

type factionRepoFake struct {
	items map[uuid.UUID]faction.Faction
}

func newFactionRepoFake() *factionRepoFake {
	return &factionRepoFake{items: map[uuid.UUID]faction.Faction{}}
}

func (r *factionRepoFake) live(id uuid.UUID) (faction.Faction, bool) {
	f, ok := r.items[id]
	if !ok || f.DeletedAt() != nil {
		return faction.Faction{}, false
	}
	return f, true
}

func (r *factionRepoFake) GetByID(_ context.Context, id uuid.UUID) (faction.Faction, error) {
	f, ok := r.live(id)
	if !ok {
		return faction.Faction{}, faction.ErrNotFound
	}
	return f, nil
}

func (r *factionRepoFake) GetBySlug(_ context.Context, slug string) (faction.Faction, error) {
	for _, f := range r.items {
		if f.DeletedAt() == nil && f.Slug() == slug {
			return f, nil
		}
	}
	return faction.Faction{}, faction.ErrNotFound
}

func (r *factionRepoFake) GetPaginated(_ context.Context, params *faction.FindParams) ([]faction.Faction, error) {
	out := []faction.Faction{}
	for _, f := range r.items {
		if f.DeletedAt() != nil {
			continue
		}
		if params.OrganizationID != uuid.Nil && f.OrganizationID() != params.OrganizationID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(f.Name()), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *factionRepoFake) Count(ctx context.Context, params *faction.FindParams) (int64, error) {
	out, err := r.GetPaginated(ctx, params)
	return int64(len(out)), err
}

func (r *factionRepoFake) Adjacency(_ context.Context, organizationID uuid.UUID) ([]faction.Edge, error) {
	edges := []faction.Edge{}
	for _, f := range r.items {
		if f.DeletedAt() != nil || f.OrganizationID() != organizationID {
			continue
		}
		edges = append(edges, faction.Edge{ID: f.ID(), ParentID: f.ParentID()})
	}
	return edges, nil
}

func (r *factionRepoFake) GetForUpdate(ctx context.Context, id uuid.UUID) (faction.Faction, error) {
	return r.GetByID(ctx, id)
}

func (r *factionRepoFake) SubFactionCount(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	for _, f := range r.items {
		if f.DeletedAt() == nil && f.ParentID() != nil && *f.ParentID() == id {
			n++
		}
	}
	return n, nil
}

// uniqueAmongLive mirrors the partial unique indexes on name and slug.
func (r *factionRepoFake) uniqueAmongLive(f faction.Faction) error {
	for _, other := range r.items {
		if other.ID() == f.ID() || other.DeletedAt() != nil {
			continue
		}
		if other.Name() == f.Name() {
			return faction.ErrDuplicateName
		}
		if other.Slug() == f.Slug() {
			return faction.ErrDuplicateSlug
		}
	}
	return nil
}

func (r *factionRepoFake) Create(_ context.Context, f faction.Faction) (faction.Faction, error) {
	if err := r.uniqueAmongLive(f); err != nil {
		return faction.Faction{}, err
	}
	r.items[f.ID()] = f
	return f, nil
}

func (r *factionRepoFake) Update(_ context.Context, f faction.Faction) (faction.Faction, error) {
	if err := r.uniqueAmongLive(f); err != nil {
		return faction.Faction{}, err
	}
	r.items[f.ID()] = f
	return f, nil
}

func (r *factionRepoFake) SoftDeleteMany(_ context.Context, ids []uuid.UUID, at time.Time) error {
	for _, id := range ids {
		f, ok := r.items[id]
		if !ok {
			continue
		}
		r.items[id] = faction.Hydrate(
			f.ID(), f.OrganizationID(), f.ParentID(),
			f.Name(), f.Slug(), f.Abbreviation(), f.Description(),
			f.Active(), f.CreatedAt(), at, &at,
		)
	}
	return nil
}

type memberRepoFake struct {
	items    map[uuid.UUID]member.Membership
	factions *factionRepoFake

	// people soft-deleted out from under their memberships; reads join
	// on person liveness the way the SQL repository does
	deletedPeople map[uuid.UUID]bool

	// failure injection for degradation tests
	countErr   error
	groupedErr error
}

func newMemberRepoFake(factions *factionRepoFake) *memberRepoFake {
	return &memberRepoFake{
		items:         map[uuid.UUID]member.Membership{},
		factions:      factions,
		deletedPeople: map[uuid.UUID]bool{},
	}
}

func (r *memberRepoFake) visible(m member.Membership) bool {
	return m.DeletedAt() == nil && !r.deletedPeople[m.PersonID()]
}

func (r *memberRepoFake) GetByID(_ context.Context, id uuid.UUID) (member.Membership, error) {
	m, ok := r.items[id]
	if !ok || !r.visible(m) {
		return member.Membership{}, member.ErrNotFound
	}
	return m, nil
}

func (r *memberRepoFake) GetByPerson(_ context.Context, kind member.Kind, personID uuid.UUID) (member.Membership, error) {
	for _, m := range r.items {
		if r.visible(m) && m.Kind() == kind && m.PersonID() == personID {
			return m, nil
		}
	}
	return member.Membership{}, member.ErrNotFound
}

func inSet(id *uuid.UUID, set []uuid.UUID) bool {
	if id == nil {
		return false
	}
	for _, s := range set {
		if *id == s {
			return true
		}
	}
	return false
}

func (r *memberRepoFake) ListByFactionIDs(_ context.Context, kind member.Kind, factionIDs []uuid.UUID) ([]member.Membership, error) {
	out := []member.Membership{}
	for _, m := range r.items {
		if r.visible(m) && m.Kind() == kind && inSet(m.FactionID(), factionIDs) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memberRepoFake) CountByFactionIDs(ctx context.Context, kind member.Kind, factionIDs []uuid.UUID) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	out, err := r.ListByFactionIDs(ctx, kind, factionIDs)
	return int64(len(out)), err
}

func (r *memberRepoFake) CountGroupedByFaction(ctx context.Context, kind member.Kind, factionIDs []uuid.UUID) ([]member.FactionCount, error) {
	if r.groupedErr != nil {
		return nil, r.groupedErr
	}
	counts := map[uuid.UUID]int64{}
	memberships, err := r.ListByFactionIDs(ctx, kind, factionIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		counts[*m.FactionID()]++
	}
	out := []member.FactionCount{}
	for id, n := range counts {
		name := ""
		if f, ok := r.factions.live(id); ok {
			name = f.Name()
		}
		out = append(out, member.FactionCount{FactionID: id, FactionName: name, Count: n})
	}
	return out, nil
}

func (r *memberRepoFake) Roster(ctx context.Context, factionIDs []uuid.UUID) ([]member.Membership, error) {
	leaders, err := r.ListByFactionIDs(ctx, member.KindLeader, factionIDs)
	if err != nil {
		return nil, err
	}
	attendees, err := r.ListByFactionIDs(ctx, member.KindAttendee, factionIDs)
	if err != nil {
		return nil, err
	}
	return append(leaders, attendees...), nil
}

func (r *memberRepoFake) ExistsLive(_ context.Context, kind member.Kind, factionID, personID uuid.UUID) (bool, error) {
	for _, m := range r.items {
		if m.DeletedAt() == nil && m.Kind() == kind && m.PersonID() == personID &&
			m.FactionID() != nil && *m.FactionID() == factionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memberRepoFake) Create(_ context.Context, m member.Membership) (member.Membership, error) {
	r.items[m.ID()] = m
	return m, nil
}

func (r *memberRepoFake) Update(_ context.Context, m member.Membership) (member.Membership, error) {
	r.items[m.ID()] = m
	return m, nil
}

func (r *memberRepoFake) SoftDelete(_ context.Context, id uuid.UUID) error {
	m, ok := r.items[id]
	if !ok || m.DeletedAt() != nil {
		return member.ErrNotFound
	}
	now := time.Now().UTC()
	r.items[id] = member.Hydrate(
		m.ID(), m.Kind(), m.PersonID(), m.FactionID(), m.OrganizationID(),
		m.IsAdmin(), m.Person(), m.CreatedAt(), now, &now,
	)
	return nil
}

type orgRepoFake struct {
	items map[uuid.UUID]organization.Organization
}

func newOrgRepoFake() *orgRepoFake {
	return &orgRepoFake{items: map[uuid.UUID]organization.Organization{}}
}

func (r *orgRepoFake) GetByID(_ context.Context, id uuid.UUID) (organization.Organization, error) {
	o, ok := r.items[id]
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}
	return o, nil
}

func (r *orgRepoFake) Create(_ context.Context, o organization.Organization) (organization.Organization, error) {
	r.items[o.ID()] = o
	return o, nil
}

func (r *orgRepoFake) UpdateSettings(_ context.Context, id uuid.UUID, s organization.Settings) error {
	o, ok := r.items[id]
	if !ok {
		return organization.ErrNotFound
	}
	r.items[id] = o.WithSettings(s)
	return nil
}

// recordingBus captures published events for assertions.
type recordingBus struct {
	published []interface{}
}

func newRecordingBus() *recordingBus { return &recordingBus{} }

func (b *recordingBus) Publish(args ...interface{}) { b.published = append(b.published, args...) }
func (b *recordingBus) Subscribe(interface{})       {}
func (b *recordingBus) Unsubscribe(interface{})     {}
func (b *recordingBus) Clear()                      { b.published = nil }
func (b *recordingBus) SubscribersCount() int       { return 0 }

// fixture wires the full service graph over the in-memory fakes.
type fixture struct {
	factions   *factionRepoFake
	members    *memberRepoFake
	orgs       *orgRepoFake
	bus        *recordingBus
	scope      *ScopeService
	queries    *MemberQueryService
	factionSvc *FactionService
	memberSvc  *MemberService
	dashboard  *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	factions := newFactionRepoFake()
	members := newMemberRepoFake(factions)
	orgs := newOrgRepoFake()
	bus := newRecordingBus()

	scope := NewScopeService(members, factions)
	queries := NewMemberQueryService(members, factions)
	return &fixture{
		factions:   factions,
		members:    members,
		orgs:       orgs,
		bus:        bus,
		scope:      scope,
		queries:    queries,
		factionSvc: NewFactionService(factions, orgs, scope, bus),
		memberSvc:  NewMemberService(members, factions, orgs, scope, bus),
		dashboard:  NewDashboardService(scope, queries, log),
	}
}

// ctx carries a transaction stub so InTx joins it instead of demanding
// a pool.
func (f *fixture) ctx() context.Context {
	return composables.WithTx(context.Background(), stubTx{})
}

// manageCtx is f.ctx() acting as an administrator leader seeded into
// the given organization.
func (f *fixture) manageCtx(orgID uuid.UUID) context.Context {
	actor := uuid.New()
	m := member.New(member.KindLeader, actor, orgID, member.WithAdmin())
	f.members.items[m.ID()] = m
	return composables.WithActorID(f.ctx(), actor)
}

func (f *fixture) seedOrg(name string, settings organization.Settings) organization.Organization {
	o := organization.New(name, "").WithSettings(settings)
	f.orgs.items[o.ID()] = o
	return o
}

func (f *fixture) seedFaction(name string, orgID uuid.UUID, parentID *uuid.UUID) faction.Faction {
	opts := []faction.Option{}
	if parentID != nil {
		opts = append(opts, faction.WithParentID(*parentID))
	}
	fac := faction.New(name, orgID, opts...)
	f.factions.items[fac.ID()] = fac
	return fac
}

func (f *fixture) seedMember(kind member.Kind, orgID, factionID uuid.UUID, opts ...member.Option) member.Membership {
	opts = append(opts, member.WithFactionID(factionID))
	m := member.New(kind, uuid.New(), orgID, opts...)
	f.members.items[m.ID()] = m
	return m
}
