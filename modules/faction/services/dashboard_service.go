package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
)

const (
	priorityMetrics  = 0
	priorityOverview = 1
	priorityChart    = 2
	priorityList     = 6
	priorityActions  = 8
)

// DashboardService assembles the widget set for a person's landing
// page. Widgets are read models only; nothing here mutates state. A
// widget whose data load fails is rendered with its empty payload and
// the error is logged, so one broken query never takes down the page.
type DashboardService struct {
	scope   *ScopeService
	queries *MemberQueryService
	log     *logrus.Logger
}

func NewDashboardService(scope *ScopeService, queries *MemberQueryService, log *logrus.Logger) *DashboardService {
	return &DashboardService{scope: scope, queries: queries, log: log}
}

// Build returns the person's widgets ordered by priority.
// Administrators get the distribution chart and resource list;
// everyone else gets quick actions and the resource list. The metrics
// and overview widgets are always present, zeroed and empty when the
// person has no effective scope.
func (s *DashboardService) Build(ctx context.Context, personID uuid.UUID) []Widget {
	scope, scoped, err := s.scope.EffectiveScope(ctx, personID)
	if err != nil {
		s.degraded(personID, "effective scope", err)
		scoped = false
	}

	admin, err := s.scope.IsAdministrator(ctx, personID)
	if err != nil {
		s.degraded(personID, "administrator check", err)
		admin = false
	}

	widgets := []Widget{
		s.metricsWidget(ctx, personID, scope, scoped),
		s.overviewWidget(ctx, personID, scope, scoped),
	}
	if admin {
		widgets = append(widgets,
			s.chartWidget(ctx, personID, scope, scoped),
			s.resourcesWidget(),
		)
	} else {
		widgets = append(widgets,
			s.actionsWidget(),
			s.resourcesWidget(),
		)
	}

	sort.SliceStable(widgets, func(i, j int) bool {
		return widgets[i].Priority < widgets[j].Priority
	})
	return widgets
}

func (s *DashboardService) metricsWidget(ctx context.Context, personID uuid.UUID, scope faction.Faction, scoped bool) Widget {
	var leaders, attendees, subFactions int64
	if scoped {
		var err error
		if leaders, err = s.queries.MemberCount(ctx, scope.ID(), member.KindLeader, true); err != nil {
			s.degraded(personID, "leader count", err)
			leaders = 0
		}
		if attendees, err = s.queries.MemberCount(ctx, scope.ID(), member.KindAttendee, true); err != nil {
			s.degraded(personID, "attendee count", err)
			attendees = 0
		}
		if subFactions, err = s.queries.SubFactionCount(ctx, scope.ID()); err != nil {
			s.degraded(personID, "sub-faction count", err)
			subFactions = 0
		}
	}
	return Widget{
		Kind:     WidgetKindMetrics,
		Title:    "Key figures",
		Priority: priorityMetrics,
		Width:    12,
		Payload: MetricsPayload{Metrics: []Metric{
			{Label: "Leaders", Value: leaders},
			{Label: "Attendees", Value: attendees},
			{Label: "Sub-factions", Value: subFactions},
		}},
	}
}

// overviewWidget describes the scope faction itself, not its subtree.
func (s *DashboardService) overviewWidget(ctx context.Context, personID uuid.UUID, scope faction.Faction, scoped bool) Widget {
	rows := []OverviewRow{}
	if scoped {
		row := OverviewRow{Name: scope.Name(), Slug: scope.Slug()}
		ok := true
		var err error
		if row.LeaderCount, err = s.queries.MemberCount(ctx, scope.ID(), member.KindLeader, false); err != nil {
			s.degraded(personID, "overview leader count", err)
			ok = false
		}
		if row.AttendeeCount, err = s.queries.MemberCount(ctx, scope.ID(), member.KindAttendee, false); err != nil {
			s.degraded(personID, "overview attendee count", err)
			ok = false
		}
		if row.SubFactionCount, err = s.queries.SubFactionCount(ctx, scope.ID()); err != nil {
			s.degraded(personID, "overview sub-faction count", err)
			ok = false
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return Widget{
		Kind:     WidgetKindTable,
		Title:    "Faction overview",
		Priority: priorityOverview,
		Width:    6,
		Payload:  TablePayload{Rows: rows},
	}
}

func (s *DashboardService) chartWidget(ctx context.Context, personID uuid.UUID, scope faction.Faction, scoped bool) Widget {
	data := []ChartDatum{}
	if scoped {
		counts, err := s.queries.Distribution(ctx, scope.ID(), member.KindAttendee)
		if err != nil {
			s.degraded(personID, "attendee distribution", err)
		} else {
			for _, c := range counts {
				data = append(data, ChartDatum{Label: c.FactionName, Count: c.Count})
			}
		}
	}
	return Widget{
		Kind:     WidgetKindChart,
		Title:    "Attendees by faction",
		Priority: priorityChart,
		Width:    6,
		Payload:  ChartPayload{Data: data},
	}
}

func (s *DashboardService) actionsWidget() Widget {
	return Widget{
		Kind:     WidgetKindActions,
		Title:    "Quick actions",
		Priority: priorityActions,
		Width:    4,
		Payload: ActionsPayload{Actions: []Action{
			{Label: "Add attendee", URL: "/members/new?kind=attendee"},
			{Label: "View roster", URL: "/members"},
		}},
	}
}

func (s *DashboardService) resourcesWidget() Widget {
	return Widget{
		Kind:     WidgetKindList,
		Title:    "Resources",
		Priority: priorityList,
		Width:    6,
		Payload: ListPayload{Items: []ResourceLink{
			{Title: "Faction handbook", Subtitle: "Structure and naming rules", URL: "/docs/handbook"},
			{Title: "Leader guide", Subtitle: "Managing members and sub-factions", URL: "/docs/leaders"},
		}},
	}
}

func (s *DashboardService) degraded(personID uuid.UUID, widget string, err error) {
	s.log.WithFields(logrus.Fields{
		"person_id": personID,
		"widget":    widget,
	}).WithError(err).Warn("dashboard widget degraded to empty payload")
}
