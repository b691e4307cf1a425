package services

// WidgetKind tags the closed set of dashboard widget variants.
type WidgetKind string

const (
	WidgetKindMetrics WidgetKind = "metrics"
	WidgetKindTable   WidgetKind = "table"
	WidgetKindChart   WidgetKind = "chart"
	WidgetKindActions WidgetKind = "actions"
	WidgetKindList    WidgetKind = "list"
)

// Widget is one dashboard tile. Priority orders tiles for display;
// construction failures degrade to the variant's empty payload, never
// to a missing widget or a failed page.
type Widget struct {
	Kind     WidgetKind    `json:"kind"`
	Title    string        `json:"title"`
	Priority int           `json:"priority"`
	Width    int           `json:"width"`
	Payload  WidgetPayload `json:"payload"`
}

// WidgetPayload is implemented only by the five payload types below.
type WidgetPayload interface {
	isWidgetPayload()
}

type Metric struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type MetricsPayload struct {
	Metrics []Metric `json:"metrics"`
}

func (MetricsPayload) isWidgetPayload() {}

// OverviewRow summarizes one faction for the overview table.
type OverviewRow struct {
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	LeaderCount     int64  `json:"leader_count"`
	AttendeeCount   int64  `json:"attendee_count"`
	SubFactionCount int64  `json:"sub_faction_count"`
}

type TablePayload struct {
	Rows []OverviewRow `json:"rows"`
}

func (TablePayload) isWidgetPayload() {}

// ChartDatum is one {label, count} pair; the rendering layer consumes
// it as-is.
type ChartDatum struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type ChartPayload struct {
	Data []ChartDatum `json:"data"`
}

func (ChartPayload) isWidgetPayload() {}

type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type ActionsPayload struct {
	Actions []Action `json:"actions"`
}

func (ActionsPayload) isWidgetPayload() {}

type ResourceLink struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	URL      string `json:"url"`
}

type ListPayload struct {
	Items []ResourceLink `json:"items"`
}

func (ListPayload) isWidgetPayload() {}
