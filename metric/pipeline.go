package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const pipelineService = "pipeline"

// PipelineMetrics counts what the grouping pipeline did. All methods accept a nil
// receiver.
type PipelineMetrics struct {
	NodesDuplicated prometheus.Counter
	GroupsCreated   prometheus.Counter
	NodesFlagged    prometheus.Counter
	Warnings        *prometheus.CounterVec
	EdgesAggregated *prometheus.CounterVec
	BuildDuration   *prometheus.HistogramVec
}

// NewPipelineMetrics creates the pipeline metrics and registers them with registrar.
func NewPipelineMetrics(registrar MetricsRegistrar) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		NodesDuplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: pipelineService,
			Name:      "nodes_duplicated_total",
			Help:      "Nodes created as per-group copies of multi-group proteins",
		}),
		GroupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: pipelineService,
			Name:      "groups_created_total",
			Help:      "Protein groups created with more than one member",
		}),
		NodesFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: pipelineService,
			Name:      "single_member_groups_total",
			Help:      "Single-member groups flagged for analysis instead of grouped",
		}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: pipelineService,
			Name:      "warnings_total",
			Help:      "Data-quality and structural warnings by kind",
		}, []string{"kind"}),
		EdgesAggregated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: pipelineService,
			Name:      "meta_edges_aggregated_total",
			Help:      "Meta-edges aggregated by group transition",
		}, []string{"transition"}),
		BuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: pipelineService,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	if registrar == nil {
		return m, nil
	}
	if err := registrar.RegisterCounter(pipelineService, "nodes_duplicated", m.NodesDuplicated); err != nil {
		return nil, err
	}
	if err := registrar.RegisterCounter(pipelineService, "groups_created", m.GroupsCreated); err != nil {
		return nil, err
	}
	if err := registrar.RegisterCounter(pipelineService, "single_member_groups", m.NodesFlagged); err != nil {
		return nil, err
	}
	if err := registrar.RegisterCounterVec(pipelineService, "warnings", m.Warnings); err != nil {
		return nil, err
	}
	if err := registrar.RegisterCounterVec(pipelineService, "meta_edges_aggregated", m.EdgesAggregated); err != nil {
		return nil, err
	}
	if err := registrar.RegisterHistogramVec(pipelineService, "stage_duration", m.BuildDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordDuplicates adds n created copies
func (m *PipelineMetrics) RecordDuplicates(n int) {
	if m == nil || n == 0 {
		return
	}
	m.NodesDuplicated.Add(float64(n))
}

// RecordGroupCreated counts one group
func (m *PipelineMetrics) RecordGroupCreated() {
	if m == nil {
		return
	}
	m.GroupsCreated.Inc()
}

// RecordFlagged counts one single-member group
func (m *PipelineMetrics) RecordFlagged() {
	if m == nil {
		return
	}
	m.NodesFlagged.Inc()
}

// RecordWarning counts one warning of the given kind
func (m *PipelineMetrics) RecordWarning(kind string) {
	if m == nil {
		return
	}
	m.Warnings.WithLabelValues(kind).Inc()
}

// RecordAggregated counts one aggregated meta-edge; transition is "collapse" or "expand"
func (m *PipelineMetrics) RecordAggregated(transition string) {
	if m == nil {
		return
	}
	m.EdgesAggregated.WithLabelValues(transition).Inc()
}

// ObserveStage records the duration of a pipeline stage started at start
func (m *PipelineMetrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.BuildDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
