package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DbOperationDuration records store call latency by operation
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// ForecastOperationsCounter counts forecast writes by operation and outcome
	ForecastOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_forecast_operations_total",
			Help: "Total number of forecast operations",
		},
		[]string{"operation", "outcome"},
	)

	// UploadRowsCounter counts spreadsheet rows by result
	UploadRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_upload_rows_total",
			Help: "Total number of uploaded spreadsheet rows",
		},
		[]string{"result"},
	)

	// ERPCallDuration records ERP call latency
	ERPCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_erp_call_duration_seconds",
			Help:    "Duration of ERP calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call", "outcome"},
	)

	// ERPAnomaliesCounter counts ERP lookups that were substituted with zero
	ERPAnomaliesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_erp_anomalies_total",
			Help: "Total number of ERP lookups that fell back to zero",
		},
		[]string{"call"},
	)

	// PDCADispatchCounter counts material requirement dispatches by outcome
	PDCADispatchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_pdca_dispatch_total",
			Help: "Total number of PDCA dispatches",
		},
		[]string{"outcome"},
	)

	// AggregationAnomaliesCounter counts lines dropped or mismatched during aggregation
	AggregationAnomaliesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_aggregation_anomalies_total",
			Help: "Total number of aggregation anomalies",
		},
		[]string{"kind"},
	)

	// UploadLockContentionCounter counts uploads rejected because the channel was locked
	UploadLockContentionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_upload_lock_contention_total",
			Help: "Total number of uploads rejected by the channel lock",
		},
	)

	// MonthsAutoClosedCounter counts months closed by the scheduler
	MonthsAutoClosedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_months_auto_closed_total",
			Help: "Total number of months closed automatically",
		},
	)

	plannerRegisterOnce sync.Once
)

// RegisterPlannerMetrics registers the domain collectors with the default registry
func RegisterPlannerMetrics() {
	plannerRegisterOnce.Do(func() {
		prometheus.MustRegister(
			DbOperationDuration,
			ForecastOperationsCounter,
			UploadRowsCounter,
			ERPCallDuration,
			ERPAnomaliesCounter,
			PDCADispatchCounter,
			AggregationAnomaliesCounter,
			UploadLockContentionCounter,
			MonthsAutoClosedCounter,
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordForecastOperation increments the forecast operation counter
func RecordForecastOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ForecastOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordUploadRows adds accepted and rejected row counts
func RecordUploadRows(accepted, rejected int) {
	UploadRowsCounter.WithLabelValues("accepted").Add(float64(accepted))
	UploadRowsCounter.WithLabelValues("rejected").Add(float64(rejected))
}

// TrackERPCall observes a single ERP round trip
func TrackERPCall(call string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ERPCallDuration.WithLabelValues(call, outcome).Observe(time.Since(start).Seconds())
}

// RecordERPAnomaly increments the zero-fallback counter
func RecordERPAnomaly(call string) {
	ERPAnomaliesCounter.WithLabelValues(call).Inc()
}

// RecordPDCADispatch increments the dispatch counter
func RecordPDCADispatch(outcome string) {
	PDCADispatchCounter.WithLabelValues(outcome).Inc()
}

// RecordAggregationAnomaly increments the aggregation anomaly counter
func RecordAggregationAnomaly(kind string) {
	AggregationAnomaliesCounter.WithLabelValues(kind).Inc()
}
