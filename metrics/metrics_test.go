package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRequest(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		duration   float64
		success    bool
		wantStatus string
	}{
		{
			name:       "successful request",
			tool:       "test_tool",
			duration:   0.5,
			success:    true,
			wantStatus: "success",
		},
		{
			name:       "failed request",
			tool:       "test_tool",
			duration:   1.0,
			success:    false,
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordRequest(tt.tool, tt.duration, tt.success)

			counter, err := RequestsTotal.GetMetricWithLabelValues(tt.tool, tt.wantStatus)
			if err != nil {
				t.Fatalf("failed to get metric: %v", err)
			}
			if getCounterValue(t, counter) < 1 {
				t.Error("expected counter to be incremented")
			}
		})
	}
}

func TestRecordRPCCall(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		duration  float64
		errorCode string
	}{
		{
			name:     "successful call",
			method:   "wiki.getPage",
			duration: 0.1,
		},
		{
			name:      "failed call with error code",
			method:    "wiki.putPage",
			duration:  0.5,
			errorCode: "fault",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordRPCCall(tt.method, tt.duration, tt.errorCode)

			status := "success"
			if tt.errorCode != "" {
				status = "error"
			}
			counter, err := RPCCallsTotal.GetMetricWithLabelValues(tt.method, status)
			if err != nil {
				t.Fatalf("failed to get metric: %v", err)
			}
			if getCounterValue(t, counter) < 1 {
				t.Error("expected counter to be incremented")
			}

			if tt.errorCode != "" {
				errCounter, err := RPCErrors.GetMetricWithLabelValues(tt.method, tt.errorCode)
				if err != nil {
					t.Fatalf("failed to get error metric: %v", err)
				}
				if getCounterValue(t, errCounter) < 1 {
					t.Error("expected error counter to be incremented")
				}
			}
		})
	}
}

func TestRecordHTTP(t *testing.T) {
	before := labeledCounter(t, HTTPRequestsTotal, "none")
	RecordHTTP(0, 0.01)
	if labeledCounter(t, HTTPRequestsTotal, "none") != before+1 {
		t.Error("expected 'none' status counter to increment")
	}

	before = labeledCounter(t, HTTPRequestsTotal, "200")
	RecordHTTP(200, 0.01)
	if labeledCounter(t, HTTPRequestsTotal, "200") != before+1 {
		t.Error("expected '200' status counter to increment")
	}
}

func TestRecordLogin(t *testing.T) {
	accepted := labeledCounter(t, LoginResults, "accepted")
	rejected := labeledCounter(t, LoginResults, "rejected")

	RecordLogin(true)
	RecordLogin(false)

	if labeledCounter(t, LoginResults, "accepted") != accepted+1 {
		t.Error("expected accepted logins to increment")
	}
	if labeledCounter(t, LoginResults, "rejected") != rejected+1 {
		t.Error("expected rejected logins to increment")
	}
}

func TestRecordConversionAndUpload(t *testing.T) {
	conv := labeledCounter(t, ConversionsTotal, "error")
	RecordConversion(false)
	if labeledCounter(t, ConversionsTotal, "error") != conv+1 {
		t.Error("expected failed conversions to increment")
	}

	up := labeledCounter(t, PageUploads, "success")
	RecordUpload(true)
	if labeledCounter(t, PageUploads, "success") != up+1 {
		t.Error("expected successful uploads to increment")
	}
}

func TestMetricsRegistered(t *testing.T) {
	metrics := []prometheus.Collector{
		RequestsTotal,
		RequestDuration,
		RequestInFlight,
		PanicsRecovered,
		RPCCallsTotal,
		RPCLatency,
		RPCErrors,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LoginResults,
		ContentSize,
		ConversionsTotal,
		ArchivesExtracted,
		PageUploads,
	}

	for i, m := range metrics {
		if m == nil {
			t.Errorf("metric at index %d is nil", i)
		}
	}
}

func TestNamespace(t *testing.T) {
	if Namespace != "dokuwiki_tools" {
		t.Errorf("expected namespace 'dokuwiki_tools', got '%s'", Namespace)
	}
}

func labeledCounter(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	return getCounterValue(t, c)
}

// Helper to get counter value
func getCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}
