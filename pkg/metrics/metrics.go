package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the crypto-layer metrics
type Registry struct {
	// Value crypto
	ValuesEncryptedTotal prometheus.Counter
	ValuesDecryptedTotal prometheus.Counter
	CryptoFailuresTotal  *prometheus.CounterVec

	// Store decorator
	RowsReadTotal    *prometheus.CounterVec
	RowsWrittenTotal *prometheus.CounterVec

	// Key rotation
	RotationsTotal      *prometheus.CounterVec
	RotationDuration    prometheus.Histogram
	RotationRowsTotal   prometheus.Counter
	RotationTablesTotal prometheus.Counter
}

// NewRegistry creates the metrics and registers them with reg. A nil
// reg leaves the metrics unregistered; tests use that to avoid
// duplicate registration.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		ValuesEncryptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sealstore_values_encrypted_total",
			Help: "Total number of values encrypted",
		}),
		ValuesDecryptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sealstore_values_decrypted_total",
			Help: "Total number of values decrypted",
		}),
		CryptoFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sealstore_crypto_failures_total",
			Help: "Crypto failures by kind",
		}, []string{"kind"}),
		RowsReadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sealstore_rows_read_total",
			Help: "Rows decrypted on the read path, by operation",
		}, []string{"operation"}),
		RowsWrittenTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sealstore_rows_written_total",
			Help: "Rows encrypted on the write path, by operation",
		}, []string{"operation"}),
		RotationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sealstore_key_rotations_total",
			Help: "Key rotations by outcome",
		}, []string{"outcome"}),
		RotationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sealstore_key_rotation_duration_seconds",
			Help:    "Duration of key rotation runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		RotationRowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sealstore_key_rotation_rows_total",
			Help: "Rows rewritten during key rotations",
		}),
		RotationTablesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sealstore_key_rotation_tables_total",
			Help: "Tables processed during key rotations",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			r.ValuesEncryptedTotal,
			r.ValuesDecryptedTotal,
			r.CryptoFailuresTotal,
			r.RowsReadTotal,
			r.RowsWrittenTotal,
			r.RotationsTotal,
			r.RotationDuration,
			r.RotationRowsTotal,
			r.RotationTablesTotal,
		)
	}

	return r
}
