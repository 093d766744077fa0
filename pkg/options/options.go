// Package options provides functional-option configuration for the Ignite
// store: the data directory, the inline-compaction threshold, the fsync
// policy, and the Prometheus registry metrics are published to.
package options

import (
	"strings"

	igniteerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures the data directory and durability/compaction behavior
// for a store.
type Options struct {
	// DataDir is the directory segment files live in. Created on Open if
	// absent.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// CompactionThreshold is the number of uncompacted (dead-weight) bytes
	// that trigger inline compaction.
	//
	// Default: 1 MiB
	CompactionThreshold uint64 `json:"compactionThreshold"`

	// Sync, when true, calls File.Sync at segment rollover and at
	// compaction completion, in addition to the flush every write already
	// performs. The source only flushes user-space buffers; this is an
	// explicit opt-in for stronger durability at the cost of write latency.
	//
	// Default: false
	Sync bool `json:"sync"`

	// Registry is the Prometheus registerer the store's metrics are
	// registered against. Nil means the store registers into a private
	// registry that nothing outside the store can scrape.
	//
	// Default: nil
	Registry prometheus.Registerer `json:"-"`
}

// OptionFunc mutates an Options during construction.
type OptionFunc func(*Options)

// WithDefaultOptions resets every field to the package defaults.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the directory segment files are read from and written to.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithCompactionThreshold sets the uncompacted-bytes watermark that
// triggers inline compaction.
func WithCompactionThreshold(bytes uint64) OptionFunc {
	return func(o *Options) {
		if bytes >= MinCompactionThreshold && bytes <= MaxCompactionThreshold {
			o.CompactionThreshold = bytes
		}
	}
}

// WithSync enables fsync at segment rollover and compaction completion.
func WithSync(sync bool) OptionFunc {
	return func(o *Options) {
		o.Sync = sync
	}
}

// WithRegistry sets the Prometheus registerer the store's metrics are
// registered against, so an embedding application can scrape them from its
// own registry instead of the store's private one.
func WithRegistry(reg prometheus.Registerer) OptionFunc {
	return func(o *Options) {
		o.Registry = reg
	}
}

// Validate checks that Options describes a usable configuration, returning
// a *errors.ValidationError describing the first problem found.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.DataDir) == "" {
		return igniteerrors.NewRequiredFieldError("DataDir")
	}
	if o.CompactionThreshold < MinCompactionThreshold || o.CompactionThreshold > MaxCompactionThreshold {
		return igniteerrors.NewFieldRangeError(
			"CompactionThreshold", o.CompactionThreshold, MinCompactionThreshold, MaxCompactionThreshold,
		)
	}
	return nil
}
