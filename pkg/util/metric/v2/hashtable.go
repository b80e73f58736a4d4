// Copyright 2023 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package v2

import "github.com/prometheus/client_golang/prometheus"

var (
	HashTableResizeCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "hashtable",
			Name:      "resize_total",
			Help:      "Total number of hash table capacity doublings.",
		})

	HashTableRehashDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mo",
			Subsystem: "hashtable",
			Name:      "rehash_duration_seconds",
			Help:      "Bucketed histogram of hash table rehash duration.",
			Buckets:   getDurationBuckets(),
		})
)

// labelled by store name and by phase, "put" or "get"
var (
	benchOpDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mo",
			Subsystem: "bench",
			Name:      "op_duration_seconds",
			Help:      "Bucketed histogram of benchmark phase duration.",
			Buckets:   getDurationBuckets(),
		}, []string{"store", "op"})

	benchThroughputGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mo",
			Subsystem: "bench",
			Name:      "throughput_ops",
			Help:      "Operations per second of the last benchmark phase.",
		}, []string{"store", "op"})
)

func GetBenchOpDurationHistogram(store, op string) prometheus.Observer {
	return benchOpDurationHistogram.WithLabelValues(store, op)
}

func GetBenchThroughputGauge(store, op string) prometheus.Gauge {
	return benchThroughputGauge.WithLabelValues(store, op)
}
