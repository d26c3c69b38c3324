// Copyright 2026 CorpusForge, Inc.
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics holds prometheus counters that do not belong to a
// single worker package. Counters tied to one component live next to
// the code that increments them:
//
//	harvest_retries_total{error_class}        internal/jira
//	harvest_retry_exhausted_total{error_class} internal/jira
//	harvest_rate_limit_hits_total             internal/jira
//	harvest_pages_fetched_total{project}      internal/engine
//	harvest_issues_yielded_total{project}     internal/engine
//	harvest_records_written_total             internal/output
//
// All counters register against the prometheus default registry via
// promauto. There is no HTTP listener; the counters exist for tests
// and for embedding the harvester in a larger process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecordsSkipped counts issues dropped during transformation because
// they were missing required fields. Skips never abort a run.
var RecordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "harvest_records_skipped_total",
	Help: "Total number of issues skipped because they could not be transformed into corpus records",
})
