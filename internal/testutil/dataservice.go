package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/playback/core"
)

// DataService is a scripted core.DataService. Event batches are served from
// a queue; once it runs dry a failure-shaped batch is returned.
type DataService struct {
	mu       sync.Mutex
	catalog  core.Catalog
	manifest core.Manifest
	batches  []core.EventBatch
	end      core.EndResult

	calls  []string
	inputs []map[string]any
}

var _ core.DataService = (*DataService)(nil)

// NewDataService returns a data service answering End with success.
func NewDataService() *DataService {
	return &DataService{
		catalog: core.Catalog{Status: core.Succeeded()},
		end:     core.EndResult{Status: core.Succeeded()},
	}
}

// WithExperiences serves a catalog of summaries (chainable).
func (d *DataService) WithExperiences(s ...core.ExperienceSummary) *DataService {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catalog = core.Catalog{Status: core.Succeeded(), Experiences: s}
	return d
}

// WithCatalog serves c verbatim (chainable).
func (d *DataService) WithCatalog(c core.Catalog) *DataService {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catalog = c
	return d
}

// WithManifest serves m (chainable).
func (d *DataService) WithManifest(m core.Manifest) *DataService {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.manifest = m
	return d
}

// QueueEvents enqueues a success-shaped batch holding evs (chainable).
func (d *DataService) QueueEvents(evs ...core.Event) *DataService {
	return d.QueueBatch(core.EventBatch{Status: core.Succeeded(), Events: evs})
}

// QueueBatch enqueues b verbatim (chainable).
func (d *DataService) QueueBatch(b core.EventBatch) *DataService {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, b)
	return d
}

// WithEnd sets the End response (chainable).
func (d *DataService) WithEnd(r core.EndResult) *DataService {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.end = r
	return d
}

// Calls returns the recorded operation names in call order.
func (d *DataService) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.calls...)
}

// Count returns how often op was called.
func (d *DataService) Count(op string) int {
	n := 0
	for _, c := range d.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Inputs returns the member input payloads passed to Events.
func (d *DataService) Inputs() []map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]map[string]any{}, d.inputs...)
}

// Experiences implements core.DataService.
func (d *DataService) Experiences(context.Context) core.Catalog {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "experiences")
	return d.catalog
}

// Manifest implements core.DataService.
func (d *DataService) Manifest(context.Context, string) core.Manifest {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "manifest")
	return d.manifest
}

// Events implements core.DataService.
func (d *DataService) Events(_ context.Context, _ string, memberInput map[string]any) core.EventBatch {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "events")
	d.inputs = append(d.inputs, memberInput)
	if len(d.batches) == 0 {
		return core.EventBatch{Status: core.Failed("no batch queued")}
	}
	b := d.batches[0]
	d.batches = d.batches[1:]
	return b
}

// End implements core.DataService.
func (d *DataService) End(context.Context, string) core.EndResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "end")
	return d.end
}
