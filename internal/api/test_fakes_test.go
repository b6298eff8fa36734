package api

import (
	"context"

	"github.com/gaspardpetit/promptrelay/internal/catalog"
	"github.com/gaspardpetit/promptrelay/internal/relay"
)

// fakeService records generate calls and returns canned results.
type fakeService struct {
	calls  int
	last   relay.GenerationRequest
	result *relay.Result
	err    error
	health relay.HealthStatus
	cat    *catalog.Catalog
}

func newFakeService() *fakeService {
	return &fakeService{cat: catalog.Builtin(), health: relay.HealthStatus{Status: "healthy", DefaultModel: catalog.DefaultKey}}
}

func (f *fakeService) Generate(ctx context.Context, req relay.GenerationRequest) (*relay.Result, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

func (f *fakeService) Health() relay.HealthStatus { return f.health }
func (f *fakeService) Models() []catalog.ModelDescriptor { return f.cat.List() }
func (f *fakeService) DefaultModel() catalog.ModelDescriptor { return f.cat.Default() }
