package chi

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	domcat "github.com/kailas-cloud/menurank/internal/domain/catalog"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	healthuc "github.com/kailas-cloud/menurank/internal/usecase/health"
	"github.com/kailas-cloud/menurank/internal/usecase/recommend"
)

type mockRecommender struct {
	getFn     func(ctx context.Context, req recommend.Request) (recommend.Result, error)
	rebuildFn func(ctx context.Context, source recommend.Source, collection string) (int, error)
	itemFn    func(ctx context.Context, itemID string) (domdoc.Document, error)

	lastReq recommend.Request
}

func (m *mockRecommender) GetRecommendations(ctx context.Context, req recommend.Request) (recommend.Result, error) {
	m.lastReq = req
	if m.getFn != nil {
		return m.getFn(ctx, req)
	}
	return recommend.Result{Query: req.Query}, nil
}

func (m *mockRecommender) Item(ctx context.Context, itemID string) (domdoc.Document, error) {
	if m.itemFn != nil {
		return m.itemFn(ctx, itemID)
	}
	return domdoc.Document{}, domain.ErrNotFound
}

func (m *mockRecommender) RebuildIndex(
	ctx context.Context, source recommend.Source, collection string, _ ...recommend.RebuildOption,
) (int, error) {
	if m.rebuildFn != nil {
		return m.rebuildFn(ctx, source, collection)
	}
	return 0, nil
}

func (m *mockRecommender) Collection() string { return "menu_items" }

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type stubSource struct{}

func (stubSource) Load(context.Context) ([]domcat.Item, error) { return nil, nil }

func newTestRouter(t *testing.T, rec *mockRecommender, apiKeys ...string) http.Handler {
	t.Helper()
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}}
	srv := NewServer(rec, stubSource{}, health, zap.NewNop())
	return NewRouter(srv, apiKeys, zap.NewNop())
}
