package hub

import (
	"arcade/domain"
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) EntityCatalog(ctx context.Context) ([]domain.EntityTypeDef, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]domain.EntityTypeDef)
	return c, args.Error(1)
}

type MockStationSource struct {
	mock.Mock
}

func (m *MockStationSource) StationGraph(ctx context.Context) (domain.StationGraph, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).(domain.StationGraph)
	return g, args.Error(1)
}

type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) EvaluateRoute(ctx context.Context, waypoints []string) (domain.EvaluationResult, error) {
	args := m.Called(ctx, waypoints)
	return args.Get(0).(domain.EvaluationResult), args.Error(1)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(sub domain.ScoreSubmission) {
	m.Called(sub)
}

type fakePlay struct {
	mu      sync.Mutex
	handled []string
	closed  int
}

func (p *fakePlay) handle(ctx context.Context, msg inbound) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handled = append(p.handled, msg.Type)
}

func (p *fakePlay) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
}

func (p *fakePlay) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// fakeSocket feeds reads from a channel and records everything written.
type fakeSocket struct {
	mu         sync.Mutex
	reads      chan []byte
	written    [][]byte
	closedWith []string
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{reads: make(chan []byte, 64)}
}

func (f *fakeSocket) Read() ([]byte, error) {
	data, ok := <-f.reads
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (f *fakeSocket) Write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, data)
	return nil
}

func (f *fakeSocket) Ping() error {
	return nil
}

func (f *fakeSocket) Close(errCode string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closedWith = append(f.closedWith, errCode)
}

func (f *fakeSocket) closes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.closedWith...)
}
