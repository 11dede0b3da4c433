package state_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"health-dashboard/internal/drilldown"
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
	"health-dashboard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) LoadDataset(ctx context.Context, company string) (*models.Dataset, error) {
	args := m.Called(ctx, company)
	ds, _ := args.Get(0).(*models.Dataset)
	return ds, args.Error(1)
}

func dataset(company string, people ...models.Person) *models.Dataset {
	return &models.Dataset{
		Company:        company,
		People:         people,
		ActiveStations: []models.Station{{Key: "xray", Name: "X-Ray"}},
	}
}

func acme() *models.Dataset {
	return dataset("Acme",
		models.Person{ID: "A", Name: "Anan", Department: "Production", IsRegistered: true, RequiredStations: []string{"xray"}},
		models.Person{ID: "B", Name: "Busaba", Department: "QA", IsRegistered: true, RequiredStations: []string{"xray"}, Stations: map[string]bool{"xray": true}},
		models.Person{ID: "C", Name: "Chai", IsRegistered: false},
	)
}

func TestReduce_DatasetLoadedDerivesAndRecomputes(t *testing.T) {
	ds := acme()
	s := state.Reduce(state.State{}, state.DatasetLoaded{Company: "Acme", Dataset: ds})

	assert.Equal(t, uint64(1), s.Version)
	assert.True(t, s.Loaded())
	require.Len(t, s.People, 3)
	assert.Equal(t, models.StatusIncomplete, s.People[0].Status)
	assert.Equal(t, models.Overview{Total: 3, Registered: 2, NotRegistered: 1, Incomplete: 1}, s.Dashboard.Overview)
	assert.Len(t, s.Dashboard.FollowUps, 1)

	// 输入不被修改
	assert.Empty(t, ds.People[0].Status)
}

func TestReduce_CriteriaAndStationSearch(t *testing.T) {
	s0 := state.Reduce(state.State{}, state.DatasetLoaded{Company: "Acme", Dataset: acme()})

	s1 := state.Reduce(s0, state.CriteriaChanged{Criteria: roster.Criteria{Department: "QA"}})
	assert.Equal(t, 1, s1.Dashboard.Overview.Total)
	// 原快照不变
	assert.Equal(t, 3, s0.Dashboard.Overview.Total)

	s2 := state.Reduce(s1, state.StationSearchChanged{Term: "blood"})
	assert.Empty(t, s2.Dashboard.Stations)
	assert.Equal(t, "QA", s2.Criteria.Department)
}

func TestReduce_SearchTermKeepsOtherCriteria(t *testing.T) {
	s0 := state.Reduce(state.State{}, state.DatasetLoaded{Company: "Acme", Dataset: acme()})
	s1 := state.Reduce(s0, state.CriteriaChanged{Criteria: roster.Criteria{Department: "QA", SearchTerm: "old"}})

	s2 := state.Reduce(s1, state.SearchTermChanged{Term: "new"})
	assert.Equal(t, roster.Criteria{Department: "QA", SearchTerm: "new"}, s2.Criteria)
	assert.Equal(t, s1.Version+1, s2.Version)
	assert.Equal(t, "old", s1.Criteria.SearchTerm)
}

func TestReduce_DrillDownUsesStateCriteria(t *testing.T) {
	s := state.Reduce(state.State{}, state.DatasetLoaded{Company: "Acme", Dataset: acme()})
	s = state.Reduce(s, state.CriteriaChanged{Criteria: roster.Criteria{Department: "Production"}})
	s = state.Reduce(s, state.DrillDownOpened{
		Kind:    drilldown.OverviewTotal,
		Context: drilldown.Context{Criteria: roster.Criteria{Department: "QA"}},
	})

	snap, ok := s.DrillDown.Current()
	require.True(t, ok)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "A", snap.Records[0].ID)

	found, ok := s.SearchDrillDown("zzz")
	require.True(t, ok)
	assert.Empty(t, found.Records)

	s = state.Reduce(s, state.DrillDownClosed{})
	_, ok = s.DrillDown.Current()
	assert.False(t, ok)
}

func TestReduce_NewDatasetClosesDrillDown(t *testing.T) {
	s := state.Reduce(state.State{}, state.DatasetLoaded{Company: "Acme", Dataset: acme()})
	s = state.Reduce(s, state.DrillDownOpened{Kind: drilldown.OverviewRegistered})
	s = state.Reduce(s, state.DatasetLoaded{Company: "Beta", Dataset: nil})

	_, ok := s.DrillDown.Current()
	assert.False(t, ok)
	assert.Equal(t, "Beta", s.Company)
	assert.Empty(t, s.People)
	assert.Equal(t, models.Overview{}, s.Dashboard.Overview)
}

func TestReduce_Reset(t *testing.T) {
	s := state.Reduce(state.State{}, state.DatasetLoaded{Company: "Acme", Dataset: acme()})
	s = state.Reduce(s, state.Reset{})
	assert.False(t, s.Loaded())
	assert.Equal(t, uint64(2), s.Version)
}

func TestStore_DispatchIf(t *testing.T) {
	store := state.NewStore()
	assert.False(t, store.Current().Loaded())

	st, ok := store.DispatchIf(func(*state.State) bool { return false }, state.DatasetLoaded{Company: "Acme", Dataset: acme()})
	assert.False(t, ok)
	assert.False(t, st.Loaded())

	st = store.Dispatch(state.DatasetLoaded{Company: "Acme", Dataset: acme()})
	assert.Same(t, st, store.Current())
	assert.Equal(t, "Acme", store.Current().Company)
}

func TestLoader_Load(t *testing.T) {
	src := new(mockSource)
	src.On("LoadDataset", mock.Anything, "Acme").Return(acme(), nil)

	store := state.NewStore()
	loader := state.NewLoader(src, store, zap.NewNop())

	st, err := loader.Load(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", st.Company)
	assert.Same(t, st, store.Current())
	src.AssertExpectations(t)
}

func TestLoader_FailureKeepsPreviousRoster(t *testing.T) {
	src := new(mockSource)
	src.On("LoadDataset", mock.Anything, "Acme").Return(acme(), nil)
	src.On("LoadDataset", mock.Anything, "Broken").Return(nil, errors.New("boom"))

	store := state.NewStore()
	loader := state.NewLoader(src, store, zap.NewNop())

	_, err := loader.Load(context.Background(), "Acme")
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), "Broken")
	require.Error(t, err)
	assert.False(t, state.IsSuperseded(err))
	assert.Contains(t, err.Error(), "boom")

	assert.Equal(t, "Acme", store.Current().Company)
	assert.Len(t, store.Current().People, 3)
}

func TestLoader_OutOfOrderResolution(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	src := new(mockSource)
	src.On("LoadDataset", mock.Anything, "Slow").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(dataset("Slow", models.Person{ID: "S", Name: "Slow", IsRegistered: true}), nil)
	src.On("LoadDataset", mock.Anything, "Fast").
		Return(dataset("Fast", models.Person{ID: "F", Name: "Fast", IsRegistered: true}), nil)

	store := state.NewStore()
	loader := state.NewLoader(src, store, zap.NewNop())

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = loader.Load(context.Background(), "Slow")
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("slow load did not start")
	}

	st, err := loader.Load(context.Background(), "Fast")
	require.NoError(t, err)
	assert.Equal(t, "Fast", st.Company)

	close(release)
	wg.Wait()

	assert.ErrorIs(t, slowErr, state.ErrSuperseded)
	assert.Equal(t, "Fast", store.Current().Company)
	assert.Equal(t, "F", store.Current().People[0].ID)
}

func TestLoader_SupersededFailureIsSilent(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	src := new(mockSource)
	src.On("LoadDataset", mock.Anything, "Slow").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil, errors.New("timeout"))
	src.On("LoadDataset", mock.Anything, "Fast").Return(acme(), nil)

	loader := state.NewLoader(src, state.NewStore(), zap.NewNop())

	errCh := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "Slow")
		errCh <- err
	}()
	<-started

	_, err := loader.Load(context.Background(), "Fast")
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-errCh, state.ErrSuperseded)
}
