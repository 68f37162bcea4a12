package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeEventRepository struct {
	events  []domain.Event
	sources map[int64][]domain.TicketSource
	filters []domain.EventFilter
	err     error
}

// FindEvents повторяет семантику postgres-репозитория: жанры через OR, текст через AND.
func (r *fakeEventRepository) FindEvents(_ context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	r.filters = append(r.filters, filter)
	if r.err != nil {
		return nil, r.err
	}

	var result []domain.Event
	for _, e := range r.events {
		if filter.OnlyFavorite && !e.Favorite {
			continue
		}
		if len(filter.Genres) > 0 && !containsAny(strings.Join(e.Genre, ","), filter.Genres) {
			continue
		}
		if filter.SearchText != "" && !containsAny(e.Name, []string{filter.SearchText}) && !containsAny(e.Description, []string{filter.SearchText}) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(strings.ToLower(s), strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func (r *fakeEventRepository) FindTicketSources(_ context.Context, ids []int64) (map[int64][]domain.TicketSource, error) {
	result := map[int64][]domain.TicketSource{}
	for _, id := range ids {
		if s, ok := r.sources[id]; ok {
			result[id] = s
		}
	}
	return result, nil
}

func (r *fakeEventRepository) SetFavorite(_ context.Context, id int64, favorite bool) error {
	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Favorite = favorite
			return nil
		}
	}
	return domain.ErrEventNotFound
}

func newEventRepository() *fakeEventRepository {
	return &fakeEventRepository{
		events: []domain.Event{
			{ID: 1, Name: "Hamlet", Genre: []string{"Tiyatro", "Dram"}, Description: "Klasik"},
			{ID: 2, Name: "Gece Gösterisi", Genre: []string{"Stand Up"}, Description: "Komedi gecesi"},
			{ID: 3, Name: "Orman Macerası", Genre: []string{"Macera"}},
		},
		sources: map[int64][]domain.TicketSource{
			1: {{ID: 10, EventID: 1, Name: "bubilet.com", Price: 100, URL: "u"}},
		},
	}
}

func TestListEvents(t *testing.T) {
	repo := newEventRepository()
	s := NewEventService(discardLogger(), &config.Config{}, repo)

	tests := []struct {
		name     string
		category string
		search   string
		wantIDs  []int64
		wantErr  error
	}{
		{name: "без категории", category: "", wantErr: domain.ErrCategoryRequired},
		{name: "неизвестная категория", category: "hüzünlü", wantErr: domain.ErrInvalidCategory},
		{name: "регистр категории важен", category: "Enerjik", wantErr: domain.ErrInvalidCategory},
		{name: "normal без фильтра", category: "normal", wantIDs: []int64{1, 2, 3}},
		{name: "enerjik", category: "enerjik", wantIDs: []int64{3}},
		{name: "romantik по любому жанру", category: "romantik", wantIDs: []int64{1}},
		{name: "eğlenceli", category: "eğlenceli", wantIDs: []int64{2}},
		{name: "текст и категория", category: "normal", search: "komedi", wantIDs: []int64{2}},
		{name: "пустой результат", category: "enerjik", search: "hamlet", wantErr: domain.ErrNoEvents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListEvents(context.Background(), tt.category, tt.search)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			ids := make([]int64, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestListEventsAttachesSources(t *testing.T) {
	s := NewEventService(discardLogger(), &config.Config{}, newEventRepository())

	got, err := s.ListEvents(context.Background(), "romantik", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].TicketSources, 1)
	assert.Equal(t, "bubilet.com", got[0].TicketSources[0].Name)
}

func TestListEventsUsesConfiguredCategories(t *testing.T) {
	repo := newEventRepository()
	cfg := &config.Config{Categories: config.CategoryMap{"dramatik": {"dram"}}}
	s := NewEventService(discardLogger(), cfg, repo)

	got, err := s.ListEvents(context.Background(), "dramatik", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	_, err = s.ListEvents(context.Background(), "enerjik", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestListEventsRepositoryError(t *testing.T) {
	repo := newEventRepository()
	repo.err = errors.New("connection refused")
	s := NewEventService(discardLogger(), &config.Config{}, repo)

	_, err := s.ListEvents(context.Background(), "normal", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoEvents)
}

func TestFavorites(t *testing.T) {
	repo := newEventRepository()
	s := NewEventService(discardLogger(), &config.Config{}, repo)
	ctx := context.Background()

	favorites, err := s.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	require.NoError(t, s.SetFavorite(ctx, 2, true))
	favorites, err = s.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, int64(2), favorites[0].ID)
	assert.True(t, repo.filters[len(repo.filters)-1].OnlyFavorite)

	require.NoError(t, s.SetFavorite(ctx, 2, false))
	favorites, err = s.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	assert.ErrorIs(t, s.SetFavorite(ctx, 404, true), domain.ErrEventNotFound)
}

func TestParseFavorite(t *testing.T) {
	for value, want := range map[string]bool{
		"true":  true,
		"TRUE":  true,
		"True":  true,
		"false": false,
		"1":     false,
		"yes":   false,
		"":      false,
	} {
		assert.Equal(t, want, ParseFavorite(value), value)
	}
}

type fakeUserRepository struct {
	users map[string]domain.User
}

func (r *fakeUserRepository) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepository) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	user.ID = int64(len(r.users) + 1)
	r.users[user.Email] = user
	return user, nil
}

func TestRegisterAndLogin(t *testing.T) {
	repo := &fakeUserRepository{users: map[string]domain.User{}}
	s := NewUserService(discardLogger(), repo)
	s.cost = bcrypt.MinCost
	ctx := context.Background()

	user, err := s.Register(ctx, "ali@example.com", "gizli", "Ali")
	require.NoError(t, err)
	assert.NotEqual(t, "gizli", user.PasswordHash)

	_, err = s.Register(ctx, "ali@example.com", "baska", "Ali")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	got, err := s.Login(ctx, "ali@example.com", "gizli")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.Login(ctx, "ali@example.com", "yanlis")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = s.Login(ctx, "veli@example.com", "gizli")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestListEventsKeepsSearchTextAsIs(t *testing.T) {
	repo := newEventRepository()
	s := NewEventService(discardLogger(), &config.Config{}, repo)

	_, err := s.ListEvents(context.Background(), "normal", "gece ")
	require.NoError(t, err)
	require.Len(t, repo.filters, 1)
	assert.Equal(t, "gece ", repo.filters[0].SearchText)

	_, err = s.ListEvents(context.Background(), "normal", " hamlet ")
	assert.ErrorIs(t, err, domain.ErrNoEvents, "padded text is matched literally")
}
