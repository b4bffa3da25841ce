package application_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/campus-resource-tracker/internal/application"
	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	"github.com/oksasatya/campus-resource-tracker/internal/infrastructure/memory"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/geo"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
	"github.com/oksasatya/campus-resource-tracker/pkg/optional"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Welcome(ctx context.Context, u *entity.User) error {
	return m.Called(u).Error(0)
}

func (m *mockNotifier) ResourceRated(ctx context.Context, n application.RatedNotice) error {
	return m.Called(n).Error(0)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) Index(ctx context.Context, u *entity.User) error {
	return m.Called(u).Error(0)
}

func (m *mockDirectory) Search(ctx context.Context, q string, size int) ([]entity.UserRef, error) {
	args := m.Called(q, size)
	refs, _ := args.Get(0).([]entity.UserRef)
	return refs, args.Error(1)
}

type fakePhotos struct {
	path, contentType string
	body              []byte
}

func (f *fakePhotos) Put(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.path, f.contentType, f.body = objectPath, contentType, b
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

var library = geo.Point{Lng: 151.2313, Lat: -33.9173}

type fixture struct {
	users     *application.UserService
	resources *application.ResourceService
	search    *application.SearchService
	ratings   *application.RatingService
	notifier  *mockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	userStore := memory.NewUserStore()
	resourceStore := memory.NewResourceStore()
	hasher, err := helpers.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	jwt := helpers.NewJWTManager("test-secret", time.Hour, "test")
	logger := helpers.NewDiscardLogger()

	n := &mockNotifier{}
	n.On("Welcome", mock.Anything).Return(nil).Maybe()
	n.On("ResourceRated", mock.Anything).Return(nil).Maybe()

	return &fixture{
		users:     application.NewUserService(userStore, hasher, jwt, n, nil, logger),
		resources: application.NewResourceService(resourceStore, userStore, nil, logger),
		search:    application.NewSearchService(resourceStore, userStore, logger),
		ratings:   application.NewRatingService(resourceStore, userStore, n, logger),
		notifier:  n,
	}
}

func (f *fixture) register(t *testing.T, name string) *entity.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), application.RegisterInput{
		Username: name, Email: name + "@example.com", Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) create(t *testing.T, owner *entity.User, name, typ string, at geo.Point) *entity.Resource {
	t.Helper()
	r, err := f.resources.Create(context.Background(), owner.ID, entity.ResourceDraft{
		Name: name, Type: typ, Building: "Main Library", Location: &at,
	})
	require.NoError(t, err)
	return r
}

func TestMainLibraryToiletScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.register(t, "owner")
	user1 := f.register(t, "user1")
	user2 := f.register(t, "user2")

	a := f.create(t, owner, "Main Library Toilet", "Toilet", library)
	assert.Equal(t, "owner", a.OwnerUsername)

	byText, err := f.search.Search(ctx, application.SearchParams{Q: "toilet"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, a.ID, byText[0].Resource.ID)
	assert.Nil(t, byText[0].Distance)

	byPlace, err := f.search.Search(ctx, application.SearchParams{Lat: "-33.9173", Lng: "151.2313"})
	require.NoError(t, err)
	require.Len(t, byPlace, 1)
	require.NotNil(t, byPlace[0].Distance)
	assert.InDelta(t, 0, *byPlace[0].Distance, 0.01)

	rated, err := f.ratings.Rate(ctx, a.ID, user1.ID, application.RateInput{Score: 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, rated.AverageRating)

	_, err = f.ratings.Rate(ctx, a.ID, user1.ID, application.RateInput{Score: 4})
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyRated))
	got, err := f.resources.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.AverageRating)

	rated, err = f.ratings.Rate(ctx, a.ID, user2.ID, application.RateInput{Score: 3})
	require.NoError(t, err)
	assert.Equal(t, 4.0, rated.AverageRating)
	require.Len(t, rated.Ratings, 2)
	assert.Equal(t, "user1", rated.Ratings[0].Username)
	assert.Equal(t, "user2", rated.Ratings[1].Username)
}

func TestRegister_ValidationAndDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.users.Register(ctx, application.RegisterInput{Username: "al", Email: "bad", Password: "123"})
	var ae *apperror.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "username")
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "password")

	_, err = f.users.Register(ctx, application.RegisterInput{Username: "alice", Email: "new@example.com", Password: "password123"})
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateKey))

	_, err = f.users.Register(ctx, application.RegisterInput{Username: "alice2", Email: " ALICE@example.com ", Password: "password123"})
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateKey))

	// 40 characters, 80 bytes: within the character limit, over bcrypt's.
	_, err = f.users.Register(ctx, application.RegisterInput{Username: "eloise", Email: "eloise@example.com", Password: strings.Repeat("é", 40)})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Equal(t, "must be at most 72 bytes", ae.Fields["password"])

	u, err := f.users.Register(ctx, application.RegisterInput{Username: "eloise", Email: "eloise@example.com", Password: strings.Repeat("é", 36)})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestRegister_NeverStoresRawPassword(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	f.notifier.AssertCalled(t, "Welcome", mock.MatchedBy(func(got *entity.User) bool { return got.ID == u.ID }))
}

func TestRegister_SideEffectFailuresAreNotFatal(t *testing.T) {
	userStore := memory.NewUserStore()
	hasher, err := helpers.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	n := &mockNotifier{}
	n.On("Welcome", mock.Anything).Return(errors.New("broker down"))
	dir := &mockDirectory{}
	dir.On("Index", mock.Anything).Return(errors.New("es down"))

	svc := application.NewUserService(userStore, hasher, helpers.NewJWTManager("s", time.Hour, ""), n, dir, helpers.NewDiscardLogger())
	u, err := svc.Register(context.Background(), application.RegisterInput{Username: "alice", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	dir.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")

	byName, err := f.users.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.User.ID)
	assert.NotEmpty(t, byName.Token)

	byEmail, err := f.users.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.User.ID)

	_, wrongPassword := f.users.Login(ctx, "alice", "nope-nope")
	_, unknownUser := f.users.Login(ctx, "mallory", "password123")
	assert.ErrorIs(t, wrongPassword, apperror.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, apperror.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())

	_, err = f.users.Login(ctx, " ", "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")

	u, err := f.users.Me(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = f.users.Me(ctx, "ghost")
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	dir := &mockDirectory{}
	dir.On("Search", "ali", entity.MaxPageSize).Return([]entity.UserRef{{ID: "1", Username: "alice"}}, nil)
	svc := application.NewUserService(memory.NewUserStore(), nil, nil, nil, dir, nil)

	refs, err := svc.SearchUsers(ctx, " ali ", 500)
	require.NoError(t, err)
	assert.Equal(t, []entity.UserRef{{ID: "1", Username: "alice"}}, refs)

	refs, err = svc.SearchUsers(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, refs)
	dir.AssertNumberOfCalls(t, "Search", 1)

	unconfigured := application.NewUserService(memory.NewUserStore(), nil, nil, nil, nil, nil)
	refs, err = unconfigured.SearchUsers(ctx, "ali", 10)
	require.NoError(t, err)
	assert.NotNil(t, refs)
	assert.Empty(t, refs)
}

func TestUpdate_OwnerOnlyAndPresenceAware(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.register(t, "owner")
	other := f.register(t, "other")
	r := f.create(t, owner, "Main Library Toilet", "Toilet", library)

	_, err := f.resources.Update(ctx, r.ID, other.ID, entity.ResourcePatch{Name: optional.Of("Hijacked")})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	assert.True(t, apperror.IsKind(f.resources.Delete(ctx, r.ID, other.ID), apperror.KindForbidden))

	after, err := f.resources.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, after)

	_, err = f.resources.Update(ctx, "missing", owner.ID, entity.ResourcePatch{})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	updated, err := f.resources.Update(ctx, r.ID, owner.ID, entity.ResourcePatch{Floor: optional.Of("Level 2")})
	require.NoError(t, err)
	assert.Equal(t, "Level 2", updated.Floor)
	assert.Equal(t, r.Name, updated.Name)
	assert.Equal(t, r.Type, updated.Type)
	assert.Equal(t, r.Building, updated.Building)
	assert.Equal(t, r.Location, updated.Location)
	assert.Equal(t, r.Description, updated.Description)

	unchanged, err := f.resources.Update(ctx, r.ID, owner.ID, entity.ResourcePatch{})
	require.NoError(t, err)
	assert.Equal(t, updated.Version, unchanged.Version)

	_, err = f.resources.Update(ctx, r.ID, owner.ID, entity.ResourcePatch{Name: optional.Null[string]()})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	require.NoError(t, f.resources.Delete(ctx, r.ID, owner.ID))
	_, err = f.resources.Get(ctx, r.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestList_NewestFirstCapped(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "owner")
	var last *entity.Resource
	for i := 0; i < 23; i++ {
		last = f.create(t, owner, fmt.Sprintf("Outlet %d", i), "Power Outlet", library)
	}

	list, err := f.resources.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, entity.MaxPageSize)
	assert.Equal(t, last.ID, list[0].ID)
	assert.Equal(t, "owner", list[0].OwnerUsername)
}

func TestSearch_DistanceOrderingAndRadius(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.register(t, "owner")

	far := f.create(t, owner, "Kingsford Fountain", "Water Fountain", geo.Point{Lng: 151.2600, Lat: -33.9000})
	near := f.create(t, owner, "Quad Fountain", "Water Fountain", geo.Point{Lng: 151.2308, Lat: -33.9170})
	mid := f.create(t, owner, "Randwick Fountain", "Water Fountain", geo.Point{Lng: 151.2410, Lat: -33.9140})
	f.create(t, owner, "Melbourne Fountain", "Water Fountain", geo.Point{Lng: 144.9631, Lat: -37.8136})
	f.create(t, owner, "Quad Outlet", "Power Outlet", geo.Point{Lng: 151.2308, Lat: -33.9170})

	results, err := f.search.Search(ctx, application.SearchParams{Q: "fountain", Lat: "-33.9173", Lng: "151.2313"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{near.ID, mid.ID, far.ID},
		[]string{results[0].Resource.ID, results[1].Resource.ID, results[2].Resource.ID})
	for i, res := range results {
		require.NotNil(t, res.Distance)
		assert.LessOrEqual(t, *res.Distance, float64(application.SearchRadiusMeters))
		assert.InDelta(t, geo.Distance(library, res.Resource.Location), *res.Distance, 1e-9)
		if i > 0 {
			assert.GreaterOrEqual(t, *res.Distance, *results[i-1].Distance)
		}
	}
}

func TestSearch_TiesBreakNewestFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "owner")
	older := f.create(t, owner, "Toilet A", "Toilet", library)
	newer := f.create(t, owner, "Toilet B", "Toilet", library)

	results, err := f.search.Search(context.Background(), application.SearchParams{Lat: "-33.9173", Lng: "151.2313"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, newer.ID, results[0].Resource.ID)
	assert.Equal(t, older.ID, results[1].Resource.ID)
}

func TestSearch_LiteralCaseInsensitiveText(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.register(t, "owner")
	f.create(t, owner, "Toilet (Level 2)", "Toilet", library)
	f.create(t, owner, "Vending 50% off", "Vending Machine", library)

	cases := map[string]int{
		"(level":  1,
		"50%":     1,
		"%":       1,
		"MACHINE": 1,
		".*":      0,
		"[a-z]":   0,
		"toilet":  1,
		"":        2,
	}
	for q, want := range cases {
		results, err := f.search.Search(ctx, application.SearchParams{Q: q})
		require.NoError(t, err, q)
		assert.Len(t, results, want, q)
		assert.NotNil(t, results, q)
	}
}

func TestSearch_Origin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.search.Search(ctx, application.SearchParams{Lat: "abc", Lng: "151"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.search.Search(ctx, application.SearchParams{Lat: "95", Lng: "151"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.search.Search(ctx, application.SearchParams{Lat: "NaN", Lng: "151"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	results, err := f.search.Search(ctx, application.SearchParams{Lat: "-33.9"})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	origin, err := application.ParseOrigin("-33.9173", " 151.2313 ")
	require.NoError(t, err)
	assert.Equal(t, &library, origin)
}

func TestSearch_CapsAtPageSize(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "owner")
	for i := 0; i < 25; i++ {
		f.create(t, owner, fmt.Sprintf("Toilet %d", i), "Toilet", library)
	}
	for _, p := range []application.SearchParams{{Q: "toilet"}, {Lat: "-33.9173", Lng: "151.2313"}} {
		results, err := f.search.Search(context.Background(), p)
		require.NoError(t, err)
		assert.Len(t, results, entity.MaxPageSize)
	}
}

func TestRate_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.register(t, "owner")
	r := f.create(t, owner, "Toilet", "Toilet", library)

	for _, score := range []int{0, 6, -1} {
		_, err := f.ratings.Rate(ctx, r.ID, owner.ID, application.RateInput{Score: score})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), score)
	}
	_, err := f.ratings.Rate(ctx, "missing", owner.ID, application.RateInput{Score: 3})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRate_NotifiesOwnerButNotSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.register(t, "owner")
	rater := f.register(t, "rater")
	r := f.create(t, owner, "Toilet", "Toilet", library)

	_, err := f.ratings.Rate(ctx, r.ID, owner.ID, application.RateInput{Score: 5})
	require.NoError(t, err)
	f.notifier.AssertNotCalled(t, "ResourceRated", mock.Anything)

	_, err = f.ratings.Rate(ctx, r.ID, rater.ID, application.RateInput{Score: 2, Comment: " dirty "})
	require.NoError(t, err)
	f.notifier.AssertCalled(t, "ResourceRated", mock.MatchedBy(func(n application.RatedNotice) bool {
		return n.Owner.ID == owner.ID && n.RaterName == "rater" && n.Score == 2 && n.Comment == "dirty"
	}))
}

func TestRate_NotificationFailureDoesNotFailRating(t *testing.T) {
	userStore := memory.NewUserStore()
	resourceStore := memory.NewResourceStore()
	n := &mockNotifier{}
	n.On("ResourceRated", mock.Anything).Return(errors.New("broker down"))

	owner := &entity.User{Username: "owner", Email: "o@example.com"}
	rater := &entity.User{Username: "rater", Email: "r@example.com"}
	require.NoError(t, userStore.Create(context.Background(), owner))
	require.NoError(t, userStore.Create(context.Background(), rater))
	r := &entity.Resource{Name: "Toilet", Type: entity.TypeToilet, Building: "Library", Location: library, OwnerID: owner.ID}
	require.NoError(t, resourceStore.Create(context.Background(), r))

	svc := application.NewRatingService(resourceStore, userStore, n, helpers.NewDiscardLogger())
	got, err := svc.Rate(context.Background(), r.ID, rater.ID, application.RateInput{Score: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, got.RatingCount)
}

func TestRate_ConcurrentRatersKeepAverageExact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.register(t, "owner")
	r := f.create(t, owner, "Toilet", "Toilet", library)

	raters := make([]*entity.User, 10)
	for i := range raters {
		raters[i] = f.register(t, fmt.Sprintf("rater%d", i))
	}

	var wg sync.WaitGroup
	for i, u := range raters {
		wg.Add(1)
		go func(id string, score int) {
			defer wg.Done()
			_, err := f.ratings.Rate(ctx, r.ID, id, application.RateInput{Score: score})
			assert.NoError(t, err)
		}(u.ID, i%5+1)
	}
	wg.Wait()

	got, err := f.resources.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Ratings, 10)
	assert.Equal(t, 3.0, got.AverageRating)
}

func TestUploadPhoto(t *testing.T) {
	ctx := context.Background()
	userStore := memory.NewUserStore()
	resourceStore := memory.NewResourceStore()
	photos := &fakePhotos{}
	svc := application.NewResourceService(resourceStore, userStore, photos, helpers.NewDiscardLogger())

	owner := &entity.User{Username: "owner", Email: "o@example.com"}
	require.NoError(t, userStore.Create(ctx, owner))
	r, err := svc.Create(ctx, owner.ID, entity.ResourceDraft{Name: "Toilet", Type: "Toilet", Building: "Library", Location: &library})
	require.NoError(t, err)

	img := []byte("\x89PNG fake")
	updated, err := svc.UploadPhoto(ctx, r.ID, owner.ID, application.PhotoUpload{ContentType: "image/png", Size: int64(len(img)), Body: bytes.NewReader(img)})
	require.NoError(t, err)
	assert.Contains(t, updated.PhotoURL, "resources/"+r.ID+"/")
	assert.Equal(t, "image/png", photos.contentType)
	assert.Equal(t, img, photos.body)

	_, err = svc.UploadPhoto(ctx, r.ID, owner.ID, application.PhotoUpload{ContentType: "text/plain", Size: 4, Body: bytes.NewReader([]byte("text"))})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.UploadPhoto(ctx, r.ID, owner.ID, application.PhotoUpload{ContentType: "image/png", Size: application.MaxPhotoBytes + 1, Body: bytes.NewReader(img)})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.UploadPhoto(ctx, r.ID, "someone-else", application.PhotoUpload{ContentType: "image/png", Size: 1, Body: bytes.NewReader(img)})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	noStorage := application.NewResourceService(resourceStore, userStore, nil, nil)
	_, err = noStorage.UploadPhoto(ctx, r.ID, owner.ID, application.PhotoUpload{ContentType: "image/png", Size: 1, Body: bytes.NewReader(img)})
	var ae *apperror.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.CodePhotoStorageUnavailable, ae.Code)
}

type brokenUsernames struct {
	*memory.UserStore
}

func (brokenUsernames) GetUsernames(context.Context, []string) (map[string]string, error) {
	return nil, errors.New("users table unavailable")
}

func TestResourceService_UsernameLookupFailure(t *testing.T) {
	ctx := context.Background()
	resourceStore := memory.NewResourceStore()
	svc := application.NewResourceService(resourceStore, brokenUsernames{memory.NewUserStore()}, nil, helpers.NewDiscardLogger())

	r, err := svc.Create(ctx, "owner-1", entity.ResourceDraft{Name: "Main Library Toilet", Type: "Toilet", Building: "Main Library", Location: &library})
	assert.Nil(t, r)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))

	list, err := resourceStore.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	r, err = svc.Get(ctx, list[0].ID)
	assert.Nil(t, r)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))

	all, err := svc.List(ctx)
	assert.Nil(t, all)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))

	r, err = svc.Update(ctx, list[0].ID, "owner-1", entity.ResourcePatch{Floor: optional.Of("G")})
	assert.Nil(t, r)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
}
