package routes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	"github.com/BruksfildServices01/nail-scheduler/internal/auth"
	"github.com/BruksfildServices01/nail-scheduler/internal/config"
	"github.com/BruksfildServices01/nail-scheduler/internal/dto"
	"github.com/BruksfildServices01/nail-scheduler/internal/media"
	"github.com/BruksfildServices01/nail-scheduler/internal/middleware"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	"github.com/BruksfildServices01/nail-scheduler/internal/testfixtures"
	"github.com/BruksfildServices01/nail-scheduler/internal/validators"
	"github.com/BruksfildServices01/nail-scheduler/internal/visits"
)

// ======================================================
// HARNESS
// ======================================================

type testApp struct {
	t      *testing.T
	cfg    *config.Config
	db     *gorm.DB
	engine *gin.Engine
}

// newTestApp builds the engine on a fresh store. Options adjust the config
// and dependencies before the engine is assembled.
func newTestApp(t *testing.T, opts ...func(*Deps)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if err := validators.Register(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	cfg := testfixtures.Config(t)
	db := testfixtures.OpenDB(t, cfg)

	deps := Deps{
		DB:      db,
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Audit:   audit.Nop{},
		Visits:  visits.NewGormCounter(db),
		Storage: media.NewLocalStorage(cfg.MediaDir),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	engine, err := NewEngine(deps)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	return &testApp{t: t, cfg: cfg, db: db, engine: engine}
}

// sessionFor signs a session cookie for u without going through the login form.
func (a *testApp) sessionFor(u *models.User) *http.Cookie {
	a.t.Helper()
	token, err := auth.GenerateToken(a.cfg.SecretKey, u)
	if err != nil {
		a.t.Fatalf("generate token: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func (a *testApp) do(req *http.Request, session *http.Cookie) *httptest.ResponseRecorder {
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string, session *http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), session)
}

func (a *testApp) postForm(path string, values url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, session)
}

func (a *testApp) postJSON(path, body string, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, session)
}

// login goes through the real form and returns the cookie it sets.
func (a *testApp) login(username, password string) *http.Cookie {
	a.t.Helper()
	w := a.postForm("/accounts/login", url.Values{
		"username": {username},
		"password": {password},
	}, nil)
	if w.Code != http.StatusFound {
		a.t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			return c
		}
	}
	a.t.Fatalf("login %s: no session cookie", username)
	return nil
}

func (a *testApp) count(model any, where ...any) int64 {
	a.t.Helper()
	var n int64
	q := a.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	if err := q.Count(&n).Error; err != nil {
		a.t.Fatalf("count: %v", err)
	}
	return n
}

func idFromLocation(t *testing.T, w *httptest.ResponseRecorder, prefix string) uint {
	t.Helper()
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, prefix) {
		t.Fatalf("location %q does not start with %q", loc, prefix)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(loc, prefix), 10, 64)
	if err != nil {
		t.Fatalf("location %q: %v", loc, err)
	}
	return uint(id)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02T15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func listedMasters(body string) int {
	return strings.Count(body, `<li><a href="/masters/`)
}

// ======================================================
// ACCESS CONTROL
// ======================================================

func TestMasterRequiredRedirectsOtherRoles(t *testing.T) {
	app := newTestApp(t)
	customer := testfixtures.CreateCustomer(t, app.db, "kate_customer")
	admin := testfixtures.CreateUser(t, app.db, "root", models.RoleAdmin)

	form := url.Values{
		"title": {"Sneaky"},
		"start": {"2024-01-01T10:00"},
		"end":   {"2024-01-01T11:00"},
	}

	for name, session := range map[string]*http.Cookie{
		"customer": app.sessionFor(&customer.User),
		"admin":    app.sessionFor(admin),
	} {
		t.Run(name, func(t *testing.T) {
			w := app.postForm("/events", form, session)
			if w.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != "/denied" {
				t.Fatalf("expected redirect to /denied, got %q", loc)
			}
		})
	}

	if n := app.count(&models.Event{}); n != 0 {
		t.Fatalf("expected no events persisted, got %d", n)
	}
}

func TestMasterRequiredSendsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/services/new", url.Values{"name": {"x"}}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	want := "/accounts/login?next=" + url.QueryEscape("/services/new")
	if loc := w.Header().Get("Location"); loc != want {
		t.Fatalf("expected %q, got %q", want, loc)
	}
	if n := app.count(&models.Service{}); n != 0 {
		t.Fatalf("service created by anonymous request")
	}
}

func TestDeniedPage(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/denied", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "You do not have permission to perform this action.") {
		t.Fatalf("denial message missing: %s", w.Body.String())
	}
}

func TestListsRequireLogin(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")

	paths := []string{
		"/",
		"/masters",
		"/customers",
		"/masters/" + strconv.FormatUint(uint64(master.ID), 10),
		"/events",
	}
	for _, p := range paths {
		w := app.get(p, nil)
		if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/accounts/login?next=") {
			t.Errorf("%s: expected login redirect, got %d %q", p, w.Code, w.Header().Get("Location"))
		}
	}

	// registration stays open
	if w := app.get("/masters/new", nil); w.Code != http.StatusOK {
		t.Errorf("/masters/new: expected 200, got %d", w.Code)
	}
	if w := app.get("/customers/new", nil); w.Code != http.StatusOK {
		t.Errorf("/customers/new: expected 200, got %d", w.Code)
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	app := newTestApp(t)
	anna := testfixtures.CreateMaster(t, app.db, "anna_master")
	olha := testfixtures.CreateMaster(t, app.db, "olha_master")
	olhaSession := app.sessionFor(&olha.User)

	annaPath := "/masters/" + strconv.FormatUint(uint64(anna.ID), 10)

	if w := app.get(annaPath+"/update", olhaSession); w.Code != http.StatusForbidden {
		t.Fatalf("edit form: expected 403, got %d", w.Code)
	}
	if w := app.postForm(annaPath+"/update", url.Values{"first_name": {"Hacked"}}, olhaSession); w.Code != http.StatusForbidden {
		t.Fatalf("update: expected 403, got %d", w.Code)
	}
	if w := app.postForm(annaPath+"/delete", nil, olhaSession); w.Code != http.StatusForbidden {
		t.Fatalf("delete: expected 403, got %d", w.Code)
	}

	ev := models.Event{Title: "Anna's", MasterID: anna.ID}
	ev.StartAt, ev.EndAt = mustTime(t, "2024-01-01T10:00"), mustTime(t, "2024-01-01T11:00")
	if err := app.db.Create(&ev).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	evPath := "/events/" + strconv.FormatUint(uint64(ev.ID), 10)
	if w := app.postForm(evPath+"/delete", nil, olhaSession); w.Code != http.StatusForbidden {
		t.Fatalf("event delete: expected 403, got %d", w.Code)
	}

	if n := app.count(&models.Master{}, "id = ?", anna.ID); n != 1 {
		t.Fatal("master deleted by non-owner")
	}
	if n := app.count(&models.Event{}, "id = ?", ev.ID); n != 1 {
		t.Fatal("event deleted by non-owner")
	}
	var u models.User
	app.db.First(&u, anna.UserID)
	if u.FirstName == "Hacked" {
		t.Fatal("profile updated by non-owner")
	}

	// admins may manage any profile
	admin := testfixtures.CreateUser(t, app.db, "root", models.RoleAdmin)
	if w := app.get(annaPath+"/update", app.sessionFor(admin)); w.Code != http.StatusOK {
		t.Fatalf("admin edit form: expected 200, got %d", w.Code)
	}
}

// ======================================================
// PROFILES
// ======================================================

func TestCreateMasterCreatesOneUser(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/masters/new", url.Values{
		"username":  {"nadia_master"},
		"password1": {"test_pass1234"},
		"password2": {"test_pass1234"},
		"email":     {"nadia@example.com"},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	id := idFromLocation(t, w, "/masters/")

	var users []models.User
	app.db.Where("username = ?", "nadia_master").Find(&users)
	if len(users) != 1 || users[0].Role != models.RoleMaster {
		t.Fatalf("expected exactly one master user, got %+v", users)
	}

	var master models.Master
	if err := app.db.First(&master, id).Error; err != nil {
		t.Fatalf("master row: %v", err)
	}
	if master.UserID != users[0].ID {
		t.Fatalf("master points at user %d, want %d", master.UserID, users[0].ID)
	}
	if n := app.count(&models.Customer{}); n != 0 {
		t.Fatalf("unexpected customer rows: %d", n)
	}
}

func TestCreateCustomerCreatesOneUser(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/customers/new", url.Values{
		"username":  {"lena_customer"},
		"password1": {"test_pass1234"},
		"password2": {"test_pass1234"},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}

	if n := app.count(&models.User{}, "username = ? AND role = ?", "lena_customer", models.RoleCustomer); n != 1 {
		t.Fatalf("expected one customer user, got %d", n)
	}
	if n := app.count(&models.Customer{}); n != 1 {
		t.Fatalf("expected one customer row, got %d", n)
	}
	if n := app.count(&models.Master{}); n != 0 {
		t.Fatalf("unexpected master rows: %d", n)
	}
}

func TestCreateMasterRejectsInvalidForm(t *testing.T) {
	app := newTestApp(t)
	testfixtures.CreateMaster(t, app.db, "taken")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			name: "passwords differ",
			form: url.Values{"username": {"fresh"}, "password1": {"test_pass1234"}, "password2": {"other_pass1234"}},
			want: "The two password fields didn&#39;t match.",
		},
		{
			name: "username taken",
			form: url.Values{"username": {"taken"}, "password1": {"test_pass1234"}, "password2": {"test_pass1234"}},
			want: "A user with that username already exists.",
		},
		{
			name: "bad username",
			form: url.Values{"username": {"has space"}, "password1": {"test_pass1234"}, "password2": {"test_pass1234"}},
			want: "Enter a valid username.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.postForm("/masters/new", tt.form, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Fatalf("expected %q in body: %s", tt.want, w.Body.String())
			}
		})
	}

	if n := app.count(&models.User{}); n != 1 {
		t.Fatalf("rejected forms must not create users, have %d", n)
	}
}

func TestMasterSearch(t *testing.T) {
	app := newTestApp(t)
	viewer := testfixtures.CreateCustomer(t, app.db, "viewer")
	session := app.sessionFor(&viewer.User)

	for _, name := range []string{"Test_master", "contest", "TESTER", "anna", "a_b", "axb"} {
		testfixtures.CreateMaster(t, app.db, name)
	}

	tests := []struct {
		term string
		want []string
		not  []string
	}{
		{"test", []string{"Test_master", "contest", "TESTER"}, []string{"anna", "a_b", "axb"}},
		{"_", []string{"Test_master", "a_b"}, []string{"axb", "anna"}},
		{"nobody", nil, []string{"Test_master"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			w := app.get("/masters?username="+url.QueryEscape(tt.term), session)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			body := w.Body.String()
			if got := listedMasters(body); got != len(tt.want) {
				t.Fatalf("expected %d masters, got %d: %s", len(tt.want), got, body)
			}
			for _, name := range tt.want {
				if !strings.Contains(body, ">"+name+"</a>") {
					t.Errorf("%s missing", name)
				}
			}
			for _, name := range tt.not {
				if strings.Contains(body, ">"+name+"</a>") {
					t.Errorf("%s should not be listed", name)
				}
			}
		})
	}
}

func TestMasterListIsPaginated(t *testing.T) {
	app := newTestApp(t)
	viewer := testfixtures.CreateCustomer(t, app.db, "viewer")
	session := app.sessionFor(&viewer.User)

	for i := 1; i <= 7; i++ {
		testfixtures.CreateMaster(t, app.db, "master"+strconv.Itoa(i))
	}

	first := app.get("/masters", session).Body.String()
	if got := listedMasters(first); got != 5 {
		t.Fatalf("first page: expected 5, got %d", got)
	}
	if !strings.Contains(first, "Page 1 of 2") {
		t.Fatalf("pager missing: %s", first)
	}

	second := app.get("/masters?page=2", session).Body.String()
	if got := listedMasters(second); got != 2 {
		t.Fatalf("second page: expected 2, got %d", got)
	}
}

func TestServiceListIsPaginated(t *testing.T) {
	app := newTestApp(t)
	viewer := testfixtures.CreateCustomer(t, app.db, "viewer")
	session := app.sessionFor(&viewer.User)

	for i := 1; i <= 7; i++ {
		testfixtures.CreateService(t, app.db, "Service "+strconv.Itoa(i), 10, 30)
	}

	first := app.get("/services", session).Body.String()
	if got := strings.Count(first, "<td>Service "); got != 5 {
		t.Fatalf("first page: expected 5, got %d", got)
	}
	if !strings.Contains(first, "Page 1 of 2") || !strings.Contains(first, "/services?name=") {
		t.Fatalf("pager missing: %s", first)
	}

	second := app.get("/services?page=2", session).Body.String()
	if got := strings.Count(second, "<td>Service "); got != 2 {
		t.Fatalf("second page: expected 2, got %d", got)
	}
	if !strings.Contains(second, "<td>Service 6</td>") || !strings.Contains(second, "<td>Service 7</td>") {
		t.Fatalf("second page not ordered by name: %s", second)
	}

	filtered := app.get("/services?name=service+3", session).Body.String()
	if got := strings.Count(filtered, "<td>Service "); got != 1 || !strings.Contains(filtered, "Page 1 of 1") {
		t.Fatalf("filtered list: %s", filtered)
	}
}

func TestDeleteMasterLeavesNoOrphans(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	customer := testfixtures.CreateCustomer(t, app.db, "kate_customer")
	svc := testfixtures.CreateService(t, app.db, "Manicure", 20, 30)

	if err := app.db.Create(&models.PriceList{MasterID: master.ID, ServiceID: svc.ID, Price: 20}).Error; err != nil {
		t.Fatalf("price: %v", err)
	}
	if err := app.db.Create(&models.CustomerMaster{CustomerID: customer.ID, MasterID: master.ID}).Error; err != nil {
		t.Fatalf("assignment: %v", err)
	}

	path := "/masters/" + strconv.FormatUint(uint64(master.ID), 10) + "/delete"
	w := app.postForm(path, nil, app.sessionFor(&master.User))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/masters" {
		t.Fatalf("expected redirect to /masters, got %d %q", w.Code, w.Header().Get("Location"))
	}

	if n := app.count(&models.Master{}, "id = ?", master.ID); n != 0 {
		t.Fatal("master still present")
	}
	if n := app.count(&models.PriceList{}, "master_id = ?", master.ID); n != 0 {
		t.Fatalf("orphaned price rows: %d", n)
	}
	if n := app.count(&models.CustomerMaster{}, "master_id = ?", master.ID); n != 0 {
		t.Fatalf("orphaned assignments: %d", n)
	}
	if n := app.count(&models.User{}, "id = ?", master.UserID); n != 0 {
		t.Fatal("master user still present")
	}
	if n := app.count(&models.Service{}); n != 1 {
		t.Fatal("service must survive master deletion")
	}
}

func TestUpdateCustomerAssociations(t *testing.T) {
	app := newTestApp(t)
	customer := testfixtures.CreateCustomer(t, app.db, "kate_customer")
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	svc := testfixtures.CreateService(t, app.db, "Pedicure", 30, 45)

	path := "/customers/" + strconv.FormatUint(uint64(customer.ID), 10)
	w := app.postForm(path+"/update", url.Values{
		"first_name": {"Kate"},
		"services":   {strconv.FormatUint(uint64(svc.ID), 10)},
		"masters":    {strconv.FormatUint(uint64(master.ID), 10)},
	}, app.sessionFor(&customer.User))
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}

	if n := app.count(&models.CustomerService{}, "customer_id = ?", customer.ID); n != 1 {
		t.Fatalf("expected 1 service, got %d", n)
	}
	if n := app.count(&models.CustomerMaster{}, "customer_id = ?", customer.ID); n != 1 {
		t.Fatalf("expected 1 master, got %d", n)
	}

	// the master sees the customer on their page
	body := app.get("/masters/"+strconv.FormatUint(uint64(master.ID), 10), app.sessionFor(&master.User)).Body.String()
	if !strings.Contains(body, ">kate_customer</a>") {
		t.Fatalf("customer missing from master page: %s", body)
	}
}

func TestMeRedirectsToOwnProfile(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	customer := testfixtures.CreateCustomer(t, app.db, "kate_customer")

	w := app.get("/me", app.sessionFor(&master.User))
	if want := "/masters/" + strconv.FormatUint(uint64(master.ID), 10); w.Header().Get("Location") != want {
		t.Fatalf("master: expected %q, got %q", want, w.Header().Get("Location"))
	}

	w = app.get("/me", app.sessionFor(&customer.User))
	if want := "/customers/" + strconv.FormatUint(uint64(customer.ID), 10); w.Header().Get("Location") != want {
		t.Fatalf("customer: expected %q, got %q", want, w.Header().Get("Location"))
	}
}

// ======================================================
// EVENTS
// ======================================================

func TestMasterScheduleScenario(t *testing.T) {
	app := newTestApp(t)
	manicure := testfixtures.CreateService(t, app.db, "Manicure", 15, 45)
	sid := strconv.FormatUint(uint64(manicure.ID), 10)

	w := app.postForm("/masters/new", url.Values{
		"username":        {"Test_master"},
		"password1":       {"test_pass1234"},
		"password2":       {"test_pass1234"},
		"services":        {sid},
		"price_" + sid:    {"20.00"},
		"duration_" + sid: {"0:30"},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("create master: %d %s", w.Code, w.Body.String())
	}
	masterID := idFromLocation(t, w, "/masters/")
	masterPath := "/masters/" + strconv.FormatUint(uint64(masterID), 10)

	var price models.PriceList
	if err := app.db.Where("master_id = ?", masterID).First(&price).Error; err != nil {
		t.Fatalf("price row: %v", err)
	}
	if price.Price != 20 || price.DurationMin == nil || *price.DurationMin != 30 {
		t.Fatalf("unexpected price row %+v", price)
	}

	session := app.login("Test_master", "test_pass1234")

	list := app.get("/masters?username=test", session).Body.String()
	if !strings.Contains(list, ">Test_master</a>") {
		t.Fatalf("search missed Test_master: %s", list)
	}

	if got := feed(t, app.get(masterPath+"/events", session)); len(got) != 0 {
		t.Fatalf("expected no events, got %+v", got)
	}

	w = app.postJSON("/events", `{"title":"Manicure","start":"2024-01-01T10:00","end":"2024-01-01T11:00"}`, session)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: %d %s", w.Code, w.Body.String())
	}

	got := feed(t, app.get(masterPath+"/events", session))
	if len(got) != 1 {
		t.Fatalf("expected exactly one event, got %+v", got)
	}
	if got[0].Start != "2024-01-01 10:00:00" || got[0].End != "2024-01-01 11:00:00" || got[0].MasterID != masterID {
		t.Fatalf("unexpected event %+v", got[0])
	}

	detail := app.get(masterPath, session).Body.String()
	if !strings.Contains(detail, "2024-01-01 10:00") || !strings.Contains(detail, "20.00") {
		t.Fatalf("detail page missing event or price: %s", detail)
	}

	// the calendar feed sees it too
	w = app.get("/events?master_id="+strconv.FormatUint(uint64(masterID), 10), session)
	var all []dto.EventDTO
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(all) != 1 || all[0].Title != "Manicure" {
		t.Fatalf("unexpected calendar feed %+v", all)
	}
}

func feed(t *testing.T, w *httptest.ResponseRecorder) []dto.EventDTO {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("events feed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data  []dto.EventDTO `json:"data"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Data
}

func TestCreateEventFromFormRedirects(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")

	w := app.postForm("/events", url.Values{
		"title": {"Gel polish"},
		"start": {"2024-02-01 09:00"},
		"end":   {"2024-02-01 10:00"},
	}, app.sessionFor(&master.User))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if want := "/masters/" + strconv.FormatUint(uint64(master.ID), 10); w.Header().Get("Location") != want {
		t.Fatalf("expected %q, got %q", want, w.Header().Get("Location"))
	}
	if n := app.count(&models.Event{}, "master_id = ?", master.ID); n != 1 {
		t.Fatalf("expected one event, got %d", n)
	}
}

func TestCreateEventRejectsBadRange(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	session := app.sessionFor(&master.User)

	for name, body := range map[string]string{
		"end before start": `{"title":"x","start":"2024-01-01T11:00","end":"2024-01-01T10:00"}`,
		"zero length":      `{"title":"x","start":"2024-01-01T10:00","end":"2024-01-01T10:00"}`,
		"bad timestamp":    `{"title":"x","start":"tomorrow","end":"2024-01-01T10:00"}`,
		"missing title":    `{"start":"2024-01-01T10:00","end":"2024-01-01T11:00"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := app.postJSON("/events", body, session)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	if n := app.count(&models.Event{}); n != 0 {
		t.Fatalf("invalid events persisted: %d", n)
	}
}

func TestUpdateAndDeleteOwnEvent(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	session := app.sessionFor(&master.User)

	ev := models.Event{Title: "Old", MasterID: master.ID}
	ev.StartAt, ev.EndAt = mustTime(t, "2024-01-01T10:00"), mustTime(t, "2024-01-01T11:00")
	if err := app.db.Create(&ev).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	path := "/events/" + strconv.FormatUint(uint64(ev.ID), 10)

	if w := app.get(path+"/update", session); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "2024-01-01T10:00") {
		t.Fatalf("edit form: %d %s", w.Code, w.Body.String())
	}

	w := app.postForm(path+"/update", url.Values{
		"title": {"New"},
		"start": {"2024-01-02T10:00"},
		"end":   {"2024-01-02T12:00"},
	}, session)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var stored models.Event
	app.db.First(&stored, ev.ID)
	if stored.Title != "New" || stored.EndAt.Sub(stored.StartAt).Hours() != 2 {
		t.Fatalf("update not applied: %+v", stored)
	}

	req := httptest.NewRequest(http.MethodPost, path+"/delete", nil)
	req.Header.Set("Accept", "application/json")
	w = app.do(req, session)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if n := app.count(&models.Event{}); n != 0 {
		t.Fatal("event still present")
	}
}

func TestEventsFeedRejectsBadMasterID(t *testing.T) {
	app := newTestApp(t)
	viewer := testfixtures.CreateCustomer(t, app.db, "viewer")

	w := app.get("/events?master_id=abc", app.sessionFor(&viewer.User))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// ======================================================
// SERVICES & PRICES
// ======================================================

func TestDuplicatePriceIsRejected(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	svc := testfixtures.CreateService(t, app.db, "Manicure", 20, 30)
	session := app.sessionFor(&master.User)

	path := "/masters/" + strconv.FormatUint(uint64(master.ID), 10) + "/prices"
	form := url.Values{"service_id": {strconv.FormatUint(uint64(svc.ID), 10)}, "price": {"25"}}

	if w := app.postForm(path, form, session); w.Code != http.StatusFound {
		t.Fatalf("first price: %d %s", w.Code, w.Body.String())
	}
	w := app.postForm(path, form, session)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate price: expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already in the price list") {
		t.Fatalf("duplicate message missing: %s", w.Body.String())
	}
	if n := app.count(&models.PriceList{}); n != 1 {
		t.Fatalf("expected one price row, got %d", n)
	}
}

func TestOutOfRangePricesAreRejected(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	svc := testfixtures.CreateService(t, app.db, "Manicure", 20, 30)
	session := app.sessionFor(&master.User)
	serviceID := strconv.FormatUint(uint64(svc.ID), 10)
	pricesPath := "/masters/" + strconv.FormatUint(uint64(master.ID), 10) + "/prices"

	for _, raw := range []string{"NaN", "Inf", "-Inf", "1e300", "100000000", "-1"} {
		t.Run(raw, func(t *testing.T) {
			w := app.postForm("/services/new", url.Values{"name": {"Nail art"}, "price": {raw}, "duration": {"30"}}, session)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("service: expected 400, got %d", w.Code)
			}

			w = app.postForm(pricesPath, url.Values{"service_id": {serviceID}, "price": {raw}}, session)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("price: expected 400, got %d", w.Code)
			}

			w = app.postForm("/masters/new", url.Values{
				"username":           {"nadia_master"},
				"password1":          {"test_pass1234"},
				"password2":          {"test_pass1234"},
				"services":           {serviceID},
				"price_" + serviceID: {raw},
			}, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("master: expected 400, got %d", w.Code)
			}
		})
	}

	if n := app.count(&models.Service{}); n != 1 {
		t.Fatalf("expected only the fixture service, got %d", n)
	}
	if n := app.count(&models.PriceList{}); n != 0 {
		t.Fatalf("expected no price rows, got %d", n)
	}
	if n := app.count(&models.User{}, "username = ?", "nadia_master"); n != 0 {
		t.Fatalf("master created with a bad price")
	}

	w := app.postForm("/services/new", url.Values{"name": {"Nail art"}, "price": {"99999999.99"}, "duration": {"30"}}, session)
	if w.Code != http.StatusFound {
		t.Fatalf("largest price: expected 302, got %d", w.Code)
	}
}

func TestPriceOfAnotherMasterIsDenied(t *testing.T) {
	app := newTestApp(t)
	anna := testfixtures.CreateMaster(t, app.db, "anna_master")
	olha := testfixtures.CreateMaster(t, app.db, "olha_master")
	svc := testfixtures.CreateService(t, app.db, "Manicure", 20, 30)

	price := models.PriceList{MasterID: anna.ID, ServiceID: svc.ID, Price: 20}
	if err := app.db.Create(&price).Error; err != nil {
		t.Fatalf("price: %v", err)
	}

	path := "/prices/" + strconv.FormatUint(uint64(price.ID), 10)
	w := app.postForm(path+"/update", url.Values{"price": {"1"}}, app.sessionFor(&olha.User))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	var stored models.PriceList
	app.db.First(&stored, price.ID)
	if stored.Price != 20 {
		t.Fatalf("price changed by another master: %v", stored.Price)
	}
}

func TestServiceLifecycle(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	customer := testfixtures.CreateCustomer(t, app.db, "kate_customer")
	session := app.sessionFor(&master.User)

	w := app.postForm("/services/new", url.Values{"name": {"Nail art"}, "price": {"15"}, "duration": {"0:30"}}, session)
	if w.Code != http.StatusFound {
		t.Fatalf("create service: %d %s", w.Code, w.Body.String())
	}
	var svc models.Service
	if err := app.db.Where("name = ?", "Nail art").First(&svc).Error; err != nil {
		t.Fatalf("service row: %v", err)
	}
	if svc.DurationMin != 30 {
		t.Fatalf("duration = %d", svc.DurationMin)
	}

	w = app.postForm("/services/new", url.Values{"name": {"Nail art"}, "price": {"15"}, "duration": {"30"}}, session)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate service: expected 400, got %d", w.Code)
	}

	if err := app.db.Create(&models.PriceList{MasterID: master.ID, ServiceID: svc.ID, Price: 18}).Error; err != nil {
		t.Fatalf("price: %v", err)
	}
	if err := app.db.Create(&models.CustomerService{CustomerID: customer.ID, ServiceID: svc.ID}).Error; err != nil {
		t.Fatalf("customer service: %v", err)
	}

	w = app.postForm("/services/"+strconv.FormatUint(uint64(svc.ID), 10)+"/delete", nil, session)
	if w.Code != http.StatusFound {
		t.Fatalf("delete service: %d %s", w.Code, w.Body.String())
	}
	if n := app.count(&models.PriceList{}, "service_id = ?", svc.ID); n != 0 {
		t.Fatalf("orphaned price rows: %d", n)
	}
	if n := app.count(&models.CustomerService{}, "service_id = ?", svc.ID); n != 0 {
		t.Fatalf("orphaned customer services: %d", n)
	}
}

// ======================================================
// DASHBOARD & AUTH
// ======================================================

func TestDashboardCountsAndVisits(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	testfixtures.CreateCustomer(t, app.db, "kate_customer")
	testfixtures.CreateService(t, app.db, "Manicure", 20, 30)
	session := app.sessionFor(&master.User)

	body := app.get("/", session).Body.String()
	for _, want := range []string{
		"Users: <strong>2</strong>",
		"Masters: <strong>1</strong>",
		"Customers: <strong>1</strong>",
		"Services: <strong>1</strong>",
		"Events: <strong>0</strong>",
		"visited this page 1 time.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q", want)
		}
	}

	body = app.get("/", session).Body.String()
	if !strings.Contains(body, "visited this page 2 times.") {
		t.Errorf("visit count did not grow: %s", body)
	}
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t)
	testfixtures.CreateCustomer(t, app.db, "kate_customer")

	w := app.postForm("/accounts/login", url.Values{
		"username": {"kate_customer"},
		"password": {"wrong-password"},
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", w.Code)
	}

	w = app.postForm("/accounts/login", url.Values{
		"username": {"kate_customer"},
		"password": {testfixtures.Password},
		"next":     {"//evil.example.com"},
	}, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
	}

	session := app.login("kate_customer", testfixtures.Password)
	if w := app.get("/masters", session); w.Code != http.StatusOK {
		t.Fatalf("logged-in list: %d", w.Code)
	}

	w = app.postForm("/accounts/logout", nil, session)
	if w.Code != http.StatusFound {
		t.Fatalf("logout: %d", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not clear the session cookie")
	}
}

func TestLoginLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	withLimiter := func(proxies ...string) func(*Deps) {
		return func(d *Deps) {
			rl := middleware.NewRateLimiter(0.001, 2)
			t.Cleanup(rl.Close)
			d.LoginLimiter = rl
			d.Config.TrustedProxies = proxies
		}
	}

	badLogin := func(app *testApp, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/accounts/login", strings.NewReader(url.Values{
			"username": {"kate_customer"},
			"password": {"wrong-password"},
		}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "192.0.2.1:4321"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		return app.do(req, nil).Code
	}

	app := newTestApp(t, withLimiter())
	testfixtures.CreateCustomer(t, app.db, "kate_customer")
	for i, xff := range []string{"203.0.113.1", "203.0.113.2"} {
		if code := badLogin(app, xff); code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, code)
		}
	}
	if code := badLogin(app, "203.0.113.3"); code != http.StatusTooManyRequests {
		t.Fatalf("rotating X-Forwarded-For escaped the limiter: got %d", code)
	}

	// behind a trusted proxy the forwarded address is the client
	proxied := newTestApp(t, withLimiter("192.0.2.1"))
	testfixtures.CreateCustomer(t, proxied.db, "kate_customer")
	for i, xff := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		if code := badLogin(proxied, xff); code != http.StatusUnauthorized {
			t.Fatalf("proxied attempt %d: expected 401, got %d", i, code)
		}
	}
}

func TestJSONEventsThroughCSRF(t *testing.T) {
	app := newTestApp(t)
	master := testfixtures.CreateMaster(t, app.db, "anna_master")
	session := app.sessionFor(&master.User)
	handler := middleware.CSRF(app.cfg)(app.engine)

	serve := func(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	feed := serve(httptest.NewRequest(http.MethodGet, "/masters/"+strconv.FormatUint(uint64(master.ID), 10)+"/events", nil), []*http.Cookie{session})
	if feed.Code != http.StatusOK {
		t.Fatalf("feed: %d", feed.Code)
	}
	token := feed.Header().Get(middleware.CSRFHeader)
	if token == "" {
		t.Fatal("feed did not hand out a CSRF token")
	}
	cookies := append([]*http.Cookie{session}, feed.Result().Cookies()...)

	body := `{"title":"Manicure","start":"2024-01-01T10:00","end":"2024-01-01T11:00"}`
	newEvent := func(withToken bool) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if withToken {
			req.Header.Set(middleware.CSRFHeader, token)
		}
		return req
	}

	if w := serve(newEvent(false), cookies); w.Code != http.StatusForbidden {
		t.Fatalf("tokenless post: expected 403, got %d", w.Code)
	}
	if n := app.count(&models.Event{}); n != 0 {
		t.Fatalf("tokenless post persisted %d events", n)
	}

	w := serve(newEvent(true), cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if n := app.count(&models.Event{}); n != 1 {
		t.Fatalf("expected one event, got %d", n)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	if w := app.get("/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("Accept", "application/json")
	w := app.do(req, nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"error_code":"not_found"`) {
		t.Fatalf("json 404: %d %s", w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}
