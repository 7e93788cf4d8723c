package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/validators"
)

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                   "/",
		"/masters/3":         "/masters/3",
		"/masters?page=2":    "/masters?page=2",
		"https://evil.com":   "/",
		"//evil.com":         "/",
		`/\evil.com`:         "/",
		"javascript:alert()": "/",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormErrorsFromValidation(t *testing.T) {
	if err := validators.Register(); err != nil {
		t.Fatalf("register: %v", err)
	}

	req := CreateMasterRequest{
		Username:  "bad name",
		Password1: "short",
		Password2: "different",
		Email:     "not-an-email",
	}
	err := binding.Validator.ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	fields, msg := formErrors(bindError{err})
	if msg != "" {
		t.Fatalf("unexpected general message %q", msg)
	}
	want := map[string]string{
		"username":  businessMessages["invalid_username"],
		"password1": "Ensure this value has at least 8 characters.",
		"password2": "The two password fields didn't match.",
		"email":     "Enter a valid email address.",
	}
	for field, message := range want {
		if fields[field] != message {
			t.Errorf("%s: got %q, want %q", field, fields[field], message)
		}
	}
}

func TestFormErrorsFromBusinessCodes(t *testing.T) {
	fields, msg := formErrors(httperr.ErrBusiness("username_taken"))
	if fields["username"] != "A user with that username already exists." || msg != "" {
		t.Fatalf("username_taken: %v %q", fields, msg)
	}

	fields, msg = formErrors(httperr.ErrBusiness("role_mismatch"))
	if len(fields) != 0 || msg != businessMessages["role_mismatch"] {
		t.Fatalf("role_mismatch: %v %q", fields, msg)
	}

	_, msg = formErrors(errors.New("boom"))
	if msg == "" {
		t.Fatal("unknown errors need a general message")
	}
}

func TestWriteJSONError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{httperr.ErrBusiness("not_owner"), http.StatusForbidden},
		{httperr.ErrBusiness("event_not_found"), http.StatusNotFound},
		{httperr.ErrBusiness("invalid_time_range"), http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeJSONError(c, tt.err)
		if w.Code != tt.status {
			t.Errorf("%v: got %d, want %d", tt.err, w.Code, tt.status)
		}
	}
}

func TestWantsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		contentType string
		accept      string
		want        bool
	}{
		{"application/json", "", true},
		{"application/json; charset=utf-8", "", true},
		{"", "application/json", true},
		{"application/x-www-form-urlencoded", "text/html", false},
		{"", "", false},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
		if tt.contentType != "" {
			c.Request.Header.Set("Content-Type", tt.contentType)
		}
		if tt.accept != "" {
			c.Request.Header.Set("Accept", tt.accept)
		}
		if got := wantsJSON(c); got != tt.want {
			t.Errorf("content-type %q accept %q: got %v", tt.contentType, tt.accept, got)
		}
	}
}

func TestServiceRequestParse(t *testing.T) {
	svc, errs := ServiceRequest{Name: " Manicure ", Price: "20.50", Duration: "1:15"}.parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if svc.Name != "Manicure" || svc.Price != 20.5 || svc.DurationMin != 75 {
		t.Fatalf("unexpected service %+v", svc)
	}

	_, errs = ServiceRequest{Name: "x", Price: "-1", Duration: "90"}.parse()
	if errs["price"] == "" {
		t.Fatal("negative price accepted")
	}
}
